package valueobjects

import (
	"strings"
	"testing"

	apperrors "socialhub/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCommentText(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		errCode string
	}{
		{"trims surrounding space", "  nice post  ", "nice post", ""},
		{"empty", "", "", apperrors.CodeCommentEmpty},
		{"whitespace only", " \t\n", "", apperrors.CodeCommentEmpty},
		{"exactly max", strings.Repeat("a", 500), strings.Repeat("a", 500), ""},
		{"over max", strings.Repeat("a", 501), "", apperrors.CodeCommentTooLong},
		{"max counted in runes", strings.Repeat("é", 500), strings.Repeat("é", 500), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := NewCommentText(tt.input)
			if tt.errCode != "" {
				require.Error(t, err)
				assert.True(t, apperrors.IsInvalidArgument(err))
				assert.Equal(t, tt.errCode, apperrors.GetAppError(err).Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, text.String())
		})
	}
}

func TestNewPostContent(t *testing.T) {
	content, err := NewPostContent(" Hello ", " world ", []string{"Go", " go", "", "backend"})
	require.NoError(t, err)
	assert.Equal(t, "Hello", content.Title())
	assert.Equal(t, "world", content.Content())
	assert.Equal(t, []string{"backend", "go"}, content.Tags())

	_, err = NewPostContent("", "", nil)
	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.CodeFieldValidation, appErr.Code)
}

func TestParseIDs(t *testing.T) {
	_, err := ParsePostID("not-a-uuid")
	assert.True(t, apperrors.IsInvalidArgument(err))

	id := NewPostID()
	parsed, err := ParsePostID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseIdentityID("")
	assert.True(t, apperrors.IsInvalidArgument(err))
}
