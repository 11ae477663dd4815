package validators

import (
	"testing"

	apperrors "socialhub/pkg/errors"

	"github.com/stretchr/testify/assert"
)

func TestValidateTags(t *testing.T) {
	v := NewPostValidator(nil)

	assert.NoError(t, v.ValidateTags([]string{"go", "back-end", "db_2"}))
	assert.True(t, apperrors.IsInvalidArgument(v.ValidateTags([]string{"no spaces"})))

	many := make([]string, 11)
	for i := range many {
		many[i] = "t"
	}
	assert.Error(t, v.ValidateTags(many))
}

func TestValidateText(t *testing.T) {
	v := NewPostValidator(nil, "spam")

	assert.NoError(t, v.ValidateText("title", "hello"))
	assert.Error(t, v.ValidateText("content", "buy SPAM now"))
	assert.NoError(t, NewPostValidator(nil).ValidateText("content", "buy spam now"))
}
