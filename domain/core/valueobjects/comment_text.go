package valueobjects

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"socialhub/domain/config"
	apperrors "socialhub/pkg/errors"
)

// CommentText is trimmed, non-empty comment text within the configured length.
type CommentText struct {
	value string
}

// NewCommentText validates text using the default domain configuration
func NewCommentText(text string) (CommentText, error) {
	return NewCommentTextWithConfig(text, config.DefaultDomainConfig())
}

// NewCommentTextWithConfig validates text against cfg.MaxCommentLength runes
func NewCommentTextWithConfig(text string, cfg *config.DomainConfig) (CommentText, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return CommentText{}, apperrors.NewInvalidArgumentError("comment text is required").
			WithCode(apperrors.CodeCommentEmpty)
	}

	if n := utf8.RuneCountInString(text); n > cfg.MaxCommentLength {
		return CommentText{}, apperrors.NewInvalidArgumentError(
			fmt.Sprintf("comment exceeds maximum length of %d characters", cfg.MaxCommentLength)).
			WithCode(apperrors.CodeCommentTooLong).
			WithDetails(map[string]interface{}{"length": n, "max_length": cfg.MaxCommentLength})
	}

	return CommentText{value: text}, nil
}

// String returns the text
func (t CommentText) String() string {
	return t.value
}
