package validators

import (
	"fmt"
	"regexp"
	"strings"

	"socialhub/domain/config"
	apperrors "socialhub/pkg/errors"
)

var validTagPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// PostValidator validates post rules that sit above field lengths: tag
// format and content filtering.
type PostValidator struct {
	cfg            *config.DomainConfig
	forbiddenWords []string
}

// NewPostValidator creates a post validator. forbiddenWords may be empty.
func NewPostValidator(cfg *config.DomainConfig, forbiddenWords ...string) *PostValidator {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &PostValidator{cfg: cfg, forbiddenWords: forbiddenWords}
}

// ValidateTags checks count and format of already normalized tags
func (v *PostValidator) ValidateTags(tags []string) error {
	errs := apperrors.NewValidationErrors()
	if len(tags) > v.cfg.MaxTagsPerPost {
		errs.Add("tags", fmt.Sprintf("cannot have more than %d tags", v.cfg.MaxTagsPerPost))
	}
	for _, tag := range tags {
		if !validTagPattern.MatchString(tag) {
			errs.Add("tags", fmt.Sprintf("tag %q contains invalid characters", tag))
		}
	}
	if appErr := errs.AsAppError(); appErr != nil {
		return appErr
	}
	return nil
}

// ValidateText rejects title or body text containing a forbidden word
func (v *PostValidator) ValidateText(field, text string) error {
	if v.containsForbiddenWords(text) {
		errs := apperrors.NewValidationErrors()
		errs.Add(field, "contains inappropriate content")
		return errs.AsAppError()
	}
	return nil
}

func (v *PostValidator) containsForbiddenWords(text string) bool {
	lower := strings.ToLower(text)
	for _, word := range v.forbiddenWords {
		if word != "" && strings.Contains(lower, strings.ToLower(word)) {
			return true
		}
	}
	return false
}
