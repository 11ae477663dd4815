package valueobjects

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"socialhub/domain/config"
	apperrors "socialhub/pkg/errors"
)

// PostContent is a validated post title, body and tag set.
type PostContent struct {
	title   string
	content string
	tags    []string
}

// NewPostContent validates a post using the default domain configuration
func NewPostContent(title, content string, tags []string) (PostContent, error) {
	return NewPostContentWithConfig(title, content, tags, config.DefaultDomainConfig())
}

// NewPostContentWithConfig validates and normalizes a post. Tags are trimmed,
// lower-cased and deduplicated; empty tags are dropped.
func NewPostContentWithConfig(title, content string, tags []string, cfg *config.DomainConfig) (PostContent, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	normalized := NormalizeTags(tags)

	errs := apperrors.NewValidationErrors()
	switch n := utf8.RuneCountInString(title); {
	case n == 0:
		errs.Add("title", "title is required")
	case n > cfg.MaxTitleLength:
		errs.Add("title", fmt.Sprintf("title exceeds maximum length of %d characters", cfg.MaxTitleLength))
	}
	switch n := utf8.RuneCountInString(content); {
	case n == 0:
		errs.Add("content", "content is required")
	case n > cfg.MaxContentLength:
		errs.Add("content", fmt.Sprintf("content exceeds maximum length of %d characters", cfg.MaxContentLength))
	}
	if len(normalized) > cfg.MaxTagsPerPost {
		errs.Add("tags", fmt.Sprintf("at most %d tags are allowed", cfg.MaxTagsPerPost))
	}
	for _, tag := range normalized {
		if utf8.RuneCountInString(tag) > cfg.MaxTagLength {
			errs.Add("tags", fmt.Sprintf("tag %q exceeds maximum length of %d characters", tag, cfg.MaxTagLength))
		}
	}
	if appErr := errs.AsAppError(); appErr != nil {
		return PostContent{}, appErr
	}

	return PostContent{title: title, content: content, tags: normalized}, nil
}

// NormalizeTags trims, lower-cases, deduplicates and sorts tags.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" {
			out = append(out, tag)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Title returns the post title
func (c PostContent) Title() string { return c.title }

// Content returns the post body
func (c PostContent) Content() string { return c.content }

// Tags returns a copy of the normalized tags
func (c PostContent) Tags() []string { return slices.Clone(c.tags) }
