package config

import "fmt"

// DomainConfig holds the business limits for posts and comments
type DomainConfig struct {
	// Comment constraints
	MaxCommentLength int

	// Post constraints
	MaxTitleLength   int
	MaxContentLength int
	MaxTagsPerPost   int
	MaxTagLength     int
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MaxCommentLength: 500,
		MaxTitleLength:   200,
		MaxContentLength: 5000,
		MaxTagsPerPost:   10,
		MaxTagLength:     50,
	}
}

// Validate checks if the configuration is valid
func (c *DomainConfig) Validate() error {
	if c.MaxCommentLength <= 0 {
		return fmt.Errorf("max comment length must be positive, got %d", c.MaxCommentLength)
	}
	if c.MaxTitleLength <= 0 || c.MaxContentLength <= 0 {
		return fmt.Errorf("post length limits must be positive")
	}
	if c.MaxTagsPerPost < 0 || c.MaxTagLength <= 0 {
		return fmt.Errorf("tag limits must be non-negative")
	}
	return nil
}
