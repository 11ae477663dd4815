package errors

import (
	"fmt"
	"strings"
)

// Error codes attached to AppError.Code for social domain failures.
const (
	CodeSelfFollow         = "SELF_FOLLOW"
	CodeIdentityNotFound   = "IDENTITY_NOT_FOUND"
	CodePostNotFound       = "POST_NOT_FOUND"
	CodeCommentNotFound    = "COMMENT_NOT_FOUND"
	CodeCommentEmpty       = "COMMENT_EMPTY"
	CodeCommentTooLong     = "COMMENT_TOO_LONG"
	CodeNotCommentAuthor   = "NOT_COMMENT_AUTHOR"
	CodeNotPostAuthor      = "NOT_POST_AUTHOR"
	CodeNotificationAbsent = "NOTIFICATION_NOT_FOUND"
	CodeNotRecipient       = "NOT_NOTIFICATION_RECIPIENT"
	CodeInvalidPagination  = "INVALID_PAGINATION"
	CodeInvalidSortMode    = "INVALID_SORT_MODE"
	CodeInvalidID          = "INVALID_ID"
	CodeConcurrentUpdate   = "CONCURRENT_MODIFICATION"
	CodeFieldValidation    = "FIELD_VALIDATION_ERROR"
	CodeInvalidBody        = "INVALID_BODY"
)

// ErrSelfFollow is returned when an identity tries to follow itself.
func ErrSelfFollow() *AppError {
	return NewInvalidArgumentError("an identity cannot follow itself").WithCode(CodeSelfFollow)
}

// ErrIdentityNotFound reports a missing identity.
func ErrIdentityNotFound(id string) *AppError {
	return NewNotFoundError("identity").
		WithCode(CodeIdentityNotFound).
		WithDetails(map[string]interface{}{"identity_id": id})
}

// ErrPostNotFound reports a missing post.
func ErrPostNotFound(id string) *AppError {
	return NewNotFoundError("post").
		WithCode(CodePostNotFound).
		WithDetails(map[string]interface{}{"post_id": id})
}

// ErrCommentNotFound reports a comment that does not exist on the post.
func ErrCommentNotFound(postID, commentID string) *AppError {
	return NewNotFoundError("comment").
		WithCode(CodeCommentNotFound).
		WithDetails(map[string]interface{}{"post_id": postID, "comment_id": commentID})
}

// ErrNotificationNotFound reports a missing notification.
func ErrNotificationNotFound(id string) *AppError {
	return NewNotFoundError("notification").
		WithCode(CodeNotificationAbsent).
		WithDetails(map[string]interface{}{"notification_id": id})
}

// ErrConcurrentModification reports a lost race against another writer.
func ErrConcurrentModification(resource string) *AppError {
	return NewConflictError(fmt.Sprintf("%s was modified concurrently", resource)).
		WithCode(CodeConcurrentUpdate)
}

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors aggregates field-level validation failures.
type ValidationErrors struct {
	Errors []FieldError `json:"errors"`
}

// NewValidationErrors creates an empty collection.
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{Errors: make([]FieldError, 0)}
}

// Add records a failure for field.
func (v *ValidationErrors) Add(field, message string) {
	v.Errors = append(v.Errors, FieldError{Field: field, Message: message})
}

// HasErrors returns true if any failure was recorded.
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// Error implements the error interface
func (v *ValidationErrors) Error() string {
	if len(v.Errors) == 0 {
		return ""
	}
	messages := make([]string, len(v.Errors))
	for i, err := range v.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// ToMap groups messages by field.
func (v *ValidationErrors) ToMap() map[string][]string {
	result := make(map[string][]string)
	for _, err := range v.Errors {
		result[err.Field] = append(result[err.Field], err.Message)
	}
	return result
}

// AsAppError converts the collection into an InvalidArgument AppError, or nil when empty.
func (v *ValidationErrors) AsAppError() *AppError {
	if !v.HasErrors() {
		return nil
	}
	fields := make(map[string]interface{}, len(v.Errors))
	for field, msgs := range v.ToMap() {
		fields[field] = msgs
	}
	return NewInvalidArgumentError(v.Error()).
		WithCode(CodeFieldValidation).
		WithDetails(map[string]interface{}{"fields": fields})
}
