package valueobjects

import (
	"encoding/json"

	apperrors "socialhub/pkg/errors"

	"github.com/google/uuid"
)

// IdentityID identifies an account. Identities are issued by the external
// identity store, so any non-empty opaque string is accepted.
type IdentityID string

// PostID identifies a post
type PostID string

// CommentID identifies a comment within a post
type CommentID string

// NotificationID identifies a notification record
type NotificationID string

// NewPostID creates a new random PostID
func NewPostID() PostID { return PostID(uuid.New().String()) }

// NewCommentID creates a new random CommentID
func NewCommentID() CommentID { return CommentID(uuid.New().String()) }

// NewNotificationID creates a new random NotificationID
func NewNotificationID() NotificationID { return NotificationID(uuid.New().String()) }

// ParseIdentityID validates a caller-supplied identity id
func ParseIdentityID(s string) (IdentityID, error) {
	if s == "" {
		return "", invalidID("identity id")
	}
	return IdentityID(s), nil
}

// ParsePostID validates a caller-supplied post id
func ParsePostID(s string) (PostID, error) {
	if !isValidUUID(s) {
		return "", invalidID("post id")
	}
	return PostID(s), nil
}

// ParseCommentID validates a caller-supplied comment id
func ParseCommentID(s string) (CommentID, error) {
	if !isValidUUID(s) {
		return "", invalidID("comment id")
	}
	return CommentID(s), nil
}

// ParseNotificationID validates a caller-supplied notification id
func ParseNotificationID(s string) (NotificationID, error) {
	if !isValidUUID(s) {
		return "", invalidID("notification id")
	}
	return NotificationID(s), nil
}

func (id IdentityID) String() string     { return string(id) }
func (id PostID) String() string         { return string(id) }
func (id CommentID) String() string      { return string(id) }
func (id NotificationID) String() string { return string(id) }

// IsZero checks if the IdentityID is the zero value
func (id IdentityID) IsZero() bool { return id == "" }

// IsZero checks if the PostID is the zero value
func (id PostID) IsZero() bool { return id == "" }

// UnmarshalJSON rejects empty identity ids in request bodies
func (id *IdentityID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseIdentityID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func invalidID(what string) error {
	return apperrors.NewInvalidArgumentError(what + " is malformed").WithCode(apperrors.CodeInvalidID)
}

func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
