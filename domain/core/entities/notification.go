package entities

import (
	"time"

	"socialhub/domain/core/valueobjects"
	apperrors "socialhub/pkg/errors"
)

// NotificationType is the trigger that produced a notification
type NotificationType string

const (
	NotificationLike    NotificationType = "like"
	NotificationComment NotificationType = "comment"
	NotificationFollow  NotificationType = "follow"
)

// Valid reports whether t is a known notification type
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationLike, NotificationComment, NotificationFollow:
		return true
	}
	return false
}

// Notification is a durable record that something happened to the recipient
type Notification struct {
	ID            valueobjects.NotificationID `json:"id"`
	Type          NotificationType            `json:"type"`
	Sender        valueobjects.IdentityID     `json:"sender"`
	Recipient     valueobjects.IdentityID     `json:"recipient"`
	SubjectPostID *valueobjects.PostID        `json:"subjectPostId,omitempty"`
	IsRead        bool                        `json:"isRead"`
	CreatedAt     time.Time                   `json:"createdAt"`
}

// NewNotification builds an unread notification. Like and comment
// notifications must reference a post; follow notifications must not.
func NewNotification(
	notifType NotificationType,
	sender, recipient valueobjects.IdentityID,
	subject *valueobjects.PostID,
	now time.Time,
) (*Notification, error) {
	if !notifType.Valid() {
		return nil, apperrors.NewInvalidArgumentError("unknown notification type: " + string(notifType))
	}
	if sender.IsZero() || recipient.IsZero() {
		return nil, apperrors.NewInvalidArgumentError("sender and recipient are required")
	}
	if notifType == NotificationFollow {
		subject = nil
	} else if subject == nil || subject.IsZero() {
		return nil, apperrors.NewInvalidArgumentError(string(notifType) + " notification requires a post")
	}

	return &Notification{
		ID:            valueobjects.NewNotificationID(),
		Type:          notifType,
		Sender:        sender,
		Recipient:     recipient,
		SubjectPostID: subject,
		CreatedAt:     now,
	}, nil
}

// MarkRead sets IsRead. It never resets a read notification and reports
// whether the flag changed.
func (n *Notification) MarkRead() bool {
	if n.IsRead {
		return false
	}
	n.IsRead = true
	return true
}

// Clone returns a deep copy
func (n *Notification) Clone() *Notification {
	c := *n
	if n.SubjectPostID != nil {
		id := *n.SubjectPostID
		c.SubjectPostID = &id
	}
	return &c
}
