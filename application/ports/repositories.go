package ports

import (
	"context"
	"time"

	"socialhub/domain/core/aggregates"
	"socialhub/domain/core/entities"
	"socialhub/domain/core/valueobjects"
	"socialhub/domain/events"
)

// IdentityStore reads account summaries owned by the external identity
// store. GetIdentity returns a NotFound AppError for unknown ids.
type IdentityStore interface {
	GetIdentity(ctx context.Context, id valueobjects.IdentityID) (*entities.Identity, error)

	// GetIdentities returns the identities that exist; unknown ids are omitted
	GetIdentities(ctx context.Context, ids []valueobjects.IdentityID) (map[valueobjects.IdentityID]*entities.Identity, error)

	Exists(ctx context.Context, id valueobjects.IdentityID) (bool, error)
	SaveIdentity(ctx context.Context, identity *entities.Identity) error
	DeleteIdentity(ctx context.Context, id valueobjects.IdentityID) error
}

// FollowRepository persists follow edges. Every method that changes an edge
// updates both the follower's following view and the followee's follower
// view in one atomic step, or neither.
type FollowRepository interface {
	// Toggle creates the edge if absent, removes it if present, and reports
	// whether the edge exists afterwards
	Toggle(ctx context.Context, edge entities.FollowEdge) (bool, error)

	// Create adds the edge; it reports false if the edge already existed
	Create(ctx context.Context, edge entities.FollowEdge) (bool, error)

	// Delete removes the edge; it reports false if there was no edge
	Delete(ctx context.Context, follower, followee valueobjects.IdentityID) (bool, error)

	Exists(ctx context.Context, follower, followee valueobjects.IdentityID) (bool, error)
	Counts(ctx context.Context, id valueobjects.IdentityID) (entities.FollowCounts, error)
	Following(ctx context.Context, id valueobjects.IdentityID) ([]valueobjects.IdentityID, error)
	Followers(ctx context.Context, id valueobjects.IdentityID) ([]valueobjects.IdentityID, error)
}

// PostFilter selects posts for listing. Zero values match everything.
type PostFilter struct {
	Author *valueobjects.IdentityID
	Tags   []string
}

// PostRepository persists post aggregates
type PostRepository interface {
	Save(ctx context.Context, post *aggregates.Post) error

	// Get returns a private copy of the post or a NotFound AppError
	Get(ctx context.Context, id valueobjects.PostID) (*aggregates.Post, error)

	// Update runs mutate against a private copy and commits the copy only if
	// mutate returns nil and ctx is still live. The committed post, with its
	// uncommitted events, is returned. A concurrent writer surfaces as a
	// Conflict AppError.
	Update(ctx context.Context, id valueobjects.PostID, mutate func(*aggregates.Post) error) (*aggregates.Post, error)

	Delete(ctx context.Context, id valueobjects.PostID) error
	ListByAuthors(ctx context.Context, authors []valueobjects.IdentityID) ([]*aggregates.Post, error)

	// List returns posts matching filter, newest first
	List(ctx context.Context, filter PostFilter) ([]*aggregates.Post, error)
}

// NotificationRepository is append-only apart from the read flag
type NotificationRepository interface {
	Create(ctx context.Context, n *entities.Notification) error
	Get(ctx context.Context, id valueobjects.NotificationID) (*entities.Notification, error)

	// MarkRead sets the read flag and returns the updated record
	MarkRead(ctx context.Context, id valueobjects.NotificationID) (*entities.Notification, error)

	// ListByRecipient returns the recipient's notifications, newest first
	ListByRecipient(ctx context.Context, recipient valueobjects.IdentityID) ([]*entities.Notification, error)

	CountUnread(ctx context.Context, recipient valueobjects.IdentityID) (int, error)
}

// PairLocker serializes work on one key across callers
type PairLocker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// SessionDirectory resolves the live connections of an identity
type SessionDirectory interface {
	SessionsFor(identity valueobjects.IdentityID) []string
}

// Pusher sends a payload to one live connection
type Pusher interface {
	Push(ctx context.Context, connectionID string, payload []byte) error
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// Cache stores serialized values with a TTL
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
