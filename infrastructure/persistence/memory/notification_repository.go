package memory

import (
	"context"
	"sort"
	"sync"

	"socialhub/domain/core/entities"
	"socialhub/domain/core/valueobjects"
	apperrors "socialhub/pkg/errors"
)

// NotificationRepository is an in-memory ports.NotificationRepository
type NotificationRepository struct {
	mu          sync.RWMutex
	byID        map[valueobjects.NotificationID]*entities.Notification
	byRecipient map[valueobjects.IdentityID][]valueobjects.NotificationID
}

// NewNotificationRepository creates an empty repository
func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{
		byID:        make(map[valueobjects.NotificationID]*entities.Notification),
		byRecipient: make(map[valueobjects.IdentityID][]valueobjects.NotificationID),
	}
}

func (r *NotificationRepository) Create(ctx context.Context, n *entities.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if _, exists := r.byID[n.ID]; exists {
		return apperrors.NewConflictError("notification already exists")
	}
	r.byID[n.ID] = n.Clone()
	r.byRecipient[n.Recipient] = append(r.byRecipient[n.Recipient], n.ID)
	return nil
}

func (r *NotificationRepository) Get(ctx context.Context, id valueobjects.NotificationID) (*entities.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, ok := r.byID[id]
	if !ok {
		return nil, apperrors.ErrNotificationNotFound(id.String())
	}
	return n.Clone(), nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id valueobjects.NotificationID) (*entities.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.byID[id]
	if !ok {
		return nil, apperrors.ErrNotificationNotFound(id.String())
	}
	n.MarkRead()
	return n.Clone(), nil
}

func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipient valueobjects.IdentityID) ([]*entities.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.byRecipient[recipient]
	out := make([]*entities.Notification, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		out = append(out, r.byID[ids[i]].Clone())
	}
	// stable sort keeps later inserts first among equal timestamps
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, recipient valueobjects.IdentityID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, id := range r.byRecipient[recipient] {
		if !r.byID[id].IsRead {
			count++
		}
	}
	return count, nil
}
