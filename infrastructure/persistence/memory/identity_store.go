package memory

import (
	"context"
	"sync"

	"socialhub/domain/core/entities"
	"socialhub/domain/core/valueobjects"
	apperrors "socialhub/pkg/errors"
)

// IdentityStore is an in-memory ports.IdentityStore
type IdentityStore struct {
	mu         sync.RWMutex
	identities map[valueobjects.IdentityID]entities.Identity
}

// NewIdentityStore creates an empty store
func NewIdentityStore() *IdentityStore {
	return &IdentityStore{identities: make(map[valueobjects.IdentityID]entities.Identity)}
}

func (s *IdentityStore) GetIdentity(ctx context.Context, id valueobjects.IdentityID) (*entities.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	identity, ok := s.identities[id]
	if !ok {
		return nil, apperrors.ErrIdentityNotFound(id.String())
	}
	return &identity, nil
}

func (s *IdentityStore) GetIdentities(ctx context.Context, ids []valueobjects.IdentityID) (map[valueobjects.IdentityID]*entities.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[valueobjects.IdentityID]*entities.Identity, len(ids))
	for _, id := range ids {
		if identity, ok := s.identities[id]; ok {
			out[id] = &identity
		}
	}
	return out, nil
}

func (s *IdentityStore) Exists(ctx context.Context, id valueobjects.IdentityID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.identities[id]
	return ok, nil
}

func (s *IdentityStore) SaveIdentity(ctx context.Context, identity *entities.Identity) error {
	if identity.ID.IsZero() {
		return apperrors.NewInvalidArgumentError("identity id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.identities[identity.ID] = *identity
	return nil
}

func (s *IdentityStore) DeleteIdentity(ctx context.Context, id valueobjects.IdentityID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.identities, id)
	return nil
}
