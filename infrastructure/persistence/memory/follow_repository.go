package memory

import (
	"context"
	"sort"
	"sync"

	"socialhub/domain/core/entities"
	"socialhub/domain/core/valueobjects"
)

type idSet map[valueobjects.IdentityID]struct{}

// FollowRepository keeps one record per edge plus two adjacency indexes.
// All three are changed under a single lock so the following view and the
// follower view can never disagree.
type FollowRepository struct {
	mu        sync.RWMutex
	edges     map[string]entities.FollowEdge
	following map[valueobjects.IdentityID]idSet
	followers map[valueobjects.IdentityID]idSet
}

// NewFollowRepository creates an empty follow graph
func NewFollowRepository() *FollowRepository {
	return &FollowRepository{
		edges:     make(map[string]entities.FollowEdge),
		following: make(map[valueobjects.IdentityID]idSet),
		followers: make(map[valueobjects.IdentityID]idSet),
	}
}

func (r *FollowRepository) Toggle(ctx context.Context, edge entities.FollowEdge) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return false, err
	}
	if _, ok := r.edges[edge.Key()]; ok {
		r.unlink(edge.Follower, edge.Followee)
		return false, nil
	}
	r.link(edge)
	return true, nil
}

func (r *FollowRepository) Create(ctx context.Context, edge entities.FollowEdge) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return false, err
	}
	if _, ok := r.edges[edge.Key()]; ok {
		return false, nil
	}
	r.link(edge)
	return true, nil
}

func (r *FollowRepository) Delete(ctx context.Context, follower, followee valueobjects.IdentityID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return false, err
	}
	if _, ok := r.edges[entities.PairKey(follower, followee)]; !ok {
		return false, nil
	}
	r.unlink(follower, followee)
	return true, nil
}

func (r *FollowRepository) Exists(ctx context.Context, follower, followee valueobjects.IdentityID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.edges[entities.PairKey(follower, followee)]
	return ok, nil
}

func (r *FollowRepository) Counts(ctx context.Context, id valueobjects.IdentityID) (entities.FollowCounts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return entities.FollowCounts{
		FollowerCount:  len(r.followers[id]),
		FollowingCount: len(r.following[id]),
	}, nil
}

func (r *FollowRepository) Following(ctx context.Context, id valueobjects.IdentityID) ([]valueobjects.IdentityID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedIDs(r.following[id]), nil
}

func (r *FollowRepository) Followers(ctx context.Context, id valueobjects.IdentityID) ([]valueobjects.IdentityID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedIDs(r.followers[id]), nil
}

func (r *FollowRepository) link(edge entities.FollowEdge) {
	r.edges[edge.Key()] = edge
	if r.following[edge.Follower] == nil {
		r.following[edge.Follower] = make(idSet)
	}
	if r.followers[edge.Followee] == nil {
		r.followers[edge.Followee] = make(idSet)
	}
	r.following[edge.Follower][edge.Followee] = struct{}{}
	r.followers[edge.Followee][edge.Follower] = struct{}{}
}

func (r *FollowRepository) unlink(follower, followee valueobjects.IdentityID) {
	delete(r.edges, entities.PairKey(follower, followee))
	delete(r.following[follower], followee)
	delete(r.followers[followee], follower)
	if len(r.following[follower]) == 0 {
		delete(r.following, follower)
	}
	if len(r.followers[followee]) == 0 {
		delete(r.followers, followee)
	}
}

func sortedIDs(set idSet) []valueobjects.IdentityID {
	out := make([]valueobjects.IdentityID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
