package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"socialhub/application/ports"
	"socialhub/domain/core/aggregates"
	"socialhub/domain/core/valueobjects"
	apperrors "socialhub/pkg/errors"
)

// PostRepository is an in-memory ports.PostRepository. Stored posts are
// never handed out; callers always receive copies.
type PostRepository struct {
	mu    sync.RWMutex
	posts map[valueobjects.PostID]*aggregates.Post
}

// NewPostRepository creates an empty repository
func NewPostRepository() *PostRepository {
	return &PostRepository{posts: make(map[valueobjects.PostID]*aggregates.Post)}
}

func (r *PostRepository) Save(ctx context.Context, post *aggregates.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	r.posts[post.ID()] = post.Clone()
	return nil
}

func (r *PostRepository) Get(ctx context.Context, id valueobjects.PostID) (*aggregates.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	post, ok := r.posts[id]
	if !ok {
		return nil, apperrors.ErrPostNotFound(id.String())
	}
	return post.Clone(), nil
}

func (r *PostRepository) Update(ctx context.Context, id valueobjects.PostID, mutate func(*aggregates.Post) error) (*aggregates.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.posts[id]
	if !ok {
		return nil, apperrors.ErrPostNotFound(id.String())
	}

	working := stored.Clone()
	if err := mutate(working); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if working.Version() != stored.Version() {
		r.posts[id] = working.Clone()
	}
	return working, nil
}

func (r *PostRepository) Delete(ctx context.Context, id valueobjects.PostID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.posts[id]; !ok {
		return apperrors.ErrPostNotFound(id.String())
	}
	delete(r.posts, id)
	return nil
}

func (r *PostRepository) ListByAuthors(ctx context.Context, authors []valueobjects.IdentityID) ([]*aggregates.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*aggregates.Post
	for _, post := range r.posts {
		if slices.Contains(authors, post.Author()) {
			out = append(out, post.Clone())
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *PostRepository) List(ctx context.Context, filter ports.PostFilter) ([]*aggregates.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*aggregates.Post
	for _, post := range r.posts {
		if filter.Author != nil && post.Author() != *filter.Author {
			continue
		}
		if len(filter.Tags) > 0 && !post.HasAnyTag(filter.Tags) {
			continue
		}
		out = append(out, post.Clone())
	}
	sortNewestFirst(out)
	return out, nil
}

func sortNewestFirst(posts []*aggregates.Post) {
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt().Equal(posts[j].CreatedAt()) {
			return posts[i].CreatedAt().After(posts[j].CreatedAt())
		}
		return posts[i].ID() < posts[j].ID()
	})
}
