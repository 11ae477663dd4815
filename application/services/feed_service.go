package services

import (
	"context"
	"sort"

	"socialhub/application/ports"
	"socialhub/domain/core/aggregates"
	"socialhub/domain/core/valueobjects"
	"socialhub/pkg/common"
	apperrors "socialhub/pkg/errors"

	"go.uber.org/zap"
)

// FeedService assembles paginated post streams
type FeedService struct {
	posts    ports.PostRepository
	follows  ports.FollowRepository
	settings ports.Settings
	logger   *zap.Logger
}

// NewFeedService creates a new feed service
func NewFeedService(posts ports.PostRepository, follows ports.FollowRepository, settings ports.Settings, logger *zap.Logger) *FeedService {
	if settings == nil {
		settings = ports.StaticSettings{}
	}
	return &FeedService{posts: posts, follows: follows, settings: settings, logger: logger}
}

// GetFeed returns posts authored by identities the viewer follows.
// recent orders by creation time, newest first. popular orders by like
// count, then creation time, then id, so every page boundary is stable.
func (s *FeedService) GetFeed(ctx context.Context, viewer valueobjects.IdentityID, mode valueobjects.SortMode, params common.PaginationParams) (*common.Page[PostView], error) {
	if _, err := valueobjects.ParseSortMode(string(mode)); err != nil {
		return nil, err
	}
	if err := s.validatePage(params); err != nil {
		return nil, err
	}

	following, err := s.follows.Following(ctx, viewer)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load following set")
	}
	if len(following) == 0 {
		return common.EmptyPage[PostView](params), nil
	}

	posts, err := s.posts.ListByAuthors(ctx, following)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load feed posts")
	}
	SortPosts(posts, mode)

	s.logger.Debug("Feed assembled",
		zap.String("viewer", viewer.String()),
		zap.String("sort", string(mode)),
		zap.Int("candidates", len(posts)),
	)
	return paginateViews(posts, params), nil
}

// GetPosts lists posts matching filter, newest first. A tag filter matches
// posts sharing at least one tag.
func (s *FeedService) GetPosts(ctx context.Context, filter ports.PostFilter, params common.PaginationParams) (*common.Page[PostView], error) {
	if err := s.validatePage(params); err != nil {
		return nil, err
	}
	filter.Tags = valueobjects.NormalizeTags(filter.Tags)

	posts, err := s.posts.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list posts")
	}
	SortPosts(posts, valueobjects.SortRecent)
	return paginateViews(posts, params), nil
}

func (s *FeedService) validatePage(params common.PaginationParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	if params.PageSize > s.settings.MaxPageSize() {
		return apperrors.NewInvalidArgumentError("page size exceeds maximum").
			WithCode(apperrors.CodeInvalidPagination).
			WithDetails(map[string]interface{}{"max_page_size": s.settings.MaxPageSize()})
	}
	return nil
}

// SortPosts orders posts in place for mode
func SortPosts(posts []*aggregates.Post, mode valueobjects.SortMode) {
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i], posts[j]
		if mode == valueobjects.SortPopular && a.LikesCount() != b.LikesCount() {
			return a.LikesCount() > b.LikesCount()
		}
		if !a.CreatedAt().Equal(b.CreatedAt()) {
			return a.CreatedAt().After(b.CreatedAt())
		}
		return a.ID() < b.ID()
	})
}

func paginateViews(posts []*aggregates.Post, params common.PaginationParams) *common.Page[PostView] {
	page := common.Paginate(posts, params)
	views := make([]PostView, len(page.Items))
	for i, p := range page.Items {
		views[i] = NewPostView(p)
	}
	return &common.Page[PostView]{
		Items:       views,
		TotalCount:  page.TotalCount,
		TotalPages:  page.TotalPages,
		CurrentPage: page.CurrentPage,
		PageSize:    page.PageSize,
	}
}
