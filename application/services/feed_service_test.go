package services

import (
	"context"
	"fmt"
	"math"
	"testing"

	"socialhub/application/ports"
	"socialhub/domain/core/valueobjects"
	"socialhub/pkg/common"
	apperrors "socialhub/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedOnlyFolloweesNewestFirst(t *testing.T) {
	f := newFixture(t, nil, "viewer", "a", "b", "stranger")
	ctx := context.Background()

	_, _ = f.graph.Follow(ctx, "viewer", "a")
	_, _ = f.graph.Follow(ctx, "viewer", "b")

	p1 := f.post(t, "a")
	f.post(t, "stranger")
	p2 := f.post(t, "b")
	p3 := f.post(t, "a")

	page, err := f.feed.GetFeed(ctx, "viewer", valueobjects.SortRecent, common.PaginationParams{Page: 1, PageSize: 10})
	require.NoError(t, err)

	ids := make([]valueobjects.PostID, len(page.Items))
	for i, item := range page.Items {
		ids[i] = item.ID
		assert.NotEqual(t, valueobjects.IdentityID("stranger"), item.Author)
	}
	assert.Equal(t, []valueobjects.PostID{p3, p2, p1}, ids)
	assert.Equal(t, 3, page.TotalCount)
}

func TestFeedPopularOrdering(t *testing.T) {
	f := newFixture(t, nil, "viewer", "a", "l1", "l2", "l3", "l4", "l5")
	ctx := context.Background()
	_, _ = f.graph.Follow(ctx, "viewer", "a")

	older := f.post(t, "a")
	newer := f.post(t, "a")
	low := f.post(t, "a")

	like := func(post valueobjects.PostID, n int) {
		for i := 1; i <= n; i++ {
			_, err := f.engagement.Like(ctx, post, valueobjects.IdentityID(fmt.Sprintf("l%d", i)))
			require.NoError(t, err)
		}
	}
	like(older, 5)
	like(newer, 5)
	like(low, 2)

	page, err := f.feed.GetFeed(ctx, "viewer", valueobjects.SortPopular, common.PaginationParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)

	assert.Equal(t, newer, page.Items[0].ID)
	assert.Equal(t, older, page.Items[1].ID)
	assert.Equal(t, low, page.Items[2].ID)
	assert.Equal(t, []int{5, 5, 2}, []int{page.Items[0].LikesCount, page.Items[1].LikesCount, page.Items[2].LikesCount})
}

func TestFeedEmptyFollowingSet(t *testing.T) {
	f := newFixture(t, nil, "viewer")

	page, err := f.feed.GetFeed(context.Background(), "viewer", valueobjects.SortRecent, common.PaginationParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.TotalCount)
}

func TestFeedRejectsBadInput(t *testing.T) {
	f := newFixture(t, nil, "viewer")
	ctx := context.Background()

	_, err := f.feed.GetFeed(ctx, "viewer", "trending", common.PaginationParams{Page: 1, PageSize: 10})
	assert.True(t, apperrors.IsInvalidArgument(err))

	_, err = f.feed.GetFeed(ctx, "viewer", valueobjects.SortRecent, common.PaginationParams{Page: 0, PageSize: 10})
	assert.True(t, apperrors.IsInvalidArgument(err))

	_, err = f.feed.GetFeed(ctx, "viewer", valueobjects.SortRecent, common.PaginationParams{Page: 1, PageSize: -3})
	assert.True(t, apperrors.IsInvalidArgument(err))

	_, err = f.feed.GetFeed(ctx, "viewer", valueobjects.SortRecent, common.PaginationParams{Page: 1, PageSize: 1000})
	assert.True(t, apperrors.IsInvalidArgument(err))
}

func TestGetPostsSecondPage(t *testing.T) {
	f := newFixture(t, nil, "author")
	for i := 0; i < 15; i++ {
		f.post(t, "author")
	}

	page, err := f.feed.GetPosts(context.Background(), ports.PostFilter{}, common.PaginationParams{Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, page.Items, 5)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 15, page.TotalCount)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, 10, page.PageSize)
}

func TestGetPostsByTag(t *testing.T) {
	f := newFixture(t, nil, "author")
	ctx := context.Background()

	tagged, err := f.postSvc.CreatePost(ctx, "author", "t", "c", []string{"Go", "db"})
	require.NoError(t, err)
	_, err = f.postSvc.CreatePost(ctx, "author", "t", "c", []string{"rust"})
	require.NoError(t, err)

	page, err := f.feed.GetPosts(ctx, ports.PostFilter{Tags: []string{" GO "}}, common.PaginationParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, tagged.ID, page.Items[0].ID)
}

func TestGetPostsHugePageIsEmpty(t *testing.T) {
	f := newFixture(t, nil, "author", "viewer")
	ctx := context.Background()
	f.post(t, "author")
	_, _ = f.graph.Follow(ctx, "viewer", "author")

	params := common.PaginationParams{Page: math.MaxInt/10 + 2, PageSize: 10}

	page, err := f.feed.GetPosts(ctx, ports.PostFilter{}, params)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.TotalCount)
	assert.Equal(t, params.Page, page.CurrentPage)

	feed, err := f.feed.GetFeed(ctx, "viewer", valueobjects.SortRecent, params)
	require.NoError(t, err)
	assert.Empty(t, feed.Items)
}
