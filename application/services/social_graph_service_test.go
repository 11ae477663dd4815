package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"socialhub/domain/core/entities"
	"socialhub/domain/core/valueobjects"
	"socialhub/infrastructure/persistence/memory"
	apperrors "socialhub/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestToggleFollowParity(t *testing.T) {
	f := newFixture(t, nil, "alice", "bob")
	ctx := context.Background()

	for n := 1; n <= 6; n++ {
		res, err := f.graph.ToggleFollow(ctx, "alice", "bob")
		require.NoError(t, err)

		following, _ := f.graph.IsFollowing(ctx, "alice", "bob")
		assert.Equal(t, n%2 == 1, following, "after %d toggles", n)
		assert.Equal(t, following, res.NowFollowing)

		expected := 0
		if following {
			expected = 1
		}
		assert.Equal(t, expected, res.FollowerCount)
		assert.Equal(t, expected, res.FollowingCount)
	}

	// only the three absent->present transitions notify
	assert.Len(t, f.notificationsFor(t, "bob"), 3)
}

func TestToggleFollowSelfIsInvalid(t *testing.T) {
	f := newFixture(t, nil, "alice")

	_, err := f.graph.ToggleFollow(context.Background(), "alice", "alice")
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidArgument(err))

	counts, _ := f.graph.GetCounts(context.Background(), "alice")
	assert.Equal(t, entities.FollowCounts{}, counts)
	assert.Empty(t, f.notificationsFor(t, "alice"))
}

func TestToggleFollowUnknownIdentity(t *testing.T) {
	f := newFixture(t, nil, "alice")

	_, err := f.graph.ToggleFollow(context.Background(), "alice", "ghost")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestFollowIsIdempotent(t *testing.T) {
	f := newFixture(t, nil, "alice", "bob")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := f.graph.Follow(ctx, "alice", "bob")
		require.NoError(t, err)
		assert.True(t, res.NowFollowing)
		assert.Equal(t, 1, res.FollowerCount)
	}
	assert.Len(t, f.notificationsFor(t, "bob"), 1)

	for i := 0; i < 2; i++ {
		res, err := f.graph.Unfollow(ctx, "alice", "bob")
		require.NoError(t, err)
		assert.False(t, res.NowFollowing)
		assert.Equal(t, 0, res.FollowerCount)
	}
}

func TestFollowerCountMatchesDistinctFollowers(t *testing.T) {
	users := []string{"star"}
	for i := 0; i < 20; i++ {
		users = append(users, fmt.Sprintf("fan%d", i))
	}
	f := newFixture(t, nil, users...)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		for rep := 0; rep < 3; rep++ {
			wg.Add(1)
			go func(fan string) {
				defer wg.Done()
				_, err := f.graph.ToggleFollow(ctx, valueobjects.IdentityID(fan), "star")
				assert.NoError(t, err)
			}(fmt.Sprintf("fan%d", i))
		}
	}
	wg.Wait()

	// three toggles each: every fan ends up following
	counts, err := f.graph.GetCounts(ctx, "star")
	require.NoError(t, err)
	followers, _ := f.graph.Followers(ctx, "star")
	assert.Equal(t, 20, counts.FollowerCount)
	assert.Len(t, followers, 20)
}

func TestRemoveIdentityCascades(t *testing.T) {
	f := newFixture(t, nil, "alice", "bob", "carol")
	ctx := context.Background()

	_, _ = f.graph.Follow(ctx, "alice", "bob")
	_, _ = f.graph.Follow(ctx, "bob", "alice")
	_, _ = f.graph.Follow(ctx, "carol", "alice")
	_, _ = f.graph.Follow(ctx, "bob", "carol")

	removed, err := f.graph.RemoveIdentity(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	bob, _ := f.follows.Counts(ctx, "bob")
	assert.Equal(t, entities.FollowCounts{FollowerCount: 0, FollowingCount: 1}, bob)
	carol, _ := f.follows.Counts(ctx, "carol")
	assert.Equal(t, entities.FollowCounts{FollowerCount: 1, FollowingCount: 0}, carol)

	exists, _ := f.identities.Exists(ctx, "alice")
	assert.False(t, exists)
}

// panickyFollows panics on the first Toggle and delegates afterwards
type panickyFollows struct {
	*memory.FollowRepository
	once sync.Once
}

func (p *panickyFollows) Toggle(ctx context.Context, edge entities.FollowEdge) (bool, error) {
	p.once.Do(func() { panic("storage exploded") })
	return p.FollowRepository.Toggle(ctx, edge)
}

type recordingLocker struct {
	*memory.PairLocker
	mu   sync.Mutex
	keys []string
}

func (l *recordingLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	l.keys = append(l.keys, key)
	l.mu.Unlock()
	return l.PairLocker.Lock(ctx, key)
}

func TestToggleFollowReleasesLockAfterPanic(t *testing.T) {
	f := newFixture(t, nil, "alice", "bob")
	follows := &panickyFollows{FollowRepository: f.follows}
	graph := NewSocialGraphService(follows, f.identities, memory.NewPairLocker(1), f.notificationSvc, f.publisher, f.clock, zap.NewNop(), nil)
	ctx := context.Background()

	assert.Panics(t, func() { _, _ = graph.ToggleFollow(ctx, "alice", "bob") })

	done := make(chan error, 1)
	go func() {
		_, err := graph.ToggleFollow(ctx, "alice", "bob")
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("follow lock was not released after panic")
	}

	following, err := f.graph.IsFollowing(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.True(t, following)
}

func TestRestoreEdgesTakesPairLock(t *testing.T) {
	f := newFixture(t, nil, "alice", "bob", "carol")
	locker := &recordingLocker{PairLocker: memory.NewPairLocker(16)}
	graph := NewSocialGraphService(f.follows, f.identities, locker, f.notificationSvc, f.publisher, f.clock, zap.NewNop(), nil)

	ab, err := entities.NewFollowEdge("alice", "bob", f.clock.Now())
	require.NoError(t, err)
	cb, err := entities.NewFollowEdge("carol", "bob", f.clock.Now())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, graph.restoreEdges(ctx, []entities.FollowEdge{ab, cb}))

	assert.Equal(t, []string{ab.Key(), cb.Key()}, locker.keys)
	for _, follower := range []valueobjects.IdentityID{"alice", "carol"} {
		ok, err := f.follows.Exists(context.Background(), follower, "bob")
		require.NoError(t, err)
		assert.True(t, ok)
	}
}
