package services

import (
	"context"

	"socialhub/application/ports"
	"socialhub/application/sagas"
	"socialhub/domain/core/entities"
	"socialhub/domain/core/valueobjects"
	"socialhub/domain/events"
	apperrors "socialhub/pkg/errors"
	"socialhub/pkg/observability"
	"socialhub/pkg/utils"

	"go.uber.org/zap"
)

// SocialGraphService manages directed follow edges between identities.
// Mutations on the same ordered pair are serialized by the pair locker;
// unrelated pairs proceed independently.
type SocialGraphService struct {
	follows    ports.FollowRepository
	identities ports.IdentityStore
	locker     ports.PairLocker
	notifier   Notifier
	publisher  ports.EventPublisher
	clock      utils.Clock
	logger     *zap.Logger
	metrics    *observability.Collector

	// invalidate drops cached identity data after removal; optional
	invalidate func(ctx context.Context, id valueobjects.IdentityID)
}

// NewSocialGraphService creates a new social graph service
func NewSocialGraphService(
	follows ports.FollowRepository,
	identities ports.IdentityStore,
	locker ports.PairLocker,
	notifier Notifier,
	publisher ports.EventPublisher,
	clock utils.Clock,
	logger *zap.Logger,
	metrics *observability.Collector,
) *SocialGraphService {
	if clock == nil {
		clock = utils.SystemClock{}
	}
	return &SocialGraphService{
		follows:    follows,
		identities: identities,
		locker:     locker,
		notifier:   notifier,
		publisher:  publisher,
		clock:      clock,
		logger:     logger,
		metrics:    metrics,
	}
}

// OnIdentityRemoved registers a hook run after RemoveIdentity succeeds
func (s *SocialGraphService) OnIdentityRemoved(fn func(ctx context.Context, id valueobjects.IdentityID)) {
	s.invalidate = fn
}

// ToggleFollow creates the edge follower -> followee if absent and removes
// it if present. Only creation notifies the followee.
func (s *SocialGraphService) ToggleFollow(ctx context.Context, follower, followee valueobjects.IdentityID) (*FollowResult, error) {
	return s.mutate(ctx, follower, followee, func(edge entities.FollowEdge) (bool, bool, error) {
		now, err := s.follows.Toggle(ctx, edge)
		return now, true, err
	})
}

// Follow ensures the edge exists. Repeating it changes nothing and does not
// notify again.
func (s *SocialGraphService) Follow(ctx context.Context, follower, followee valueobjects.IdentityID) (*FollowResult, error) {
	return s.mutate(ctx, follower, followee, func(edge entities.FollowEdge) (bool, bool, error) {
		created, err := s.follows.Create(ctx, edge)
		return true, created, err
	})
}

// Unfollow ensures the edge does not exist
func (s *SocialGraphService) Unfollow(ctx context.Context, follower, followee valueobjects.IdentityID) (*FollowResult, error) {
	return s.mutate(ctx, follower, followee, func(edge entities.FollowEdge) (bool, bool, error) {
		removed, err := s.follows.Delete(ctx, edge.Follower, edge.Followee)
		return false, removed, err
	})
}

// mutate validates the pair, runs apply under the pair lock and reports
// counts after commit. apply returns the resulting edge state and whether
// the state changed.
func (s *SocialGraphService) mutate(
	ctx context.Context,
	follower, followee valueobjects.IdentityID,
	apply func(edge entities.FollowEdge) (following bool, changed bool, err error),
) (*FollowResult, error) {
	edge, err := entities.NewFollowEdge(follower, followee, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.requireIdentities(ctx, follower, followee); err != nil {
		return nil, err
	}

	var following, changed bool
	err = s.withPairLock(ctx, edge, func() error {
		var applyErr error
		following, changed, applyErr = apply(edge)
		if applyErr != nil {
			return apperrors.Wrap(applyErr, "failed to update follow edge")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.afterChange(ctx, edge, following)
	}

	followeeCounts, err := s.follows.Counts(ctx, followee)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to read follower count")
	}
	followerCounts, err := s.follows.Counts(ctx, follower)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to read following count")
	}

	return &FollowResult{
		NowFollowing:   following,
		FollowerCount:  followeeCounts.FollowerCount,
		FollowingCount: followerCounts.FollowingCount,
	}, nil
}

func (s *SocialGraphService) afterChange(ctx context.Context, edge entities.FollowEdge, following bool) {
	transition := "removed"
	evt := events.NewFollowRemoved(edge.Follower.String(), edge.Followee.String(), edge.CreatedAt)
	if following {
		transition = "created"
		evt = events.NewFollowCreated(edge.Follower.String(), edge.Followee.String(), edge.CreatedAt)
	}
	if s.metrics != nil {
		s.metrics.FollowToggles.WithLabelValues(transition).Inc()
	}
	s.logger.Info("Follow edge changed",
		zap.String("follower", edge.Follower.String()),
		zap.String("followee", edge.Followee.String()),
		zap.String("transition", transition),
	)

	if following {
		notify(ctx, s.notifier, s.logger, s.metrics, Trigger{
			Type:      entities.NotificationFollow,
			Sender:    edge.Follower,
			Recipient: edge.Followee,
		})
	}
	publish(ctx, s.publisher, s.logger, evt)
}

// GetCounts returns the identity's follower and following counts
func (s *SocialGraphService) GetCounts(ctx context.Context, id valueobjects.IdentityID) (entities.FollowCounts, error) {
	if err := s.requireIdentities(ctx, id); err != nil {
		return entities.FollowCounts{}, err
	}
	return s.follows.Counts(ctx, id)
}

// IsFollowing reports whether follower currently follows followee
func (s *SocialGraphService) IsFollowing(ctx context.Context, follower, followee valueobjects.IdentityID) (bool, error) {
	return s.follows.Exists(ctx, follower, followee)
}

// Following lists the identities id follows
func (s *SocialGraphService) Following(ctx context.Context, id valueobjects.IdentityID) ([]valueobjects.IdentityID, error) {
	return s.follows.Following(ctx, id)
}

// Followers lists the identities following id
func (s *SocialGraphService) Followers(ctx context.Context, id valueobjects.IdentityID) ([]valueobjects.IdentityID, error) {
	return s.follows.Followers(ctx, id)
}

type removalState struct {
	identity   valueobjects.IdentityID
	outgoing   []entities.FollowEdge
	incoming   []entities.FollowEdge
	removedOut []entities.FollowEdge
	removedIn  []entities.FollowEdge
}

// RemoveIdentity deletes every edge that references id and then the local
// profile record. If any step fails the removed edges are restored.
func (s *SocialGraphService) RemoveIdentity(ctx context.Context, id valueobjects.IdentityID) (int, error) {
	if id.IsZero() {
		return 0, apperrors.NewInvalidArgumentError("identity id is required").WithCode(apperrors.CodeInvalidID)
	}

	state := &removalState{identity: id}
	saga := sagas.New[removalState]("remove-identity", s.logger).
		AddStep(sagas.Step[removalState]{
			Name:       "collect-edges",
			MaxRetries: 3,
			Execute:    s.collectEdges,
		}).
		AddStep(sagas.Step[removalState]{
			Name:       "remove-outgoing-edges",
			Execute:    func(ctx context.Context, st *removalState) error { return s.removeEdges(ctx, st.outgoing, &st.removedOut) },
			Compensate: func(ctx context.Context, st *removalState) error { return s.restoreEdges(ctx, st.removedOut) },
		}).
		AddStep(sagas.Step[removalState]{
			Name:       "remove-incoming-edges",
			Execute:    func(ctx context.Context, st *removalState) error { return s.removeEdges(ctx, st.incoming, &st.removedIn) },
			Compensate: func(ctx context.Context, st *removalState) error { return s.restoreEdges(ctx, st.removedIn) },
		}).
		AddStep(sagas.Step[removalState]{
			Name:    "delete-profile",
			Execute: func(ctx context.Context, st *removalState) error { return s.identities.DeleteIdentity(ctx, st.identity) },
		})

	if err := saga.Execute(ctx, state); err != nil {
		return 0, apperrors.Wrap(err, "failed to remove identity")
	}

	removed := len(state.removedOut) + len(state.removedIn)
	if s.invalidate != nil {
		s.invalidate(ctx, id)
	}
	s.logger.Info("Identity removed from social graph",
		zap.String("identity", id.String()),
		zap.Int("edgesRemoved", removed),
	)
	publish(ctx, s.publisher, s.logger, events.NewIdentityRemoved(id.String(), removed, s.clock.Now()))
	return removed, nil
}

func (s *SocialGraphService) collectEdges(ctx context.Context, st *removalState) error {
	now := s.clock.Now()
	following, err := s.follows.Following(ctx, st.identity)
	if err != nil {
		return err
	}
	followers, err := s.follows.Followers(ctx, st.identity)
	if err != nil {
		return err
	}
	st.outgoing = st.outgoing[:0]
	for _, other := range following {
		st.outgoing = append(st.outgoing, entities.FollowEdge{Follower: st.identity, Followee: other, CreatedAt: now})
	}
	st.incoming = st.incoming[:0]
	for _, other := range followers {
		st.incoming = append(st.incoming, entities.FollowEdge{Follower: other, Followee: st.identity, CreatedAt: now})
	}
	return nil
}

func (s *SocialGraphService) removeEdges(ctx context.Context, edges []entities.FollowEdge, removed *[]entities.FollowEdge) error {
	for _, edge := range edges {
		err := s.withPairLock(ctx, edge, func() error {
			ok, err := s.follows.Delete(ctx, edge.Follower, edge.Followee)
			if ok {
				*removed = append(*removed, edge)
			}
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *SocialGraphService) restoreEdges(ctx context.Context, edges []entities.FollowEdge) error {
	ctx = context.WithoutCancel(ctx)
	var firstErr error
	for _, edge := range edges {
		err := s.withPairLock(ctx, edge, func() error {
			_, err := s.follows.Create(ctx, edge)
			return err
		})
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// withPairLock runs fn holding the lock for the edge's follower/followee pair. The
// lock is released even if fn panics.
func (s *SocialGraphService) withPairLock(ctx context.Context, edge entities.FollowEdge, fn func() error) error {
	unlock, err := s.locker.Lock(ctx, edge.Key())
	if err != nil {
		return apperrors.Wrap(err, "failed to acquire follow lock")
	}
	defer unlock()
	return fn()
}

func (s *SocialGraphService) requireIdentities(ctx context.Context, ids ...valueobjects.IdentityID) error {
	for _, id := range ids {
		ok, err := s.identities.Exists(ctx, id)
		if err != nil {
			return apperrors.Wrap(err, "failed to look up identity")
		}
		if !ok {
			return apperrors.ErrIdentityNotFound(id.String())
		}
	}
	return nil
}

// notify emits a trigger after a committed mutation, detached from the
// caller's cancellation. A failure is logged and counted; the mutation stands.
func notify(ctx context.Context, notifier Notifier, logger *zap.Logger, metrics *observability.Collector, trigger Trigger) {
	if notifier == nil {
		return
	}
	if _, err := notifier.Emit(context.WithoutCancel(ctx), trigger); err != nil {
		if metrics != nil {
			metrics.NotificationFailures.WithLabelValues(string(trigger.Type)).Inc()
		}
		logger.Error("Failed to create notification",
			zap.String("type", string(trigger.Type)),
			zap.String("sender", trigger.Sender.String()),
			zap.String("recipient", trigger.Recipient.String()),
			zap.Error(err),
		)
	}
}
