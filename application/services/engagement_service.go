package services

import (
	"context"

	"socialhub/application/ports"
	"socialhub/domain/config"
	"socialhub/domain/core/aggregates"
	"socialhub/domain/core/entities"
	"socialhub/domain/core/valueobjects"
	apperrors "socialhub/pkg/errors"
	"socialhub/pkg/observability"
	"socialhub/pkg/utils"

	"go.uber.org/zap"
)

// EngagementService records likes and comments on posts. Every mutation
// goes through the post repository's transactional Update.
type EngagementService struct {
	posts      ports.PostRepository
	identities ports.IdentityStore
	notifier   Notifier
	publisher  ports.EventPublisher
	settings   ports.Settings
	domainCfg  *config.DomainConfig
	clock      utils.Clock
	logger     *zap.Logger
	metrics    *observability.Collector
}

// NewEngagementService creates a new engagement service
func NewEngagementService(
	posts ports.PostRepository,
	identities ports.IdentityStore,
	notifier Notifier,
	publisher ports.EventPublisher,
	settings ports.Settings,
	domainCfg *config.DomainConfig,
	clock utils.Clock,
	logger *zap.Logger,
	metrics *observability.Collector,
) *EngagementService {
	if clock == nil {
		clock = utils.SystemClock{}
	}
	if domainCfg == nil {
		domainCfg = config.DefaultDomainConfig()
	}
	if settings == nil {
		settings = ports.StaticSettings{SelfCommentNotifications: true}
	}
	return &EngagementService{
		posts:      posts,
		identities: identities,
		notifier:   notifier,
		publisher:  publisher,
		settings:   settings,
		domainCfg:  domainCfg,
		clock:      clock,
		logger:     logger,
		metrics:    metrics,
	}
}

// ToggleLike flips identity's membership in the post's like set. The author
// is notified only when a like is added by someone else.
func (s *EngagementService) ToggleLike(ctx context.Context, postID valueobjects.PostID, identity valueobjects.IdentityID) (*LikeResult, error) {
	return s.changeLike(ctx, postID, identity, func(p *aggregates.Post) bool {
		p.ToggleLike(identity, s.clock.Now())
		return true
	})
}

// Like ensures identity is in the like set
func (s *EngagementService) Like(ctx context.Context, postID valueobjects.PostID, identity valueobjects.IdentityID) (*LikeResult, error) {
	return s.changeLike(ctx, postID, identity, func(p *aggregates.Post) bool {
		return p.AddLike(identity, s.clock.Now())
	})
}

// Unlike ensures identity is not in the like set
func (s *EngagementService) Unlike(ctx context.Context, postID valueobjects.PostID, identity valueobjects.IdentityID) (*LikeResult, error) {
	return s.changeLike(ctx, postID, identity, func(p *aggregates.Post) bool {
		return p.RemoveLike(identity, s.clock.Now())
	})
}

func (s *EngagementService) changeLike(
	ctx context.Context,
	postID valueobjects.PostID,
	identity valueobjects.IdentityID,
	apply func(p *aggregates.Post) bool,
) (*LikeResult, error) {
	if err := s.requireIdentity(ctx, identity); err != nil {
		return nil, err
	}

	var before bool
	post, err := s.posts.Update(ctx, postID, func(p *aggregates.Post) error {
		before = p.HasLiked(identity)
		apply(p)
		return nil
	})
	if err != nil {
		return nil, err
	}

	liked := post.HasLiked(identity)
	if liked != before {
		transition := "removed"
		if liked {
			transition = "added"
		}
		if s.metrics != nil {
			s.metrics.LikeToggles.WithLabelValues(transition).Inc()
		}
		s.logger.Debug("Like changed",
			zap.String("postID", postID.String()),
			zap.String("identity", identity.String()),
			zap.String("transition", transition),
		)
		if liked && identity != post.Author() {
			notify(ctx, s.notifier, s.logger, s.metrics, Trigger{
				Type:          entities.NotificationLike,
				Sender:        identity,
				Recipient:     post.Author(),
				SubjectPostID: &postID,
			})
		}
		publish(ctx, s.publisher, s.logger, post.GetUncommittedEvents()...)
	}

	return &LikeResult{Liked: liked, LikesCount: post.LikesCount()}, nil
}

// AddComment appends a comment and notifies the post author. Whether an
// author commenting on their own post is notified follows the
// notify_self_comment setting.
func (s *EngagementService) AddComment(ctx context.Context, postID valueobjects.PostID, identity valueobjects.IdentityID, text string) (*entities.Comment, error) {
	body, err := valueobjects.NewCommentTextWithConfig(text, s.domainCfg)
	if err != nil {
		return nil, err
	}
	if err := s.requireIdentity(ctx, identity); err != nil {
		return nil, err
	}

	var comment entities.Comment
	post, err := s.posts.Update(ctx, postID, func(p *aggregates.Post) error {
		comment = p.AddComment(identity, body, s.clock.Now())
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.Comments.WithLabelValues("added").Inc()
	}
	s.logger.Debug("Comment added",
		zap.String("postID", postID.String()),
		zap.String("commentID", comment.ID.String()),
		zap.String("author", identity.String()),
	)

	if identity != post.Author() || s.settings.NotifySelfComment() {
		notify(ctx, s.notifier, s.logger, s.metrics, Trigger{
			Type:          entities.NotificationComment,
			Sender:        identity,
			Recipient:     post.Author(),
			SubjectPostID: &postID,
		})
	}
	publish(ctx, s.publisher, s.logger, post.GetUncommittedEvents()...)

	return &comment, nil
}

// DeleteComment removes one comment. Only the comment's author may remove it.
func (s *EngagementService) DeleteComment(ctx context.Context, postID valueobjects.PostID, commentID valueobjects.CommentID, requester valueobjects.IdentityID) (*PostView, error) {
	post, err := s.posts.Update(ctx, postID, func(p *aggregates.Post) error {
		return p.DeleteComment(commentID, requester, s.clock.Now())
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.Comments.WithLabelValues("deleted").Inc()
	}
	publish(ctx, s.publisher, s.logger, post.GetUncommittedEvents()...)

	view := NewPostView(post)
	return &view, nil
}

// Counts returns the post's like and comment counts
func (s *EngagementService) Counts(ctx context.Context, postID valueobjects.PostID) (EngagementCounts, error) {
	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		return EngagementCounts{}, err
	}
	return EngagementCounts{LikesCount: post.LikesCount(), CommentsCount: post.CommentsCount()}, nil
}

func (s *EngagementService) requireIdentity(ctx context.Context, id valueobjects.IdentityID) error {
	ok, err := s.identities.Exists(ctx, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to look up identity")
	}
	if !ok {
		return apperrors.ErrIdentityNotFound(id.String())
	}
	return nil
}
