package services

import (
	"context"

	"socialhub/application/ports"
	"socialhub/domain/config"
	"socialhub/domain/core/aggregates"
	"socialhub/domain/core/validators"
	"socialhub/domain/core/valueobjects"
	apperrors "socialhub/pkg/errors"
	"socialhub/pkg/utils"

	"go.uber.org/zap"
)

// PostService creates, reads, edits and deletes posts
type PostService struct {
	posts      ports.PostRepository
	identities ports.IdentityStore
	publisher  ports.EventPublisher
	validator  *validators.PostValidator
	domainCfg  *config.DomainConfig
	clock      utils.Clock
	logger     *zap.Logger
}

// NewPostService creates a new post service
func NewPostService(
	posts ports.PostRepository,
	identities ports.IdentityStore,
	publisher ports.EventPublisher,
	validator *validators.PostValidator,
	domainCfg *config.DomainConfig,
	clock utils.Clock,
	logger *zap.Logger,
) *PostService {
	if domainCfg == nil {
		domainCfg = config.DefaultDomainConfig()
	}
	if validator == nil {
		validator = validators.NewPostValidator(domainCfg)
	}
	if clock == nil {
		clock = utils.SystemClock{}
	}
	return &PostService{
		posts:      posts,
		identities: identities,
		publisher:  publisher,
		validator:  validator,
		domainCfg:  domainCfg,
		clock:      clock,
		logger:     logger,
	}
}

// CreatePost validates and stores a new post by author
func (s *PostService) CreatePost(ctx context.Context, author valueobjects.IdentityID, title, content string, tags []string) (*PostView, error) {
	body, err := s.content(title, content, tags)
	if err != nil {
		return nil, err
	}

	ok, err := s.identities.Exists(ctx, author)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to look up author")
	}
	if !ok {
		return nil, apperrors.ErrIdentityNotFound(author.String())
	}

	post, err := aggregates.NewPost(author, body, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.posts.Save(ctx, post); err != nil {
		return nil, apperrors.Wrap(err, "failed to save post")
	}

	s.logger.Info("Post created",
		zap.String("postID", post.ID().String()),
		zap.String("author", author.String()),
		zap.Strings("tags", post.Tags()),
	)
	publish(ctx, s.publisher, s.logger, post.GetUncommittedEvents()...)
	post.MarkEventsAsCommitted()

	view := NewPostView(post)
	return &view, nil
}

// GetPost returns a post with its counts
func (s *PostService) GetPost(ctx context.Context, id valueobjects.PostID) (*PostView, error) {
	post, err := s.posts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	view := NewPostView(post)
	return &view, nil
}

// PostEdit is a partial post update. Nil fields keep their current value;
// a non-nil empty Tags clears the tags.
type PostEdit struct {
	Title   *string
	Content *string
	Tags    *[]string
}

// UpdatePost applies edit to a post. Only its author may edit it.
func (s *PostService) UpdatePost(ctx context.Context, id valueobjects.PostID, requester valueobjects.IdentityID, edit PostEdit) (*PostView, error) {
	post, err := s.posts.Update(ctx, id, func(p *aggregates.Post) error {
		if err := p.CheckAuthor(requester, "update"); err != nil {
			return err
		}

		title, content, tags := p.Title(), p.Content(), p.Tags()
		if edit.Title != nil {
			title = *edit.Title
		}
		if edit.Content != nil {
			content = *edit.Content
		}
		if edit.Tags != nil {
			tags = *edit.Tags
		}

		body, err := s.content(title, content, tags)
		if err != nil {
			return err
		}
		return p.Edit(requester, body, s.clock.Now())
	})
	if err != nil {
		return nil, err
	}

	if updated := post.GetUncommittedEvents(); len(updated) > 0 {
		s.logger.Info("Post updated",
			zap.String("postID", id.String()),
			zap.Int("version", post.Version()),
		)
		publish(ctx, s.publisher, s.logger, updated...)
		post.MarkEventsAsCommitted()
	}

	view := NewPostView(post)
	return &view, nil
}

// DeletePost removes a post. Only its author may delete it.
func (s *PostService) DeletePost(ctx context.Context, id valueobjects.PostID, requester valueobjects.IdentityID) error {
	post, err := s.posts.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := post.MarkDeleted(requester, s.clock.Now()); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Post deleted", zap.String("postID", id.String()))
	publish(ctx, s.publisher, s.logger, post.GetUncommittedEvents()...)
	return nil
}

func (s *PostService) content(title, content string, tags []string) (valueobjects.PostContent, error) {
	body, err := valueobjects.NewPostContentWithConfig(title, content, tags, s.domainCfg)
	if err != nil {
		return valueobjects.PostContent{}, err
	}
	if err := s.validator.ValidateTags(body.Tags()); err != nil {
		return valueobjects.PostContent{}, err
	}
	if err := s.validator.ValidateText("title", body.Title()); err != nil {
		return valueobjects.PostContent{}, err
	}
	if err := s.validator.ValidateText("content", body.Content()); err != nil {
		return valueobjects.PostContent{}, err
	}
	return body, nil
}
