package aggregates

import (
	"slices"
	"sort"
	"time"

	"socialhub/domain/core/entities"
	"socialhub/domain/core/valueobjects"
	"socialhub/domain/events"
	apperrors "socialhub/pkg/errors"
)

// Post is the aggregate root for a post and its engagement. It owns the like
// set and the comment list; counts are always derived from them.
type Post struct {
	id        valueobjects.PostID
	author    valueobjects.IdentityID
	title     string
	content   string
	tags      []string
	likes     map[valueobjects.IdentityID]struct{}
	comments  []entities.Comment
	createdAt time.Time
	updatedAt time.Time
	version   int
	events    []events.DomainEvent
}

// PostSnapshot is the flat, persistence-friendly form of a Post
type PostSnapshot struct {
	ID        valueobjects.PostID       `json:"id"`
	Author    valueobjects.IdentityID   `json:"author"`
	Title     string                    `json:"title"`
	Content   string                    `json:"content"`
	Tags      []string                  `json:"tags"`
	Likes     []valueobjects.IdentityID `json:"likes"`
	Comments  []entities.Comment        `json:"comments"`
	CreatedAt time.Time                 `json:"createdAt"`
	UpdatedAt time.Time                 `json:"updatedAt"`
	Version   int                       `json:"version"`
}

// NewPost creates a post with an empty like set and comment list
func NewPost(author valueobjects.IdentityID, content valueobjects.PostContent, now time.Time) (*Post, error) {
	if author.IsZero() {
		return nil, apperrors.NewInvalidArgumentError("author is required")
	}

	p := &Post{
		id:        valueobjects.NewPostID(),
		author:    author,
		title:     content.Title(),
		content:   content.Content(),
		tags:      content.Tags(),
		likes:     make(map[valueobjects.IdentityID]struct{}),
		comments:  []entities.Comment{},
		createdAt: now,
		updatedAt: now,
		version:   1,
	}
	p.addEvent(events.NewPostCreated(p.id.String(), author.String(), p.tags, now))
	return p, nil
}

// ReconstructPost rebuilds a post from stored data. Duplicate likers collapse
// into a single membership.
func ReconstructPost(s PostSnapshot) *Post {
	p := &Post{
		id:        s.ID,
		author:    s.Author,
		title:     s.Title,
		content:   s.Content,
		tags:      slices.Clone(s.Tags),
		likes:     make(map[valueobjects.IdentityID]struct{}, len(s.Likes)),
		comments:  slices.Clone(s.Comments),
		createdAt: s.CreatedAt,
		updatedAt: s.UpdatedAt,
		version:   s.Version,
	}
	if p.tags == nil {
		p.tags = []string{}
	}
	if p.comments == nil {
		p.comments = []entities.Comment{}
	}
	for _, id := range s.Likes {
		p.likes[id] = struct{}{}
	}
	return p
}

// Snapshot returns the persistence form. Likers are sorted for stable output.
func (p *Post) Snapshot() PostSnapshot {
	return PostSnapshot{
		ID:        p.id,
		Author:    p.author,
		Title:     p.title,
		Content:   p.content,
		Tags:      slices.Clone(p.tags),
		Likes:     p.Likers(),
		Comments:  p.Comments(),
		CreatedAt: p.createdAt,
		UpdatedAt: p.updatedAt,
		Version:   p.version,
	}
}

// Clone returns an independent copy without pending events
func (p *Post) Clone() *Post {
	return ReconstructPost(p.Snapshot())
}

func (p *Post) ID() valueobjects.PostID         { return p.id }
func (p *Post) Author() valueobjects.IdentityID { return p.author }
func (p *Post) Title() string                   { return p.title }
func (p *Post) Content() string                 { return p.content }
func (p *Post) CreatedAt() time.Time            { return p.createdAt }
func (p *Post) UpdatedAt() time.Time            { return p.updatedAt }

// Version increases on every state change and backs optimistic locking
func (p *Post) Version() int { return p.version }

// Tags returns a copy of the post's tags
func (p *Post) Tags() []string { return slices.Clone(p.tags) }

// HasAnyTag reports whether any of tags is on the post
func (p *Post) HasAnyTag(tags []string) bool {
	for _, t := range tags {
		if slices.Contains(p.tags, t) {
			return true
		}
	}
	return false
}

// LikesCount is the size of the like set
func (p *Post) LikesCount() int { return len(p.likes) }

// CommentsCount is the length of the comment list
func (p *Post) CommentsCount() int { return len(p.comments) }

// HasLiked reports like set membership
func (p *Post) HasLiked(id valueobjects.IdentityID) bool {
	_, ok := p.likes[id]
	return ok
}

// Likers returns the like set in sorted order
func (p *Post) Likers() []valueobjects.IdentityID {
	out := make([]valueobjects.IdentityID, 0, len(p.likes))
	for id := range p.likes {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Comments returns the comments in commit order
func (p *Post) Comments() []entities.Comment {
	return slices.Clone(p.comments)
}

// ToggleLike flips membership of id and returns the new state
func (p *Post) ToggleLike(id valueobjects.IdentityID, now time.Time) bool {
	if p.HasLiked(id) {
		p.RemoveLike(id, now)
		return false
	}
	p.AddLike(id, now)
	return true
}

// AddLike inserts id into the like set. It reports whether the set changed.
func (p *Post) AddLike(id valueobjects.IdentityID, now time.Time) bool {
	if p.HasLiked(id) {
		return false
	}
	p.likes[id] = struct{}{}
	p.touch(now)
	p.addEvent(events.NewPostLiked(p.id.String(), id.String(), len(p.likes), now))
	return true
}

// RemoveLike deletes id from the like set. It reports whether the set changed.
func (p *Post) RemoveLike(id valueobjects.IdentityID, now time.Time) bool {
	if !p.HasLiked(id) {
		return false
	}
	delete(p.likes, id)
	p.touch(now)
	p.addEvent(events.NewPostUnliked(p.id.String(), id.String(), len(p.likes), now))
	return true
}

// AddComment appends a comment at the tail of the list
func (p *Post) AddComment(author valueobjects.IdentityID, text valueobjects.CommentText, now time.Time) entities.Comment {
	c := entities.NewComment(author, text, now)
	p.comments = append(p.comments, c)
	p.touch(now)
	p.addEvent(events.NewCommentAdded(p.id.String(), c.ID.String(), author.String(), now))
	return c
}

// DeleteComment removes exactly one comment. Only its author may remove it.
func (p *Post) DeleteComment(commentID valueobjects.CommentID, requester valueobjects.IdentityID, now time.Time) error {
	idx := slices.IndexFunc(p.comments, func(c entities.Comment) bool { return c.ID == commentID })
	if idx < 0 {
		return apperrors.ErrCommentNotFound(p.id.String(), commentID.String())
	}
	if p.comments[idx].Author != requester {
		return apperrors.NewForbiddenError("only the comment author can delete this comment").
			WithCode(apperrors.CodeNotCommentAuthor)
	}

	p.comments = slices.Delete(p.comments, idx, idx+1)
	p.touch(now)
	p.addEvent(events.NewCommentDeleted(p.id.String(), commentID.String(), requester.String(), now))
	return nil
}

// CheckAuthor returns Forbidden unless requester wrote the post
func (p *Post) CheckAuthor(requester valueobjects.IdentityID, action string) error {
	if requester != p.author {
		return apperrors.NewForbiddenError("only the post author can " + action + " this post").
			WithCode(apperrors.CodeNotPostAuthor)
	}
	return nil
}

// Edit replaces title, content and tags. Only the author may edit. An edit
// that changes nothing leaves the version untouched.
func (p *Post) Edit(requester valueobjects.IdentityID, content valueobjects.PostContent, now time.Time) error {
	if err := p.CheckAuthor(requester, "update"); err != nil {
		return err
	}
	if content.Title() == p.title && content.Content() == p.content && slices.Equal(content.Tags(), p.tags) {
		return nil
	}

	p.title = content.Title()
	p.content = content.Content()
	p.tags = content.Tags()
	p.touch(now)
	p.addEvent(events.NewPostUpdated(p.id.String(), p.author.String(), p.tags, now))
	return nil
}

// MarkDeleted records the deletion event. Only the author may delete a post.
func (p *Post) MarkDeleted(requester valueobjects.IdentityID, now time.Time) error {
	if err := p.CheckAuthor(requester, "delete"); err != nil {
		return err
	}
	p.addEvent(events.NewPostDeleted(p.id.String(), p.author.String(), now))
	return nil
}

// GetUncommittedEvents returns all uncommitted domain events
func (p *Post) GetUncommittedEvents() []events.DomainEvent {
	return p.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (p *Post) MarkEventsAsCommitted() {
	p.events = nil
}

func (p *Post) touch(now time.Time) {
	p.updatedAt = now
	p.version++
}

func (p *Post) addEvent(event events.DomainEvent) {
	p.events = append(p.events, event)
}
