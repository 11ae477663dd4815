package dynamodb

import (
	"context"
	"sort"
	"time"

	"socialhub/application/ports"
	"socialhub/domain/core/aggregates"
	"socialhub/domain/core/valueobjects"
	apperrors "socialhub/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

const maxUpdateAttempts = 3

// PostRepository stores each post, with its like set and comment list, in
// one item guarded by an optimistic Version attribute
type PostRepository struct {
	table *Table
}

// NewPostRepository creates a post repository over table
func NewPostRepository(table *Table) *PostRepository {
	return &PostRepository{table: table}
}

func (r *PostRepository) Save(ctx context.Context, post *aggregates.Post) error {
	av, err := attributevalue.MarshalMap(newPostItem(post))
	if err != nil {
		return apperrors.NewDatabaseError("SavePost", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	_, err = r.table.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table.Name),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	r.table.observe("SavePost", start, err)
	return mapError("SavePost", err)
}

func (r *PostRepository) Get(ctx context.Context, id valueobjects.PostID) (*aggregates.Post, error) {
	start := time.Now()
	out, err := r.table.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.table.Name),
		Key:            key(postPK(id), skMetadata),
		ConsistentRead: aws.Bool(true),
	})
	r.table.observe("GetPost", start, err)
	if err != nil {
		return nil, mapError("GetPost", err)
	}
	if out.Item == nil {
		return nil, apperrors.ErrPostNotFound(id.String())
	}

	var item postItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, apperrors.NewDatabaseError("GetPost", err)
	}
	return item.toAggregate(), nil
}

// Update re-reads and re-applies mutate when another writer got in first,
// up to maxUpdateAttempts times, then reports a Conflict
func (r *PostRepository) Update(ctx context.Context, id valueobjects.PostID, mutate func(*aggregates.Post) error) (*aggregates.Post, error) {
	for attempt := 1; ; attempt++ {
		post, err := r.Get(ctx, id)
		if err != nil {
			return nil, err
		}

		expected := post.Version()
		if err := mutate(post); err != nil {
			return nil, err
		}
		if post.Version() == expected {
			return post, nil
		}

		err = r.putVersioned(ctx, post, expected)
		if err == nil {
			return post, nil
		}
		if !apperrors.IsConflict(err) || attempt >= maxUpdateAttempts {
			return nil, err
		}

		r.table.Logger.Debug("Retrying post update after concurrent write",
			zap.String("postID", id.String()),
			zap.Int("attempt", attempt),
		)
	}
}

func (r *PostRepository) putVersioned(ctx context.Context, post *aggregates.Post, expected int) error {
	av, err := attributevalue.MarshalMap(newPostItem(post))
	if err != nil {
		return apperrors.NewDatabaseError("UpdatePost", err)
	}

	cond := expression.Name("Version").Equal(expression.Value(expected))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return apperrors.NewInternalError("failed to build post condition").WithCause(err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	_, err = r.table.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(r.table.Name),
		Item:                      av,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	r.table.observe("UpdatePost", start, err)
	if isConditionFailed(err) {
		return apperrors.ErrConcurrentModification("post").WithCause(err)
	}
	return mapError("UpdatePost", err)
}

func (r *PostRepository) Delete(ctx context.Context, id valueobjects.PostID) error {
	start := time.Now()
	_, err := r.table.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.table.Name),
		Key:                 key(postPK(id), skMetadata),
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	r.table.observe("DeletePost", start, err)
	if isConditionFailed(err) {
		return apperrors.ErrPostNotFound(id.String())
	}
	return mapError("DeletePost", err)
}

func (r *PostRepository) ListByAuthors(ctx context.Context, authors []valueobjects.IdentityID) ([]*aggregates.Post, error) {
	var out []*aggregates.Post
	for _, author := range authors {
		posts, err := r.byAuthor(ctx, author, expression.ConditionBuilder{})
		if err != nil {
			return nil, err
		}
		out = append(out, posts...)
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *PostRepository) List(ctx context.Context, filter ports.PostFilter) ([]*aggregates.Post, error) {
	tagCond := tagCondition(filter.Tags)

	if filter.Author != nil {
		posts, err := r.byAuthor(ctx, *filter.Author, tagCond)
		if err != nil {
			return nil, err
		}
		sortNewestFirst(posts)
		return posts, nil
	}

	cond := expression.Name("EntityType").Equal(expression.Value(entityPost))
	if tagCond.IsSet() {
		cond = cond.And(tagCond)
	}
	expr, err := expression.NewBuilder().WithFilter(cond).Build()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build post scan").WithCause(err)
	}

	var out []*aggregates.Post
	paginator := dynamodb.NewScanPaginator(r.table.Client, &dynamodb.ScanInput{
		TableName:                 aws.String(r.table.Name),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	for paginator.HasMorePages() {
		start := time.Now()
		page, err := paginator.NextPage(ctx)
		r.table.observe("ListPosts", start, err)
		if err != nil {
			return nil, mapError("ListPosts", err)
		}
		posts, err := unmarshalPosts(page.Items, "ListPosts")
		if err != nil {
			return nil, err
		}
		out = append(out, posts...)
	}

	sortNewestFirst(out)
	return out, nil
}

func (r *PostRepository) byAuthor(ctx context.Context, author valueobjects.IdentityID, filter expression.ConditionBuilder) ([]*aggregates.Post, error) {
	builder := expression.NewBuilder().
		WithKeyCondition(expression.Key("GSI1PK").Equal(expression.Value(prefixAuthor + author.String())))
	if filter.IsSet() {
		builder = builder.WithFilter(filter)
	}
	expr, err := builder.Build()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build author query").WithCause(err)
	}

	var out []*aggregates.Post
	paginator := dynamodb.NewQueryPaginator(r.table.Client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.table.Name),
		IndexName:                 aws.String(r.table.IndexName),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
	})
	for paginator.HasMorePages() {
		start := time.Now()
		page, err := paginator.NextPage(ctx)
		r.table.observe("PostsByAuthor", start, err)
		if err != nil {
			return nil, mapError("PostsByAuthor", err)
		}
		posts, err := unmarshalPosts(page.Items, "PostsByAuthor")
		if err != nil {
			return nil, err
		}
		out = append(out, posts...)
	}
	return out, nil
}

// tagCondition matches posts carrying any of tags; it is unset for no tags
func tagCondition(tags []string) expression.ConditionBuilder {
	var cond expression.ConditionBuilder
	for i, tag := range tags {
		c := expression.Name("Tags").Contains(tag)
		if i == 0 {
			cond = c
			continue
		}
		cond = cond.Or(c)
	}
	return cond
}

func unmarshalPosts(items []map[string]types.AttributeValue, op string) ([]*aggregates.Post, error) {
	var batch []postItem
	if err := attributevalue.UnmarshalListOfMaps(items, &batch); err != nil {
		return nil, apperrors.NewDatabaseError(op, err)
	}
	out := make([]*aggregates.Post, len(batch))
	for i, item := range batch {
		out[i] = item.toAggregate()
	}
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
