package dynamodb

import (
	"context"
	"time"

	"socialhub/domain/core/entities"
	"socialhub/domain/core/valueobjects"
	apperrors "socialhub/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// FollowRepository stores each edge once, addressable from both ends through
// GSI1. The edge write and both profile counters change in one transaction.
type FollowRepository struct {
	table *Table
}

// NewFollowRepository creates a follow repository over table
func NewFollowRepository(table *Table) *FollowRepository {
	return &FollowRepository{table: table}
}

func (r *FollowRepository) Toggle(ctx context.Context, edge entities.FollowEdge) (bool, error) {
	exists, err := r.Exists(ctx, edge.Follower, edge.Followee)
	if err != nil {
		return false, err
	}

	if exists {
		removed, err := r.Delete(ctx, edge.Follower, edge.Followee)
		if err != nil {
			return false, err
		}
		if !removed {
			return false, apperrors.ErrConcurrentModification("follow edge")
		}
		return false, nil
	}

	created, err := r.Create(ctx, edge)
	if err != nil {
		return false, err
	}
	if !created {
		return false, apperrors.ErrConcurrentModification("follow edge")
	}
	return true, nil
}

func (r *FollowRepository) Create(ctx context.Context, edge entities.FollowEdge) (bool, error) {
	av, err := attributevalue.MarshalMap(newEdgeItem(edge))
	if err != nil {
		return false, apperrors.NewDatabaseError("CreateFollow", err)
	}

	put := types.TransactWriteItem{Put: &types.Put{
		TableName:           aws.String(r.table.Name),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	}}

	followingUpdate, err := r.counterUpdate(edge.Follower, "FollowingCount", 1)
	if err != nil {
		return false, err
	}
	followerUpdate, err := r.counterUpdate(edge.Followee, "FollowerCount", 1)
	if err != nil {
		return false, err
	}

	reasons, err := r.transact(ctx, "CreateFollow", put, followingUpdate, followerUpdate)
	switch {
	case err != nil:
		return false, err
	case reasons == nil:
		r.table.Logger.Debug("Follow edge created",
			zap.String("follower", edge.Follower.String()),
			zap.String("followee", edge.Followee.String()),
		)
		return true, nil
	case reasons[0] == reasonConditionalCheckFailed:
		return false, nil
	case reasons[1] == reasonConditionalCheckFailed:
		return false, apperrors.ErrIdentityNotFound(edge.Follower.String())
	case reasons[2] == reasonConditionalCheckFailed:
		return false, apperrors.ErrIdentityNotFound(edge.Followee.String())
	default:
		return false, apperrors.ErrConcurrentModification("follow edge")
	}
}

// Delete removes the edge. A counter whose profile has already been deleted
// is skipped so edges of removed identities can still be cleaned up.
func (r *FollowRepository) Delete(ctx context.Context, follower, followee valueobjects.IdentityID) (bool, error) {
	del := types.TransactWriteItem{Delete: &types.Delete{
		TableName:           aws.String(r.table.Name),
		Key:                 key(userPK(follower), prefixFollowing+followee.String()),
		ConditionExpression: aws.String("attribute_exists(PK)"),
	}}

	followingUpdate, err := r.counterUpdate(follower, "FollowingCount", -1)
	if err != nil {
		return false, err
	}
	followerUpdate, err := r.counterUpdate(followee, "FollowerCount", -1)
	if err != nil {
		return false, err
	}

	items := []types.TransactWriteItem{del, followingUpdate, followerUpdate}
	for attempt := 0; attempt < 2; attempt++ {
		reasons, err := r.transact(ctx, "DeleteFollow", items...)
		if err != nil {
			return false, err
		}
		if reasons == nil {
			r.table.Logger.Debug("Follow edge removed",
				zap.String("follower", follower.String()),
				zap.String("followee", followee.String()),
			)
			return true, nil
		}
		if reasons[0] == reasonConditionalCheckFailed {
			return false, nil
		}

		kept := []types.TransactWriteItem{del}
		for i := 1; i < len(items); i++ {
			if reasons[i] != reasonConditionalCheckFailed {
				kept = append(kept, items[i])
			}
		}
		if len(kept) == len(items) {
			break
		}
		items = kept
	}
	return false, apperrors.ErrConcurrentModification("follow edge")
}

// counterUpdate adjusts one profile counter, requiring the profile to exist
func (r *FollowRepository) counterUpdate(id valueobjects.IdentityID, attr string, delta int) (types.TransactWriteItem, error) {
	expr, err := expression.NewBuilder().
		WithUpdate(expression.Add(expression.Name(attr), expression.Value(delta))).
		WithCondition(expression.AttributeExists(expression.Name("PK"))).
		Build()
	if err != nil {
		return types.TransactWriteItem{}, apperrors.NewInternalError("failed to build counter update").WithCause(err)
	}

	return types.TransactWriteItem{Update: &types.Update{
		TableName:                 aws.String(r.table.Name),
		Key:                       key(userPK(id), skProfile),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}}, nil
}

// transact commits items. A cancelled transaction is not an error: its
// per-item reasons are returned for the caller to interpret.
func (r *FollowRepository) transact(ctx context.Context, op string, items ...types.TransactWriteItem) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	_, err := r.table.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	r.table.observe(op, start, err)
	if err == nil {
		return nil, nil
	}

	if reasons := cancellationReasons(err); len(reasons) == len(items) {
		return reasons, nil
	}
	return nil, mapError(op, err)
}

func (r *FollowRepository) Exists(ctx context.Context, follower, followee valueobjects.IdentityID) (bool, error) {
	start := time.Now()
	out, err := r.table.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:            aws.String(r.table.Name),
		Key:                  key(userPK(follower), prefixFollowing+followee.String()),
		ConsistentRead:       aws.Bool(true),
		ProjectionExpression: aws.String("PK"),
	})
	r.table.observe("FollowExists", start, err)
	if err != nil {
		return false, mapError("FollowExists", err)
	}
	return out.Item != nil, nil
}

func (r *FollowRepository) Counts(ctx context.Context, id valueobjects.IdentityID) (entities.FollowCounts, error) {
	start := time.Now()
	out, err := r.table.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.table.Name),
		Key:            key(userPK(id), skProfile),
		ConsistentRead: aws.Bool(true),
	})
	r.table.observe("FollowCounts", start, err)
	if err != nil {
		return entities.FollowCounts{}, mapError("FollowCounts", err)
	}
	if out.Item == nil {
		return entities.FollowCounts{}, nil
	}

	var item identityItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return entities.FollowCounts{}, apperrors.NewDatabaseError("FollowCounts", err)
	}
	return entities.FollowCounts{
		FollowerCount:  item.FollowerCount,
		FollowingCount: item.FollowingCount,
	}, nil
}

func (r *FollowRepository) Following(ctx context.Context, id valueobjects.IdentityID) ([]valueobjects.IdentityID, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(userPK(id))).
		And(expression.Key("SK").BeginsWith(prefixFollowing))

	edges, err := r.queryEdges(ctx, "Following", keyCond, nil)
	if err != nil {
		return nil, err
	}
	out := make([]valueobjects.IdentityID, len(edges))
	for i, e := range edges {
		out[i] = idFromSK(e.SK, prefixFollowing)
	}
	return out, nil
}

func (r *FollowRepository) Followers(ctx context.Context, id valueobjects.IdentityID) ([]valueobjects.IdentityID, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(userPK(id))).
		And(expression.Key("GSI1SK").BeginsWith(prefixFollower))

	edges, err := r.queryEdges(ctx, "Followers", keyCond, aws.String(r.table.IndexName))
	if err != nil {
		return nil, err
	}
	out := make([]valueobjects.IdentityID, len(edges))
	for i, e := range edges {
		out[i] = idFromSK(e.GSI1SK, prefixFollower)
	}
	return out, nil
}

func (r *FollowRepository) queryEdges(ctx context.Context, op string, keyCond expression.KeyConditionBuilder, index *string) ([]edgeItem, error) {
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build edge query").WithCause(err)
	}

	var edges []edgeItem
	paginator := dynamodb.NewQueryPaginator(r.table.Client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.table.Name),
		IndexName:                 index,
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	for paginator.HasMorePages() {
		start := time.Now()
		page, err := paginator.NextPage(ctx)
		r.table.observe(op, start, err)
		if err != nil {
			return nil, mapError(op, err)
		}

		var batch []edgeItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, apperrors.NewDatabaseError(op, err)
		}
		edges = append(edges, batch...)
	}
	return edges, nil
}
