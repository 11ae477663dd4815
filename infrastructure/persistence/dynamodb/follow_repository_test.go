package dynamodb

import (
	"context"
	"testing"

	"socialhub/domain/core/entities"
	apperrors "socialhub/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func txLen(n int) interface{} {
	return mock.MatchedBy(func(in *dynamodb.TransactWriteItemsInput) bool {
		return len(in.TransactItems) == n
	})
}

func TestFollowRepository_CreateWritesEdgeAndCounters(t *testing.T) {
	table, api := newTestTable(t)
	repo := NewFollowRepository(table)
	edge := entities.FollowEdge{Follower: "alice", Followee: "bob", CreatedAt: t0}

	api.On("TransactWriteItems", mock.Anything, mock.MatchedBy(func(in *dynamodb.TransactWriteItemsInput) bool {
		if len(in.TransactItems) != 3 || in.TransactItems[0].Put == nil {
			return false
		}
		put := in.TransactItems[0].Put.Item
		return put["PK"].(*types.AttributeValueMemberS).Value == "USER#alice" &&
			put["SK"].(*types.AttributeValueMemberS).Value == "FOLLOWING#bob" &&
			put["GSI1PK"].(*types.AttributeValueMemberS).Value == "USER#bob"
	})).Return(&dynamodb.TransactWriteItemsOutput{}, nil).Once()

	created, err := repo.Create(context.Background(), edge)
	require.NoError(t, err)
	assert.True(t, created)
}

func TestFollowRepository_CreateExistingEdge(t *testing.T) {
	table, api := newTestTable(t)
	repo := NewFollowRepository(table)

	api.On("TransactWriteItems", mock.Anything, txLen(3)).
		Return(nil, cancelled(reasonConditionalCheckFailed, reasonNone, reasonNone)).Once()

	created, err := repo.Create(context.Background(), entities.FollowEdge{Follower: "alice", Followee: "bob"})
	require.NoError(t, err)
	assert.False(t, created)
}

func TestFollowRepository_CreateMissingFollowee(t *testing.T) {
	table, api := newTestTable(t)
	repo := NewFollowRepository(table)

	api.On("TransactWriteItems", mock.Anything, txLen(3)).
		Return(nil, cancelled(reasonNone, reasonNone, reasonConditionalCheckFailed)).Once()

	_, err := repo.Create(context.Background(), entities.FollowEdge{Follower: "alice", Followee: "ghost"})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestFollowRepository_CreateRace(t *testing.T) {
	table, api := newTestTable(t)
	repo := NewFollowRepository(table)

	api.On("TransactWriteItems", mock.Anything, txLen(3)).
		Return(nil, cancelled(reasonNone, "TransactionConflict", reasonNone)).Once()

	_, err := repo.Create(context.Background(), entities.FollowEdge{Follower: "alice", Followee: "bob"})
	assert.True(t, apperrors.IsConflict(err))
}

func TestFollowRepository_DeleteSkipsRemovedProfile(t *testing.T) {
	table, api := newTestTable(t)
	repo := NewFollowRepository(table)

	api.On("TransactWriteItems", mock.Anything, txLen(3)).
		Return(nil, cancelled(reasonNone, reasonNone, reasonConditionalCheckFailed)).Once()
	api.On("TransactWriteItems", mock.Anything, txLen(2)).
		Return(&dynamodb.TransactWriteItemsOutput{}, nil).Once()

	removed, err := repo.Delete(context.Background(), "alice", "gone")
	require.NoError(t, err)
	assert.True(t, removed)
}

func TestFollowRepository_DeleteAbsentEdge(t *testing.T) {
	table, api := newTestTable(t)
	repo := NewFollowRepository(table)

	api.On("TransactWriteItems", mock.Anything, txLen(3)).
		Return(nil, cancelled(reasonConditionalCheckFailed, reasonNone, reasonNone)).Once()

	removed, err := repo.Delete(context.Background(), "alice", "bob")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestFollowRepository_CancelledContextNeverCommits(t *testing.T) {
	table, _ := newTestTable(t)
	repo := NewFollowRepository(table)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Create(ctx, entities.FollowEdge{Follower: "alice", Followee: "bob"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFollowRepository_Counts(t *testing.T) {
	table, api := newTestTable(t)
	repo := NewFollowRepository(table)

	api.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{
		Item: map[string]types.AttributeValue{
			"PK":             &types.AttributeValueMemberS{Value: "USER#alice"},
			"SK":             &types.AttributeValueMemberS{Value: "PROFILE"},
			"FollowerCount":  &types.AttributeValueMemberN{Value: "3"},
			"FollowingCount": &types.AttributeValueMemberN{Value: "7"},
		},
	}, nil).Once()
	api.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil).Once()

	counts, err := repo.Counts(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, entities.FollowCounts{FollowerCount: 3, FollowingCount: 7}, counts)

	counts, err = repo.Counts(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Zero(t, counts)
}

func TestFollowRepository_FollowersUsesIndex(t *testing.T) {
	table, api := newTestTable(t)
	repo := NewFollowRepository(table)

	api.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return in.IndexName != nil && *in.IndexName == "GSI1"
	})).Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{
		{
			"PK":     &types.AttributeValueMemberS{Value: "USER#carol"},
			"SK":     &types.AttributeValueMemberS{Value: "FOLLOWING#alice"},
			"GSI1PK": &types.AttributeValueMemberS{Value: "USER#alice"},
			"GSI1SK": &types.AttributeValueMemberS{Value: "FOLLOWER#carol"},
		},
	}}, nil).Once()

	followers, err := repo.Followers(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, "carol", followers[0].String())
}
