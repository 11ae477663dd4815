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

const batchGetLimit = 100

// IdentityStore keeps identity profiles as USER#id / PROFILE items
type IdentityStore struct {
	table *Table
}

// NewIdentityStore creates an identity store over table
func NewIdentityStore(table *Table) *IdentityStore {
	return &IdentityStore{table: table}
}

func (s *IdentityStore) GetIdentity(ctx context.Context, id valueobjects.IdentityID) (*entities.Identity, error) {
	item, err := s.getProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperrors.ErrIdentityNotFound(id.String())
	}
	return item.toEntity(), nil
}

func (s *IdentityStore) getProfile(ctx context.Context, id valueobjects.IdentityID) (*identityItem, error) {
	start := time.Now()
	out, err := s.table.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table.Name),
		Key:       key(userPK(id), skProfile),
	})
	s.table.observe("GetIdentity", start, err)
	if err != nil {
		return nil, mapError("GetIdentity", err)
	}
	if out.Item == nil {
		return nil, nil
	}

	var item identityItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, apperrors.NewDatabaseError("GetIdentity", err)
	}
	return &item, nil
}

func (s *IdentityStore) GetIdentities(ctx context.Context, ids []valueobjects.IdentityID) (map[valueobjects.IdentityID]*entities.Identity, error) {
	result := make(map[valueobjects.IdentityID]*entities.Identity, len(ids))

	seen := make(map[valueobjects.IdentityID]struct{}, len(ids))
	keys := make([]map[string]types.AttributeValue, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		keys = append(keys, key(userPK(id), skProfile))
	}

	for len(keys) > 0 {
		n := min(len(keys), batchGetLimit)
		pending := map[string]types.KeysAndAttributes{
			s.table.Name: {Keys: keys[:n]},
		}
		keys = keys[n:]

		for len(pending) > 0 {
			start := time.Now()
			out, err := s.table.Client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{RequestItems: pending})
			s.table.observe("GetIdentities", start, err)
			if err != nil {
				return nil, mapError("GetIdentities", err)
			}

			var items []identityItem
			if err := attributevalue.UnmarshalListOfMaps(out.Responses[s.table.Name], &items); err != nil {
				return nil, apperrors.NewDatabaseError("GetIdentities", err)
			}
			for _, item := range items {
				identity := item.toEntity()
				result[identity.ID] = identity
			}
			pending = out.UnprocessedKeys
		}
	}
	return result, nil
}

func (s *IdentityStore) Exists(ctx context.Context, id valueobjects.IdentityID) (bool, error) {
	item, err := s.getProfile(ctx, id)
	if err != nil {
		return false, err
	}
	return item != nil, nil
}

// SaveIdentity writes the profile fields and leaves the follow counters alone
func (s *IdentityStore) SaveIdentity(ctx context.Context, identity *entities.Identity) error {
	update := expression.
		Set(expression.Name("EntityType"), expression.Value(entityIdentity)).
		Set(expression.Name("ID"), expression.Value(identity.ID.String())).
		Set(expression.Name("Username"), expression.Value(identity.Username)).
		Set(expression.Name("FirstName"), expression.Value(identity.FirstName)).
		Set(expression.Name("LastName"), expression.Value(identity.LastName)).
		Set(expression.Name("FollowerCount"), expression.IfNotExists(expression.Name("FollowerCount"), expression.Value(0))).
		Set(expression.Name("FollowingCount"), expression.IfNotExists(expression.Name("FollowingCount"), expression.Value(0)))

	expr, err := expression.NewBuilder().WithUpdate(update).Build()
	if err != nil {
		return apperrors.NewInternalError("failed to build identity update").WithCause(err)
	}

	start := time.Now()
	_, err = s.table.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.table.Name),
		Key:                       key(userPK(identity.ID), skProfile),
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	s.table.observe("SaveIdentity", start, err)
	return mapError("SaveIdentity", err)
}

func (s *IdentityStore) DeleteIdentity(ctx context.Context, id valueobjects.IdentityID) error {
	start := time.Now()
	_, err := s.table.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table.Name),
		Key:       key(userPK(id), skProfile),
	})
	s.table.observe("DeleteIdentity", start, err)
	if err != nil {
		return mapError("DeleteIdentity", err)
	}

	s.table.Logger.Debug("Identity profile deleted", zap.String("identity", id.String()))
	return nil
}
