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
)

// NotificationRepository stores notifications with a GSI1 per-recipient
// listing ordered by creation time
type NotificationRepository struct {
	table *Table
}

// NewNotificationRepository creates a notification repository over table
func NewNotificationRepository(table *Table) *NotificationRepository {
	return &NotificationRepository{table: table}
}

// Create writes the record exactly once; a second write of the same id fails
func (r *NotificationRepository) Create(ctx context.Context, n *entities.Notification) error {
	av, err := attributevalue.MarshalMap(newNotificationItem(n))
	if err != nil {
		return apperrors.NewDatabaseError("CreateNotification", err)
	}

	start := time.Now()
	_, err = r.table.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table.Name),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	r.table.observe("CreateNotification", start, err)
	return mapError("CreateNotification", err)
}

func (r *NotificationRepository) Get(ctx context.Context, id valueobjects.NotificationID) (*entities.Notification, error) {
	start := time.Now()
	out, err := r.table.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.table.Name),
		Key:            key(notificationPK(id), skMetadata),
		ConsistentRead: aws.Bool(true),
	})
	r.table.observe("GetNotification", start, err)
	if err != nil {
		return nil, mapError("GetNotification", err)
	}
	if out.Item == nil {
		return nil, apperrors.ErrNotificationNotFound(id.String())
	}
	return unmarshalNotification(out.Item, "GetNotification")
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id valueobjects.NotificationID) (*entities.Notification, error) {
	expr, err := expression.NewBuilder().
		WithUpdate(expression.Set(expression.Name("IsRead"), expression.Value(true))).
		WithCondition(expression.AttributeExists(expression.Name("PK"))).
		Build()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build read update").WithCause(err)
	}

	start := time.Now()
	out, err := r.table.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.table.Name),
		Key:                       key(notificationPK(id), skMetadata),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	r.table.observe("MarkNotificationRead", start, err)
	if isConditionFailed(err) {
		return nil, apperrors.ErrNotificationNotFound(id.String())
	}
	if err != nil {
		return nil, mapError("MarkNotificationRead", err)
	}
	return unmarshalNotification(out.Attributes, "MarkNotificationRead")
}

func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipient valueobjects.IdentityID) ([]*entities.Notification, error) {
	input, err := r.recipientQuery(recipient, false)
	if err != nil {
		return nil, err
	}

	var out []*entities.Notification
	paginator := dynamodb.NewQueryPaginator(r.table.Client, input)
	for paginator.HasMorePages() {
		start := time.Now()
		page, err := paginator.NextPage(ctx)
		r.table.observe("ListNotifications", start, err)
		if err != nil {
			return nil, mapError("ListNotifications", err)
		}

		var batch []notificationItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, apperrors.NewDatabaseError("ListNotifications", err)
		}
		for _, item := range batch {
			out = append(out, item.toEntity())
		}
	}
	return out, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, recipient valueobjects.IdentityID) (int, error) {
	input, err := r.recipientQuery(recipient, true)
	if err != nil {
		return 0, err
	}

	total := 0
	paginator := dynamodb.NewQueryPaginator(r.table.Client, input)
	for paginator.HasMorePages() {
		start := time.Now()
		page, err := paginator.NextPage(ctx)
		r.table.observe("CountUnread", start, err)
		if err != nil {
			return 0, mapError("CountUnread", err)
		}
		total += int(page.Count)
	}
	return total, nil
}

// recipientQuery lists a recipient's notifications newest first, optionally
// counting only the unread ones
func (r *NotificationRepository) recipientQuery(recipient valueobjects.IdentityID, unreadOnly bool) (*dynamodb.QueryInput, error) {
	builder := expression.NewBuilder().
		WithKeyCondition(expression.Key("GSI1PK").Equal(expression.Value(prefixRecipient + recipient.String())))
	if unreadOnly {
		builder = builder.WithFilter(expression.Name("IsRead").Equal(expression.Value(false)))
	}
	expr, err := builder.Build()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build notification query").WithCause(err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.table.Name),
		IndexName:                 aws.String(r.table.IndexName),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
	}
	if unreadOnly {
		input.Select = types.SelectCount
	}
	return input, nil
}

func unmarshalNotification(av map[string]types.AttributeValue, op string) (*entities.Notification, error) {
	var item notificationItem
	if err := attributevalue.UnmarshalMap(av, &item); err != nil {
		return nil, apperrors.NewDatabaseError(op, err)
	}
	return item.toEntity(), nil
}
