package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"socialhub/application/ports"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrLockHeld is returned when another owner holds an unexpired lock
var ErrLockHeld = errors.New("lock already held")

// DistributedLock provides cross-process locking using DynamoDB conditional writes
type DistributedLock struct {
	table        *Table
	owner        string
	lockDuration time.Duration
	waitTimeout  time.Duration
}

// NewDistributedLock creates a lock whose records expire after lockDuration.
// Lock waits up to twice that long for a contended key.
func NewDistributedLock(table *Table, lockDuration time.Duration) *DistributedLock {
	return &DistributedLock{
		table:        table,
		owner:        "instance_" + uuid.NewString(),
		lockDuration: lockDuration,
		waitTimeout:  2 * lockDuration,
	}
}

// Lock is an acquired lock record
type Lock struct {
	dl        *DistributedLock
	resource  string
	lockID    string
	expiresAt time.Time
}

// AcquireLock attempts to acquire the lock for resource once
func (dl *DistributedLock) AcquireLock(ctx context.Context, resource string) (*Lock, error) {
	now := time.Now()
	expiresAt := now.Add(dl.lockDuration)
	lockID := uuid.NewString()

	item := map[string]types.AttributeValue{
		"PK":         &types.AttributeValueMemberS{Value: "LOCK#" + resource},
		"SK":         &types.AttributeValueMemberS{Value: "LOCK"},
		"LockID":     &types.AttributeValueMemberS{Value: lockID},
		"Owner":      &types.AttributeValueMemberS{Value: dl.owner},
		"AcquiredAt": &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		"ExpiresAt":  &types.AttributeValueMemberN{Value: strconv.FormatInt(expiresAt.UnixMilli(), 10)},
		"TTL":        &types.AttributeValueMemberN{Value: strconv.FormatInt(expiresAt.Unix(), 10)},
	}

	start := time.Now()
	_, err := dl.table.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(dl.table.Name),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK) OR ExpiresAt < :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberN{Value: strconv.FormatInt(now.UnixMilli(), 10)},
		},
	})
	dl.table.observe("AcquireLock", start, err)
	if err != nil {
		if isConditionFailed(err) {
			return nil, fmt.Errorf("%w: %s", ErrLockHeld, resource)
		}
		return nil, mapError("AcquireLock", err)
	}

	dl.table.Logger.Debug("Lock acquired",
		zap.String("resource", resource),
		zap.String("lockID", lockID),
	)
	return &Lock{dl: dl, resource: resource, lockID: lockID, expiresAt: expiresAt}, nil
}

// TryAcquireLock retries AcquireLock with backoff until timeout
func (dl *DistributedLock) TryAcquireLock(ctx context.Context, resource string, timeout time.Duration) (*Lock, error) {
	deadline := time.Now().Add(timeout)
	retryInterval := 20 * time.Millisecond

	for {
		lock, err := dl.AcquireLock(ctx, resource)
		if err == nil {
			return lock, nil
		}
		if !errors.Is(err, ErrLockHeld) {
			return nil, err
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("timeout acquiring lock for resource: %s", resource)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
			if retryInterval < time.Second {
				retryInterval = time.Duration(float64(retryInterval) * 1.5)
			}
		}
	}
}

// Release deletes the lock record if this lock still owns it
func (l *Lock) Release(ctx context.Context) error {
	start := time.Now()
	_, err := l.dl.table.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(l.dl.table.Name),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: "LOCK#" + l.resource},
			"SK": &types.AttributeValueMemberS{Value: "LOCK"},
		},
		ConditionExpression: aws.String("LockID = :lockId"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":lockId": &types.AttributeValueMemberS{Value: l.lockID},
		},
	})
	l.dl.table.observe("ReleaseLock", start, err)
	if err != nil {
		if isConditionFailed(err) {
			l.dl.table.Logger.Warn("Lock expired before release",
				zap.String("resource", l.resource),
				zap.String("lockID", l.lockID),
			)
			return nil
		}
		return mapError("ReleaseLock", err)
	}
	return nil
}

// IsExpired checks if the lock has expired
func (l *Lock) IsExpired() bool {
	return time.Now().After(l.expiresAt)
}

// PairLocker layers the DynamoDB lock over an in-process locker so one
// process contends for the table record at most once per key
type PairLocker struct {
	local  ports.PairLocker
	remote *DistributedLock
}

// NewPairLocker wraps local with the distributed lock
func NewPairLocker(local ports.PairLocker, remote *DistributedLock) *PairLocker {
	return &PairLocker{local: local, remote: remote}
}

// Lock implements ports.PairLocker
func (p *PairLocker) Lock(ctx context.Context, key string) (func(), error) {
	unlockLocal, err := p.local.Lock(ctx, key)
	if err != nil {
		return nil, err
	}

	lock, err := p.remote.TryAcquireLock(ctx, "follow#"+key, p.remote.waitTimeout)
	if err != nil {
		unlockLocal()
		return nil, err
	}

	return func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			p.remote.table.Logger.Warn("Failed to release pair lock",
				zap.String("key", key),
				zap.Error(err),
			)
		}
		unlockLocal()
	}, nil
}
