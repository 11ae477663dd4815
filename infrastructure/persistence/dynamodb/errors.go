package dynamodb

import (
	"context"
	"errors"

	apperrors "socialhub/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

// Cancellation reason codes reported by TransactWriteItems
const (
	reasonConditionalCheckFailed = "ConditionalCheckFailed"
	reasonNone                   = "None"
)

// isConditionFailed reports a failed ConditionExpression on a single-item write
func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

// cancellationReasons returns the per-item reason codes of a cancelled
// transaction, or nil if err is not a cancellation
func cancellationReasons(err error) []string {
	var tce *types.TransactionCanceledException
	if !errors.As(err, &tce) {
		return nil
	}
	codes := make([]string, len(tce.CancellationReasons))
	for i, reason := range tce.CancellationReasons {
		codes[i] = reasonNone
		if reason.Code != nil {
			codes[i] = *reason.Code
		}
	}
	return codes
}

// mapError converts an SDK error into an AppError. Lost races become
// Conflict; context errors pass through unchanged.
func mapError(operation string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if apperrors.IsAppError(err) {
		return err
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ConditionalCheckFailedException",
			"TransactionCanceledException",
			"TransactionConflictException":
			return apperrors.ErrConcurrentModification(operation).WithCause(err)
		case "ProvisionedThroughputExceededException",
			"ThrottlingException",
			"RequestLimitExceeded":
			return apperrors.NewUnavailableError("dynamodb").WithCause(err)
		}
	}
	return apperrors.NewDatabaseError(operation, err)
}
