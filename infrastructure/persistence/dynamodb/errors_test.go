package dynamodb

import (
	"context"
	"errors"
	"testing"

	apperrors "socialhub/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind apperrors.ErrorType
	}{
		{"condition failed", &types.ConditionalCheckFailedException{Message: aws.String("x")}, apperrors.ErrorTypeConflict},
		{"transaction conflict", &smithy.GenericAPIError{Code: "TransactionConflictException"}, apperrors.ErrorTypeConflict},
		{"throttled", &smithy.GenericAPIError{Code: "ThrottlingException"}, apperrors.ErrorTypeUnavailable},
		{"other", errors.New("socket closed"), apperrors.ErrorTypeDatabase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, apperrors.IsType(mapError("op", tt.err), tt.kind))
		})
	}
}

func TestMapError_PassesThrough(t *testing.T) {
	assert.NoError(t, mapError("op", nil))
	assert.ErrorIs(t, mapError("op", context.Canceled), context.Canceled)

	notFound := apperrors.ErrPostNotFound("p1")
	assert.Same(t, notFound, mapError("op", notFound))
}

func TestCancellationReasons(t *testing.T) {
	assert.Nil(t, cancellationReasons(errors.New("plain")))
	assert.Equal(t,
		[]string{reasonNone, reasonConditionalCheckFailed},
		cancellationReasons(cancelled(reasonNone, reasonConditionalCheckFailed)))
}
