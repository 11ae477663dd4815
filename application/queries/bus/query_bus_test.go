package bus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lookupQuery struct {
	Key string
}

func (q lookupQuery) Validate() error {
	if q.Key == "" {
		return errors.New("key is required")
	}
	return nil
}

func TestQueryBus_Ask(t *testing.T) {
	b := NewQueryBus()
	require.NoError(t, b.Register(lookupQuery{}, QueryHandlerFunc(func(_ context.Context, q Query) (interface{}, error) {
		return len(q.(lookupQuery).Key), nil
	})))

	result, err := b.Ask(context.Background(), lookupQuery{Key: "abc"})
	require.NoError(t, err)
	assert.Equal(t, 3, result)

	_, err = b.Ask(context.Background(), lookupQuery{})
	assert.Error(t, err)
}

func TestQueryBus_UnknownQuery(t *testing.T) {
	b := NewQueryBus()
	_, err := b.Ask(context.Background(), lookupQuery{Key: "x"})
	assert.ErrorIs(t, err, ErrHandlerNotFound)
}
