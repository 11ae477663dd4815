package utils

import (
	"sync"
	"testing"

	apperrors "socialhub/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type commentRequest struct {
	Text string `json:"text" validate:"required,max=500"`
	Sort string `json:"sort" validate:"omitempty,oneof=recent popular"`
}

func TestValidateStruct(t *testing.T) {
	require.NoError(t, ValidateStruct(commentRequest{Text: "hi", Sort: "recent"}))

	err := ValidateStruct(commentRequest{Sort: "oldest"})
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidArgument(err))
	assert.Contains(t, err.Error(), "text is required")
	assert.Contains(t, err.Error(), "sort must be one of")
}

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	km := NewKeyedMutex(8)
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock("a->b")
			counter++
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
}
