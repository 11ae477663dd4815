package sagas

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type trail struct {
	log []string
}

func (t *trail) add(s string) { t.log = append(t.log, s) }

func step(name string, fail bool) Step[trail] {
	return Step[trail]{
		Name: name,
		Execute: func(ctx context.Context, st *trail) error {
			st.add("do:" + name)
			if fail {
				return errors.New(name + " broke")
			}
			return nil
		},
		Compensate: func(ctx context.Context, st *trail) error {
			st.add("undo:" + name)
			return nil
		},
	}
}

func TestSagaCompletes(t *testing.T) {
	s := New[trail]("ok", zap.NewNop()).AddStep(step("a", false)).AddStep(step("b", false))
	st := &trail{}

	require.NoError(t, s.Execute(context.Background(), st))
	assert.Equal(t, StateCompleted, s.GetState())
	assert.Equal(t, []string{"do:a", "do:b"}, st.log)
}

func TestSagaCompensatesInReverse(t *testing.T) {
	s := New[trail]("fails", zap.NewNop()).
		AddStep(step("a", false)).
		AddStep(Step[trail]{Name: "no-undo", Execute: func(ctx context.Context, st *trail) error { st.add("do:no-undo"); return nil }}).
		AddStep(step("c", true))
	st := &trail{}

	err := s.Execute(context.Background(), st)
	require.Error(t, err)
	assert.Equal(t, StateCompensated, s.GetState())
	assert.Equal(t, []string{"do:a", "do:no-undo", "do:c", "undo:c", "undo:a"}, st.log)
}

func TestSagaRetries(t *testing.T) {
	attempts := 0
	s := New[trail]("retry", zap.NewNop()).AddStep(Step[trail]{
		Name:       "flaky",
		MaxRetries: 3,
		RetryDelay: 1,
		Execute: func(ctx context.Context, st *trail) error {
			attempts++
			if attempts < 3 {
				return errors.New("transient")
			}
			return nil
		},
	})

	require.NoError(t, s.Execute(context.Background(), &trail{}))
	assert.Equal(t, 3, attempts)
}
