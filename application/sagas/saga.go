package sagas

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Step is a single step in a saga. Steps share the saga's state value.
type Step[T any] struct {
	Name       string
	Execute    func(ctx context.Context, state *T) error
	Compensate func(ctx context.Context, state *T) error
	MaxRetries int
	RetryDelay time.Duration
}

// State represents the current state of a saga execution
type State string

const (
	StatePending      State = "PENDING"
	StateRunning      State = "RUNNING"
	StateCompleted    State = "COMPLETED"
	StateFailed       State = "FAILED"
	StateCompensating State = "COMPENSATING"
	StateCompensated  State = "COMPENSATED"
)

// Saga orchestrates a series of steps. When a step fails, the compensations
// of every completed step run in reverse order.
type Saga[T any] struct {
	id          string
	name        string
	steps       []Step[T]
	state       State
	currentStep int
	logger      *zap.Logger
}

// New creates a new saga instance
func New[T any](name string, logger *zap.Logger) *Saga[T] {
	return &Saga[T]{
		id:     "saga_" + uuid.NewString(),
		name:   name,
		state:  StatePending,
		logger: logger,
	}
}

// AddStep adds a step to the saga
func (s *Saga[T]) AddStep(step Step[T]) *Saga[T] {
	s.steps = append(s.steps, step)
	return s
}

// Execute runs the saga against state
func (s *Saga[T]) Execute(ctx context.Context, state *T) error {
	s.state = StateRunning
	s.logger.Info("Starting saga execution",
		zap.String("saga_id", s.id),
		zap.String("saga_name", s.name),
		zap.Int("total_steps", len(s.steps)),
	)

	for i, step := range s.steps {
		s.currentStep = i
		s.logger.Debug("Executing saga step",
			zap.String("saga_id", s.id),
			zap.String("step_name", step.Name),
			zap.Int("step_number", i+1),
		)

		if err := s.executeStepWithRetry(ctx, step, state); err != nil {
			s.state = StateFailed
			s.logger.Error("Saga step failed",
				zap.String("saga_id", s.id),
				zap.String("step_name", step.Name),
				zap.Error(err),
			)

			failed := s.compensate(context.WithoutCancel(ctx), state, i)
			if failed > 0 {
				return fmt.Errorf("saga %s failed at step %s and %d compensations failed: %w", s.name, step.Name, failed, err)
			}
			s.state = StateCompensated
			return fmt.Errorf("saga %s failed at step %s: %w", s.name, step.Name, err)
		}
	}

	s.state = StateCompleted
	s.logger.Info("Saga completed successfully",
		zap.String("saga_id", s.id),
		zap.String("saga_name", s.name),
		zap.Int("completed_steps", len(s.steps)),
	)
	return nil
}

func (s *Saga[T]) executeStepWithRetry(ctx context.Context, step Step[T], state *T) error {
	maxRetries := step.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}
	retryDelay := step.RetryDelay
	if retryDelay <= 0 {
		retryDelay = 100 * time.Millisecond
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryDelay):
			}
		}

		if lastErr = step.Execute(ctx, state); lastErr == nil {
			return nil
		}
		s.logger.Warn("Saga step execution failed",
			zap.String("saga_id", s.id),
			zap.String("step_name", step.Name),
			zap.Int("attempt", attempt+1),
			zap.Error(lastErr),
		)
	}

	return fmt.Errorf("step %s failed after %d attempts: %w", step.Name, maxRetries, lastErr)
}

// compensate undoes steps [0, completed) in reverse and returns the number
// of compensations that failed. The failing step is compensated as well,
// since it may have partially applied.
func (s *Saga[T]) compensate(ctx context.Context, state *T, failedStep int) int {
	s.state = StateCompensating
	s.logger.Info("Starting saga compensation",
		zap.String("saga_id", s.id),
		zap.String("saga_name", s.name),
		zap.Int("steps_to_compensate", failedStep+1),
	)

	failed := 0
	for i := failedStep; i >= 0; i-- {
		step := s.steps[i]
		if step.Compensate == nil {
			continue
		}
		if err := step.Compensate(ctx, state); err != nil {
			failed++
			s.logger.Error("Compensation failed",
				zap.String("saga_id", s.id),
				zap.String("step_name", step.Name),
				zap.Error(err),
			)
		}
	}
	return failed
}

// GetState returns the current state of the saga
func (s *Saga[T]) GetState() State {
	return s.state
}

// GetID returns the saga ID
func (s *Saga[T]) GetID() string {
	return s.id
}

// GetCurrentStep returns the current step index
func (s *Saga[T]) GetCurrentStep() int {
	return s.currentStep
}
