package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// step is one action of a saga together with the action that undoes it.
type step struct {
	name       string
	do         func(ctx context.Context) error
	compensate func(ctx context.Context) error
}

// Saga runs an ordered list of steps. When a step fails, the compensations
// of the steps that already completed run in reverse order.
type Saga struct {
	name   string
	steps  []step
	logger zerolog.Logger
}

// NewSaga creates an empty saga.
func NewSaga(name string, logger zerolog.Logger) *Saga {
	return &Saga{
		name:   name,
		logger: logger.With().Str("saga", name).Logger(),
	}
}

// Step appends a step. compensate may be nil for steps with nothing to undo.
func (s *Saga) Step(name string, do, compensate func(ctx context.Context) error) *Saga {
	s.steps = append(s.steps, step{name: name, do: do, compensate: compensate})
	return s
}

// Run executes the steps. The returned error wraps the failing step's error
// and any compensation failures.
func (s *Saga) Run(ctx context.Context) error {
	for i, st := range s.steps {
		s.logger.Debug().Str("step", st.name).Msg("running step")

		if err := st.do(ctx); err != nil {
			s.logger.Warn().Err(err).Str("step", st.name).Msg("step failed, compensating")
			return s.rollback(ctx, i, fmt.Errorf("%s: %w", st.name, err))
		}
	}
	return nil
}

// rollback compensates steps [0, failed) in reverse order.
func (s *Saga) rollback(ctx context.Context, failed int, cause error) error {
	errs := []error{cause}
	for i := failed - 1; i >= 0; i-- {
		st := s.steps[i]
		if st.compensate == nil {
			continue
		}
		if err := st.compensate(ctx); err != nil {
			s.logger.Error().Err(err).Str("step", st.name).Msg("compensation failed")
			errs = append(errs, fmt.Errorf("compensate %s: %w", st.name, err))
		}
	}
	return errors.Join(errs...)
}
