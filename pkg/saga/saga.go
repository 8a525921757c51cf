// Package saga runs a short sequence of steps where each completed step can be
// undone. When a step fails, the compensations of every step that already ran
// are executed in reverse order before the error is returned.
package saga

import (
	"context"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

type Step struct {
	Name       string
	Action     func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

type Saga struct {
	steps    []Step
	executed []Step
}

func New() *Saga {
	return &Saga{}
}

// AddStep appends a step. Either function may be nil.
func (s *Saga) AddStep(name string, action, compensate func(ctx context.Context) error) *Saga {
	s.steps = append(s.steps, Step{
		Name:       name,
		Action:     action,
		Compensate: compensate,
	})
	return s
}

// Execute runs the steps in order. The returned error wraps the failing
// step's error, so errors.Is and errors.As still see the original cause.
// Compensation failures are logged and never replace that error.
func (s *Saga) Execute(ctx context.Context) error {
	s.executed = s.executed[:0]

	for _, step := range s.steps {
		if err := ctx.Err(); err != nil {
			s.compensate(context.WithoutCancel(ctx))
			return errors.WithStack(err)
		}

		if step.Action != nil {
			if err := step.Action(ctx); err != nil {
				s.compensate(context.WithoutCancel(ctx))
				return errors.Wrapf(err, "step %q failed", step.Name)
			}
		}

		s.executed = append(s.executed, step)
	}

	return nil
}

func (s *Saga) compensate(ctx context.Context) {
	log := logger.FromContext(ctx)

	for i := len(s.executed) - 1; i >= 0; i-- {
		step := s.executed[i]
		if step.Compensate == nil {
			continue
		}
		if err := step.Compensate(ctx); err != nil {
			log.Err(err).Error("saga compensation failed", logger.Data{"step": step.Name})
		}
	}
	s.executed = s.executed[:0]
}
