package saga

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Step is a single saga step with an execute action and an optional
// compensating action run when a later step fails.
type Step struct {
	Name       string
	Execute    func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// Saga runs a sequence of steps, compensating executed steps in reverse
// order when one fails.
type Saga struct {
	name   string
	steps  []Step
	logger *zap.Logger
}

// New creates a saga orchestrator.
func New(name string, logger *zap.Logger) *Saga {
	return &Saga{name: name, logger: logger}
}

// AddStep appends a step to the saga.
func (s *Saga) AddStep(step Step) {
	s.steps = append(s.steps, step)
}

// Execute runs all steps in order. On failure it compensates executed steps
// in reverse order; compensation errors are logged, not returned.
func (s *Saga) Execute(ctx context.Context) error {
	s.logger.Info("saga started", zap.String("saga", s.name))

	executed := make([]Step, 0, len(s.steps))

	for _, step := range s.steps {
		s.logger.Info("executing saga step",
			zap.String("saga", s.name),
			zap.String("step", step.Name),
		)

		if err := step.Execute(ctx); err != nil {
			s.logger.Error("saga step failed, starting compensation",
				zap.String("saga", s.name),
				zap.String("step", step.Name),
				zap.Error(err),
			)

			for i := len(executed) - 1; i >= 0; i-- {
				comp := executed[i]
				if comp.Compensate == nil {
					continue
				}
				s.logger.Info("compensating saga step",
					zap.String("saga", s.name),
					zap.String("step", comp.Name),
				)
				if compErr := comp.Compensate(ctx); compErr != nil {
					s.logger.Error("compensation failed",
						zap.String("saga", s.name),
						zap.String("step", comp.Name),
						zap.Error(compErr),
					)
				}
			}

			return fmt.Errorf("saga '%s' failed at step '%s': %w", s.name, step.Name, err)
		}

		executed = append(executed, step)
	}

	s.logger.Info("saga completed successfully", zap.String("saga", s.name))
	return nil
}
