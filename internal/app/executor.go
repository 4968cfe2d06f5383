package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jsamuelsen/quote-catalog/internal/platform/logging"
)

// Stage names of a bulk write. An import runs them in this order:
//
//  1. validate - reject the batch before anything is written
//  2. write    - apply each record, remembering how to undo it
//  3. verify   - check the report adds up; roll back a failed atomic run
//  4. publish  - record metrics and emit the import event
const (
	StageValidate = "validate"
	StageWrite    = "write"
	StageVerify   = "verify"
	StagePublish  = "publish"
)

// Stage is one named step of a multi-step operation. Stages share the
// operation's state through S.
type Stage[S any] struct {
	Name string
	Run  func(ctx context.Context, state S) error
}

// StageError reports the stage an operation stopped at.
type StageError struct {
	Operation string
	Stage     string
	Err       error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Operation, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// FailedStage returns the stage err stopped at, if it came from RunStages.
func FailedStage(err error) (string, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}

	return "", false
}

// RunStages runs stages in order over state and stops at the first
// failure, returned as a *StageError. A failed validate stage logs at warn,
// any later one at error.
func RunStages[S any](ctx context.Context, logger *slog.Logger, operation string, state S, stages ...Stage[S]) error {
	logger = logging.FromContextOr(ctx, logger).With(slog.String("operation", operation))
	start := time.Now()

	for i, stage := range stages {
		stageStart := time.Now()

		if err := stage.Run(ctx, state); err != nil {
			level := slog.LevelError
			if i == 0 {
				level = slog.LevelWarn
			}

			logger.Log(ctx, level, "operation stopped",
				slog.String("stage", stage.Name),
				slog.Any("error", err),
			)

			return &StageError{Operation: operation, Stage: stage.Name, Err: err}
		}

		logger.DebugContext(ctx, "stage done",
			slog.String("stage", stage.Name),
			slog.Duration("duration", time.Since(stageStart)),
		)
	}

	logger.InfoContext(ctx, "operation completed", slog.Duration("duration", time.Since(start)))

	return nil
}
