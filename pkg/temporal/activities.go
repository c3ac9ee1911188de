package temporal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/leowmjw/go-scoreplot/pkg/plot"
	"github.com/leowmjw/go-scoreplot/pkg/render"
	"github.com/leowmjw/go-scoreplot/pkg/score"
	"github.com/leowmjw/go-scoreplot/pkg/source"
	"github.com/leowmjw/go-scoreplot/pkg/windowed"
)

// Activities renders plot jobs on a worker.
type Activities struct {
	logger *slog.Logger
	runner *render.Runner
	store  source.Store
}

// NewActivities creates the render activities. store may be nil when no
// request refers to stored scores.
func NewActivities(logger *slog.Logger, runner *render.Runner, store source.Store) *Activities {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if runner == nil {
		runner = render.NewRunner(logger)
	}
	return &Activities{
		logger: logger,
		runner: runner,
		store:  store,
	}
}

// RenderPlotActivity runs one job and heartbeats its progress.
func (a *Activities) RenderPlotActivity(ctx context.Context, request RenderRequest) (*render.Result, error) {
	a.logger.Info("Rendering plot", "job", request.Job.Name, "attempt", activity.GetInfo(ctx).Attempt)

	stream, err := a.stream(ctx, request)
	if err != nil {
		return nil, classify(err)
	}

	activity.RecordHeartbeat(ctx, Progress{Job: request.Job.Name})
	ctx = render.WithProgress(ctx, func(p windowed.Position) {
		activity.RecordHeartbeat(ctx, Progress{Job: request.Job.Name, Window: p})
	})

	result, err := a.runner.Run(ctx, request.Job, stream)
	if err != nil {
		a.logger.Error("Failed to render plot", "job", request.Job.Name, "error", err)
		return nil, classify(err)
	}

	a.logger.Info("Successfully rendered plot", "job", request.Job.Name, "run", result.RunID)
	return result, nil
}

func (a *Activities) stream(ctx context.Context, request RenderRequest) (score.Stream, error) {
	switch {
	case request.Score != nil:
		return request.Score, nil
	case request.Job.Score != nil:
		return request.Job.Score, nil
	case request.ScoreID != "":
		if a.store == nil {
			return nil, fmt.Errorf("%w: no store for %s", source.ErrScoreNotFound, request.ScoreID)
		}
		return a.store.LoadScore(ctx, request.ScoreID)
	}
	return nil, plot.ErrNoStream
}

// classify marks configuration errors and missing scores as non-retryable.
func classify(err error) error {
	switch {
	case errors.Is(err, source.ErrScoreNotFound):
		return temporal.NewNonRetryableApplicationError(err.Error(), ScoreNotFoundErrorType, err)
	case render.IsConfigError(err):
		return temporal.NewNonRetryableApplicationError(err.Error(), ConfigErrorType, err)
	}
	return err
}

// IsConfigError reports whether err, as returned by a workflow or activity,
// carries a non-retryable configuration failure.
func IsConfigError(err error) bool {
	return hasErrorType(err, ConfigErrorType)
}

// IsScoreNotFound reports whether err, as returned by a workflow or activity,
// carries a stored score lookup that missed.
func IsScoreNotFound(err error) bool {
	return hasErrorType(err, ScoreNotFoundErrorType)
}

func hasErrorType(err error, errType string) bool {
	for ; err != nil; err = errors.Unwrap(err) {
		if appErr, ok := err.(*temporal.ApplicationError); ok && appErr.Type() == errType {
			return true
		}
	}
	return false
}
