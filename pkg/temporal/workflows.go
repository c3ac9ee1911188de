package temporal

import (
	"fmt"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/leowmjw/go-scoreplot/pkg/render"
)

func renderActivityOptions() workflow.ActivityOptions {
	return workflow.ActivityOptions{
		StartToCloseTimeout: RenderStartToCloseTimeout,
		HeartbeatTimeout:    RenderHeartbeatTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts:        RenderMaximumAttempts,
			NonRetryableErrorTypes: []string{ConfigErrorType, ScoreNotFoundErrorType},
		},
	}
}

// RenderPlotWorkflow renders one plot job in an activity. Cancelling the
// workflow cancels the activity, which stops the windowed engine between
// windows.
func RenderPlotWorkflow(ctx workflow.Context, request RenderRequest) (*render.Result, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting render workflow", "job", request.Job.Name)

	ctx = workflow.WithActivityOptions(ctx, renderActivityOptions())

	var result *render.Result
	err := workflow.ExecuteActivity(ctx, RenderPlotActivityName, request).Get(ctx, &result)
	if err != nil {
		logger.Error("Render failed", "job", request.Job.Name, "error", err)
		return nil, fmt.Errorf("failed to render %q: %w", request.Job.Name, err)
	}

	logger.Info("Render workflow completed", "job", request.Job.Name, "type", result.Type)
	return result, nil
}

// RenderBatchWorkflow renders every job of the request concurrently. A failed
// job does not fail the batch, except a missing stored score, which all jobs
// share.
func RenderBatchWorkflow(ctx workflow.Context, request BatchRequest) (*BatchResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting batch render workflow", "jobs", len(request.Jobs))

	if len(request.Jobs) == 0 {
		return nil, temporal.NewNonRetryableApplicationError("batch has no jobs", ConfigErrorType, render.ErrUnknownJob)
	}

	ctx = workflow.WithActivityOptions(ctx, renderActivityOptions())

	futures := make([]workflow.Future, len(request.Jobs))
	for i, job := range request.Jobs {
		futures[i] = workflow.ExecuteActivity(ctx, RenderPlotActivityName, RenderRequest{
			Job:     job,
			Score:   request.Score,
			ScoreID: request.ScoreID,
		})
	}

	batch := &BatchResult{Results: make([]*render.Result, len(request.Jobs))}
	var notFound error
	selector := workflow.NewSelector(ctx)
	for i := range futures {
		i := i
		selector.AddFuture(futures[i], func(f workflow.Future) {
			var result *render.Result
			if err := f.Get(ctx, &result); err != nil {
				logger.Error("Batch job failed", "job", request.Jobs[i].Name, "error", err)
				if IsScoreNotFound(err) {
					notFound = err
				}
				if batch.Errors == nil {
					batch.Errors = make(map[string]string)
				}
				batch.Errors[jobKey(request.Jobs[i], i)] = err.Error()
				return
			}
			batch.Results[i] = result
		})
	}
	for range futures {
		selector.Select(ctx)
	}
	if notFound != nil {
		return nil, notFound
	}

	logger.Info("Batch render workflow completed", "jobs", len(request.Jobs), "failed", len(batch.Errors))
	return batch, nil
}

func jobKey(job render.Job, i int) string {
	if job.Name != "" {
		return job.Name
	}
	return fmt.Sprintf("job-%d", i)
}
