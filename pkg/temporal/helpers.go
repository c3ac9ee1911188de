package temporal

import (
	"go.temporal.io/sdk/activity"

	"github.com/google/uuid"
)

// Registry is the registration surface shared by a worker and the test
// workflow environment.
type Registry interface {
	RegisterWorkflow(w interface{})
	RegisterActivityWithOptions(a interface{}, options activity.RegisterOptions)
}

// Register adds the render workflows and activities to r.
func Register(r Registry, activities *Activities) {
	r.RegisterWorkflow(RenderPlotWorkflow)
	r.RegisterWorkflow(RenderBatchWorkflow)
	r.RegisterActivityWithOptions(activities.RenderPlotActivity, activity.RegisterOptions{
		Name: RenderPlotActivityName,
	})
}

// GenerateRenderWorkflowID builds a unique workflow ID for a job.
func GenerateRenderWorkflowID(job string) string {
	if job == "" {
		job = "plot"
	}
	return RenderWorkflowIDPrefix + job + "-" + uuid.NewString()
}

// GenerateBatchWorkflowID builds a unique workflow ID for a batch.
func GenerateBatchWorkflowID() string {
	return BatchWorkflowIDPrefix + uuid.NewString()
}
