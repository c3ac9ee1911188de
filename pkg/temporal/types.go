package temporal

import (
	"time"

	"github.com/leowmjw/go-scoreplot/pkg/render"
	"github.com/leowmjw/go-scoreplot/pkg/score"
	"github.com/leowmjw/go-scoreplot/pkg/windowed"
)

const (
	// Workflow IDs
	RenderWorkflowIDPrefix = "render-"
	BatchWorkflowIDPrefix  = "render-batch-"

	// Activity names
	RenderPlotActivityName = "render-plot"

	// DefaultTaskQueue is the queue the worker polls when none is configured.
	DefaultTaskQueue = "scoreplot"

	// Activity limits. Windowed jobs heartbeat after every window.
	RenderStartToCloseTimeout = 10 * time.Minute
	RenderHeartbeatTimeout    = 30 * time.Second
	RenderMaximumAttempts     = 3

	// ConfigErrorType tags application errors that retrying cannot fix.
	ConfigErrorType = "ConfigError"
	// ScoreNotFoundErrorType tags a stored score lookup that missed.
	ScoreNotFoundErrorType = "ScoreNotFound"
)

// RenderRequest is the input of RenderPlotWorkflow. The stream comes from
// Score, the job's inline score, or the stored score named by ScoreID, in
// that order.
type RenderRequest struct {
	Job     render.Job   `json:"job"`
	Score   *score.Score `json:"score,omitempty"`
	ScoreID string       `json:"score_id,omitempty"`
}

// BatchRequest renders several jobs against one score.
type BatchRequest struct {
	Jobs    []render.Job `json:"jobs"`
	Score   *score.Score `json:"score,omitempty"`
	ScoreID string       `json:"score_id,omitempty"`
}

// BatchResult holds per-job results in request order. Failed jobs leave a nil
// result and an entry in Errors keyed by job name.
type BatchResult struct {
	Results []*render.Result  `json:"results"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// Progress is recorded as the activity heartbeat. Window is the last
// finished window of a windowed job.
type Progress struct {
	Job    string            `json:"job"`
	Window windowed.Position `json:"window"`
}
