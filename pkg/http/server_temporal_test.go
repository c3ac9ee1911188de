package http

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/client"
	sdkMocks "go.temporal.io/sdk/mocks"
	sdktemporal "go.temporal.io/sdk/temporal"

	"github.com/leowmjw/go-scoreplot/pkg/plot"
	"github.com/leowmjw/go-scoreplot/pkg/render"
	"github.com/leowmjw/go-scoreplot/pkg/temporal"
)

func TestServer_PlotViaWorkflow_HCL(t *testing.T) {
	mockClient := new(sdkMocks.Client)
	mockWorkflowRun := new(sdkMocks.WorkflowRun)
	server := NewServer(testLogger(), nil, ":0", WithTemporal(mockClient, "plots"))

	rendered := &render.Result{RunID: "run-1", Job: "classes", Type: plot.Histogram}
	mockWorkflowRun.On("Get", mock.Anything, mock.AnythingOfType("**render.Result")).
		Run(func(args mock.Arguments) {
			result := args[1].(**render.Result)
			*result = rendered
		}).
		Return(nil)

	mockClient.On("ExecuteWorkflow",
		mock.Anything,
		mock.MatchedBy(func(opts client.StartWorkflowOptions) bool {
			return opts.TaskQueue == "plots" && len(opts.ID) > len(temporal.RenderWorkflowIDPrefix)
		}),
		mock.Anything,
		mock.MatchedBy(func(req temporal.RenderRequest) bool {
			// Parsed from HCL, score referenced by ID
			return req.Job.Name == "classes" &&
				req.Job.Type == "histogram" &&
				req.Job.Values[0] == "pitchClass" &&
				req.ScoreID == "score-1" &&
				req.Score == nil
		}),
	).Return(mockWorkflowRun, nil).Once()

	job := `
plot "classes" {
  type   = "histogram"
  values = ["pitchClass"]
}
`
	rr := do(t, server.Handler(), http.MethodPost, "/plots?score=score-1", "text/x-hcl", job)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"runId":"run-1"`)

	mockClient.AssertExpectations(t)
	mockWorkflowRun.AssertExpectations(t)
}

func TestServer_PlotViaWorkflow_Batch(t *testing.T) {
	mockClient := new(sdkMocks.Client)
	mockWorkflowRun := new(sdkMocks.WorkflowRun)
	server := NewServer(testLogger(), nil, ":0", WithTemporal(mockClient, ""))

	mockWorkflowRun.On("Get", mock.Anything, mock.AnythingOfType("**temporal.BatchResult")).
		Run(func(args mock.Arguments) {
			result := args[1].(**temporal.BatchResult)
			*result = &temporal.BatchResult{
				Results: []*render.Result{{Job: "a"}, nil},
				Errors:  map[string]string{"b": "unknown plot job"},
			}
		}).
		Return(nil)

	mockClient.On("ExecuteWorkflow",
		mock.Anything,
		mock.MatchedBy(func(opts client.StartWorkflowOptions) bool {
			return opts.TaskQueue == temporal.DefaultTaskQueue
		}),
		mock.Anything,
		mock.MatchedBy(func(req temporal.BatchRequest) bool {
			return len(req.Jobs) == 2 && req.Score != nil && len(req.Score.Parts) == 2
		}),
	).Return(mockWorkflowRun, nil).Once()

	body := `{"jobs": [{"name": "a"}, {"name": "b", "preset": "pie"}], "score": ` + chorale + `}`
	rr := do(t, server.Handler(), http.MethodPost, "/plots", "application/json", body)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), "unknown plot job")

	mockClient.AssertExpectations(t)
}

func TestServer_PlotViaWorkflow_Errors(t *testing.T) {
	tests := []struct {
		name     string
		startErr error
		runErr   error
		status   int
	}{
		{
			name:     "start fails",
			startErr: errors.New("frontend unavailable"),
			status:   http.StatusInternalServerError,
		},
		{
			name:   "config error",
			runErr: sdktemporal.NewNonRetryableApplicationError("unknown plot job", temporal.ConfigErrorType, nil),
			status: http.StatusBadRequest,
		},
		{
			name:   "stored score missing",
			runErr: sdktemporal.NewNonRetryableApplicationError("score not found: bwv1", temporal.ScoreNotFoundErrorType, nil),
			status: http.StatusNotFound,
		},
		{
			name:   "render fails",
			runErr: errors.New("activity timeout"),
			status: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockClient := new(sdkMocks.Client)
			server := NewServer(testLogger(), nil, ":0", WithTemporal(mockClient, ""))

			if tt.startErr != nil {
				mockClient.On("ExecuteWorkflow", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(nil, tt.startErr).Once()
			} else {
				mockWorkflowRun := new(sdkMocks.WorkflowRun)
				mockWorkflowRun.On("Get", mock.Anything, mock.Anything).Return(tt.runErr)
				mockClient.On("ExecuteWorkflow", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(mockWorkflowRun, nil).Once()
			}

			rr := do(t, server.Handler(), http.MethodPost, "/plots", "application/json", `{"name": "roll", "score": `+chorale+`}`)
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())
			mockClient.AssertExpectations(t)
		})
	}
}
