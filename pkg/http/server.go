package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/cors"
	"go.temporal.io/sdk/client"

	"github.com/leowmjw/go-scoreplot/pkg/hcl"
	"github.com/leowmjw/go-scoreplot/pkg/plot"
	"github.com/leowmjw/go-scoreplot/pkg/render"
	"github.com/leowmjw/go-scoreplot/pkg/score"
	"github.com/leowmjw/go-scoreplot/pkg/source"
	"github.com/leowmjw/go-scoreplot/pkg/temporal"
)

// maxBodyBytes bounds uploaded scores and job documents.
const maxBodyBytes = 32 << 20

// Server represents the HTTP server for the plot service
type Server struct {
	logger         *slog.Logger
	runner         *render.Runner
	store          source.Store
	temporalClient client.Client
	taskQueue      string
	origins        []string
	addr           string
}

// Option configures a Server.
type Option func(*Server)

// WithTemporal renders jobs through workflows on taskQueue instead of in
// the request goroutine.
func WithTemporal(c client.Client, taskQueue string) Option {
	return func(s *Server) {
		s.temporalClient = c
		if taskQueue != "" {
			s.taskQueue = taskQueue
		}
	}
}

// WithStore shares a score store, for example with a worker in the same
// process.
func WithStore(store source.Store) Option {
	return func(s *Server) {
		s.store = store
	}
}

// WithAllowedOrigins restricts CORS to origins. All origins are allowed by
// default.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		s.origins = origins
	}
}

// NewServer creates a new HTTP server
func NewServer(logger *slog.Logger, runner *render.Runner, addr string, opts ...Option) *Server {
	if runner == nil {
		runner = render.NewRunner(logger)
	}
	s := &Server{
		logger:    logger,
		runner:    runner,
		store:     source.NewMemoryStore(),
		taskQueue: temporal.DefaultTaskQueue,
		origins:   []string{"*"},
		addr:      addr,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlotRequest is the JSON body of POST /plots. A bare job object is accepted
// as a request with one job.
type PlotRequest struct {
	Jobs    []render.Job `json:"jobs"`
	Score   *score.Score `json:"score,omitempty"`
	ScoreID string       `json:"score_id,omitempty"`
}

// CatalogEntry describes one preset in GET /plots/catalog.
type CatalogEntry struct {
	ID    string         `json:"id"`
	Type  plot.GraphType `json:"type"`
	Title string         `json:"title"`
	X     string         `json:"x,omitempty"`
	Y     string         `json:"y,omitempty"`
	Z     string         `json:"z,omitempty"`
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Register routes
	mux.HandleFunc("POST /plots", s.handlePlots)
	mux.HandleFunc("GET /plots/catalog", s.handleCatalog)
	mux.HandleFunc("POST /scores", s.handleUploadScore)
	mux.HandleFunc("GET /health", s.handleHealth)

	c := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	})
	return s.loggingMiddleware(c.Handler(mux))
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("Starting HTTP server", "addr", s.addr, "temporal", s.temporalClient != nil)

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	// Wait for context cancellation or server error
	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}
}

// Plot endpoint; the body is a JSON request or an HCL job file
func (s *Server) handlePlots(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	request, err := s.parsePlotRequest(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(request.Jobs) == 0 {
		s.respondError(w, http.StatusBadRequest, "at least one plot job is required")
		return
	}
	if id := r.URL.Query().Get("score"); id != "" {
		request.ScoreID = id
	}

	s.logger.Info("Processing plot request", "jobs", len(request.Jobs), "scoreID", request.ScoreID)

	if len(request.Jobs) == 1 {
		result, err := s.renderOne(r.Context(), request)
		if err != nil {
			s.logger.Error("Plot failed", "job", request.Jobs[0].Name, "error", err)
			s.respondError(w, statusFor(err), err.Error())
			return
		}
		s.respondJSON(w, http.StatusOK, result)
		return
	}

	batch, err := s.renderBatch(r.Context(), request)
	if err != nil {
		s.logger.Error("Batch failed", "error", err)
		s.respondError(w, statusFor(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, batch)
}

func (s *Server) parsePlotRequest(r *http.Request) (*PlotRequest, error) {
	contentType, err := hcl.DetectContentType(r)
	if err != nil {
		return nil, err
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}

	if contentType == hcl.ContentTypeHCL {
		jobs, err := hcl.ParseJobs(string(body))
		if err != nil {
			return nil, fmt.Errorf("invalid HCL body: %w", err)
		}
		return &PlotRequest{Jobs: jobs}, nil
	}

	var request PlotRequest
	if err := json.Unmarshal(body, &request); err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	if len(request.Jobs) == 0 {
		var job render.Job
		if err := json.Unmarshal(body, &job); err != nil {
			return nil, fmt.Errorf("invalid JSON body: %w", err)
		}
		request.Jobs = []render.Job{job}
		request.Score = nil
	}
	return &request, nil
}

func (s *Server) renderOne(ctx context.Context, request *PlotRequest) (*render.Result, error) {
	job := request.Jobs[0]
	if s.temporalClient != nil {
		workflowRun, err := s.temporalClient.ExecuteWorkflow(
			ctx,
			client.StartWorkflowOptions{
				ID:        temporal.GenerateRenderWorkflowID(job.Name),
				TaskQueue: s.taskQueue,
			},
			temporal.RenderPlotWorkflow,
			temporal.RenderRequest{Job: job, Score: request.Score, ScoreID: request.ScoreID},
		)
		if err != nil {
			return nil, fmt.Errorf("failed to start render workflow: %w", err)
		}
		var result *render.Result
		if err := workflowRun.Get(ctx, &result); err != nil {
			return nil, err
		}
		return result, nil
	}

	stream, err := s.stream(ctx, request)
	if err != nil {
		return nil, err
	}
	return s.runner.Run(ctx, job, stream)
}

func (s *Server) renderBatch(ctx context.Context, request *PlotRequest) (*temporal.BatchResult, error) {
	if s.temporalClient != nil {
		workflowRun, err := s.temporalClient.ExecuteWorkflow(
			ctx,
			client.StartWorkflowOptions{
				ID:        temporal.GenerateBatchWorkflowID(),
				TaskQueue: s.taskQueue,
			},
			temporal.RenderBatchWorkflow,
			temporal.BatchRequest{Jobs: request.Jobs, Score: request.Score, ScoreID: request.ScoreID},
		)
		if err != nil {
			return nil, fmt.Errorf("failed to start batch workflow: %w", err)
		}
		var batch *temporal.BatchResult
		if err := workflowRun.Get(ctx, &batch); err != nil {
			return nil, err
		}
		return batch, nil
	}

	stream, err := s.stream(ctx, request)
	if err != nil {
		return nil, err
	}
	batch := &temporal.BatchResult{Results: make([]*render.Result, len(request.Jobs))}
	for i, job := range request.Jobs {
		result, err := s.runner.Run(ctx, job, stream)
		if err != nil {
			if !render.IsConfigError(err) {
				return nil, err
			}
			if batch.Errors == nil {
				batch.Errors = make(map[string]string)
			}
			name := job.Name
			if name == "" {
				name = fmt.Sprintf("job-%d", i)
			}
			batch.Errors[name] = err.Error()
			continue
		}
		batch.Results[i] = result
	}
	return batch, nil
}

// stream picks the request score, then the stored one. A nil stream lets
// each job fall back to its inline score.
func (s *Server) stream(ctx context.Context, request *PlotRequest) (score.Stream, error) {
	if request.Score != nil {
		return request.Score, nil
	}
	if request.ScoreID != "" {
		return s.store.LoadScore(ctx, request.ScoreID)
	}
	return nil, nil
}

// Score upload endpoint; the body is a JSON score or a Standard MIDI File
func (s *Server) handleUploadScore(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	sc, err := source.Read(r.Body)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if title := r.URL.Query().Get("title"); title != "" {
		sc.Title = title
	}

	id, err := s.store.SaveScore(r.Context(), sc)
	if err != nil {
		s.logger.Error("Failed to store score", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to store score")
		return
	}

	s.logger.Info("Stored score", "scoreID", id, "parts", len(sc.Parts))
	s.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"id":    id,
		"title": sc.Title,
		"parts": len(sc.Parts),
	})
}

// Catalog endpoint
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	entries := make([]CatalogEntry, 0, len(plot.Catalog))
	for _, p := range plot.Catalog {
		entries = append(entries, CatalogEntry{ID: p.ID(), Type: p.Type, Title: p.Title, X: p.X, Y: p.Y, Z: p.Z})
	}
	s.respondJSON(w, http.StatusOK, entries)
}

// Health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, source.ErrScoreNotFound), temporal.IsScoreNotFound(err):
		return http.StatusNotFound
	case render.IsConfigError(err), temporal.IsConfigError(err):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// Middleware for request logging
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap ResponseWriter to capture status code
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		s.logger.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapper.statusCode,
			"duration", time.Since(start),
			"user_agent", r.UserAgent(),
		)
	})
}

// Response helpers
func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Failed to encode JSON response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.logger.Warn("HTTP error response", "status", status, "message", message)
	s.respondJSON(w, status, map[string]string{"error": message})
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
