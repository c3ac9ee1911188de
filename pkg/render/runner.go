// Package render runs plot jobs: stream plots, windowed analyses and part
// reductions share one entry point.
package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/leowmjw/go-scoreplot/pkg/axis"
	"github.com/leowmjw/go-scoreplot/pkg/plot"
	"github.com/leowmjw/go-scoreplot/pkg/reduction"
	"github.com/leowmjw/go-scoreplot/pkg/score"
	"github.com/leowmjw/go-scoreplot/pkg/timeline"
	"github.com/leowmjw/go-scoreplot/pkg/windowed"
)

// ErrUnknownJob is returned when a job names no known preset or graph type.
var ErrUnknownJob = errors.New("unknown plot job")

var configErrors = []error{
	ErrUnknownJob,
	plot.ErrAxisUnset,
	plot.ErrInvalidTiming,
	plot.ErrNoStream,
	axis.ErrOptionType,
	axis.ErrUnknownAxis,
	reduction.ErrNotScore,
	windowed.ErrNoProcessor,
	windowed.ErrInvalidWindow,
}

// IsConfigError reports whether err is a failure of the job or its input
// rather than of the run.
func IsConfigError(err error) bool {
	for _, target := range configErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Result holds the output of one job. Exactly one of Figure, Windowed and
// Reduction is set.
type Result struct {
	RunID     string            `json:"runId"`
	Job       string            `json:"job"`
	Type      plot.GraphType    `json:"type"`
	Figure    *plot.Figure      `json:"figure,omitempty"`
	Windowed  *windowed.Result  `json:"windowed,omitempty"`
	Reduction *reduction.Result `json:"reduction,omitempty"`
	Elapsed   time.Duration     `json:"elapsed"`
}

// Progress reports the last finished window of a windowed job.
type Progress func(windowed.Position)

type progressKey struct{}

// WithProgress attaches a progress callback to ctx. Windowed jobs call it
// after every window.
func WithProgress(ctx context.Context, fn Progress) context.Context {
	return context.WithValue(ctx, progressKey{}, fn)
}

func progressFrom(ctx context.Context) Progress {
	fn, _ := ctx.Value(progressKey{}).(Progress)
	return fn
}

// Runner executes jobs. It holds no per-job state and may be shared.
type Runner struct {
	logger *slog.Logger
}

// NewRunner creates a runner logging to logger.
func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{logger: logger}
}

// Resolve finds the preset a job describes.
func Resolve(job Job) (plot.Preset, error) {
	if job.Preset != "" {
		p, ok := plot.Lookup(job.Preset)
		if !ok {
			return plot.Preset{}, fmt.Errorf("%w: preset %q", ErrUnknownJob, job.Preset)
		}
		if job.Title != "" {
			p.Title = job.Title
		}
		return p, nil
	}

	gt := plot.GraphType(strings.ToLower(job.Type))
	if job.X != "" {
		if !knownType(gt) {
			return plot.Preset{}, fmt.Errorf("%w: graph type %q", ErrUnknownJob, job.Type)
		}
		return plot.Preset{Type: gt, Title: job.Title, X: job.X, Y: job.Y, Z: job.Z}, nil
	}

	found := plot.Find(job.Type, job.Values...)
	if len(found) == 0 {
		return plot.Preset{}, fmt.Errorf("%w: nothing matches %q %v", ErrUnknownJob, job.Type, job.Values)
	}
	p := found[0]
	if job.Title != "" {
		p.Title = job.Title
	}
	return p, nil
}

func knownType(gt plot.GraphType) bool {
	switch gt {
	case plot.Scatter, plot.Histogram, plot.HorizontalBar, plot.ScatterWeighted, plot.Bars3D,
		plot.ColorGrid, plot.HorizontalBarWeighted:
		return true
	}
	return false
}

// Run executes job against stream, or against the job's inline score when
// stream is nil.
func (r *Runner) Run(ctx context.Context, job Job, stream score.Stream) (*Result, error) {
	if stream == nil && job.Score != nil {
		stream = job.Score
	}
	if stream == nil {
		return nil, plot.ErrNoStream
	}

	preset, err := Resolve(job)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result := &Result{RunID: uuid.NewString(), Job: job.Name, Type: preset.Type}
	log := r.logger.With("run", result.RunID, "job", job.Name, "plot", preset.ID())
	log.Info("Rendering plot")

	switch preset.Type {
	case plot.ColorGrid:
		result.Windowed, err = r.runWindowed(ctx, job, stream, log)
	case plot.HorizontalBarWeighted:
		result.Reduction, err = r.runReduction(ctx, job, stream, log)
	default:
		result.Figure, err = r.runPlot(ctx, job, preset, stream, log)
	}
	if err != nil {
		log.Error("Plot failed", "error", err)
		return nil, err
	}

	result.Elapsed = time.Since(start)
	log.Info("Plot rendered", "elapsed", result.Elapsed)
	return result, nil
}

func (r *Runner) runPlot(ctx context.Context, job Job, preset plot.Preset, stream score.Stream, log *slog.Logger) (*plot.Figure, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := preset.New(job.Options)
	if err != nil {
		return nil, err
	}
	p.Logger = log
	if job.Flatten != nil {
		p.Flatten = *job.Flatten
	}
	for _, k := range job.Kinds {
		p.Kinds = append(p.Kinds, score.Kind(strings.ToLower(k)))
	}
	switch strings.ToLower(job.Expander) {
	case "", "padded":
		p.Expander = plot.PaddedExpander{NullFill: job.NullFill}
	case "unpadded":
		p.Expander = plot.UnpaddedExpander{}
	default:
		return nil, fmt.Errorf("%w: expander %q", ErrUnknownJob, job.Expander)
	}
	return p.Run(stream)
}

func (r *Runner) runWindowed(ctx context.Context, job Job, stream score.Stream, log *slog.Logger) (*windowed.Result, error) {
	spec := WindowedSpec{}
	if job.Windowed != nil {
		spec = *job.Windowed
	}
	name := spec.Processor
	if name == "" {
		name = "ambitus"
	}
	proc, err := windowed.NewProcessor(strings.ToLower(name), stream)
	if err != nil {
		return nil, err
	}
	windowType, err := timeline.ParseWindowType(spec.WindowType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", windowed.ErrInvalidWindow, err)
	}

	engine := &windowed.Engine{
		Processor:    proc,
		MinWindow:    spec.MinWindow,
		MaxWindow:    spec.MaxWindow,
		Step:         windowed.StepPolicy(strings.ToLower(spec.Step)),
		StepSize:     spec.StepSize,
		WindowType:   windowType,
		Unit:         spec.Unit,
		ExpandLegend: spec.ExpandLegend,
		Logger:       log,
	}
	if fn := progressFrom(ctx); fn != nil {
		engine.OnWindow = fn
	}
	result, err := engine.Process(ctx, stream)
	if err != nil {
		return nil, err
	}
	if job.Title != "" {
		result.Title = job.Title
	}
	return result, nil
}

func (r *Runner) runReduction(ctx context.Context, job Job, stream score.Stream, log *slog.Logger) (*reduction.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	spec := ReductionSpec{}
	if job.Reduction != nil {
		spec = *job.Reduction
	}
	agg := &reduction.Aggregator{
		FillByMeasure:   spec.FillByMeasure,
		SegmentByTarget: spec.SegmentByTarget == nil || *spec.SegmentByTarget,
		NormalizeByPart: spec.NormalizeByPart,
		Groups:          spec.Groups,
		Default:         spec.Default,
		Logger:          log,
	}
	return agg.Process(stream)
}
