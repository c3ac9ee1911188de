// Package windowed runs a processor over windows of increasing size laid
// across a stream's timeline and assembles the results into a color matrix.
package windowed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"

	"github.com/aclements/go-moremath/vec"

	"github.com/leowmjw/go-scoreplot/pkg/axis"
	"github.com/leowmjw/go-scoreplot/pkg/score"
	"github.com/leowmjw/go-scoreplot/pkg/timeline"
)

var (
	// ErrNoProcessor is returned when no processor is configured or a
	// processor name is not registered.
	ErrNoProcessor = errors.New("no windowed processor")
	// ErrInvalidWindow is returned for window bounds that cannot be laid out.
	ErrInvalidWindow = errors.New("invalid window configuration")
)

// StepPolicy selects how window sizes grow.
type StepPolicy string

const (
	Pow2   StepPolicy = "pow2"
	Linear StepPolicy = "linear"
)

// placeholderColor fills windows in which nothing sounds.
const placeholderColor = "#ffffff"

// maxTickRows caps the number of labeled window sizes.
const maxTickRows = 12

// Engine configures one windowed analysis run.
type Engine struct {
	Processor Processor
	// MinWindow is the smallest window in units; 0 means 1.
	MinWindow int
	// MaxWindow is the largest window in units; 0 means half the timeline.
	MaxWindow int
	// Step defaults to Pow2.
	Step StepPolicy
	// StepSize is the increment for Linear steps; 0 means 1.
	StepSize int
	// WindowType defaults to timeline.SlidingWindow.
	WindowType timeline.WindowType
	// Unit is the length of one window unit in quarter lengths; 0 means 1.
	Unit float64
	// ExpandLegend asks the processor for its full legend.
	ExpandLegend bool
	// OnWindow is called after every window, silent ones included.
	OnWindow func(Position)
	Logger   *slog.Logger
}

// Position locates the last finished window: Segment windows of row Row,
// out of Rows rows and Segments windows in that row.
type Position struct {
	Row      int `json:"row"`
	Rows     int `json:"rows"`
	Segment  int `json:"segment"`
	Segments int `json:"segments"`
}

// Cell is one matrix entry.
type Cell struct {
	Color    string `json:"color"`
	Solution any    `json:"solution,omitempty"`
}

// RowMeta describes one matrix row.
type RowMeta struct {
	WindowSize   int `json:"windowSize"`
	SegmentCount int `json:"segmentCount"`
}

// Result is a rectangular matrix with one row per window size in ascending
// order and one column per segment of the smallest window size.
type Result struct {
	Title  string      `json:"title"`
	Matrix [][]Cell    `json:"matrix"`
	Meta   []RowMeta   `json:"meta"`
	XTicks []axis.Tick `json:"xTicks"`
	YTicks []axis.Tick `json:"yTicks"`
	XLabel string      `json:"xLabel"`
	YLabel string      `json:"yLabel"`
	Legend Legend      `json:"legend"`
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (e *Engine) unit() float64 {
	if e.Unit > 0 {
		return e.Unit
	}
	return 1
}

// WindowSizes enumerates window sizes from min to max. A zero max means half
// of units, never less than min. Sizes above units are clamped since such
// windows cover the whole timeline anyway.
func WindowSizes(min, max, units int, step StepPolicy, stepSize int) ([]int, error) {
	if min < 1 {
		return nil, fmt.Errorf("%w: minimum window %d", ErrInvalidWindow, min)
	}
	if max == 0 {
		max = units / 2
		if max < min {
			max = min
		}
	}
	if max < min {
		return nil, fmt.Errorf("%w: maximum window %d below minimum %d", ErrInvalidWindow, max, min)
	}
	if units > 0 && max > units {
		max = units
		if max < min {
			max = min
		}
	}

	var sizes []int
	switch step {
	case Pow2, "":
		for w := min; w <= max; w *= 2 {
			sizes = append(sizes, w)
		}
	case Linear:
		if stepSize <= 0 {
			stepSize = 1
		}
		for w := min; w <= max; w += stepSize {
			sizes = append(sizes, w)
		}
	default:
		return nil, fmt.Errorf("%w: unknown step policy %q", ErrInvalidWindow, step)
	}
	return sizes, nil
}

// Process runs the processor over every window. Rows shorter than the first
// are stretched so the matrix stays rectangular. Cancellation is checked
// before each processor call.
func (e *Engine) Process(ctx context.Context, stream score.Stream) (*Result, error) {
	if e.Processor == nil {
		return nil, ErrNoProcessor
	}
	if stream == nil {
		return nil, fmt.Errorf("%w: no stream", ErrInvalidWindow)
	}
	windowType := e.WindowType
	if windowType == "" {
		windowType = timeline.SlidingWindow
	}

	events := score.Filter(stream.Recurse(), score.KindNote, score.KindChord, score.KindRest)
	for i, ev := range events {
		if err := ev.ValidateTiming(); err != nil {
			return nil, fmt.Errorf("%w: event %d: %v", ErrInvalidWindow, i, err)
		}
	}

	unit := e.unit()
	length := score.HighestTime(stream)
	units := int(math.Ceil(length / unit))
	if units == 0 {
		return nil, fmt.Errorf("%w: timeline is empty", ErrInvalidWindow)
	}

	minWindow := e.MinWindow
	if minWindow == 0 {
		minWindow = 1
	}
	sizes, err := WindowSizes(minWindow, e.MaxWindow, units, e.Step, e.StepSize)
	if err != nil {
		return nil, err
	}

	log := e.logger()
	result := &Result{Title: e.Processor.Name()}

	for rowIdx, size := range sizes {
		var windows []timeline.Window
		if windowType == timeline.SlidingWindow {
			windows = timeline.SlidingSpans(0, length, float64(size)*unit, unit)
		} else {
			windows = timeline.TumblingSpans(0, length, float64(size)*unit)
		}

		row := make([]Cell, 0, len(windows))
		for segIdx, w := range windows {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			slice := timeline.Slice(events, w.Span)
			if !sounds(slice) {
				row = append(row, Cell{Color: placeholderColor})
			} else {
				raw, color, err := e.Processor.Process(slice)
				if err != nil {
					return nil, fmt.Errorf("window size %d segment %d: %w", size, segIdx, err)
				}
				row = append(row, Cell{Color: color, Solution: raw})
			}
			if e.OnWindow != nil {
				e.OnWindow(Position{Row: rowIdx, Rows: len(sizes), Segment: segIdx + 1, Segments: len(windows)})
			}
		}

		result.Matrix = append(result.Matrix, row)
		result.Meta = append(result.Meta, RowMeta{WindowSize: size, SegmentCount: len(row)})
		log.Debug("window row done", "processor", result.Title, "windowSize", size, "segments", len(row))
	}

	columns := len(result.Matrix[0])
	for i, row := range result.Matrix {
		result.Matrix[i] = stretch(row, columns)
	}

	result.YTicks = YTicks(result.Meta, unit)
	result.YLabel = "Window Size\n(Quarter Lengths)"

	offsets := axis.NewOffset(axis.X)
	if m, ok := stream.(score.Measured); ok {
		offsets.SetMeasures(m.Measures())
	}
	offsets.SetBoundariesFromData([]float64{0, length})
	if xTicks := offsets.Ticks(); len(xTicks) >= 2 {
		result.XTicks = []axis.Tick{
			{Value: 0, Label: xTicks[0].Label},
			{Value: 1, Label: xTicks[len(xTicks)-1].Label},
		}
	} else {
		result.XTicks = xTicks
	}
	result.XLabel = fmt.Sprintf("Windows (%s Span)", offsets.Label())
	result.Legend = e.Processor.SolutionLegend(!e.ExpandLegend)

	return result, nil
}

func sounds(slice []score.Event) bool {
	for _, ev := range slice {
		if ev.Kind == score.KindNote || ev.Kind == score.KindChord {
			return true
		}
	}
	return false
}

// stretch widens row to columns cells, each segment covering an equal share.
func stretch(row []Cell, columns int) []Cell {
	if len(row) == columns || len(row) == 0 {
		return row
	}
	out := make([]Cell, columns)
	for j := range out {
		out[j] = row[j*len(row)/columns]
	}
	return out
}

// TickRows picks the rows that get a label: all of them up to twelve,
// otherwise twelve evenly spaced rows including the first and last.
func TickRows(n int) []int {
	if n <= 0 {
		return nil
	}
	if n <= maxTickRows {
		rows := make([]int, n)
		for i := range rows {
			rows[i] = i
		}
		return rows
	}
	var rows []int
	for _, x := range vec.Linspace(0, float64(n-1), maxTickRows) {
		r := int(math.Round(x))
		if len(rows) > 0 && rows[len(rows)-1] == r {
			continue
		}
		rows = append(rows, r)
	}
	return rows
}

// YTicks labels the chosen rows with their window size in quarter lengths.
// Each label sits between two blank ticks so adjacent labels stay apart.
func YTicks(meta []RowMeta, unit float64) []axis.Tick {
	var ticks []axis.Tick
	pos := 0.0
	for _, r := range TickRows(len(meta)) {
		size := float64(meta[r].WindowSize) * unit
		ticks = append(ticks,
			axis.Tick{Value: pos},
			axis.Tick{Value: pos + 1, Label: strconv.FormatFloat(size, 'g', 6, 64)},
			axis.Tick{Value: pos + 2},
		)
		pos += 3
	}
	return ticks
}
