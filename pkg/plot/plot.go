// Package plot turns a stream of musical events into plot-ready coordinate
// records. A Plot binds two or three axes, walks the stream, resolves chords
// into per-pitch records and finalizes axis boundaries and ticks.
package plot

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/leowmjw/go-scoreplot/pkg/axis"
	"github.com/leowmjw/go-scoreplot/pkg/score"
)

var (
	// ErrAxisUnset is returned when a required axis is missing at run time.
	ErrAxisUnset = errors.New("axis is not set")
	// ErrInvalidTiming is returned when an event cannot be placed in time.
	ErrInvalidTiming = errors.New("event has invalid timing")
	// ErrNoStream is returned when Run is given nothing to read.
	ErrNoStream = errors.New("no event stream")
)

// GraphType names a plot family.
type GraphType string

const (
	Scatter         GraphType = "scatter"
	Histogram       GraphType = "histogram"
	HorizontalBar   GraphType = "horizontalbar"
	ScatterWeighted GraphType = "scatterweighted"
	Bars3D          GraphType = "3dbars"
)

// Dimensions returns how many axes the graph type needs.
func (g GraphType) Dimensions() int {
	switch g {
	case ScatterWeighted, Bars3D:
		return 3
	}
	return 2
}

// Record is one plottable point with one value per axis.
type Record []float64

// Plot is a configured extraction run. Build a new Plot, with new axes, for
// every stream.
type Plot struct {
	Type  GraphType
	Title string
	X     axis.Axis
	Y     axis.Axis
	Z     axis.Axis
	// Expander resolves chords; nil pads with a null fill of 0.
	Expander ChordExpander
	// Flatten walks nested containers instead of top-level elements only.
	Flatten bool
	// Kinds restricts which events are plotted; nil means notes and chords.
	Kinds []score.Kind
	// Options are prefixed axis options such as xHideUnused.
	Options map[string]cty.Value
	Logger  *slog.Logger
}

// ID joins the graph type and the axis names, e.g. "histogram-pitchSpace-counting".
func (p *Plot) ID() string {
	parts := []string{string(p.Type)}
	for _, a := range p.Axes() {
		parts = append(parts, a.Name())
	}
	return strings.Join(parts, "-")
}

// Axes returns the configured axes in x, y, z order.
func (p *Plot) Axes() []axis.Axis {
	var axes []axis.Axis
	for _, a := range []axis.Axis{p.X, p.Y, p.Z} {
		if a != nil {
			axes = append(axes, a)
		}
	}
	return axes
}

func (p *Plot) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (p *Plot) checkAxes() error {
	required := []struct {
		role axis.Role
		a    axis.Axis
	}{{axis.X, p.X}, {axis.Y, p.Y}, {axis.Z, p.Z}}

	for i := 0; i < p.Type.Dimensions(); i++ {
		if required[i].a == nil {
			return fmt.Errorf("%w: %s plot needs a %s axis", ErrAxisUnset, p.Type, required[i].role)
		}
	}
	return nil
}

func (p *Plot) events(stream score.Stream) []score.Event {
	var events []score.Event
	if p.Flatten {
		events = stream.Recurse()
	} else {
		events = stream.Elements()
	}
	kinds := p.Kinds
	if len(kinds) == 0 {
		kinds = []score.Kind{score.KindNote, score.KindChord}
	}
	return score.Filter(events, kinds...)
}

// Run extracts records from stream and finalizes every axis.
func (p *Plot) Run(stream score.Stream) (*Figure, error) {
	if stream == nil {
		return nil, ErrNoStream
	}
	if err := p.checkAxes(); err != nil {
		return nil, err
	}
	if p.Type == "" {
		p.Type = Scatter
	}

	axes := p.Axes()
	if err := axis.ApplyOptions(axes, p.Options); err != nil {
		return nil, err
	}

	events := p.events(stream)
	for i, ev := range events {
		if err := ev.ValidateTiming(); err != nil {
			return nil, fmt.Errorf("%w: event %d: %v", ErrInvalidTiming, i, err)
		}
	}

	if ma, ok := p.X.(axis.MeasureAware); ok {
		if m, ok := stream.(score.Measured); ok {
			ma.SetMeasures(m.Measures())
		}
	}

	columns := axes
	if p.Type == HorizontalBar {
		duration := axis.NewQuarterLength(axis.X)
		duration.UseLogScale = false
		columns = append(append([]axis.Axis{}, axes...), duration)
	}

	expander := p.Expander
	if expander == nil {
		expander = PaddedExpander{}
	}

	var records []Record
	for _, ev := range events {
		records = append(records, extractEvent(ev, columns, expander)...)
	}

	if idx, keys, ok := countingColumns(axes); ok {
		records = countRecords(records, idx, keys)
	}

	for i, a := range axes {
		values := column(records, i)
		if _, ok := a.(*axis.OffsetEnd); ok && len(columns) > len(axes) {
			durations := column(records, len(axes))
			for j, d := range durations {
				values = append(values, values[j]+d)
			}
		}
		a.SetBoundariesFromData(values)
	}
	for _, a := range axes {
		a.PostProcess()
	}

	fig := &Figure{
		ID:    p.ID(),
		Type:  p.Type,
		Title: p.Title,
	}
	ticks := make(map[axis.Role][]axis.Tick, len(axes))
	for _, a := range axes {
		ticks[a.Role()] = a.Ticks()
	}

	switch p.Type {
	case Histogram:
		ticks[axis.X] = RemapHistogramTicks(p.X, records)
		fig.Records = records
	case HorizontalBar:
		fig.Bars = horizontalBars(ticks[axis.Y], records)
	default:
		fig.Records = records
	}

	for _, a := range axes {
		fig.Axes = append(fig.Axes, newAxisInfo(a, ticks[a.Role()]))
	}

	p.logger().Debug("plot extracted",
		"plot", fig.ID,
		"events", len(events),
		"records", len(records))

	return fig, nil
}

// extractEvent resolves one event into zero or more records. A simple event
// without a value on any axis yields nothing.
func extractEvent(ev score.Event, columns []axis.Axis, expander ChordExpander) []Record {
	if ev.IsComposite() {
		return zipRecords(expander.ExpandChord(ev, columns))
	}
	lists := make([][]float64, len(columns))
	for i, a := range columns {
		v, ok := a.Extract(ev)
		if !ok {
			return nil
		}
		lists[i] = v
	}
	return zipRecords(lists)
}

func column(records []Record, i int) []float64 {
	values := make([]float64, 0, len(records))
	for _, r := range records {
		values = append(values, r[i])
	}
	return values
}

// countingColumns locates a counting axis and the columns it groups by.
func countingColumns(axes []axis.Axis) (int, []int, bool) {
	for i, a := range axes {
		c, ok := a.(*axis.Counting)
		if !ok {
			continue
		}
		var keys []int
		for _, role := range c.CountAxes {
			for j, other := range axes {
				if j != i && other.Role() == role {
					keys = append(keys, j)
				}
			}
		}
		if len(keys) == 0 {
			for j := range axes {
				if j != i {
					keys = append(keys, j)
				}
			}
		}
		return i, keys, true
	}
	return 0, nil, false
}

// countRecords collapses records sharing the key columns into one record
// whose count column holds the group size. Output is sorted by the keys.
func countRecords(records []Record, countIdx int, keys []int) []Record {
	groups := make(map[string]Record)
	for _, r := range records {
		var sb strings.Builder
		for _, k := range keys {
			sb.WriteString(strconv.FormatFloat(r[k], 'g', -1, 64))
			sb.WriteByte(',')
		}
		key := sb.String()
		if g, ok := groups[key]; ok {
			g[countIdx]++
			continue
		}
		g := append(Record{}, r...)
		g[countIdx] = 1
		groups[key] = g
	}

	counted := make([]Record, 0, len(groups))
	for _, g := range groups {
		counted = append(counted, g)
	}
	sort.Slice(counted, func(i, j int) bool {
		for _, k := range keys {
			if counted[i][k] != counted[j][k] {
				return counted[i][k] < counted[j][k]
			}
		}
		return false
	})
	return counted
}

// Figure is the finished data handed to a canvas.
type Figure struct {
	ID      string     `json:"id"`
	Type    GraphType  `json:"type"`
	Title   string     `json:"title,omitempty"`
	Axes    []AxisInfo `json:"axes"`
	Records []Record   `json:"records,omitempty"`
	Bars    []BarRow   `json:"bars,omitempty"`
}

// Axis returns the finalized description of the axis bound to role.
func (f *Figure) Axis(role axis.Role) (AxisInfo, bool) {
	for _, a := range f.Axes {
		if a.Role == role {
			return a, true
		}
	}
	return AxisInfo{}, false
}

// AxisInfo describes a finalized axis. Unset bounds are omitted.
type AxisInfo struct {
	Role  axis.Role   `json:"role"`
	Name  string      `json:"name"`
	Label string      `json:"label"`
	Min   *float64    `json:"min,omitempty"`
	Max   *float64    `json:"max,omitempty"`
	Ticks []axis.Tick `json:"ticks"`
}

func newAxisInfo(a axis.Axis, ticks []axis.Tick) AxisInfo {
	info := AxisInfo{
		Role:  a.Role(),
		Name:  a.Name(),
		Label: a.Label(),
		Ticks: ticks,
	}
	lo, hi := a.Bounds()
	if !math.IsNaN(lo) {
		info.Min = &lo
	}
	if !math.IsNaN(hi) {
		info.Max = &hi
	}
	return info
}
