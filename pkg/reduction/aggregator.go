// Package reduction summarizes a multi-part score as weighted horizontal
// bars: one row per part group, one bar per segment, with the bar height
// taken from a target attribute such as dynamics.
package reduction

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"

	"github.com/leowmjw/go-scoreplot/pkg/score"
	"github.com/leowmjw/go-scoreplot/pkg/timeline"
	"github.com/leowmjw/go-scoreplot/pkg/util"
)

// ErrNotScore is returned when the input has no parts to reduce.
var ErrNotScore = errors.New("part reduction requires a multi-part score")

// Sampler extracts the target attribute of a flattened part as samples. The
// sample value is the discrete state and the scalar its 0..1 weight.
type Sampler func(events []score.Event) timeline.Samples

// DynamicSampler samples dynamic markings, weighted by their scalar.
func DynamicSampler(events []score.Event) timeline.Samples {
	var samples timeline.Samples
	for _, e := range events {
		if e.Kind != score.KindDynamic {
			continue
		}
		scalar, ok := score.DynamicScalar(e.Dynamic)
		if !ok {
			continue
		}
		samples = append(samples, timeline.Sample{Offset: e.Offset, Value: e.Dynamic, Scalar: scalar})
	}
	return samples
}

// Aggregator configures one part reduction.
type Aggregator struct {
	// FillByMeasure segments parts by measure instead of by note.
	FillByMeasure bool
	// SegmentByTarget splits segments where the target changes inside them.
	SegmentByTarget bool
	// NormalizeByPart scales each part to its own maximum instead of the
	// maximum over all parts.
	NormalizeByPart bool
	// Groups maps parts to rows. Nil means DefaultGroups.
	Groups []Group
	// Target defaults to DynamicSampler.
	Target Sampler
	// Default is the target state before the first sample; "" means mf.
	Default string
	Logger  *slog.Logger
}

// Segment is one contiguous run of a target value within a part.
type Segment struct {
	Part   int     `json:"part"`
	Start  float64 `json:"start"`
	Span   float64 `json:"span"`
	Value  string  `json:"value"`
	Height float64 `json:"height"`
}

// Bar is one weighted bar of the output.
type Bar struct {
	Group  string  `json:"group"`
	Start  float64 `json:"start"`
	Span   float64 `json:"span"`
	Height float64 `json:"height"`
	Color  string  `json:"color"`
}

// GroupSummary condenses the bars of one group.
type GroupSummary struct {
	Group string `json:"group"`
	// Level is the mean bar height weighted by span.
	Level float64 `json:"level"`
	Peak  float64 `json:"peak"`
	// Time is how long each target state holds, summed over member parts.
	Time map[string]float64 `json:"time"`
}

// Result lists groups in display order and their bars. Start and End bound
// every bar.
type Result struct {
	Groups    []string       `json:"groups"`
	Bars      []Bar          `json:"bars"`
	Summaries []GroupSummary `json:"summaries"`
	Start     float64        `json:"start"`
	End       float64        `json:"end"`
}

func (a *Aggregator) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Process segments every part, normalizes heights and maps parts to groups.
// Parts that match no group are left out.
func (a *Aggregator) Process(stream score.Stream) (*Result, error) {
	s, ok := stream.(*score.Score)
	if !ok || s == nil {
		return nil, fmt.Errorf("%w: got %T", ErrNotScore, stream)
	}

	groups := a.Groups
	if groups == nil {
		groups = DefaultGroups(s)
	}

	perPart := make([][]Segment, len(s.Parts))
	states := make([]StateTime, len(s.Parts))
	for i, p := range s.Parts {
		segs, err := a.segmentPart(i, p)
		if err != nil {
			return nil, fmt.Errorf("part %d %q: %w", i, p.Name, err)
		}
		perPart[i] = segs
		states[i] = a.stateTime(p)
	}
	normalize(perPart, a.NormalizeByPart)

	result := &Result{Start: math.NaN(), End: math.NaN()}
	for _, g := range groups {
		members := g.Members(s)
		if len(members) == 0 {
			continue
		}
		result.Groups = append(result.Groups, g.Name)
		var bars []Bar
		for _, i := range members {
			for _, seg := range perPart[i] {
				bars = append(bars, Bar{
					Group:  g.Name,
					Start:  seg.Start,
					Span:   seg.Span,
					Height: seg.Height,
					Color:  g.Color,
				})
			}
		}
		sort.SliceStable(bars, func(i, j int) bool { return bars[i].Start < bars[j].Start })
		result.Bars = append(result.Bars, bars...)
		result.Summaries = append(result.Summaries, summarize(g.Name, bars, members, states))
	}

	for _, b := range result.Bars {
		if math.IsNaN(result.Start) || b.Start < result.Start {
			result.Start = b.Start
		}
		if math.IsNaN(result.End) || b.Start+b.Span > result.End {
			result.End = b.Start + b.Span
		}
	}
	if len(result.Bars) == 0 {
		result.Start, result.End = 0, 0
	}

	a.logger().Debug("part reduction done", "parts", len(s.Parts), "groups", len(result.Groups), "bars", len(result.Bars))
	return result, nil
}

// Segments returns the unnormalized segments of one part.
func (a *Aggregator) Segments(p *score.Part) ([]Segment, error) {
	return a.segmentPart(0, p)
}

func (a *Aggregator) segmentPart(index int, p *score.Part) ([]Segment, error) {
	events := p.Recurse()
	for i, e := range events {
		if err := e.ValidateTiming(); err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
	}

	target := a.Target
	if target == nil {
		target = DynamicSampler
	}
	samples := target(events)

	var out []Segment
	for _, span := range a.spans(events) {
		active, ok := timeline.ValueAt(samples, span.Start)
		if !ok {
			active = a.defaultSample(span.Start)
		}

		if a.SegmentByTarget {
			start := span.Start
			for _, change := range timeline.ChangesWithin(samples, span.Start, span.End) {
				out = append(out, Segment{Part: index, Start: start, Span: change.Offset - start, Value: active.Value, Height: active.Scalar})
				start, active = change.Offset, change
			}
			out = append(out, Segment{Part: index, Start: start, Span: span.End - start, Value: active.Value, Height: active.Scalar})
			continue
		}

		scalars := []float64{active.Scalar}
		for _, s := range samples {
			if s.Offset > span.Start && s.Offset < span.End {
				scalars = append(scalars, s.Scalar)
			}
		}
		out = append(out, Segment{Part: index, Start: span.Start, Span: span.Length(), Value: active.Value, Height: timeline.Aggregate(scalars, timeline.Avg)})
	}
	return out, nil
}

// StateTime maps a target state to how long it holds.
type StateTime map[string]float64

// stateTime measures each target state of p from the first sounding event to
// the end of the part. Time before the first sample counts toward the
// default state.
func (a *Aggregator) stateTime(p *score.Part) StateTime {
	events := p.Recurse()
	target := a.Target
	if target == nil {
		target = DynamicSampler
	}
	samples := target(events)

	sounding := score.Filter(events, score.KindNote, score.KindChord)
	if len(sounding) == 0 {
		return StateTime{}
	}
	start := sounding[0].Offset
	for _, e := range sounding {
		start = util.Min(start, e.Offset)
	}
	if first, ok := timeline.ValueAt(samples, start); ok {
		samples = append(samples, timeline.Sample{Offset: start, Value: first.Value, Scalar: first.Scalar})
	} else {
		samples = append(samples, a.defaultSample(start))
	}

	var inRange timeline.Samples
	for _, smp := range samples {
		if smp.Offset >= start {
			inRange = append(inRange, smp)
		}
	}

	out := StateTime{}
	runs := timeline.StateRuns(inRange, partEnd(events))
	for i, d := range timeline.Durations(runs) {
		out[runs[i].State] += d.Value
	}
	return out
}

func summarize(group string, bars []Bar, members []int, states []StateTime) GroupSummary {
	sum := GroupSummary{Group: group, Time: map[string]float64{}}
	heights := make([]float64, 0, len(bars))
	spans := make(timeline.NumericTimeline, 0, len(bars))
	for _, b := range bars {
		heights = append(heights, b.Height)
		spans = append(spans, timeline.NumericInterval{Value: b.Height, Span: timeline.Span{Start: b.Start, End: b.Start + b.Span}})
	}
	sum.Level = timeline.WeightedMean(spans)
	sum.Peak = timeline.Aggregate(heights, timeline.Max)
	if len(bars) == 0 {
		sum.Level, sum.Peak = 0, 0
	}
	for _, i := range members {
		for state, t := range states[i] {
			sum.Time[state] += t
		}
	}
	return sum
}

func (a *Aggregator) defaultSample(offset float64) timeline.Sample {
	name := a.Default
	if name == "" {
		name = score.DefaultDynamic
	}
	scalar, _ := score.DynamicScalar(name)
	return timeline.Sample{Offset: offset, Value: name, Scalar: scalar}
}

// spans lays out the segment grid: measures when requested and present,
// otherwise each sounding note or chord.
func (a *Aggregator) spans(events []score.Event) []timeline.Span {
	var spans []timeline.Span
	if a.FillByMeasure {
		measures := score.Filter(events, score.KindMeasure)
		end := partEnd(events)
		for i, m := range measures {
			stop := m.End()
			if m.Duration == 0 {
				stop = end
				if i+1 < len(measures) {
					stop = measures[i+1].Offset
				}
			}
			if stop > m.Offset {
				spans = append(spans, timeline.Span{Start: m.Offset, End: stop})
			}
		}
		if len(spans) > 0 {
			return spans
		}
	}
	for _, e := range score.Filter(events, score.KindNote, score.KindChord) {
		if e.Duration > 0 {
			spans = append(spans, timeline.Span{Start: e.Offset, End: e.End()})
		}
	}
	return spans
}

func partEnd(events []score.Event) float64 {
	end := 0.0
	for _, e := range events {
		if e.End() > end {
			end = e.End()
		}
	}
	return end
}

// normalize divides heights by the part maximum or, when byPart is false,
// by the maximum over every part.
func normalize(perPart [][]Segment, byPart bool) {
	maxOf := func(segs []Segment) float64 {
		m := 0.0
		for _, s := range segs {
			m = util.Max(m, s.Height)
		}
		return m
	}

	global := 0.0
	for _, segs := range perPart {
		global = util.Max(global, maxOf(segs))
	}

	for _, segs := range perPart {
		m := global
		if byPart {
			m = maxOf(segs)
		}
		if m == 0 {
			continue
		}
		for i := range segs {
			segs[i].Height /= m
		}
	}
}
