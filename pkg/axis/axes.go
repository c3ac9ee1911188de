package axis

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/leowmjw/go-scoreplot/pkg/score"
	"github.com/leowmjw/go-scoreplot/pkg/util"
)

// ErrUnknownAxis is returned by New for an unregistered axis name.
var ErrUnknownAxis = errors.New("unknown axis")

// New builds a fresh axis by name.
func New(name string, role Role) (Axis, error) {
	switch strings.ToLower(name) {
	case "offset":
		return NewOffset(role), nil
	case "offsetend":
		return NewOffsetEnd(role), nil
	case "quarterlength", "ql", "duration":
		return NewQuarterLength(role), nil
	case "pitchspace", "pitch", "ps":
		return NewPitchSpace(role), nil
	case "pitchclass", "pc":
		return NewPitchClass(role), nil
	case "dynamics", "dynamic":
		return NewDynamics(role), nil
	case "counting", "count":
		return NewCounting(role), nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownAxis, name)
}

// Names lists the canonical axis names accepted by New.
var Names = []string{"offset", "offsetEnd", "quarterLength", "pitchSpace", "pitchClass", "dynamics", "counting"}

// MeasureAware axes can label positions with measure numbers.
type MeasureAware interface {
	SetMeasures(measures []score.Event)
}

const maxMeasureTicks = 10

// Offset places events at their start.
type Offset struct {
	base
	measures []score.Event
}

func NewOffset(role Role) *Offset {
	a := &Offset{}
	a.init(role, "offset", "Offset")
	return a
}

func (a *Offset) Extract(ev score.Event) ([]float64, bool) {
	return []float64{ev.Offset}, true
}

// SetMeasures switches ticks to measure starts labeled by measure number.
func (a *Offset) SetMeasures(measures []score.Event) {
	a.measures = measures
}

func (a *Offset) Ticks() []Tick {
	lo, hi := a.Bounds()
	if len(a.measures) == 0 {
		return linearTicks(lo, hi, false, nil)
	}
	if math.IsNaN(lo) || math.IsNaN(hi) {
		return nil
	}

	var ticks []Tick
	for _, m := range a.measures {
		if m.Offset < lo || m.Offset > hi {
			continue
		}
		ticks = append(ticks, Tick{Value: m.Offset, Label: strconv.Itoa(m.Number)})
	}
	if len(ticks) <= maxMeasureTicks {
		return ticks
	}

	step := int(math.Ceil(float64(len(ticks)) / maxMeasureTicks))
	var thinned []Tick
	for i := 0; i < len(ticks); i += step {
		thinned = append(thinned, ticks[i])
	}
	return thinned
}

// OffsetEnd is the time axis of piano-roll bars. Its boundaries cover both
// starts and ends of the events it spans.
type OffsetEnd struct {
	Offset
}

func NewOffsetEnd(role Role) *OffsetEnd {
	a := &OffsetEnd{}
	a.init(role, "offsetEnd", "Offset")
	return a
}

// minLogQuarterLength stands in for zero durations on a log scale.
const minLogQuarterLength = 1.0 / 8192

// QuarterLength places events by duration, on a log2 scale by default.
type QuarterLength struct {
	base
	UseLogScale bool
	distinct    []float64
}

func NewQuarterLength(role Role) *QuarterLength {
	a := &QuarterLength{UseLogScale: true}
	a.init(role, "quarterLength", "Quarter Length")
	a.options["useLogScale"] = boolOption(&a.UseLogScale)
	return a
}

func (a *QuarterLength) Extract(ev score.Event) ([]float64, bool) {
	if ev.Kind == score.KindDynamic || ev.Kind == score.KindMeasure {
		return nil, false
	}
	d := ev.Duration
	if !a.UseLogScale {
		return []float64{d}, true
	}
	if d <= 0 {
		d = minLogQuarterLength
	}
	return []float64{math.Log2(d)}, true
}

func (a *QuarterLength) SetBoundariesFromData(values []float64) {
	a.base.SetBoundariesFromData(values)
	a.distinct = util.Distinct(finite(values))
}

// Ticks labels every realized duration in quarter lengths.
func (a *QuarterLength) Ticks() []Tick {
	lo, hi := a.Bounds()
	var ticks []Tick
	for _, v := range a.distinct {
		if v < lo || v > hi {
			continue
		}
		ql := v
		if a.UseLogScale {
			ql = math.Exp2(v)
		}
		ticks = append(ticks, Tick{Value: v, Label: strconv.FormatFloat(ql, 'g', 6, 64)})
	}
	return ticks
}

// pitchAxis holds the bucket policy shared by pitch axes.
type pitchAxis struct {
	base
	HideUnused       bool
	BlankLabelUnused bool
	distinct         []float64
}

func (a *pitchAxis) initPitch(role Role, name, label string) {
	a.init(role, name, label)
	a.HideUnused = true
	a.BlankLabelUnused = true
	a.options["hideUnused"] = boolOption(&a.HideUnused)
	a.options["blankLabelUnused"] = boolOption(&a.BlankLabelUnused)
}

func (a *pitchAxis) SetBoundariesFromData(values []float64) {
	a.base.SetBoundariesFromData(values)
	a.distinct = finite(values)
}

// PostProcess sorts the realized buckets.
func (a *pitchAxis) PostProcess() {
	a.distinct = util.Distinct(a.distinct)
}

func (a *pitchAxis) HidesUnused() bool   { return a.HideUnused }
func (a *pitchAxis) Distinct() []float64 { return a.distinct }

func (a *pitchAxis) ticks(lo, hi float64, name func(float64) string) []Tick {
	if a.HideUnused {
		ticks := make([]Tick, 0, len(a.distinct))
		for _, v := range a.distinct {
			ticks = append(ticks, Tick{Value: v, Label: name(v)})
		}
		return ticks
	}
	if math.IsNaN(lo) || math.IsNaN(hi) {
		return nil
	}
	var ticks []Tick
	for v := math.Ceil(lo); v <= math.Floor(hi); v++ {
		label := name(v)
		if a.BlankLabelUnused && !util.Contains(a.distinct, v) {
			label = ""
		}
		ticks = append(ticks, Tick{Value: v, Label: label})
	}
	return ticks
}

// PitchSpace places notes by MIDI pitch number. Chords have no chord-level
// value and resolve through their pitches.
type PitchSpace struct {
	pitchAxis
}

func NewPitchSpace(role Role) *PitchSpace {
	a := &PitchSpace{}
	a.initPitch(role, "pitchSpace", "Pitch")
	return a
}

func (a *PitchSpace) Extract(ev score.Event) ([]float64, bool) {
	p, ok := ev.Pitch()
	if !ok {
		return nil, false
	}
	return []float64{p.Space}, true
}

func (a *PitchSpace) ValueLabel(v float64) string {
	return score.Pitch{Space: v}.NameWithOctave()
}

func (a *PitchSpace) Ticks() []Tick {
	lo, hi := a.Bounds()
	return a.ticks(lo, hi, a.ValueLabel)
}

// PitchClass places notes by pitch class 0-11.
type PitchClass struct {
	pitchAxis
}

func NewPitchClass(role Role) *PitchClass {
	a := &PitchClass{}
	a.initPitch(role, "pitchClass", "Pitch Class")
	return a
}

func (a *PitchClass) Extract(ev score.Event) ([]float64, bool) {
	p, ok := ev.Pitch()
	if !ok {
		return nil, false
	}
	return []float64{float64(p.Class())}, true
}

func (a *PitchClass) ValueLabel(v float64) string {
	return score.PitchClassNames[score.Pitch{Space: v}.Class()]
}

// Ticks shows all twelve classes unless unused ones are hidden.
func (a *PitchClass) Ticks() []Tick {
	return a.ticks(0, 11, a.ValueLabel)
}

// Dynamics places events by the index of their active dynamic marking.
// Chords carry the marking themselves, so they resolve at chord level.
type Dynamics struct {
	base
}

func NewDynamics(role Role) *Dynamics {
	a := &Dynamics{}
	a.init(role, "dynamics", "Dynamics")
	return a
}

func (a *Dynamics) Extract(ev score.Event) ([]float64, bool) {
	if ev.Kind == score.KindMeasure || ev.Kind == score.KindRest {
		return nil, false
	}
	idx, ok := score.DynamicIndex(ev.Dynamic)
	if !ok {
		return nil, false
	}
	return []float64{float64(idx)}, true
}

func (a *Dynamics) Ticks() []Tick {
	lo, hi := a.Bounds()
	if math.IsNaN(lo) || math.IsNaN(hi) {
		return nil
	}
	var ticks []Tick
	for i := int(math.Ceil(lo)); i <= int(hi) && i < len(score.Dynamics); i++ {
		if i < 0 {
			continue
		}
		ticks = append(ticks, Tick{Value: float64(i), Label: score.Dynamics[i]})
	}
	return ticks
}

// Counting yields 1 for every record. Records are then grouped by the
// CountAxes and this column holds each group's size.
type Counting struct {
	base
	CountAxes []Role
}

func NewCounting(role Role, countAxes ...Role) *Counting {
	if len(countAxes) == 0 {
		countAxes = []Role{X}
	}
	a := &Counting{CountAxes: countAxes}
	a.init(role, "counting", "Count")
	a.options["countAxes"] = func(v cty.Value) error {
		var s string
		if err := assign(v, cty.String, &s); err != nil {
			return err
		}
		var roles []Role
		for _, c := range s {
			r, err := ParseRole(string(c))
			if err != nil {
				return fmt.Errorf("%w: %v", ErrOptionType, err)
			}
			roles = append(roles, r)
		}
		a.CountAxes = roles
		return nil
	}
	return a
}

func (a *Counting) Extract(score.Event) ([]float64, bool) {
	return []float64{1}, true
}

func (a *Counting) Ticks() []Tick {
	lo, hi := a.Bounds()
	return linearTicks(lo, hi, true, nil)
}

func finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

var (
	_ Categorical  = (*PitchSpace)(nil)
	_ Categorical  = (*PitchClass)(nil)
	_ MeasureAware = (*Offset)(nil)
	_ MeasureAware = (*OffsetEnd)(nil)
	_ Axis         = (*QuarterLength)(nil)
	_ Axis         = (*Dynamics)(nil)
	_ Axis         = (*Counting)(nil)
)
