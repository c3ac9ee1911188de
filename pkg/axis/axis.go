// Package axis maps musical events onto plot dimensions. Every axis owns a
// value extractor, boundaries derived from realized data and a tick policy.
// Axes are mutated while a plot runs and must be built fresh for each run.
package axis

import (
	"fmt"
	"math"

	"github.com/aclements/go-moremath/scale"
	"github.com/aclements/go-moremath/stats"

	"github.com/leowmjw/go-scoreplot/pkg/score"
)

// Role is the dimension an axis is bound to.
type Role string

const (
	X Role = "x"
	Y Role = "y"
	Z Role = "z"
)

// ParseRole accepts "x", "y" or "z".
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case X, Y, Z:
		return r, nil
	}
	return "", fmt.Errorf("unknown axis role %q", s)
}

// Tick is one labeled position along an axis.
type Tick struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

// Axis extracts one dimension of plot data from events.
type Axis interface {
	Role() Role
	Name() string
	Label() string
	// Extract returns the values ev carries on this axis. ok is false when
	// the event has no meaningful value here.
	Extract(ev score.Event) (values []float64, ok bool)
	// SetBoundariesFromData sets unpinned boundaries from realized values.
	SetBoundariesFromData(values []float64)
	// PostProcess runs after boundaries are final.
	PostProcess()
	// Bounds returns the boundaries; NaN marks an unset bound.
	Bounds() (min, max float64)
	Ticks() []Tick
	// Options returns the settable attributes keyed by name.
	Options() map[string]Setter
}

// Categorical is implemented by axes whose values are buckets.
type Categorical interface {
	Axis
	HidesUnused() bool
	// Distinct returns the realized buckets in canonical order.
	Distinct() []float64
	// ValueLabel names a bucket that has no data.
	ValueLabel(v float64) string
}

// base carries boundary state and the options every axis understands.
type base struct {
	role      Role
	name      string
	label     string
	minValue  float64
	maxValue  float64
	pinnedMin bool
	pinnedMax bool
	options   map[string]Setter
}

// init must run on the embedded value in place since the option setters
// keep pointers into it.
func (b *base) init(role Role, name, label string) {
	b.role = role
	b.name = name
	b.label = label
	b.minValue = math.NaN()
	b.maxValue = math.NaN()
	b.options = map[string]Setter{
		"label":    stringOption(&b.label),
		"minValue": pinnedOption(&b.minValue, &b.pinnedMin),
		"maxValue": pinnedOption(&b.maxValue, &b.pinnedMax),
	}
}

func (b *base) Role() Role                 { return b.role }
func (b *base) Name() string               { return b.name }
func (b *base) Label() string              { return b.label }
func (b *base) Bounds() (float64, float64) { return b.minValue, b.maxValue }
func (b *base) Options() map[string]Setter { return b.options }
func (b *base) PostProcess()               {}

// SetBoundariesFromData ignores NaN values. With no usable data the
// unpinned bounds stay NaN.
func (b *base) SetBoundariesFromData(values []float64) {
	lo, hi := finiteBounds(values)
	if !b.pinnedMin {
		b.minValue = lo
	}
	if !b.pinnedMax {
		b.maxValue = hi
	}
}

func finiteBounds(values []float64) (float64, float64) {
	return stats.Bounds(finite(values))
}

// maxContinuousTicks caps the number of labeled points on numeric axes.
const maxContinuousTicks = 8

// linearTicks places evenly spaced ticks across [lo, hi]. Integral axes
// never receive fractional ticks.
func linearTicks(lo, hi float64, integral bool, format func(float64) string) []Tick {
	if math.IsNaN(lo) || math.IsNaN(hi) {
		return nil
	}
	if format == nil {
		format = func(v float64) string { return fmt.Sprintf("%.6g", v) }
	}
	if lo == hi {
		return []Tick{{Value: lo, Label: format(lo)}}
	}
	if lo > hi {
		lo, hi = hi, lo
	}

	o := scale.TickOptions{Max: maxContinuousTicks}
	if integral {
		o.MinLevel, o.MaxLevel = 0, 1000
	}
	major, _ := scale.Linear{Min: lo, Max: hi}.Ticks(o)

	ticks := make([]Tick, 0, len(major))
	for _, v := range major {
		ticks = append(ticks, Tick{Value: v, Label: format(v)})
	}
	return ticks
}
