package plot

import (
	"math"
	"strconv"

	"github.com/leowmjw/go-scoreplot/pkg/axis"
	"github.com/leowmjw/go-scoreplot/pkg/util"
)

// RemapHistogramTicks rewrites the first column of records into dense bucket
// indexes and returns the matching ticks.
//
// When the axis hides unused buckets, or has no bounds, or is not
// categorical, each distinct realized value becomes 1..K in ascending order.
// Otherwise every integer in [min, max] gets a slot numbered from 1 so that
// empty buckets stay visible; they are labeled by the axis, or blank when
// the axis blanks unused labels.
func RemapHistogramTicks(x axis.Axis, records []Record) []axis.Tick {
	labels := make(map[float64]string)
	for _, t := range x.Ticks() {
		labels[t.Value] = t.Label
	}
	lo, hi := x.Bounds()
	cat, categorical := x.(axis.Categorical)

	if !categorical || cat.HidesUnused() || math.IsNaN(lo) || math.IsNaN(hi) {
		distinct := util.Distinct(column(records, 0))
		index := make(map[float64]float64, len(distinct))
		ticks := make([]axis.Tick, 0, len(distinct))
		for i, v := range distinct {
			pos := float64(i + 1)
			index[v] = pos
			label, ok := labels[v]
			if !ok {
				label = strconv.FormatFloat(v, 'g', 6, 64)
			}
			ticks = append(ticks, axis.Tick{Value: pos, Label: label})
		}
		for _, r := range records {
			r[0] = index[r[0]]
		}
		return ticks
	}

	first := math.Ceil(lo)
	var ticks []axis.Tick
	for v := first; v <= math.Floor(hi); v++ {
		label, ok := labels[v]
		if !ok {
			label = cat.ValueLabel(v)
		}
		ticks = append(ticks, axis.Tick{Value: v - first + 1, Label: label})
	}
	for _, r := range records {
		r[0] = r[0] - first + 1
	}
	return ticks
}
