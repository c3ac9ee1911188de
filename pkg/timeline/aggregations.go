package timeline

import (
	"math"
	"sort"

	"github.com/aclements/go-moremath/stats"
)

// AggregationType names a reduction of several values to one.
type AggregationType string

const (
	Sum    AggregationType = "sum"
	Avg    AggregationType = "avg"
	Min    AggregationType = "min"
	Max    AggregationType = "max"
	Count  AggregationType = "count"
	Range  AggregationType = "range"
	Median AggregationType = "median"
	First  AggregationType = "first"
	Last   AggregationType = "last"
)

// Aggregate reduces values. It returns NaN for an empty input, except for
// Count and Sum which are 0.
func Aggregate(values []float64, aggType AggregationType) float64 {
	switch aggType {
	case Count:
		return float64(len(values))
	case Sum:
		return sumValues(values)
	}
	if len(values) == 0 {
		return math.NaN()
	}

	switch aggType {
	case Avg:
		return stats.Mean(values)
	case Min:
		lo, _ := stats.Bounds(values)
		return lo
	case Max:
		_, hi := stats.Bounds(values)
		return hi
	case Range:
		lo, hi := stats.Bounds(values)
		return hi - lo
	case Median:
		return medianValues(values)
	case First:
		return values[0]
	case Last:
		return values[len(values)-1]
	}
	return math.NaN()
}

// WeightedMean averages a numeric timeline, weighting each interval by its
// length. Zero-length intervals count with unit weight when every interval
// is zero-length.
func WeightedMean(timeline NumericTimeline) float64 {
	if len(timeline) == 0 {
		return math.NaN()
	}
	xs := make([]float64, len(timeline))
	weights := make([]float64, len(timeline))
	var total float64
	for i, interval := range timeline {
		xs[i] = interval.Value
		weights[i] = interval.Length()
		total += weights[i]
	}
	if total == 0 {
		return stats.Mean(xs)
	}
	return stats.Sample{Xs: xs, Weights: weights}.Mean()
}

func sumValues(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum
}

func medianValues(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
