package timeline

import (
	"math"
	"testing"
)

func TestAggregate(t *testing.T) {
	values := []float64{4, 1, 3, 2}

	tests := []struct {
		aggType  AggregationType
		expected float64
	}{
		{Sum, 10},
		{Avg, 2.5},
		{Min, 1},
		{Max, 4},
		{Count, 4},
		{Range, 3},
		{Median, 2.5},
		{First, 4},
		{Last, 2},
	}

	for _, tt := range tests {
		t.Run(string(tt.aggType), func(t *testing.T) {
			result := Aggregate(values, tt.aggType)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("Expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestAggregateEmpty(t *testing.T) {
	if got := Aggregate(nil, Count); got != 0 {
		t.Errorf("Expected count 0, got %v", got)
	}
	if got := Aggregate(nil, Sum); got != 0 {
		t.Errorf("Expected sum 0, got %v", got)
	}
	if got := Aggregate(nil, Avg); !math.IsNaN(got) {
		t.Errorf("Expected NaN average of nothing, got %v", got)
	}
}

func TestWeightedMean(t *testing.T) {
	got := WeightedMean(NumericTimeline{
		{Value: 1, Span: Span{Start: 0, End: 3}},
		{Value: 0, Span: Span{Start: 3, End: 4}},
	})
	if math.Abs(got-0.75) > 1e-9 {
		t.Errorf("Expected 0.75, got %v", got)
	}

	got = WeightedMean(NumericTimeline{
		{Value: 1, Span: Span{Start: 2, End: 2}},
		{Value: 3, Span: Span{Start: 2, End: 2}},
	})
	if got != 2 {
		t.Errorf("Expected plain mean 2, got %v", got)
	}

	if !math.IsNaN(WeightedMean(nil)) {
		t.Errorf("Expected NaN for empty timeline")
	}
}
