package timeline

import (
	"testing"
)

func TestStateRuns(t *testing.T) {
	tests := []struct {
		name     string
		samples  Samples
		end      float64
		expected StateTimeline
	}{
		{
			name:     "empty samples",
			samples:  Samples{},
			end:      4,
			expected: StateTimeline{},
		},
		{
			name:    "single sample",
			samples: Samples{{Offset: 0, Value: "p"}},
			end:     4,
			expected: StateTimeline{
				{State: "p", Span: Span{Start: 0, End: 4}},
			},
		},
		{
			name: "state changes",
			samples: Samples{
				{Offset: 0, Value: "p"},
				{Offset: 1, Value: "p"},
				{Offset: 2, Value: "f"},
				{Offset: 3, Value: "p"},
			},
			end: 4,
			expected: StateTimeline{
				{State: "p", Span: Span{Start: 0, End: 2}},
				{State: "f", Span: Span{Start: 2, End: 3}},
				{State: "p", Span: Span{Start: 3, End: 4}},
			},
		},
		{
			name: "same offset, later wins",
			samples: Samples{
				{Offset: 0, Value: "p"},
				{Offset: 0, Value: "ff"},
			},
			end: 2,
			expected: StateTimeline{
				{State: "ff", Span: Span{Start: 0, End: 2}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := StateRuns(tt.samples, tt.end)
			if len(result) != len(tt.expected) {
				t.Errorf("expected %d intervals, got %d", len(tt.expected), len(result))
				return
			}
			for i, interval := range result {
				expected := tt.expected[i]
				if interval.State != expected.State || interval.Span != expected.Span {
					t.Errorf("interval %d: expected %+v, got %+v", i, expected, interval)
				}
			}
		})
	}
}

func TestValueAt(t *testing.T) {
	samples := Samples{
		{Offset: 2, Value: "f"},
		{Offset: 0, Value: "p"},
	}

	if _, ok := ValueAt(samples, -1); ok {
		t.Errorf("Expected no value before the first sample")
	}
	if s, ok := ValueAt(samples, 1.5); !ok || s.Value != "p" {
		t.Errorf("Expected p at 1.5, got %+v", s)
	}
	if s, ok := ValueAt(samples, 2); !ok || s.Value != "f" {
		t.Errorf("Expected f at 2, got %+v", s)
	}
}

func TestChangesWithin(t *testing.T) {
	samples := Samples{
		{Offset: 0, Value: "p"},
		{Offset: 0.5, Value: "p"},
		{Offset: 1, Value: "f"},
		{Offset: 2, Value: "pp"},
	}

	changes := ChangesWithin(samples, 0, 2)
	if len(changes) != 1 {
		t.Fatalf("Expected 1 change, got %d", len(changes))
	}
	if changes[0].Offset != 1 || changes[0].Value != "f" {
		t.Errorf("Unexpected change %+v", changes[0])
	}

	// A change at the boundary is not inside the span.
	if got := ChangesWithin(samples, 1, 2); len(got) != 0 {
		t.Errorf("Expected no interior changes, got %+v", got)
	}
}

func TestDurations(t *testing.T) {
	durations := Durations(StateTimeline{
		{State: "p", Span: Span{Start: 0, End: 1.5}},
		{State: "f", Span: Span{Start: 1.5, End: 4}},
	})
	if len(durations) != 2 || durations[0].Value != 1.5 || durations[1].Value != 2.5 {
		t.Errorf("Unexpected durations %+v", durations)
	}
}
