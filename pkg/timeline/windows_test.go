package timeline

import (
	"testing"

	"github.com/leowmjw/go-scoreplot/pkg/score"
)

func TestSlidingSpans(t *testing.T) {
	windows := SlidingSpans(0, 8, 2, 1)

	if len(windows) != 7 {
		t.Fatalf("Expected 7 windows, got %d", len(windows))
	}

	if windows[0].Start != 0 || windows[0].End != 2 {
		t.Errorf("First window incorrect: %+v", windows[0].Span)
	}

	if windows[0].Type != SlidingWindow {
		t.Errorf("Expected SlidingWindow type")
	}

	last := windows[len(windows)-1]
	if last.Start != 6 || last.End != 8 {
		t.Errorf("Last window should be [6,8), got %+v", last.Span)
	}
}

func TestSlidingSpansTruncates(t *testing.T) {
	// Fractional length: the final window is cut at the end.
	windows := SlidingSpans(0, 4.5, 2, 1)
	if len(windows) != 4 {
		t.Fatalf("Expected 4 windows, got %d", len(windows))
	}
	if windows[3].Start != 3 || windows[3].End != 4.5 {
		t.Errorf("Last window should be [3,4.5), got %+v", windows[3].Span)
	}

	// Window larger than the range.
	windows = SlidingSpans(0, 3, 8, 1)
	if len(windows) != 1 {
		t.Fatalf("Expected 1 window, got %d", len(windows))
	}
	if windows[0].End != 3 {
		t.Errorf("Window should be truncated to 3, got %v", windows[0].End)
	}

	if got := SlidingSpans(0, 0, 1, 1); len(got) != 0 {
		t.Errorf("Expected no windows over an empty range, got %d", len(got))
	}
}

func TestTumblingSpans(t *testing.T) {
	windows := TumblingSpans(0, 10, 3)

	expectedWindows := 4
	if len(windows) != expectedWindows {
		t.Fatalf("Expected %d windows, got %d", expectedWindows, len(windows))
	}

	for i := 1; i < len(windows); i++ {
		if windows[i].Start != windows[i-1].End {
			t.Errorf("Windows should be adjacent, window %d start %v != previous end %v",
				i, windows[i].Start, windows[i-1].End)
		}
	}

	if windows[3].End != 10 || windows[3].Length() != 1 {
		t.Errorf("Last window should be truncated to [9,10), got %+v", windows[3].Span)
	}

	if windows[0].Type != TumblingWindow {
		t.Errorf("Expected TumblingWindow type")
	}
}

func TestSlice(t *testing.T) {
	events := []score.Event{
		{Kind: score.KindNote, Offset: 0, Duration: 3},
		{Kind: score.KindNote, Offset: 1, Duration: 1},
		{Kind: score.KindDynamic, Offset: 2},
		{Kind: score.KindNote, Offset: 4, Duration: 1},
	}

	sliced := Slice(events, Span{Start: 2, End: 4})
	if len(sliced) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(sliced))
	}
	if sliced[0].Offset != 0 || sliced[1].Kind != score.KindDynamic {
		t.Errorf("Unexpected slice %+v", sliced)
	}

	if got := Slice(events, Span{Start: 5, End: 6}); len(got) != 0 {
		t.Errorf("Expected empty slice, got %d events", len(got))
	}
}

func TestParseWindowType(t *testing.T) {
	tests := map[string]WindowType{
		"":                SlidingWindow,
		"overlap":         SlidingWindow,
		"noOverlap":       TumblingWindow,
		"non-overlap":     TumblingWindow,
		"average":         AverageWindow,
		"adjacentAverage": AverageWindow,
	}
	for in, want := range tests {
		got, err := ParseWindowType(in)
		if err != nil {
			t.Errorf("ParseWindowType(%q) error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseWindowType(%q) = %q, want %q", in, got, want)
		}
	}

	if _, err := ParseWindowType("diagonal"); err == nil {
		t.Errorf("Expected error for unknown window type")
	}
}
