package timeline

import (
	"fmt"
	"math"

	"github.com/leowmjw/go-scoreplot/pkg/score"
)

// WindowType selects how windows are laid across a timeline.
type WindowType string

const (
	// SlidingWindow starts a window at every step.
	SlidingWindow WindowType = "overlap"
	// TumblingWindow divides the timeline into adjacent windows.
	TumblingWindow WindowType = "noOverlap"
	// AverageWindow lays windows like TumblingWindow.
	AverageWindow WindowType = "adjacentAverage"
)

// Window is one analysis span.
type Window struct {
	Type  WindowType `json:"type"`
	Size  float64    `json:"size"`
	Slide float64    `json:"slide,omitempty"`
	Span
}

// ParseWindowType accepts the canonical names and a few aliases.
func ParseWindowType(s string) (WindowType, error) {
	switch s {
	case "", "overlap", "sliding":
		return SlidingWindow, nil
	case "noOverlap", "non-overlap", "tumbling":
		return TumblingWindow, nil
	case "adjacentAverage", "average":
		return AverageWindow, nil
	}
	return "", fmt.Errorf("unknown window type %q", s)
}

// SlidingSpans creates windows of size starting every slide. A window is
// added while the previous one has not yet reached end, so with unit slides
// over n units there are n-size+1 windows. Windows are truncated at end,
// never dropped; a size larger than the range yields one truncated window.
func SlidingSpans(start, end, size, slide float64) []Window {
	var windows []Window
	if slide <= 0 || size <= 0 {
		return windows
	}

	for i := 0; ; i++ {
		current := start + float64(i)*slide
		if current >= end || (i > 0 && current+size-slide >= end) {
			break
		}
		windowEnd := current + size
		if windowEnd > end {
			windowEnd = end
		}

		windows = append(windows, Window{
			Type:  SlidingWindow,
			Size:  size,
			Slide: slide,
			Span:  Span{Start: current, End: windowEnd},
		})
	}

	return windows
}

// TumblingSpans creates ceil((end-start)/size) adjacent windows. The last
// one is truncated at end.
func TumblingSpans(start, end, size float64) []Window {
	var windows []Window
	if size <= 0 {
		return windows
	}

	count := int(math.Ceil((end - start) / size))
	for i := 0; i < count; i++ {
		current := start + float64(i)*size
		windowEnd := current + size
		if windowEnd > end {
			windowEnd = end
		}

		windows = append(windows, Window{
			Type: TumblingWindow,
			Size: size,
			Span: Span{Start: current, End: windowEnd},
		})
	}

	return windows
}

// Slice returns the events that sound during span, in their original order.
// Events that start before the span but are still sounding are included.
func Slice(events []score.Event, span Span) []score.Event {
	var sliced []score.Event
	for _, e := range events {
		if span.Overlaps(e.Offset, e.End()) {
			sliced = append(sliced, e)
		}
	}
	return sliced
}
