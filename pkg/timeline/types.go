package timeline

// Span is a half-open offset range [Start, End) measured in quarter lengths.
type Span struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Length returns End - Start.
func (s Span) Length() float64 {
	return s.End - s.Start
}

// Contains reports whether offset falls inside the span.
func (s Span) Contains(offset float64) bool {
	return offset >= s.Start && offset < s.End
}

// Overlaps reports whether [start, end) shares any time with the span. A
// zero-length range overlaps when its start lies inside the span.
func (s Span) Overlaps(start, end float64) bool {
	if end <= start {
		return s.Contains(start)
	}
	return start < s.End && end > s.Start
}

// Sample is a state observed at an offset, such as a dynamic marking. Scalar
// carries the numeric reading of Value when one exists.
type Sample struct {
	Offset float64 `json:"offset"`
	Value  string  `json:"value"`
	Scalar float64 `json:"scalar"`
}

// Samples is an ordered list of observations.
type Samples []Sample

// StateInterval is a period during which one state holds.
type StateInterval struct {
	State  string  `json:"state"`
	Scalar float64 `json:"scalar"`
	Span
}

// StateTimeline is a collection of state intervals
type StateTimeline []StateInterval

// NumericInterval is a span carrying a numeric value.
type NumericInterval struct {
	Value float64 `json:"value"`
	Span
}

// NumericTimeline is a collection of numeric intervals
type NumericTimeline []NumericInterval
