package score

import (
	"fmt"
	"math"
)

// Kind distinguishes the occurrences a stream can hold.
type Kind string

const (
	KindNote    Kind = "note"
	KindChord   Kind = "chord"
	KindRest    Kind = "rest"
	KindDynamic Kind = "dynamic"
	KindMeasure Kind = "measure"
)

// Event is one musical occurrence. Offsets are in quarter lengths and are
// relative to the containing event until the stream is flattened.
type Event struct {
	Kind     Kind    `json:"kind"`
	Offset   float64 `json:"offset"`
	Duration float64 `json:"duration"`
	Pitches  []Pitch `json:"pitches,omitempty"`
	// Dynamic is the marking of a KindDynamic event. After flattening, notes
	// and chords carry the marking that is active where they start.
	Dynamic string  `json:"dynamic,omitempty"`
	Number  int     `json:"number,omitempty"`
	Events  []Event `json:"events,omitempty"`
}

// End returns the offset at which the event stops sounding.
func (e Event) End() float64 {
	return e.Offset + e.Duration
}

// IsComposite reports whether the event carries several simultaneous values.
func (e Event) IsComposite() bool {
	return e.Kind == KindChord
}

// IsContainer reports whether the event holds nested events.
func (e Event) IsContainer() bool {
	return e.Kind == KindMeasure
}

// Notes splits a chord into one note event per pitch, in declaration order.
// The notes share the chord's timing and dynamic. A non-chord event is
// returned unchanged as a single element.
func (e Event) Notes() []Event {
	if !e.IsComposite() {
		return []Event{e}
	}
	notes := make([]Event, 0, len(e.Pitches))
	for _, p := range e.Pitches {
		notes = append(notes, Event{
			Kind:     KindNote,
			Offset:   e.Offset,
			Duration: e.Duration,
			Pitches:  []Pitch{p},
			Dynamic:  e.Dynamic,
		})
	}
	return notes
}

// Pitch returns the single pitch of a note.
func (e Event) Pitch() (Pitch, bool) {
	if e.Kind != KindNote || len(e.Pitches) == 0 {
		return Pitch{}, false
	}
	return e.Pitches[0], true
}

// ValidateTiming reports an event whose offset or duration cannot be placed
// on a timeline.
func (e Event) ValidateTiming() error {
	if math.IsNaN(e.Offset) || math.IsInf(e.Offset, 0) {
		return fmt.Errorf("%s event has no usable offset (%v)", e.Kind, e.Offset)
	}
	if math.IsNaN(e.Duration) || math.IsInf(e.Duration, 0) || e.Duration < 0 {
		return fmt.Errorf("%s event at offset %g has invalid duration %v", e.Kind, e.Offset, e.Duration)
	}
	return nil
}

// Stream is an ordered source of events.
type Stream interface {
	// Elements returns the top-level events without descending into containers.
	Elements() []Event
	// Recurse returns every event in document order with absolute offsets.
	Recurse() []Event
}

// Part is one voice or instrument line.
type Part struct {
	ID     string  `json:"id,omitempty"`
	Name   string  `json:"name,omitempty"`
	Events []Event `json:"events"`
}

// Score is a multi-part document.
type Score struct {
	Title string  `json:"title,omitempty"`
	Parts []*Part `json:"parts"`
}

var (
	_ Stream = (*Part)(nil)
	_ Stream = (*Score)(nil)
)

// Filter keeps the events whose kind is one of kinds. With no kinds every
// event is kept.
func Filter(events []Event, kinds ...Kind) []Event {
	if len(kinds) == 0 {
		return events
	}
	var out []Event
	for _, e := range events {
		for _, k := range kinds {
			if e.Kind == k {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// HighestTime returns the latest end offset of any event in s.
func HighestTime(s Stream) float64 {
	var highest float64
	for _, e := range s.Recurse() {
		if e.End() > highest {
			highest = e.End()
		}
	}
	return highest
}
