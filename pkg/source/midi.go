package source

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/leowmjw/go-scoreplot/pkg/score"
)

// ErrTimeFormat is returned for SMPTE-timed files, which have no quarter
// note grid.
var ErrTimeFormat = errors.New("midi file does not use metric ticks")

type midiNote struct {
	start, end uint64
	key        uint8
	velocity   uint8
}

// ReadMIDI converts each track holding notes into a part named "Track N".
// Notes that start and end together become chords and velocity changes
// become dynamic markings.
func ReadMIDI(r io.Reader) (s *score.Score, err error) {
	// smf panics on some malformed files.
	defer func() {
		if rec := recover(); rec != nil {
			s, err = nil, fmt.Errorf("failed to parse midi file: %v", rec)
		}
	}()

	mf, err := smf.ReadFrom(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse midi file: %w", err)
	}
	ticks, ok := mf.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, ErrTimeFormat
	}
	perQuarter := float64(ticks.Ticks4th())

	s = &score.Score{}
	for i, track := range mf.Tracks {
		notes := trackNotes(track)
		if len(notes) == 0 {
			continue
		}
		s.Parts = append(s.Parts, &score.Part{
			ID:     fmt.Sprintf("track-%d", i+1),
			Name:   fmt.Sprintf("Track %d", i+1),
			Events: noteEvents(notes, perQuarter),
		})
	}
	return s, nil
}

// trackNotes pairs note-on with note-off messages. A note-on with velocity 0
// ends the note, as does a repeated note-on for a key already sounding.
func trackNotes(track smf.Track) []midiNote {
	var (
		abs     uint64
		notes   []midiNote
		pending = map[uint8]midiNote{}
	)
	end := func(key uint8) {
		if n, ok := pending[key]; ok {
			n.end = abs
			notes = append(notes, n)
			delete(pending, key)
		}
	}
	for _, ev := range track {
		abs += uint64(ev.Delta)
		var channel, key, velocity uint8
		switch {
		case ev.Message.GetNoteOn(&channel, &key, &velocity):
			end(key)
			if velocity > 0 {
				pending[key] = midiNote{start: abs, key: key, velocity: velocity}
			}
		case ev.Message.GetNoteOff(&channel, &key, &velocity):
			end(key)
		}
	}
	for key := range pending {
		end(key)
	}
	sort.Slice(notes, func(i, j int) bool {
		if notes[i].start != notes[j].start {
			return notes[i].start < notes[j].start
		}
		if notes[i].end != notes[j].end {
			return notes[i].end < notes[j].end
		}
		return notes[i].key < notes[j].key
	})
	return notes
}

func noteEvents(notes []midiNote, perQuarter float64) []score.Event {
	var (
		events []score.Event
		active string
	)
	for i := 0; i < len(notes); {
		j := i + 1
		for j < len(notes) && notes[j].start == notes[i].start && notes[j].end == notes[i].end {
			j++
		}
		group := notes[i:j]

		offset := float64(group[0].start) / perQuarter
		var loudest uint8
		pitches := make([]score.Pitch, 0, len(group))
		for _, n := range group {
			pitches = append(pitches, score.Pitch{Space: float64(n.key)})
			if n.velocity > loudest {
				loudest = n.velocity
			}
		}
		if marking := VelocityDynamic(loudest); marking != active {
			events = append(events, score.Event{Kind: score.KindDynamic, Offset: offset, Dynamic: marking})
			active = marking
		}

		ev := score.Event{
			Kind:     score.KindNote,
			Offset:   offset,
			Duration: float64(group[0].end-group[0].start) / perQuarter,
			Pitches:  pitches,
		}
		if len(group) > 1 {
			ev.Kind = score.KindChord
		}
		events = append(events, ev)
		i = j
	}
	return events
}

var velocityDynamics = []string{"ppp", "pp", "p", "mp", "mf", "f", "ff", "fff"}

// VelocityDynamic picks the marking, from ppp to fff, whose loudness is
// closest to velocity/127.
func VelocityDynamic(velocity uint8) string {
	level := float64(velocity) / 127
	best, bestDiff := score.DefaultDynamic, math.Inf(1)
	for _, d := range velocityDynamics {
		scalar, _ := score.DynamicScalar(d)
		if diff := math.Abs(scalar - level); diff < bestDiff {
			best, bestDiff = d, diff
		}
	}
	return best
}
