package plot

import (
	"github.com/leowmjw/go-scoreplot/pkg/axis"
	"github.com/leowmjw/go-scoreplot/pkg/score"
)

// ChordExpander resolves the per-axis value lists of a composite event.
type ChordExpander interface {
	ExpandChord(chord score.Event, axes []axis.Axis) [][]float64
}

// PaddedExpander pads every axis list to the longest one so each pitch of a
// chord yields a complete record.
type PaddedExpander struct {
	// NullFill pads lists that resolved no value at all.
	NullFill float64
}

func (e PaddedExpander) ExpandChord(chord score.Event, axes []axis.Axis) [][]float64 {
	return FillValueLists(ExtractChordData(chord, axes), e.NullFill)
}

// UnpaddedExpander keeps the lists as extracted. Zipping them yields as many
// records as the shortest list.
type UnpaddedExpander struct{}

func (UnpaddedExpander) ExpandChord(chord score.Event, axes []axis.Axis) [][]float64 {
	return ExtractChordData(chord, axes)
}

// ExtractChordAxis resolves one axis for a chord. A chord-level value wins;
// otherwise each pitch is tried in declaration order and pitches without a
// value are skipped.
func ExtractChordAxis(a axis.Axis, chord score.Event) []float64 {
	if v, ok := a.Extract(chord); ok {
		return v
	}
	var values []float64
	for _, n := range chord.Notes() {
		if v, ok := a.Extract(n); ok {
			values = append(values, v...)
		}
	}
	return values
}

// ExtractChordData resolves every axis for a chord.
func ExtractChordData(chord score.Event, axes []axis.Axis) [][]float64 {
	lists := make([][]float64, len(axes))
	for i, a := range axes {
		lists[i] = ExtractChordAxis(a, chord)
	}
	return lists
}

// FillValueLists returns copies of lists all padded to the longest length.
// A short list repeats its own first element; an empty one uses nullFill.
func FillValueLists(lists [][]float64, nullFill float64) [][]float64 {
	longest := 0
	for _, l := range lists {
		if len(l) > longest {
			longest = len(l)
		}
	}

	filled := make([][]float64, len(lists))
	for i, l := range lists {
		out := make([]float64, len(l), longest)
		copy(out, l)
		fill := nullFill
		if len(l) > 0 {
			fill = l[0]
		}
		for len(out) < longest {
			out = append(out, fill)
		}
		filled[i] = out
	}
	return filled
}

// zipRecords combines per-axis lists positionally. The shortest list bounds
// the record count.
func zipRecords(lists [][]float64) []Record {
	if len(lists) == 0 {
		return nil
	}
	n := len(lists[0])
	for _, l := range lists[1:] {
		if len(l) < n {
			n = len(l)
		}
	}
	records := make([]Record, n)
	for i := range records {
		r := make(Record, len(lists))
		for j, l := range lists {
			r[j] = l[i]
		}
		records[i] = r
	}
	return records
}
