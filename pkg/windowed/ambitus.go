package windowed

import (
	"fmt"
	"math"
	"strconv"

	"github.com/aclements/go-moremath/stats"

	"github.com/leowmjw/go-scoreplot/pkg/score"
)

// Ambitus measures the pitch range of each window in semitones. Colors run
// from light gray for narrow windows to black for the widest range found in
// the whole stream.
type Ambitus struct {
	maxRange float64
}

// NewAmbitus scales colors to the range of stream.
func NewAmbitus(stream score.Stream) *Ambitus {
	a := &Ambitus{}
	if stream != nil {
		a.maxRange = pitchRange(stream.Recurse())
	}
	if a.maxRange < 1 || math.IsNaN(a.maxRange) {
		a.maxRange = 1
	}
	return a
}

func (a *Ambitus) Name() string { return "Ambitus" }

func (a *Ambitus) Process(slice []score.Event) (any, string, error) {
	r := pitchRange(slice)
	if math.IsNaN(r) {
		return nil, placeholderColor, nil
	}
	return int(r), a.color(r), nil
}

func (a *Ambitus) color(r float64) string {
	level := 1 - math.Min(r/a.maxRange, 1)
	// Keep the narrowest ranges visible against a white background.
	v := int(math.Round(level * 0xdd))
	return fmt.Sprintf("#%02x%02x%02x", v, v, v)
}

// SolutionLegend lists every semitone up to the widest range, or about a
// dozen evenly spaced steps when compressed.
func (a *Ambitus) SolutionLegend(compress bool) Legend {
	n := int(a.maxRange)
	step := 1
	if compress && n > 12 {
		step = int(math.Ceil(float64(n) / 12))
	}
	legend := Legend{Title: "Ambitus (semitones)"}
	for r := 0; r <= n; r += step {
		legend.Entries = append(legend.Entries, LegendEntry{
			Label: strconv.Itoa(r),
			Color: a.color(float64(r)),
		})
	}
	return legend
}

// pitchRange returns max-min pitch space over notes and chords, NaN when
// nothing sounds.
func pitchRange(events []score.Event) float64 {
	var spaces []float64
	for _, e := range events {
		if e.Kind != score.KindNote && e.Kind != score.KindChord {
			continue
		}
		for _, p := range e.Pitches {
			spaces = append(spaces, p.Space)
		}
	}
	lo, hi := stats.Bounds(spaces)
	return hi - lo
}
