package plot

import (
	"sort"

	"github.com/leowmjw/go-scoreplot/pkg/axis"
)

// BarSpan is one sounding interval on a piano-roll row.
type BarSpan struct {
	Offset   float64 `json:"offset"`
	Duration float64 `json:"duration"`
}

// BarRow holds every span sounding at one y bucket.
type BarRow struct {
	Label string    `json:"label"`
	Value float64   `json:"value"`
	Spans []BarSpan `json:"spans"`
}

// horizontalBars groups (offset, y, duration) records into one row per y
// tick, spans sorted by offset then duration. Rows exist for every tick even
// when nothing sounds there.
func horizontalBars(yTicks []axis.Tick, records []Record) []BarRow {
	byValue := make(map[float64][]BarSpan)
	for _, r := range records {
		byValue[r[1]] = append(byValue[r[1]], BarSpan{Offset: r[0], Duration: r[2]})
	}
	for _, spans := range byValue {
		sort.Slice(spans, func(i, j int) bool {
			if spans[i].Offset != spans[j].Offset {
				return spans[i].Offset < spans[j].Offset
			}
			return spans[i].Duration < spans[j].Duration
		})
	}

	rows := make([]BarRow, 0, len(yTicks))
	for _, t := range yTicks {
		spans := byValue[t.Value]
		if spans == nil {
			spans = []BarSpan{}
		}
		rows = append(rows, BarRow{Label: t.Label, Value: t.Value, Spans: spans})
	}
	return rows
}
