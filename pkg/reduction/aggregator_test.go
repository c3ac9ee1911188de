package reduction

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leowmjw/go-scoreplot/pkg/score"
)

func note(offset, dur float64) score.Event {
	return score.Event{Kind: score.KindNote, Offset: offset, Duration: dur, Pitches: []score.Pitch{{Space: 60}}}
}

func dyn(offset float64, marking string) score.Event {
	return score.Event{Kind: score.KindDynamic, Offset: offset, Dynamic: marking}
}

func measure(number int, offset float64, events ...score.Event) score.Event {
	return score.Event{Kind: score.KindMeasure, Offset: offset, Duration: 2, Number: number, Events: events}
}

func changingPart(name string) *score.Part {
	return &score.Part{Name: name, Events: []score.Event{
		measure(1, 0, dyn(0, "p"), note(0, 2), dyn(1, "f")),
	}}
}

func TestSplitOnTargetChange(t *testing.T) {
	a := &Aggregator{FillByMeasure: true, SegmentByTarget: true}
	segs, err := a.Segments(changingPart("Flute"))
	require.NoError(t, err)
	require.Len(t, segs, 2)

	assert.Equal(t, 0.0, segs[0].Start)
	assert.Equal(t, 1.0, segs[0].Span)
	assert.Equal(t, "p", segs[0].Value)
	assert.Equal(t, 1.0, segs[1].Start)
	assert.Equal(t, 1.0, segs[1].Span)
	assert.Equal(t, "f", segs[1].Value)
}

func TestAverageWithoutSplit(t *testing.T) {
	a := &Aggregator{FillByMeasure: true}
	segs, err := a.Segments(changingPart("Flute"))
	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.Equal(t, 2.0, segs[0].Span)
	assert.Equal(t, "p", segs[0].Value)
	assert.InDelta(t, 0.55, segs[0].Height, 1e-9)
}

func TestSegmentByNote(t *testing.T) {
	p := &score.Part{Events: []score.Event{
		note(0, 1),
		dyn(1, "ff"),
		note(1, 1),
		{Kind: score.KindRest, Offset: 2, Duration: 1},
		note(3, 0),
	}}
	segs, err := (&Aggregator{FillByMeasure: true}).Segments(p)
	require.NoError(t, err)
	require.Len(t, segs, 2, "no measures falls back to notes")
	assert.Equal(t, score.DefaultDynamic, segs[0].Value)
	assert.InDelta(t, 0.55, segs[0].Height, 1e-9)
	assert.Equal(t, "ff", segs[1].Value)

	segs, err = (&Aggregator{Default: "pp"}).Segments(&score.Part{Events: []score.Event{note(0, 1)}})
	require.NoError(t, err)
	assert.Equal(t, "pp", segs[0].Value)
}

func TestMeasureWithoutDuration(t *testing.T) {
	p := &score.Part{Events: []score.Event{
		{Kind: score.KindMeasure, Offset: 0, Events: []score.Event{note(0, 3)}},
		{Kind: score.KindMeasure, Offset: 3, Events: []score.Event{note(0, 1)}},
	}}
	segs, err := (&Aggregator{FillByMeasure: true}).Segments(p)
	require.NoError(t, err)
	require.Len(t, segs, 2)
	assert.Equal(t, 3.0, segs[0].Span)
	assert.Equal(t, 3.0, segs[1].Start)
	assert.Equal(t, 1.0, segs[1].Span)
}

func TestNormalization(t *testing.T) {
	loud := &score.Part{Name: "Bass", Events: []score.Event{dyn(0, "ff"), note(0, 2)}}
	quiet := &score.Part{Name: "Soprano", Events: []score.Event{dyn(0, "p"), note(0, 2)}}
	s := &score.Score{Parts: []*score.Part{quiet, loud}}
	groups := []Group{
		{Name: "Soprano", Color: "purple", Match: []string{"soprano"}},
		{Name: "Bass", Color: "mediumblue", Match: []string{"bass"}},
	}

	byPart, err := (&Aggregator{NormalizeByPart: true, Groups: groups}).Process(s)
	require.NoError(t, err)
	require.Len(t, byPart.Bars, 2)
	assert.Equal(t, 1.0, byPart.Bars[0].Height)
	assert.Equal(t, 1.0, byPart.Bars[1].Height)

	global, err := (&Aggregator{Groups: groups}).Process(s)
	require.NoError(t, err)
	require.Len(t, global.Bars, 2)
	assert.InDelta(t, 0.35/0.85, global.Bars[0].Height, 1e-9)
	assert.Equal(t, "purple", global.Bars[0].Color)
	assert.Equal(t, 1.0, global.Bars[1].Height)
	assert.Equal(t, []string{"Soprano", "Bass"}, global.Groups)
	assert.Equal(t, 0.0, global.Start)
	assert.Equal(t, 2.0, global.End)
}

func TestUnmatchedPartsDropped(t *testing.T) {
	s := &score.Score{Parts: []*score.Part{
		changingPart("Violin"),
		changingPart("Contrabass"),
	}}
	result, err := (&Aggregator{
		FillByMeasure:   true,
		SegmentByTarget: true,
		Groups:          []Group{{Name: "Low", Color: "red", Match: []string{"bass"}}},
	}).Process(s)
	require.NoError(t, err)

	assert.Equal(t, []string{"Low"}, result.Groups)
	require.Len(t, result.Bars, 2)
	first := result.Bars[0]
	assert.Equal(t, "Low", first.Group)
	assert.Equal(t, "red", first.Color)
	assert.Equal(t, 0.0, first.Start)
	assert.Equal(t, 1.0, first.Span)
	assert.InDelta(t, 0.35/0.75, first.Height, 1e-9)
	assert.Equal(t, Bar{Group: "Low", Start: 1, Span: 1, Height: 1, Color: "red"}, result.Bars[1])
}

func TestNotScore(t *testing.T) {
	_, err := (&Aggregator{}).Process(changingPart("Solo"))
	assert.True(t, errors.Is(err, ErrNotScore))

	_, err = (&Aggregator{}).Process(nil)
	assert.True(t, errors.Is(err, ErrNotScore))
}

func TestInvalidTiming(t *testing.T) {
	s := &score.Score{Parts: []*score.Part{{Events: []score.Event{note(0, -1)}}}}
	_, err := (&Aggregator{}).Process(s)
	assert.Error(t, err)
}

func TestGroupSummaries(t *testing.T) {
	s := &score.Score{Parts: []*score.Part{
		changingPart("Flute"),
		{Name: "Oboe", Events: []score.Event{note(0, 2)}},
	}}
	result, err := (&Aggregator{SegmentByTarget: true}).Process(s)
	require.NoError(t, err)
	require.Len(t, result.Summaries, 2)

	flute, oboe := result.Summaries[0], result.Summaries[1]
	assert.Equal(t, "Flute", flute.Group)
	assert.Equal(t, map[string]float64{"p": 1, "f": 1}, flute.Time)
	assert.InDelta(t, 1.0, flute.Peak, 1e-9)
	assert.Less(t, flute.Level, flute.Peak)

	assert.Equal(t, "Oboe", oboe.Group)
	assert.Equal(t, map[string]float64{score.DefaultDynamic: 2}, oboe.Time)
	assert.Less(t, oboe.Peak, 1.0)
	assert.InDelta(t, oboe.Peak, oboe.Level, 1e-9)
}
