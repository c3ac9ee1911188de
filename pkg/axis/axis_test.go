package axis

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/leowmjw/go-scoreplot/pkg/score"
)

func note(ps float64, offset, dur float64) score.Event {
	return score.Event{Kind: score.KindNote, Offset: offset, Duration: dur, Pitches: []score.Pitch{{Space: ps}}}
}

func TestBoundariesFromData(t *testing.T) {
	a := NewPitchSpace(Y)
	lo, hi := a.Bounds()
	assert.True(t, math.IsNaN(lo))
	assert.True(t, math.IsNaN(hi))

	a.SetBoundariesFromData([]float64{64, math.NaN(), 60, 62})
	lo, hi = a.Bounds()
	assert.Equal(t, 60.0, lo)
	assert.Equal(t, 64.0, hi)

	// Empty data leaves the bounds unset rather than zero.
	empty := NewOffset(X)
	empty.SetBoundariesFromData(nil)
	lo, hi = empty.Bounds()
	assert.True(t, math.IsNaN(lo))
	assert.True(t, math.IsNaN(hi))
	assert.Empty(t, empty.Ticks())
}

func TestPinnedBoundaries(t *testing.T) {
	a := NewOffset(X)
	require.NoError(t, ApplyOptions([]Axis{a}, map[string]cty.Value{
		"xMinValue": cty.NumberIntVal(0),
	}))
	a.SetBoundariesFromData([]float64{2, 5})
	lo, hi := a.Bounds()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 5.0, hi)

	require.NoError(t, ApplyOptions([]Axis{a}, map[string]cty.Value{
		"xMinValue": cty.NullVal(cty.Number),
	}))
	a.SetBoundariesFromData([]float64{2, 5})
	lo, _ = a.Bounds()
	assert.Equal(t, 2.0, lo)
}

func TestApplyOptions(t *testing.T) {
	x := NewPitchClass(X)
	y := NewQuarterLength(Y)

	err := ApplyOptions([]Axis{x, y}, map[string]cty.Value{
		"xHideUnused":  cty.False,
		"xLabel":       cty.StringVal("Classes"),
		"yUseLogScale": cty.StringVal("false"),
		"yHideUnused":  cty.False, // quarter length has no such attribute
		"zHideUnused":  cty.False, // no z axis
		"title":        cty.StringVal("ignored"),
		"x":            cty.True,
	})
	require.NoError(t, err)
	assert.False(t, x.HideUnused)
	assert.Equal(t, "Classes", x.Label())
	assert.False(t, y.UseLogScale)

	err = ApplyOptions([]Axis{x}, map[string]cty.Value{"xHideUnused": cty.StringVal("sometimes")})
	assert.True(t, errors.Is(err, ErrOptionType))
}

func TestSplitOptionName(t *testing.T) {
	role, attr, ok := SplitOptionName("xHideUnused")
	assert.True(t, ok)
	assert.Equal(t, X, role)
	assert.Equal(t, "hideUnused", attr)

	_, _, ok = SplitOptionName("title")
	assert.False(t, ok)

	assert.Contains(t, OptionNames(NewPitchSpace(Y)), "yBlankLabelUnused")
}

func TestPitchSpaceExtract(t *testing.T) {
	a := NewPitchSpace(X)
	v, ok := a.Extract(note(60, 0, 1))
	assert.True(t, ok)
	assert.Equal(t, []float64{60}, v)

	chord := score.Event{Kind: score.KindChord, Pitches: []score.Pitch{{Space: 60}, {Space: 64}}}
	_, ok = a.Extract(chord)
	assert.False(t, ok, "pitch has no chord-level value")

	_, ok = a.Extract(score.Event{Kind: score.KindRest, Duration: 1})
	assert.False(t, ok)
}

func TestPitchTicks(t *testing.T) {
	a := NewPitchSpace(X)
	a.SetBoundariesFromData([]float64{62, 60, 64, 60})
	a.PostProcess()
	assert.Equal(t, []Tick{{60, "C4"}, {62, "D4"}, {64, "E4"}}, a.Ticks())

	a.HideUnused = false
	ticks := a.Ticks()
	require.Len(t, ticks, 5)
	assert.Equal(t, Tick{61, ""}, ticks[1])
	assert.Equal(t, Tick{62, "D4"}, ticks[2])

	a.BlankLabelUnused = false
	assert.Equal(t, "C#4", a.Ticks()[1].Label)
}

func TestPitchClassTicks(t *testing.T) {
	a := NewPitchClass(Y)
	v, ok := a.Extract(note(52, 0, 1))
	require.True(t, ok)
	assert.Equal(t, []float64{4}, v)

	a.SetBoundariesFromData([]float64{4, 0, 4})
	a.PostProcess()
	assert.Equal(t, []Tick{{0, "C"}, {4, "E"}}, a.Ticks())

	a.HideUnused = false
	a.BlankLabelUnused = false
	ticks := a.Ticks()
	require.Len(t, ticks, 12)
	assert.Equal(t, "E-", ticks[3].Label)
	assert.Equal(t, "B", ticks[11].Label)
}

func TestQuarterLength(t *testing.T) {
	a := NewQuarterLength(X)
	v, ok := a.Extract(note(60, 0, 0.5))
	require.True(t, ok)
	assert.Equal(t, []float64{-1}, v)

	v, _ = a.Extract(note(60, 0, 0))
	assert.Equal(t, []float64{-13}, v)

	a.UseLogScale = false
	v, _ = a.Extract(note(60, 0, 1.5))
	assert.Equal(t, []float64{1.5}, v)

	a.SetBoundariesFromData([]float64{2, 0.5, 2})
	assert.Equal(t, []Tick{{0.5, "0.5"}, {2, "2"}}, a.Ticks())

	_, ok = a.Extract(score.Event{Kind: score.KindDynamic, Dynamic: "p"})
	assert.False(t, ok)
}

func TestDynamicsAxis(t *testing.T) {
	a := NewDynamics(Y)
	chord := score.Event{Kind: score.KindChord, Dynamic: "p", Pitches: []score.Pitch{{Space: 60}}}
	v, ok := a.Extract(chord)
	require.True(t, ok, "dynamics resolve at chord level")
	assert.Equal(t, []float64{5}, v)

	_, ok = a.Extract(note(60, 0, 1))
	assert.False(t, ok, "no marking seen")

	a.SetBoundariesFromData([]float64{5, 8})
	ticks := a.Ticks()
	require.Len(t, ticks, 4)
	assert.Equal(t, "p", ticks[0].Label)
	assert.Equal(t, "f", ticks[3].Label)
}

func TestOffsetMeasureTicks(t *testing.T) {
	a := NewOffset(X)
	var measures []score.Event
	for i := 0; i < 24; i++ {
		measures = append(measures, score.Event{Kind: score.KindMeasure, Number: i + 1, Offset: float64(i * 4), Duration: 4})
	}
	a.SetMeasures(measures)
	a.SetBoundariesFromData([]float64{0, 95})

	ticks := a.Ticks()
	assert.LessOrEqual(t, len(ticks), maxMeasureTicks)
	assert.Equal(t, Tick{0, "1"}, ticks[0])

	a.SetMeasures(nil)
	ticks = a.Ticks()
	require.NotEmpty(t, ticks)
	assert.LessOrEqual(t, len(ticks), maxContinuousTicks)
	for _, tick := range ticks {
		assert.GreaterOrEqual(t, tick.Value, 0.0)
		assert.LessOrEqual(t, tick.Value, 95.0)
	}
}

func TestCounting(t *testing.T) {
	a := NewCounting(Y)
	assert.Equal(t, []Role{X}, a.CountAxes)
	v, ok := a.Extract(score.Event{Kind: score.KindRest})
	assert.True(t, ok)
	assert.Equal(t, []float64{1}, v)

	require.NoError(t, ApplyOptions([]Axis{a}, map[string]cty.Value{"yCountAxes": cty.StringVal("xz")}))
	assert.Equal(t, []Role{X, Z}, a.CountAxes)
	assert.Error(t, ApplyOptions([]Axis{a}, map[string]cty.Value{"yCountAxes": cty.StringVal("q")}))
}

func TestNew(t *testing.T) {
	for _, name := range Names {
		a, err := New(name, X)
		require.NoError(t, err, name)
		assert.Equal(t, name, a.Name())
		assert.Equal(t, X, a.Role())
	}
	_, err := New("loudness", X)
	assert.True(t, errors.Is(err, ErrUnknownAxis))
}
