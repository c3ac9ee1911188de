package windowed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leowmjw/go-scoreplot/pkg/score"
)

func TestAmbitus(t *testing.T) {
	a := NewAmbitus(scale(13))
	assert.Equal(t, "Ambitus", a.Name())

	raw, color, err := a.Process(scale(8).Events)
	require.NoError(t, err)
	assert.Equal(t, 7, raw)
	assert.NotEqual(t, placeholderColor, color)

	widest, _, _ := a.Process(scale(13).Events)
	_, black, _ := a.Process(scale(13).Events)
	assert.Equal(t, 12, widest)
	assert.Equal(t, "#000000", black)

	raw, color, err = a.Process([]score.Event{{Kind: score.KindRest, Duration: 1}})
	require.NoError(t, err)
	assert.Nil(t, raw)
	assert.Equal(t, placeholderColor, color)

	assert.Len(t, a.SolutionLegend(false).Entries, 13)
	wide := NewAmbitus(scale(49))
	assert.LessOrEqual(t, len(wide.SolutionLegend(true).Entries), 13)
}

func TestRegistry(t *testing.T) {
	s := scale(4)
	p, err := NewProcessor("ambitus", s)
	require.NoError(t, err)
	assert.Equal(t, "Ambitus", p.Name())

	_, err = NewProcessor("key", s)
	assert.True(t, errors.Is(err, ErrNoProcessor))

	Register("count", func(score.Stream) (Processor, error) { return &countProcessor{}, nil })
	assert.Contains(t, Processors(), "count")

	p, err = NewProcessor("count", s)
	require.NoError(t, err)
	result, err := (&Engine{Processor: p}).Process(context.Background(), s)
	require.NoError(t, err)
	assert.Len(t, result.Matrix, 2)
}
