package plot

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/leowmjw/go-scoreplot/pkg/axis"
)

const (
	// ColorGrid is the windowed analysis family.
	ColorGrid GraphType = "colorgrid"
	// HorizontalBarWeighted is the part reduction family.
	HorizontalBarWeighted GraphType = "horizontalbarweighted"
)

// Preset is a named plot configuration.
type Preset struct {
	Type    GraphType
	Title   string
	X, Y, Z string
	// Options are default axis options applied before any caller options.
	Options map[string]cty.Value
	// Values are extra keywords matched by Find.
	Values []string
}

// ID joins the graph type and the axis names.
func (p Preset) ID() string {
	parts := []string{string(p.Type)}
	for _, name := range []string{p.X, p.Y, p.Z} {
		if name != "" {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, "-")
}

// IsStream reports whether the preset runs through Plot rather than the
// windowed or reduction engines.
func (p Preset) IsStream() bool {
	return p.Type != ColorGrid && p.Type != HorizontalBarWeighted
}

// New builds a Plot with fresh axes. Caller options are applied over the
// preset defaults when the plot runs.
func (p Preset) New(opts map[string]cty.Value) (*Plot, error) {
	if !p.IsStream() {
		return nil, fmt.Errorf("preset %s is not a stream plot", p.ID())
	}
	pl := &Plot{Type: p.Type, Title: p.Title, Flatten: true}
	for _, b := range []struct {
		name string
		role axis.Role
		dst  *axis.Axis
	}{{p.X, axis.X, &pl.X}, {p.Y, axis.Y, &pl.Y}, {p.Z, axis.Z, &pl.Z}} {
		if b.name == "" {
			continue
		}
		a, err := axis.New(b.name, b.role)
		if err != nil {
			return nil, fmt.Errorf("preset %s: %w", p.ID(), err)
		}
		*b.dst = a
	}
	if c, ok := pl.Z.(*axis.Counting); ok {
		c.CountAxes = []axis.Role{axis.X, axis.Y}
	}

	pl.Options = make(map[string]cty.Value, len(p.Options)+len(opts))
	for k, v := range p.Options {
		pl.Options[k] = v
	}
	for k, v := range opts {
		pl.Options[k] = v
	}
	return pl, nil
}

func (p Preset) keywords() []string {
	words := []string{string(p.Type), p.X, p.Y, p.Z}
	words = append(words, p.Values...)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return words
}

// Catalog lists the built-in presets.
var Catalog = []Preset{
	{Type: Histogram, X: "pitchSpace", Y: "counting", Title: "Pitch Histogram", Values: []string{"pitch"}},
	{Type: Histogram, X: "pitchClass", Y: "counting", Title: "Pitch Class Histogram"},
	{Type: Histogram, X: "quarterLength", Y: "counting", Title: "Quarter Length Histogram",
		Options: map[string]cty.Value{"xUseLogScale": cty.False}},
	{Type: Scatter, X: "quarterLength", Y: "pitchSpace", Title: "Pitch by Quarter Length Scatter", Values: []string{"pitch"}},
	{Type: Scatter, X: "quarterLength", Y: "pitchClass", Title: "Pitch Class by Quarter Length Scatter"},
	{Type: Scatter, X: "offset", Y: "pitchClass", Title: "Pitch Class by Offset Scatter"},
	{Type: Scatter, X: "pitchSpace", Y: "dynamics", Title: "Dynamics by Pitch Scatter", Values: []string{"pitch"}},
	{Type: HorizontalBar, X: "offsetEnd", Y: "pitchSpace", Title: "Note Quarter Length by Pitch",
		Options: map[string]cty.Value{"yHideUnused": cty.False}, Values: []string{"pitch", "offset", "pianoroll"}},
	{Type: HorizontalBar, X: "offsetEnd", Y: "pitchClass", Title: "Note Quarter Length and Offset by Pitch Class",
		Options: map[string]cty.Value{"yHideUnused": cty.False}, Values: []string{"offset"}},
	{Type: ScatterWeighted, X: "quarterLength", Y: "pitchSpace", Z: "counting", Title: "Count of Pitch and Quarter Length",
		Values: []string{"pitch"}},
	{Type: ScatterWeighted, X: "quarterLength", Y: "pitchClass", Z: "counting", Title: "Count of Pitch Class and Quarter Length"},
	{Type: ScatterWeighted, X: "pitchSpace", Y: "dynamics", Z: "counting", Title: "Count of Pitch and Dynamics",
		Values: []string{"pitch"}},
	{Type: Bars3D, X: "quarterLength", Y: "pitchSpace", Z: "counting", Title: "Pitch by Quarter Length Count",
		Options: map[string]cty.Value{"xUseLogScale": cty.False}, Values: []string{"pitch"}},
	{Type: ColorGrid, X: "offset", Title: "Windowed Analysis", Values: []string{"windowed", "ambitus", "range"}},
	{Type: HorizontalBarWeighted, X: "offset", Title: "Instrumentation", Values: []string{"instrument", "dolan", "reduction", "dynamics"}},
}

// DefaultPresetID is used when Find gets no criteria.
const DefaultPresetID = "horizontalbar-offsetEnd-pitchSpace"

// Lookup finds a preset by exact ID.
func Lookup(id string) (Preset, bool) {
	for _, p := range Catalog {
		if strings.EqualFold(p.ID(), id) {
			return p, true
		}
	}
	return Preset{}, false
}

// Find selects presets by graph type and axis names or keywords. An exact ID
// wins. Otherwise presets of the format whose keywords cover every value are
// returned; failing that, the presets matching the most values. With no
// criteria the pitch-space piano roll is returned.
func Find(format string, values ...string) []Preset {
	format = strings.ToLower(format)
	if format == "" && len(values) == 0 {
		p, _ := Lookup(DefaultPresetID)
		return []Preset{p}
	}
	if p, ok := Lookup(format); ok {
		return []Preset{p}
	}

	candidates := Catalog
	if format != "" {
		candidates = nil
		for _, p := range Catalog {
			if string(p.Type) == format {
				candidates = append(candidates, p)
			}
		}
		if len(candidates) == 0 {
			candidates = Catalog
			values = append(values, format)
		}
	}
	if len(values) == 0 {
		return candidates
	}

	var (
		full []Preset
		best []Preset
		top  int
	)
	for _, p := range candidates {
		hits := 0
		words := p.keywords()
		for _, v := range values {
			v = strings.ToLower(v)
			for _, w := range words {
				if w != "" && w == v {
					hits++
					break
				}
			}
		}
		if hits == len(values) {
			full = append(full, p)
		}
		switch {
		case hits == 0:
		case hits > top:
			top, best = hits, []Preset{p}
		case hits == top:
			best = append(best, p)
		}
	}
	if len(full) > 0 {
		return full
	}
	return best
}
