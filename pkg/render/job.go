package render

import (
	"encoding/json"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"

	"github.com/leowmjw/go-scoreplot/pkg/reduction"
	"github.com/leowmjw/go-scoreplot/pkg/score"
)

// Job describes one plot to render. A job names a catalog preset, or a graph
// type with its axes, or a graph type with keywords for the catalog search.
type Job struct {
	Name   string   `json:"name"`
	Preset string   `json:"preset,omitempty"`
	Type   string   `json:"type,omitempty"`
	Values []string `json:"values,omitempty"`
	Title  string   `json:"title,omitempty"`
	X      string   `json:"x,omitempty"`
	Y      string   `json:"y,omitempty"`
	Z      string   `json:"z,omitempty"`
	// Flatten defaults to true.
	Flatten *bool    `json:"flatten,omitempty"`
	Kinds   []string `json:"kinds,omitempty"`
	// Expander is "padded" (default) or "unpadded".
	Expander string  `json:"expander,omitempty"`
	NullFill float64 `json:"nullFill,omitempty"`
	Options  Options `json:"options,omitempty"`

	Windowed  *WindowedSpec  `json:"windowed,omitempty"`
	Reduction *ReductionSpec `json:"reduction,omitempty"`

	// Score is an inline document used when Run is given no stream.
	Score *score.Score `json:"score,omitempty"`
}

// WindowedSpec configures a colorgrid job.
type WindowedSpec struct {
	Processor    string  `json:"processor,omitempty"`
	MinWindow    int     `json:"minWindow,omitempty"`
	MaxWindow    int     `json:"maxWindow,omitempty"`
	Step         string  `json:"step,omitempty"`
	StepSize     int     `json:"stepSize,omitempty"`
	WindowType   string  `json:"windowType,omitempty"`
	Unit         float64 `json:"unit,omitempty"`
	ExpandLegend bool    `json:"expandLegend,omitempty"`
}

// ReductionSpec configures a horizontalbarweighted job.
type ReductionSpec struct {
	FillByMeasure bool `json:"fillByMeasure,omitempty"`
	// SegmentByTarget defaults to true.
	SegmentByTarget *bool             `json:"segmentByTarget,omitempty"`
	NormalizeByPart bool              `json:"normalizeByPart,omitempty"`
	Default         string            `json:"default,omitempty"`
	Groups          []reduction.Group `json:"groups,omitempty"`
}

// Options are prefixed axis options. They encode as plain JSON values.
type Options map[string]cty.Value

func (o Options) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("null"), nil
	}
	m := make(map[string]ctyjson.SimpleJSONValue, len(o))
	for k, v := range o {
		m[k] = ctyjson.SimpleJSONValue{Value: v}
	}
	return json.Marshal(m)
}

func (o *Options) UnmarshalJSON(data []byte) error {
	var m map[string]ctyjson.SimpleJSONValue
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	if m == nil {
		*o = nil
		return nil
	}
	out := make(Options, len(m))
	for k, v := range m {
		out[k] = v.Value
	}
	*o = out
	return nil
}
