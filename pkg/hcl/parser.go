package hcl

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/leowmjw/go-scoreplot/pkg/reduction"
	"github.com/leowmjw/go-scoreplot/pkg/render"
	"github.com/leowmjw/go-scoreplot/pkg/score"
)

// HCLFile is the top level of a plot job file
type HCLFile struct {
	Plots []HCLPlot `hcl:"plot,block"`
}

// HCLPlot represents a single plot job
type HCLPlot struct {
	Name      string         `hcl:"name,label"`
	Preset    *string        `hcl:"preset,optional"`
	Type      *string        `hcl:"type,optional"`
	Values    []string       `hcl:"values,optional"`
	Title     *string        `hcl:"title,optional"`
	X         *string        `hcl:"x,optional"`
	Y         *string        `hcl:"y,optional"`
	Z         *string        `hcl:"z,optional"`
	Flatten   *bool          `hcl:"flatten,optional"`
	Kinds     []string       `hcl:"kinds,optional"`
	Expander  *string        `hcl:"expander,optional"`
	NullFill  *float64       `hcl:"null_fill,optional"`
	Options   *hcl.Attribute `hcl:"options,optional"`
	Windowed  *HCLWindowed   `hcl:"windowed,block"`
	Reduction *HCLReduction  `hcl:"reduction,block"`
}

// HCLWindowed configures a windowed analysis
type HCLWindowed struct {
	Processor    *string  `hcl:"processor,optional"`
	MinWindow    *int     `hcl:"min_window,optional"`
	MaxWindow    *int     `hcl:"max_window,optional"`
	Step         *string  `hcl:"step,optional"`
	StepSize     *int     `hcl:"step_size,optional"`
	WindowType   *string  `hcl:"window_type,optional"`
	Unit         *float64 `hcl:"unit,optional"`
	ExpandLegend *bool    `hcl:"expand_legend,optional"`
}

// HCLReduction configures a part reduction
type HCLReduction struct {
	FillByMeasure   *bool      `hcl:"fill_by_measure,optional"`
	SegmentByTarget *bool      `hcl:"segment_by_target,optional"`
	NormalizeByPart *bool      `hcl:"normalize_by_part,optional"`
	Default         *string    `hcl:"default,optional"`
	Groups          []HCLGroup `hcl:"group,block"`
}

// HCLGroup maps parts to a named bar row
type HCLGroup struct {
	Name  string   `hcl:"name,label"`
	Color *string  `hcl:"color,optional"`
	Match []string `hcl:"match,optional"`
}

// evalContext exposes pitch("C#4") and dynamic("mf") so option values can be
// written in musical terms.
func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{},
		Functions: map[string]function.Function{
			"pitch": function.New(&function.Spec{
				Params: []function.Parameter{
					{
						Name: "name",
						Type: cty.String,
					},
				},
				Type: function.StaticReturnType(cty.Number),
				Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
					p, err := score.ParsePitch(args[0].AsString())
					if err != nil {
						return cty.UnknownVal(cty.Number), err
					}
					return cty.NumberFloatVal(p.Space), nil
				},
			}),
			"dynamic": function.New(&function.Spec{
				Params: []function.Parameter{
					{
						Name: "marking",
						Type: cty.String,
					},
				},
				Type: function.StaticReturnType(cty.Number),
				Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
					idx, ok := score.DynamicIndex(args[0].AsString())
					if !ok {
						return cty.UnknownVal(cty.Number), fmt.Errorf("unknown dynamic %q", args[0].AsString())
					}
					return cty.NumberIntVal(int64(idx)), nil
				},
			}),
		},
	}
}

// ParseJobs parses every plot block in HCL content
func ParseJobs(hclContent string) ([]render.Job, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL([]byte(hclContent), "plot.hcl")
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}
	return parseJobsFromFile(file)
}

// ParseJob parses HCL content holding exactly one plot block
func ParseJob(hclContent string) (*render.Job, error) {
	jobs, err := ParseJobs(hclContent)
	if err != nil {
		return nil, err
	}
	if len(jobs) != 1 {
		return nil, fmt.Errorf("expected one plot block, found %d", len(jobs))
	}
	return &jobs[0], nil
}

func parseJobsFromFile(file *hcl.File) ([]render.Job, error) {
	evalCtx := evalContext()

	var hclFile HCLFile
	diags := gohcl.DecodeBody(file.Body, evalCtx, &hclFile)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL body: %s", diags.Error())
	}

	jobs := make([]render.Job, 0, len(hclFile.Plots))
	seen := make(map[string]bool, len(hclFile.Plots))
	for _, p := range hclFile.Plots {
		if seen[p.Name] {
			return nil, fmt.Errorf("duplicate plot %q", p.Name)
		}
		seen[p.Name] = true

		job, err := convertHCLPlot(p, evalCtx)
		if err != nil {
			return nil, fmt.Errorf("plot %q: %w", p.Name, err)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func convertHCLPlot(p HCLPlot, evalCtx *hcl.EvalContext) (render.Job, error) {
	job := render.Job{
		Name:     p.Name,
		Preset:   deref(p.Preset),
		Type:     deref(p.Type),
		Values:   p.Values,
		Title:    deref(p.Title),
		X:        deref(p.X),
		Y:        deref(p.Y),
		Z:        deref(p.Z),
		Flatten:  p.Flatten,
		Kinds:    p.Kinds,
		Expander: deref(p.Expander),
	}
	if p.NullFill != nil {
		job.NullFill = *p.NullFill
	}

	if p.Options != nil {
		val, diags := p.Options.Expr.Value(evalCtx)
		if diags.HasErrors() {
			return job, fmt.Errorf("failed to evaluate options: %s", diags.Error())
		}
		if !val.IsNull() {
			if !val.Type().IsObjectType() && !val.Type().IsMapType() {
				return job, fmt.Errorf("options must be an object, got %s", val.Type().FriendlyName())
			}
			job.Options = render.Options(val.AsValueMap())
		}
	}

	if w := p.Windowed; w != nil {
		spec := &render.WindowedSpec{
			Processor:  deref(w.Processor),
			Step:       deref(w.Step),
			WindowType: deref(w.WindowType),
		}
		if w.MinWindow != nil {
			spec.MinWindow = *w.MinWindow
		}
		if w.MaxWindow != nil {
			spec.MaxWindow = *w.MaxWindow
		}
		if w.StepSize != nil {
			spec.StepSize = *w.StepSize
		}
		if w.Unit != nil {
			spec.Unit = *w.Unit
		}
		if w.ExpandLegend != nil {
			spec.ExpandLegend = *w.ExpandLegend
		}
		job.Windowed = spec
	}

	if r := p.Reduction; r != nil {
		spec := &render.ReductionSpec{
			SegmentByTarget: r.SegmentByTarget,
			Default:         deref(r.Default),
		}
		if r.FillByMeasure != nil {
			spec.FillByMeasure = *r.FillByMeasure
		}
		if r.NormalizeByPart != nil {
			spec.NormalizeByPart = *r.NormalizeByPart
		}
		for _, g := range r.Groups {
			spec.Groups = append(spec.Groups, reduction.Group{
				Name:  g.Name,
				Color: deref(g.Color),
				Match: g.Match,
			})
		}
		job.Reduction = spec
	}

	return job, nil
}

// ParseOptionAssignments parses command line settings such as
// "xHideUnused=false" or "yMinValue=pitch(\"C4\")". Values are HCL
// expressions.
func ParseOptionAssignments(assignments []string) (render.Options, error) {
	opts := render.Options{}
	evalCtx := evalContext()
	for _, a := range assignments {
		name, expr, ok := strings.Cut(a, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("option %q must have the form name=value", a)
		}
		parsed, diags := hclsyntax.ParseExpression([]byte(expr), "option", hcl.Pos{Line: 1, Column: 1})
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse option %s: %s", name, diags.Error())
		}
		val, diags := parsed.Value(evalCtx)
		if diags.HasErrors() {
			// Bare words such as xCountAxes=xy are read as strings.
			if trav, travDiags := hcl.AbsTraversalForExpr(parsed); !travDiags.HasErrors() && len(trav) == 1 {
				val = cty.StringVal(trav.RootName())
			} else {
				return nil, fmt.Errorf("failed to evaluate option %s: %s", name, diags.Error())
			}
		}
		opts[name] = val
	}
	return opts, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// IsHCL attempts to detect if the given content is in HCL format
func IsHCL(content []byte) bool {
	_, diags := hclsyntax.ParseConfig(content, "", hcl.Pos{Line: 1, Column: 1})
	return !diags.HasErrors()
}
