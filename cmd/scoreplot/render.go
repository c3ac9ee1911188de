package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/leowmjw/go-scoreplot/pkg/hcl"
	"github.com/leowmjw/go-scoreplot/pkg/plot"
	"github.com/leowmjw/go-scoreplot/pkg/render"
	"github.com/leowmjw/go-scoreplot/pkg/source"
)

var renderFlags struct {
	jobPath   string
	preset    string
	graphType string
	values    []string
	x, y, z   string
	title     string
	expander  string
	sets      []string
	out       string
}

func init() {
	f := renderCmd.Flags()
	f.StringVarP(&renderFlags.jobPath, "job", "j", "", "HCL or JSON job file, or a directory of HCL files")
	f.StringVarP(&renderFlags.preset, "preset", "p", "", "catalog preset ID")
	f.StringVarP(&renderFlags.graphType, "type", "t", "", "graph type, e.g. histogram, scatter, horizontalbar, colorgrid")
	f.StringSliceVar(&renderFlags.values, "values", nil, "axis names or keywords used to pick a preset")
	f.StringVarP(&renderFlags.x, "x", "x", "", "x axis name")
	f.StringVarP(&renderFlags.y, "y", "y", "", "y axis name")
	f.StringVarP(&renderFlags.z, "z", "z", "", "z axis name")
	f.StringVar(&renderFlags.title, "title", "", "plot title")
	f.StringVar(&renderFlags.expander, "expander", "", "chord expansion: padded or unpadded")
	f.StringArrayVarP(&renderFlags.sets, "set", "s", nil, "axis option such as yHideUnused=false (repeatable)")
	f.StringVarP(&renderFlags.out, "out", "o", "", "write output to this file instead of stdout")
	rootCmd.AddCommand(renderCmd)
}

var renderCmd = &cobra.Command{
	Use:   "render SCORE",
	Short: "Renders plot data for a score",
	Long: `Renders plot data for a score as JSON. Jobs come from --job, or from the
preset and axis flags. With neither, the pitch-space piano roll is drawn.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRender(cmd.Context(), args[0])
	},
}

func runRender(ctx context.Context, scorePath string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := newLogger()

	s, err := source.Load(scorePath)
	if err != nil {
		return err
	}

	jobs, err := renderJobs()
	if err != nil {
		return err
	}

	w := io.Writer(os.Stdout)
	if renderFlags.out != "" {
		f, err := os.Create(renderFlags.out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	runner := render.NewRunner(logger)
	for _, job := range jobs {
		result, err := runner.Run(ctx, job, s)
		if err != nil {
			return fmt.Errorf("job %q: %w", job.Name, err)
		}
		if err := writeResult(w, result); err != nil {
			return err
		}
	}
	return nil
}

func renderJobs() ([]render.Job, error) {
	var jobs []render.Job
	if renderFlags.jobPath != "" {
		loaded, err := hcl.LoadJobs(renderFlags.jobPath)
		if err != nil {
			return nil, err
		}
		jobs = loaded
	} else {
		jobs = []render.Job{{
			Name:     "cli",
			Preset:   renderFlags.preset,
			Type:     renderFlags.graphType,
			Values:   renderFlags.values,
			X:        renderFlags.x,
			Y:        renderFlags.y,
			Z:        renderFlags.z,
			Title:    renderFlags.title,
			Expander: renderFlags.expander,
		}}
	}

	if len(renderFlags.sets) == 0 {
		return jobs, nil
	}
	opts, err := hcl.ParseOptionAssignments(renderFlags.sets)
	if err != nil {
		return nil, err
	}
	for i := range jobs {
		if jobs[i].Options == nil {
			jobs[i].Options = render.Options{}
		}
		for k, v := range opts {
			jobs[i].Options[k] = v
		}
	}
	return jobs, nil
}

// writeResult draws figures on a JSON canvas; windowed and reduction results
// are written whole.
func writeResult(w io.Writer, result *render.Result) error {
	if result.Figure != nil {
		return plot.JSONCanvas{W: w}.Draw(result.Figure)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
