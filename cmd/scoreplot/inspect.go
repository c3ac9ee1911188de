package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/leowmjw/go-scoreplot/pkg/score"
	"github.com/leowmjw/go-scoreplot/pkg/source"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect SCORE",
	Short: "Summarizes the parts of a score",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := source.Load(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("title: %s\n", s.Title)
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "PART\tNOTES\tCHORDS\tRESTS\tMEASURES\tRANGE\tDYNAMICS\tLENGTH")
		for _, sum := range score.Summarize(s) {
			span := "-"
			if sum.Lowest != nil {
				span = sum.Lowest.String() + "-" + sum.Highest.String()
			}
			fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%s\t%s\t%g\n",
				sum.Name, sum.Notes, sum.Chords, sum.Rests, sum.Measures, span,
				strings.Join(sum.Dynamics, " "), sum.Duration)
		}
		return tw.Flush()
	},
}
