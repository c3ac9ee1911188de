package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/leowmjw/go-scoreplot/pkg/axis"
	"github.com/leowmjw/go-scoreplot/pkg/plot"
	"github.com/leowmjw/go-scoreplot/pkg/windowed"
)

func init() {
	rootCmd.AddCommand(catalogCmd)
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Lists plot presets, axes and windowed processors",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "PRESET\tTYPE\tTITLE")
		for _, p := range plot.Catalog {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID(), p.Type, p.Title)
		}
		tw.Flush()

		fmt.Printf("\naxes: %s\n", strings.Join(axis.Names, ", "))
		fmt.Printf("processors: %s\n", strings.Join(windowed.Processors(), ", "))
	},
}
