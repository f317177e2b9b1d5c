package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rfmscope/rfmscope/internal/cli"
	"github.com/rfmscope/rfmscope/internal/rfm"
)

func segmentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "segments",
		Short: "Show the segment decision table",
		Long:  `Segments prints the ordered classification rules applied to each customer's scores.`,
		Run: func(_ *cobra.Command, _ []string) {
			rules := rfm.Rules()
			lines := make([]cli.RuleLine, len(rules))
			for i, r := range rules {
				lines[i] = cli.RuleLine{Segment: r.Segment, Condition: r.Condition}
			}
			cli.RenderRules(os.Stdout, lines)
		},
	}
}
