package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rfmscope/rfmscope/internal/cli"
	"github.com/rfmscope/rfmscope/internal/common"
	"github.com/rfmscope/rfmscope/internal/engine"
	"github.com/rfmscope/rfmscope/internal/export"
	"github.com/rfmscope/rfmscope/internal/ingest"
	"github.com/rfmscope/rfmscope/internal/model"
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <file.xlsx>",
		Short: "Run RFM segmentation and CLTV scoring over a transaction workbook",
		Long: `Analyze reads a transaction workbook, cleans it, aggregates per-customer
Recency/Frequency/Monetary values, scores them by quintile within the cohort,
assigns segments, and estimates CLTV.

Examples:
  # Summary only
  rfmscope analyze online_retail.xlsx

  # Export the full table
  rfmscope analyze online_retail.xlsx -o customers.xlsx

  # Export only at-risk and hibernating customers
  rfmscope analyze online_retail.xlsx -o winback.xlsx --segments "At Risk,Hibernating"`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyze,
	}

	cmd.Flags().StringP("output", "o", "", "export the (filtered) customer table to this xlsx path")
	cmd.Flags().String("segments", "", "comma-separated segment filter for summary and export")
	cmd.Flags().Bool("rank-ties", false, "fall back to stable-rank binning when a metric has too few distinct values")
	cmd.Flags().Int("top", 10, "number of rows in the top-CLTV table")
	cmd.Flags().BoolP("quiet", "q", false, "suppress progress output")

	_ = viper.BindPFlag("scoring.rank_ties", cmd.Flags().Lookup("rank-ties"))

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path := args[0]
	output, _ := cmd.Flags().GetString("output")
	topN, _ := cmd.Flags().GetInt("top")
	quiet, _ := cmd.Flags().GetBool("quiet")

	segments, err := parseSegments(cmd)
	if err != nil {
		return err
	}

	reader := ingest.NewReader()
	if quiet {
		reader = ingest.NewQuietReader()
	}

	txns, err := reader.ReadFile(cmd.Context(), path)
	if err != nil {
		return common.NewUserError("could not read workbook", err)
	}

	eng := engine.New(engine.Config{
		RankTies: viper.GetBool("scoring.rank_ties"),
	})

	result, err := eng.Run(cmd.Context(), txns)
	if err != nil {
		return common.NewUserError("analysis failed", err)
	}

	filtered := result.FilterSegments(segments)

	cli.Render(os.Stdout, cli.Summarize(filtered, topN))

	if output != "" {
		if err := export.NewWriter().Write(output, filtered); err != nil {
			return common.NewUserError("export failed", err)
		}
		fmt.Println(cli.FormatSuccess(fmt.Sprintf("Exported %d customers to %s", len(filtered), output)))
	}

	return nil
}

// parseSegments reads and validates the --segments filter.
func parseSegments(cmd *cobra.Command) ([]model.Segment, error) {
	raw, _ := cmd.Flags().GetString("segments")
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var segments []model.Segment
	for _, part := range strings.Split(raw, ",") {
		seg, err := model.ParseSegment(strings.TrimSpace(part))
		if err != nil {
			return nil, common.NewUserError("invalid --segments value", err)
		}
		segments = append(segments, seg)
	}
	return segments, nil
}
