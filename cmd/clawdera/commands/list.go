package commands

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vpalmerio/clawdera/internal/printer"
	"github.com/vpalmerio/clawdera/internal/review"
	"github.com/vpalmerio/clawdera/internal/timespec"
)

var (
	listOutput string
	listSince  string
	listUntil  string
	listAsset  string
	listStatus string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List reviews on this instance",
	Long: `List reviews, newest first, optionally filtered by creation time, asset,
or status (open, due, executed).

Time filters accept RFC3339 timestamps or relative durations like '2h'.

Examples:
  clawdera list
  clawdera list --status open
  clawdera list --since 24h --asset ASSET-ALPHA --output jsonl`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVarP(&listOutput, "output", "o", "default", "Output format: default or jsonl")
	listCmd.Flags().StringVar(&listSince, "since", "", "Only reviews created after this time")
	listCmd.Flags().StringVar(&listUntil, "until", "", "Only reviews created before this time")
	listCmd.Flags().StringVar(&listAsset, "asset", "", "Only reviews of this asset")
	listCmd.Flags().StringVar(&listStatus, "status", "", "Only reviews with this status (open, due, executed)")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	format := review.OutputFormat(listOutput)
	if format != review.OutputFormatDefault && format != review.OutputFormatJSONL {
		return printer.Error(
			"unknown output format",
			"Supported formats are 'default' and 'jsonl'.",
			nil,
		)
	}

	sinceMs, untilMs, err := timespec.ParseRange(listSince, listUntil)
	if err != nil {
		return printer.Error(
			"invalid time filter",
			err.Error(),
			[]string{"Use RFC3339 ('2026-08-31T12:00:00Z') or a relative duration ('2h')"},
		)
	}

	p, err := connect()
	if err != nil {
		return err
	}
	defer p.Close()

	reviews, err := p.coord.ListReviews(context.Background())
	if err != nil {
		return err
	}

	nowMs := time.Now().UnixMilli()
	criteria := &review.FilterCriteria{
		SinceTimestampMs: sinceMs,
		UntilTimestampMs: untilMs,
		AssetID:          listAsset,
		Status:           listStatus,
	}
	reviews = review.Filter(reviews, criteria, nowMs)

	if format == review.OutputFormatJSONL {
		return review.FormatJSONL(os.Stdout, reviews)
	}
	review.FormatTable(os.Stdout, reviews, p.client.InstanceName(), nowMs)
	return nil
}
