package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vpalmerio/clawdera/internal/coordinator"
	"github.com/vpalmerio/clawdera/internal/printer"
	"github.com/vpalmerio/clawdera/internal/review"
)

var showReview int64

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a single review with its theses",
	Long: `Show the full state of one review as JSON, including every submitted
thesis in submission order.

Examples:
  clawdera show --review 3`,
	RunE: runShow,
}

func init() {
	showCmd.Flags().Int64Var(&showReview, "review", 0, "Review id (required)")
	showCmd.MarkFlagRequired("review")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	p, err := connect()
	if err != nil {
		return err
	}
	defer p.Close()

	ctx := context.Background()
	rev, err := p.coord.GetReview(ctx, showReview)
	if err != nil {
		if errors.Is(err, coordinator.ErrReviewNotFound) {
			return printer.Error(
				fmt.Sprintf("review %d not found", showReview),
				"No review with that id exists on this instance.",
				[]string{"List reviews:\n  clawdera list"},
			)
		}
		return err
	}

	theses, err := p.coord.ListTheses(ctx, showReview)
	if err != nil {
		return err
	}

	return review.FormatSingleJSON(os.Stdout, rev, theses)
}
