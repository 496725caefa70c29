package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vpalmerio/clawdera/internal/coordinator"
	"github.com/vpalmerio/clawdera/internal/printer"
)

var executeReview int64

var executeCmd = &cobra.Command{
	Use:   "execute",
	Short: "Execute a review past its deadline",
	Long: `Execute a review whose deliberation window has closed.

The daemon fires executions automatically; this command is the manual
fallback when it is not running. Execution purchases the asset with the
pooled pledges, allocates token shares proportionally, and splits the
submission fee among everyone who submitted a thesis.

Examples:
  clawdera execute --review 3`,
	RunE: runExecute,
}

func init() {
	executeCmd.Flags().Int64Var(&executeReview, "review", 0, "Review id (required)")
	executeCmd.MarkFlagRequired("review")
	rootCmd.AddCommand(executeCmd)
}

func runExecute(cmd *cobra.Command, args []string) error {
	p, err := connect()
	if err != nil {
		return err
	}
	defer p.Close()

	err = p.coord.Execute(context.Background(), executeReview)
	if err != nil {
		switch {
		case errors.Is(err, coordinator.ErrReviewNotFound):
			return printer.Error(
				fmt.Sprintf("review %d not found", executeReview),
				"No review with that id exists on this instance.",
				nil,
			)
		case errors.Is(err, coordinator.ErrAlreadyExecuted):
			return printer.Error(
				fmt.Sprintf("review %d already executed", executeReview),
				"Each review executes exactly once.",
				[]string{fmt.Sprintf("Inspect the outcome:\n  clawdera show --review %d", executeReview)},
			)
		case errors.Is(err, coordinator.ErrWindowNotClosed):
			return printer.Error(
				fmt.Sprintf("review %d is still deliberating", executeReview),
				"The deadline has not passed yet.",
				nil,
			)
		}
		return err
	}

	rev, err := p.coord.GetReview(context.Background(), executeReview)
	if err != nil {
		return err
	}
	printer.Success("Executed review %d\n", executeReview)
	printer.Info("  Pledged:   %d\n", rev.TotalPledged)
	printer.Info("  Purchased: %d\n", rev.TotalPurchased)
	return nil
}
