package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vpalmerio/clawdera/internal/coordinator"
	"github.com/vpalmerio/clawdera/internal/printer"
)

var (
	claimFrom   string
	claimReview int64
)

var claimCmd = &cobra.Command{
	Use:   "claim",
	Short: "Claim allocated tokens from an executed review",
	Long: `Claim the token share allocated to an agent by an executed review.

The venue transfers the tokens to the agent's address. Each share can be
claimed once; bearish participants have no share to claim.

Examples:
  clawdera claim --from agent-1 --review 3`,
	RunE: runClaim,
}

func init() {
	claimCmd.Flags().StringVar(&claimFrom, "from", "", "Agent address (required)")
	claimCmd.Flags().Int64Var(&claimReview, "review", 0, "Review id (required)")
	claimCmd.MarkFlagRequired("from")
	claimCmd.MarkFlagRequired("review")
	rootCmd.AddCommand(claimCmd)
}

func runClaim(cmd *cobra.Command, args []string) error {
	p, err := connect()
	if err != nil {
		return err
	}
	defer p.Close()

	err = p.coord.Claim(context.Background(), claimFrom, claimReview)
	if err != nil {
		switch {
		case errors.Is(err, coordinator.ErrReviewNotFound):
			return printer.Error(
				fmt.Sprintf("review %d not found", claimReview),
				"No review with that id exists on this instance.",
				nil,
			)
		case errors.Is(err, coordinator.ErrNotExecuted):
			return printer.Error(
				fmt.Sprintf("review %d has not executed", claimReview),
				"Shares become claimable only after execution.",
				nil,
			)
		case errors.Is(err, coordinator.ErrNoShare):
			return printer.Error(
				"no claimable share",
				fmt.Sprintf("'%s' holds no token share in review %d.", claimFrom, claimReview),
				nil,
			)
		case errors.Is(err, coordinator.ErrAlreadyClaimed):
			return printer.Error(
				"share already claimed",
				fmt.Sprintf("'%s' already claimed its share of review %d.", claimFrom, claimReview),
				nil,
			)
		}
		return err
	}

	share, err := p.coord.GetShare(context.Background(), claimReview, claimFrom)
	if err != nil {
		return err
	}
	printer.Success("Claimed %d tokens from review %d\n", share.TokenShare, claimReview)
	return nil
}
