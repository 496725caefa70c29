package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vpalmerio/clawdera/internal/coordinator"
	"github.com/vpalmerio/clawdera/internal/escrow"
	"github.com/vpalmerio/clawdera/internal/printer"
)

var (
	thesisFrom      string
	thesisReview    int64
	thesisText      string
	thesisBullish   bool
	thesisPledge    int64
	thesisPrincipal string
)

var thesisCmd = &cobra.Command{
	Use:   "thesis",
	Short: "Submit an investment thesis to an open review",
	Long: `Submit a thesis to an open review on behalf of a delegating principal.

A bullish thesis must pledge a positive amount, which is debited from the
agent's pooled escrow immediately. A bearish thesis carries no pledge and
earns no token share, but still counts for the fee split. One thesis per
agent per review.

Examples:
  clawdera thesis --from agent-1 --review 3 --principal alice --bullish --pledge 400 --text "Strong fundamentals"
  clawdera thesis --from agent-2 --review 3 --principal carol --text "Overvalued at this fee"`,
	RunE: runThesis,
}

func init() {
	thesisCmd.Flags().StringVar(&thesisFrom, "from", "", "Agent address submitting the thesis (required)")
	thesisCmd.Flags().Int64Var(&thesisReview, "review", 0, "Review id (required)")
	thesisCmd.Flags().StringVar(&thesisText, "text", "", "Thesis text (required)")
	thesisCmd.Flags().BoolVar(&thesisBullish, "bullish", false, "Take the bullish side and pledge capital")
	thesisCmd.Flags().Int64Var(&thesisPledge, "pledge", 0, "Capital to pledge (bullish only)")
	thesisCmd.Flags().StringVar(&thesisPrincipal, "principal", "", "Principal whose delegation authorizes the agent (required)")
	thesisCmd.MarkFlagRequired("from")
	thesisCmd.MarkFlagRequired("review")
	thesisCmd.MarkFlagRequired("text")
	thesisCmd.MarkFlagRequired("principal")
	rootCmd.AddCommand(thesisCmd)
}

func runThesis(cmd *cobra.Command, args []string) error {
	p, err := connect()
	if err != nil {
		return err
	}
	defer p.Close()

	err = p.coord.SubmitThesis(context.Background(), thesisFrom, thesisReview, thesisText, thesisBullish, thesisPledge, thesisPrincipal)
	if err != nil {
		switch {
		case errors.Is(err, coordinator.ErrReviewNotFound):
			return printer.Error(
				fmt.Sprintf("review %d not found", thesisReview),
				"No review with that id exists on this instance.",
				[]string{"List open reviews:\n  clawdera list --status open"},
			)
		case errors.Is(err, coordinator.ErrAlreadyExecuted), errors.Is(err, coordinator.ErrWindowClosed):
			return printer.Error(
				fmt.Sprintf("review %d is no longer accepting theses", thesisReview),
				"The deliberation window has closed.",
				nil,
			)
		case errors.Is(err, coordinator.ErrNoValidDelegation):
			return printer.Error(
				"no delegation from principal to agent",
				fmt.Sprintf("'%s' has not delegated authority to '%s'.", thesisPrincipal, thesisFrom),
				[]string{fmt.Sprintf("Register one first:\n  clawdera delegate --from %s --agent %s --max <amount>", thesisPrincipal, thesisFrom)},
			)
		case errors.Is(err, escrow.ErrDelegationExpired):
			return printer.Error(
				"delegation has expired",
				fmt.Sprintf("The delegation from '%s' to '%s' is past its expiry.", thesisPrincipal, thesisFrom),
				[]string{"Register a fresh delegation with a later --expiry"},
			)
		case errors.Is(err, coordinator.ErrDuplicateThesis):
			return printer.Error(
				"thesis already submitted",
				fmt.Sprintf("'%s' has already submitted a thesis to review %d.", thesisFrom, thesisReview),
				nil,
			)
		case errors.Is(err, coordinator.ErrMustPledgeIfBullish):
			return printer.Error(
				"bullish thesis requires a pledge",
				"Pass a positive --pledge when submitting with --bullish.",
				nil,
			)
		case errors.Is(err, coordinator.ErrExceedsLimit):
			return printer.Error(
				"pledge exceeds delegation limit",
				fmt.Sprintf("The delegation from '%s' caps '%s' at less than %d.", thesisPrincipal, thesisFrom, thesisPledge),
				nil,
			)
		case errors.Is(err, escrow.ErrInsufficientEscrow):
			return printer.Error(
				"insufficient pooled escrow",
				fmt.Sprintf("'%s' does not hold %d in escrow.", thesisFrom, thesisPledge),
				[]string{fmt.Sprintf("Check the balance:\n  clawdera escrow --agent %s", thesisFrom)},
			)
		}
		return err
	}

	if thesisBullish {
		printer.Success("Submitted bullish thesis to review %d, pledged %d\n", thesisReview, thesisPledge)
	} else {
		printer.Success("Submitted bearish thesis to review %d\n", thesisReview)
	}
	return nil
}
