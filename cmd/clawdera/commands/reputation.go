package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vpalmerio/clawdera/internal/printer"
	"github.com/vpalmerio/clawdera/internal/registry"
)

var (
	reputationFrom       string
	reputationReview     int64
	reputationAgent      string
	reputationProfitable bool
)

var reputationCmd = &cobra.Command{
	Use:   "reputation",
	Short: "Record a trade outcome against an agent's reputation",
	Long: `Record whether an agent's pledged position in an executed review turned
out profitable. Admin only. Profitable outcomes add a point, unprofitable
outcomes subtract one; trade counters move either way.

Examples:
  clawdera reputation --from admin --review 3 --agent agent-1 --profitable`,
	RunE: runReputation,
}

func init() {
	reputationCmd.Flags().StringVar(&reputationFrom, "from", "", "Caller address, must match the configured admin (required)")
	reputationCmd.Flags().Int64Var(&reputationReview, "review", 0, "Executed review id (required)")
	reputationCmd.Flags().StringVar(&reputationAgent, "agent", "", "Agent whose outcome is recorded (required)")
	reputationCmd.Flags().BoolVar(&reputationProfitable, "profitable", false, "Mark the outcome profitable")
	reputationCmd.MarkFlagRequired("from")
	reputationCmd.MarkFlagRequired("review")
	reputationCmd.MarkFlagRequired("agent")
	rootCmd.AddCommand(reputationCmd)
}

func runReputation(cmd *cobra.Command, args []string) error {
	p, err := connect()
	if err != nil {
		return err
	}
	defer p.Close()

	err = p.reg.UpdateReputation(context.Background(), reputationFrom, reputationReview, reputationAgent, reputationProfitable)
	if err != nil {
		switch {
		case errors.Is(err, registry.ErrNotAdmin):
			return printer.Error(
				"caller is not the admin",
				fmt.Sprintf("Reputation updates require the configured admin ('%s').", p.cfg.Admin),
				nil,
			)
		case errors.Is(err, registry.ErrReviewNotFound):
			return printer.Error(
				fmt.Sprintf("review %d not found", reputationReview),
				"No review with that id exists on this instance.",
				nil,
			)
		case errors.Is(err, registry.ErrReviewNotExecuted):
			return printer.Error(
				fmt.Sprintf("review %d has not executed", reputationReview),
				"Outcomes can only be recorded after execution.",
				nil,
			)
		case errors.Is(err, registry.ErrAgentDidNotInvest):
			return printer.Error(
				"agent did not invest in this review",
				fmt.Sprintf("'%s' pledged nothing to review %d.", reputationAgent, reputationReview),
				nil,
			)
		case errors.Is(err, registry.ErrNotRegistered):
			return printer.Error(
				"agent has no registered identity",
				fmt.Sprintf("'%s' must register before accruing reputation.", reputationAgent),
				[]string{fmt.Sprintf("Register it:\n  clawdera register --from %s", reputationAgent)},
			)
		}
		return err
	}

	ident, err := p.reg.GetIdentity(context.Background(), reputationAgent)
	if err != nil {
		return err
	}
	printer.Success("Recorded outcome for '%s' on review %d\n", reputationAgent, reputationReview)
	printer.Info("  Reputation: %d (%d/%d profitable)\n", ident.ReputationScore, ident.ProfitableTrades, ident.TotalTrades)
	return nil
}
