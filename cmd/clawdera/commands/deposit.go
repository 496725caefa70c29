package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/vpalmerio/clawdera/internal/escrow"
	"github.com/vpalmerio/clawdera/internal/printer"
)

var (
	depositFrom   string
	depositAgent  string
	depositAmount int64
)

var depositCmd = &cobra.Command{
	Use:   "deposit",
	Short: "Fund an agent's pooled escrow balance",
	Long: `Fund an agent's pooled escrow balance.

The depositing principal must hold an active, non-expired delegation to the
agent. Deposits from every principal pool into a single per-agent balance;
the protocol does not track which principal funded which portion.

Examples:
  clawdera deposit --from carol --agent alice --amount 500`,
	RunE: runDeposit,
}

func init() {
	depositCmd.Flags().StringVar(&depositFrom, "from", "", "Principal address (required)")
	depositCmd.Flags().StringVar(&depositAgent, "agent", "", "Agent address (required)")
	depositCmd.Flags().Int64Var(&depositAmount, "amount", 0, "Amount in capital units (required)")
	depositCmd.MarkFlagRequired("from")
	depositCmd.MarkFlagRequired("agent")
	depositCmd.MarkFlagRequired("amount")
	rootCmd.AddCommand(depositCmd)
}

func runDeposit(cmd *cobra.Command, args []string) error {
	p, err := connect()
	if err != nil {
		return err
	}
	defer p.Close()

	ctx := context.Background()
	if err := p.ledger.Deposit(ctx, depositFrom, depositAgent, depositAmount); err != nil {
		if errors.Is(err, escrow.ErrNoDelegation) {
			return printer.Error(
				"no delegation from principal to agent",
				"Deposits require an active delegation from the depositing principal.",
				[]string{"Create one first:\n  clawdera delegate --from " + depositFrom + " --agent " + depositAgent + " --max <ceiling>"},
			)
		}
		return err
	}

	balance, err := p.ledger.Balance(ctx, depositAgent)
	if err != nil {
		return err
	}

	printer.Success("Deposited %d to '%s' (pooled balance: %d)\n", depositAmount, depositAgent, balance)
	return nil
}
