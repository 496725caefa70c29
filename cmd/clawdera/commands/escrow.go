package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vpalmerio/clawdera/internal/escrow"
	"github.com/vpalmerio/clawdera/internal/printer"
)

var (
	escrowAgent     string
	escrowPrincipal string
)

var escrowCmd = &cobra.Command{
	Use:   "escrow",
	Short: "Show an agent's pooled escrow balance",
	Long: `Show the capital an agent holds in pooled escrow. With --principal, also
show the state of that principal's delegation to the agent.

Examples:
  clawdera escrow --agent agent-1
  clawdera escrow --agent agent-1 --principal alice`,
	RunE: runEscrow,
}

func init() {
	escrowCmd.Flags().StringVar(&escrowAgent, "agent", "", "Agent address (required)")
	escrowCmd.Flags().StringVar(&escrowPrincipal, "principal", "", "Also show this principal's delegation")
	escrowCmd.MarkFlagRequired("agent")
	rootCmd.AddCommand(escrowCmd)
}

func runEscrow(cmd *cobra.Command, args []string) error {
	p, err := connect()
	if err != nil {
		return err
	}
	defer p.Close()

	ctx := context.Background()
	balance, err := p.ledger.Balance(ctx, escrowAgent)
	if err != nil {
		return err
	}
	printer.Info("Escrow for '%s': %d\n", escrowAgent, balance)

	if escrowPrincipal == "" {
		return nil
	}

	grant, err := p.ledger.GetDelegation(ctx, escrowPrincipal, escrowAgent)
	if err != nil {
		if errors.Is(err, escrow.ErrNoDelegation) {
			return printer.Error(
				"no delegation found",
				fmt.Sprintf("'%s' has no active delegation to '%s'.", escrowPrincipal, escrowAgent),
				nil,
			)
		}
		return err
	}

	printer.Info("Delegation from '%s':\n", escrowPrincipal)
	printer.Info("  Max amount: %d\n", grant.MaxAmount)
	if grant.ExpiryMs == 0 {
		printer.Info("  Expiry:     none\n")
	} else {
		expiry := time.UnixMilli(grant.ExpiryMs).UTC().Format(time.RFC3339)
		if grant.ExpiredAt(time.Now().UnixMilli()) {
			printer.Warning("Expired at %s\n", expiry)
		} else {
			printer.Info("  Expiry:     %s\n", expiry)
		}
	}
	if grant.Attestation != "" {
		printer.Info("  Attestation: %s\n", grant.Attestation)
	}
	return nil
}
