package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/vpalmerio/clawdera/internal/printer"
)

var (
	revokeFrom  string
	revokeAgent string
)

var revokeCmd = &cobra.Command{
	Use:   "revoke",
	Short: "Revoke a delegation",
	Long: `Revoke the delegation from a principal to an agent.

Revocation only prevents future pledges backed by this grant. It does not
touch the agent's pooled escrow balance: capital already deposited stays in
the pool, and capital already pledged into an open review stays pledged.

Examples:
  clawdera revoke --from carol --agent alice`,
	RunE: runRevoke,
}

func init() {
	revokeCmd.Flags().StringVar(&revokeFrom, "from", "", "Principal address (required)")
	revokeCmd.Flags().StringVar(&revokeAgent, "agent", "", "Agent address (required)")
	revokeCmd.MarkFlagRequired("from")
	revokeCmd.MarkFlagRequired("agent")
	rootCmd.AddCommand(revokeCmd)
}

func runRevoke(cmd *cobra.Command, args []string) error {
	p, err := connect()
	if err != nil {
		return err
	}
	defer p.Close()

	if err := p.ledger.Revoke(context.Background(), revokeFrom, revokeAgent); err != nil {
		return err
	}

	printer.Success("Revoked delegation from '%s' to '%s'\n", revokeFrom, revokeAgent)
	return nil
}
