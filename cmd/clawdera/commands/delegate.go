package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vpalmerio/clawdera/internal/printer"
)

var (
	delegateFrom        string
	delegateAgent       string
	delegateMax         int64
	delegateExpiry      string
	delegateAttestation string
)

var delegateCmd = &cobra.Command{
	Use:   "delegate",
	Short: "Grant spending authority to an agent",
	Long: `Grant capped spending authority from a principal to an agent.

At most one grant exists per (principal, agent) pair; delegating again
overwrites the prior grant. The ceiling caps each individual pledge, not the
pooled balance. The attestation string is stored verbatim for audit and is
not cryptographically verified.

Expiry accepts an RFC3339 timestamp or a Go duration measured from now
("72h"); omit it for a grant that never expires.

Examples:
  clawdera delegate --from carol --agent alice --max 500
  clawdera delegate --from carol --agent alice --max 500 --expiry 72h
  clawdera delegate --from carol --agent alice --max 500 --attestation sig:0xabc`,
	RunE: runDelegate,
}

func init() {
	delegateCmd.Flags().StringVar(&delegateFrom, "from", "", "Principal address (required)")
	delegateCmd.Flags().StringVar(&delegateAgent, "agent", "", "Agent address (required)")
	delegateCmd.Flags().Int64Var(&delegateMax, "max", 0, "Spending ceiling per pledge in capital units (required)")
	delegateCmd.Flags().StringVar(&delegateExpiry, "expiry", "", "Grant expiry: RFC3339 or duration from now (default: never)")
	delegateCmd.Flags().StringVar(&delegateAttestation, "attestation", "", "Attestation stored for audit")
	delegateCmd.MarkFlagRequired("from")
	delegateCmd.MarkFlagRequired("agent")
	delegateCmd.MarkFlagRequired("max")
	rootCmd.AddCommand(delegateCmd)
}

// parseExpiry resolves the --expiry flag to a Unix-ms deadline.
// Empty means never (0). Durations are measured forward from now.
func parseExpiry(spec string) (int64, error) {
	if spec == "" {
		return 0, nil
	}
	if t, err := time.Parse(time.RFC3339, spec); err == nil {
		return t.UnixMilli(), nil
	}
	if d, err := time.ParseDuration(spec); err == nil {
		return time.Now().Add(d).UnixMilli(), nil
	}
	return 0, fmt.Errorf("invalid --expiry: %s (use RFC3339 or a duration like '72h')", spec)
}

func runDelegate(cmd *cobra.Command, args []string) error {
	expiryMs, err := parseExpiry(delegateExpiry)
	if err != nil {
		return err
	}

	p, err := connect()
	if err != nil {
		return err
	}
	defer p.Close()

	if err := p.ledger.RegisterDelegation(context.Background(), delegateFrom, delegateAgent, delegateMax, expiryMs, delegateAttestation); err != nil {
		return err
	}

	printer.Success("Delegated up to %d per pledge from '%s' to '%s'\n", delegateMax, delegateFrom, delegateAgent)
	return nil
}
