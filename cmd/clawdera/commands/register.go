package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/vpalmerio/clawdera/internal/printer"
	"github.com/vpalmerio/clawdera/internal/registry"
)

var (
	registerFrom     string
	registerMetadata string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a participant identity",
	Long: `Register a participant identity with the protocol.

Registration is one-time and self-service: the address in --from becomes the
identity record, and a second registration for the same address fails.
Identity is required before reputation can accrue; theses only require a
delegation.

Examples:
  clawdera register --from alice --metadata ipfs://alice-profile`,
	RunE: runRegister,
}

func init() {
	registerCmd.Flags().StringVar(&registerFrom, "from", "", "Caller address (required)")
	registerCmd.Flags().StringVar(&registerMetadata, "metadata", "", "Metadata URI stored on the identity record")
	registerCmd.MarkFlagRequired("from")
	rootCmd.AddCommand(registerCmd)
}

func runRegister(cmd *cobra.Command, args []string) error {
	p, err := connect()
	if err != nil {
		return err
	}
	defer p.Close()

	if err := p.reg.RegisterIdentity(context.Background(), registerFrom, registerMetadata); err != nil {
		if errors.Is(err, registry.ErrAlreadyRegistered) {
			return printer.Error(
				"agent already registered",
				"Identity records are write-once and never deleted.",
				[]string{"Inspect the existing record:\n  clawdera escrow --agent " + registerFrom},
			)
		}
		return err
	}

	printer.Success("Registered identity '%s'\n", registerFrom)
	return nil
}
