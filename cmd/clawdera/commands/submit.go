package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vpalmerio/clawdera/internal/coordinator"
	"github.com/vpalmerio/clawdera/internal/printer"
)

var (
	submitFrom  string
	submitAsset string
	submitFee   int64
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit an asset for review",
	Long: `Submit an asset for a new time-boxed review.

The submission fee must meet the configured minimum and is split among all
thesis submitters at execution time, whatever they decide. The asset must be
resolvable by the acquisition venue. The deadline is one review window from
now; the trigger daemon fires execution once it passes, and anyone can run
'clawdera execute' as a manual fallback.

Examples:
  clawdera submit --from bob --asset ASSET-ALPHA --fee 100`,
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().StringVar(&submitFrom, "from", "", "Creator address (required)")
	submitCmd.Flags().StringVar(&submitAsset, "asset", "", "Asset id to review (required)")
	submitCmd.Flags().Int64Var(&submitFee, "fee", 0, "Submission fee in capital units (required)")
	submitCmd.MarkFlagRequired("from")
	submitCmd.MarkFlagRequired("asset")
	submitCmd.MarkFlagRequired("fee")
	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	p, err := connect()
	if err != nil {
		return err
	}
	defer p.Close()

	rev, err := p.coord.SubmitAsset(context.Background(), submitFrom, submitAsset, submitFee)
	if err != nil {
		if errors.Is(err, coordinator.ErrFeeTooLow) {
			return printer.Error(
				"submission fee below configured minimum",
				fmt.Sprintf("This instance requires a fee of at least %d.", p.cfg.Review.MinimumFee),
				[]string{fmt.Sprintf("Retry with a higher fee:\n  clawdera submit --from %s --asset %s --fee %d", submitFrom, submitAsset, p.cfg.Review.MinimumFee)},
			)
		}
		if errors.Is(err, coordinator.ErrInvalidAsset) {
			return printer.Error(
				"asset not recognized by the venue",
				fmt.Sprintf("The venue for this instance resolves: %v", p.cfg.Venue.Assets),
				[]string{"Add the asset to venue.assets in " + configPath},
			)
		}
		return err
	}

	printer.Success("Opened review %d for asset '%s'\n", rev.ID, rev.AssetID)
	printer.Info("  Deadline: %s\n", time.UnixMilli(rev.DeadlineMs).UTC().Format(time.RFC3339))
	printer.Info("  Agents submit theses with:\n")
	printer.Info("    clawdera thesis --from <agent> --review %d --principal <principal> --bullish --pledge <amount> --text \"...\"\n", rev.ID)
	return nil
}
