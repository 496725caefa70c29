package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vpalmerio/clawdera/internal/printer"
)

var (
	forceInit bool
)

// starterConfig is the scaffolded clawdera.yml. It runs against a local
// Redis and a simulated acquisition venue out of the box.
const starterConfig = `version: "1.0"
instance: default
redis_url: redis://localhost:6379

# Identity permitted to record reputation outcomes after execution.
admin: ops

review:
  window: "30m"
  minimum_fee: 100

venue:
  rate: 10
  assets:
    - ASSET-ALPHA
    - ASSET-BETA
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Scaffold a starter clawdera.yml",
	Long: `Scaffold a starter clawdera.yml in the current directory.

The generated configuration targets a local Redis server and a simulated
acquisition venue, which is enough to exercise the full review lifecycle:

  clawdera init
  clawdera register --from alice --metadata ipfs://alice
  clawdera delegate --from carol --agent alice --max 500
  clawdera deposit --from carol --agent alice --amount 500
  clawdera submit --from bob --asset ASSET-ALPHA --fee 100

Use --force to overwrite an existing clawdera.yml.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite an existing clawdera.yml")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	if !forceInit {
		if _, err := os.Stat(configPath); err == nil {
			return printer.Error(
				fmt.Sprintf("%s already exists", configPath),
				"Refusing to overwrite an existing configuration.",
				[]string{"Re-run with --force to overwrite:\n  clawdera init --force"},
			)
		}
	}

	if err := os.WriteFile(configPath, []byte(starterConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}

	printer.Success("Created %s\n", configPath)
	printer.Info("Edit the admin address, review window, and venue assets, then start the daemon:\n")
	printer.Info("  clawdera-reviewd\n")
	return nil
}
