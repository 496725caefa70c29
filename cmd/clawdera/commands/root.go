package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version string
	commit  string
	date    string

	// --config applies to every subcommand that touches protocol state
	configPath string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "clawdera",
	Short: "Clawdera - Collective investment review protocol",
	Long: `Clawdera coordinates multi-party, time-boxed investment decisions.

A proposer submits an asset for review, registered agents pledge
principal-delegated capital behind independent theses, and at the deadline
the protocol executes a single pooled purchase, allocates the proceeds
proportionally to contributors, and pays the submission fee to everyone who
deliberated.

Protocol state lives in Redis; every mutation publishes an accounting event
so external observers can reconstruct state without re-deriving it.`,
	Version: version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	// Silence Cobra's default error and usage printing
	// printer.Error already writes formatted errors to stderr
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "clawdera.yml", "Path to the clawdera.yml configuration file")
}
