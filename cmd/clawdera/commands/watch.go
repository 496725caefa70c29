package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vpalmerio/clawdera/internal/printer"
	"github.com/vpalmerio/clawdera/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Tail the accounting event feed",
	Long: `Stream accounting events for this instance as JSON lines until
interrupted. Only events published after the watch starts are shown.

Examples:
  clawdera watch
  clawdera watch | jq 'select(.type == "review_executed")'`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	p, err := connect()
	if err != nil {
		return err
	}
	defer p.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	printer.Info("Watching accounting events for instance '%s' (Ctrl-C to stop)\n", p.client.InstanceName())
	return watch.Tail(ctx, p.client, os.Stdout)
}
