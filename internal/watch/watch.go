// Package watch tails the instance accounting event feed for the CLI.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/vpalmerio/clawdera/pkg/boardroom"
)

// Tail subscribes to accounting events and writes each one as a JSON line
// to w until the context is cancelled. Redis Pub/Sub has no replay, so only
// events published after the subscription starts are delivered.
//
// Unmarshal errors on individual messages are reported to w as comments and
// skipped; the tail continues.
func Tail(ctx context.Context, client *boardroom.Client, w io.Writer) error {
	sub, err := client.SubscribeEvents(ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe to accounting events: %w", err)
	}
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-sub.Events():
			if !ok {
				return nil
			}
			line, err := json.Marshal(ev)
			if err != nil {
				fmt.Fprintf(w, "# failed to render event: %v\n", err)
				continue
			}
			fmt.Fprintf(w, "%s\n", line)

		case err, ok := <-sub.Errors():
			if !ok {
				return nil
			}
			fmt.Fprintf(w, "# event stream error: %v\n", err)
		}
	}
}
