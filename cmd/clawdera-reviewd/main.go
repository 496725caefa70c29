package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/vpalmerio/clawdera/internal/config"
	"github.com/vpalmerio/clawdera/internal/coordinator"
	"github.com/vpalmerio/clawdera/internal/escrow"
	"github.com/vpalmerio/clawdera/internal/trigger"
	"github.com/vpalmerio/clawdera/internal/venue"
	"github.com/vpalmerio/clawdera/pkg/boardroom"
)

func main() {
	// 1. Resolve config path (env override, then working directory)
	configPath := os.Getenv("CLAWDERA_CONFIG")
	if configPath == "" {
		configPath = "clawdera.yml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to load %s: %v\n", configPath, err)
		os.Exit(1)
	}

	// 2. Parse Redis URL
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Invalid redis_url: %v\n", err)
		os.Exit(1)
	}

	// 3. Create boardroom client
	bbClient, err := boardroom.NewClient(redisOpts, cfg.Instance)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to create boardroom client: %v\n", err)
		os.Exit(1)
	}
	defer bbClient.Close()

	// 4. Verify Redis connectivity
	ctx := context.Background()
	if err := bbClient.Ping(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Redis not accessible: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Review daemon starting for instance '%s' (window %s, minimum fee %d)\n",
		cfg.Instance, cfg.Review.Window, cfg.Review.MinimumFee)

	// 5. Wire protocol components against the simulated venue
	sim := venue.NewSim(cfg.Venue.Rate, cfg.Venue.Assets...)
	for _, recipient := range cfg.Venue.Deny {
		sim.Deny(recipient)
	}

	ledger := escrow.NewLedger(bbClient)
	sched := trigger.NewScheduler(bbClient, 0)
	coord := coordinator.New(bbClient, ledger, sim, sched, cfg.WindowDuration(), cfg.Review.MinimumFee)
	sched.SetExecutor(coord.Execute)

	// 6. Setup graceful shutdown
	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	// 7. Run the deadline trigger loop
	errCh := make(chan error, 1)
	go func() {
		errCh <- sched.Run(runCtx)
	}()

	// 8. Wait for shutdown signal or error
	select {
	case sig := <-sigCh:
		fmt.Printf("Received signal %v, shutting down gracefully...\n", sig)
		cancel()
		<-errCh
	case runErr := <-errCh:
		if runErr != nil {
			fmt.Fprintf(os.Stderr, "Review daemon error: %v\n", runErr)
			os.Exit(1)
		}
	}

	fmt.Println("Review daemon stopped")
}
