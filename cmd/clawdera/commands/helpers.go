package commands

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/vpalmerio/clawdera/internal/config"
	"github.com/vpalmerio/clawdera/internal/coordinator"
	"github.com/vpalmerio/clawdera/internal/escrow"
	"github.com/vpalmerio/clawdera/internal/registry"
	"github.com/vpalmerio/clawdera/internal/trigger"
	"github.com/vpalmerio/clawdera/internal/venue"
	"github.com/vpalmerio/clawdera/pkg/boardroom"
)

// protocol bundles the wired components a command needs. Commands call
// connect(), use the components, and Close() the bundle on the way out.
type protocol struct {
	cfg    *config.ClawderaConfig
	client *boardroom.Client
	ledger *escrow.Ledger
	reg    *registry.Registry
	coord  *coordinator.Coordinator
	sched  *trigger.Scheduler
	sim    *venue.Sim
}

// connect loads clawdera.yml, connects to Redis, and wires the protocol
// components exactly the way the daemon does.
func connect() (*protocol, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis_url in %s: %w", configPath, err)
	}

	client, err := boardroom.NewClient(redisOpts, cfg.Instance)
	if err != nil {
		return nil, err
	}

	// The sim venue keeps holdings in process memory, so execute and claim
	// must run through the same process. A daemon-executed review cannot be
	// claimed from the CLI until a shared-state venue replaces the sim.
	sim := venue.NewSim(cfg.Venue.Rate, cfg.Venue.Assets...)
	for _, recipient := range cfg.Venue.Deny {
		sim.Deny(recipient)
	}

	ledger := escrow.NewLedger(client)
	reg := registry.NewRegistry(client, cfg.Admin)
	sched := trigger.NewScheduler(client, 0)
	coord := coordinator.New(client, ledger, sim, sched, cfg.WindowDuration(), cfg.Review.MinimumFee)
	sched.SetExecutor(coord.Execute)

	return &protocol{
		cfg:    cfg,
		client: client,
		ledger: ledger,
		reg:    reg,
		coord:  coord,
		sched:  sched,
		sim:    sim,
	}, nil
}

// Close releases the Redis connection.
func (p *protocol) Close() error {
	return p.client.Close()
}
