// Package config loads and validates clawdera.yml, the single configuration
// file shared by the CLI and the trigger daemon.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ClawderaConfig represents the top-level clawdera.yml configuration.
type ClawderaConfig struct {
	Version  string       `yaml:"version"`
	Instance string       `yaml:"instance,omitempty"`  // Redis namespace, default "default"
	RedisURL string       `yaml:"redis_url,omitempty"` // default redis://localhost:6379
	Admin    string       `yaml:"admin"`               // Administrator address for reputation updates
	Review   ReviewConfig `yaml:"review"`
	Venue    VenueConfig  `yaml:"venue,omitempty"`
}

// ReviewConfig specifies the deliberation window and fee policy.
type ReviewConfig struct {
	Window     string `yaml:"window"`      // Go duration, e.g. "30m"
	MinimumFee int64  `yaml:"minimum_fee"` // Minimum submission fee in capital units
}

// VenueConfig configures the simulated acquisition venue used by local runs.
type VenueConfig struct {
	Rate   int64    `yaml:"rate,omitempty"` // Asset units received per capital unit, default 1
	Assets []string `yaml:"assets"`         // Asset ids the venue resolves
	Deny   []string `yaml:"deny,omitempty"` // Recipients that refuse transfers (failure testing)
}

// WindowDuration returns the parsed deliberation window.
// Call only after Validate.
func (c *ClawderaConfig) WindowDuration() time.Duration {
	d, _ := time.ParseDuration(c.Review.Window)
	return d
}

// Validate performs strict validation on the configuration and applies
// defaults for optional fields.
func (c *ClawderaConfig) Validate() error {
	// Required: version
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	if c.Instance == "" {
		c.Instance = "default"
	}
	if c.RedisURL == "" {
		c.RedisURL = "redis://localhost:6379"
	}

	// Required: administrator identity
	if c.Admin == "" {
		return fmt.Errorf("admin address is required")
	}

	// Required: parseable, positive deliberation window
	if c.Review.Window == "" {
		return fmt.Errorf("review.window is required (e.g. \"30m\")")
	}
	d, err := time.ParseDuration(c.Review.Window)
	if err != nil {
		return fmt.Errorf("invalid review.window: %s (use a Go duration like \"30m\")", c.Review.Window)
	}
	if d <= 0 {
		return fmt.Errorf("review.window must be positive, got %s", c.Review.Window)
	}

	if c.Review.MinimumFee < 0 {
		return fmt.Errorf("review.minimum_fee must be >= 0, got %d", c.Review.MinimumFee)
	}

	if c.Venue.Rate == 0 {
		c.Venue.Rate = 1
	}
	if c.Venue.Rate < 1 {
		return fmt.Errorf("venue.rate must be >= 1, got %d", c.Venue.Rate)
	}
	if len(c.Venue.Assets) == 0 {
		return fmt.Errorf("venue.assets must list at least one asset id")
	}
	for i, asset := range c.Venue.Assets {
		if asset == "" {
			return fmt.Errorf("venue.assets[%d] cannot be empty", i)
		}
	}

	return nil
}

// Load reads and validates clawdera.yml from the specified path.
func Load(path string) (*ClawderaConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config ClawderaConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}
