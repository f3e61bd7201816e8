package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// QueueConfig controls the scheduler, cleanup, and result-bridge timing.
type QueueConfig struct {
	TickInterval   time.Duration `env:"QUEUE_TICK_INTERVAL,default=2s"`
	InterCallDelay time.Duration `env:"QUEUE_INTER_CALL_DELAY,default=5s"`
	PurgeInterval  time.Duration `env:"QUEUE_PURGE_INTERVAL,default=1h"`
	RetentionHours int           `env:"QUEUE_RETENTION_HOURS,default=24"`
	PollInterval   time.Duration `env:"BRIDGE_POLL_INTERVAL,default=5s"`
	PollTimeout    time.Duration `env:"BRIDGE_POLL_TIMEOUT,default=5m"`
}

// to help with testing
var envProcess = envconfig.Process

func LoadQueueConfig(ctx context.Context) (*QueueConfig, error) {
	var cfg QueueConfig
	if err := envProcess(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}
	if err := validateQueueConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func validateQueueConfig(cfg *QueueConfig) error {
	var errs []string

	if cfg.TickInterval <= 0 {
		errs = append(errs, "QUEUE_TICK_INTERVAL must be positive")
	}
	if cfg.InterCallDelay < 0 {
		errs = append(errs, "QUEUE_INTER_CALL_DELAY must be non-negative")
	}
	if cfg.PurgeInterval <= 0 {
		errs = append(errs, "QUEUE_PURGE_INTERVAL must be positive")
	}
	if cfg.RetentionHours < 1 {
		errs = append(errs, "QUEUE_RETENTION_HOURS must be at least 1")
	}
	if cfg.PollInterval <= 0 {
		errs = append(errs, "BRIDGE_POLL_INTERVAL must be positive")
	}
	if cfg.PollTimeout < cfg.PollInterval {
		errs = append(errs, "BRIDGE_POLL_TIMEOUT must be at least BRIDGE_POLL_INTERVAL")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}
