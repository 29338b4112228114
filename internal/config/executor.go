package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/opsgate/opsgate/pkg/retry"
)

const (
	EnvExecutorBaseURL         = "OPSGATE_EXECUTOR_BASE_URL"
	EnvExecutorToken           = "OPSGATE_EXECUTOR_TOKEN"
	EnvExecutorTimeout         = "OPSGATE_EXECUTOR_TIMEOUT"
	EnvExecutorMaxAttempts     = "OPSGATE_EXECUTOR_MAX_ATTEMPTS"
	EnvExecutorInitialInterval = "OPSGATE_EXECUTOR_INITIAL_INTERVAL"
	EnvExecutorMaxInterval     = "OPSGATE_EXECUTOR_MAX_INTERVAL"
	EnvExecutorMaxElapsed      = "OPSGATE_EXECUTOR_MAX_ELAPSED"
)

// ExecutorConfig holds the management API connection and retry policy.
type ExecutorConfig struct {
	BaseURL         string `toml:"base_url"`
	Token           string `toml:"token"`
	Timeout         string `toml:"timeout"`
	MaxAttempts     int    `toml:"max_attempts"`
	InitialInterval string `toml:"initial_interval"`
	MaxInterval     string `toml:"max_interval"`
	MaxElapsed      string `toml:"max_elapsed"`
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *ExecutorConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// RetryPolicy builds the retry policy for action execution.
func (c *ExecutorConfig) RetryPolicy() retry.Policy {
	parse := func(s string) time.Duration {
		d, _ := time.ParseDuration(s)
		return d
	}
	return retry.Policy{
		MaxAttempts:     uint(c.MaxAttempts),
		InitialInterval: parse(c.InitialInterval),
		MaxInterval:     parse(c.MaxInterval),
		MaxElapsed:      parse(c.MaxElapsed),
	}
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ExecutorConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ExecutorConfig) Merge(overlay *ExecutorConfig) {
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Token != "" {
		c.Token = overlay.Token
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.MaxAttempts != 0 {
		c.MaxAttempts = overlay.MaxAttempts
	}
	if overlay.InitialInterval != "" {
		c.InitialInterval = overlay.InitialInterval
	}
	if overlay.MaxInterval != "" {
		c.MaxInterval = overlay.MaxInterval
	}
	if overlay.MaxElapsed != "" {
		c.MaxElapsed = overlay.MaxElapsed
	}
}

func (c *ExecutorConfig) loadDefaults() {
	defaults := retry.DefaultPolicy()
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = int(defaults.MaxAttempts)
	}
	if c.InitialInterval == "" {
		c.InitialInterval = defaults.InitialInterval.String()
	}
	if c.MaxInterval == "" {
		c.MaxInterval = defaults.MaxInterval.String()
	}
	if c.MaxElapsed == "" {
		c.MaxElapsed = defaults.MaxElapsed.String()
	}
}

func (c *ExecutorConfig) loadEnv() {
	if v := os.Getenv(EnvExecutorBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvExecutorToken); v != "" {
		c.Token = v
	}
	if v := os.Getenv(EnvExecutorTimeout); v != "" {
		c.Timeout = v
	}
	if v := os.Getenv(EnvExecutorMaxAttempts); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxAttempts = n
		}
	}
	if v := os.Getenv(EnvExecutorInitialInterval); v != "" {
		c.InitialInterval = v
	}
	if v := os.Getenv(EnvExecutorMaxInterval); v != "" {
		c.MaxInterval = v
	}
	if v := os.Getenv(EnvExecutorMaxElapsed); v != "" {
		c.MaxElapsed = v
	}
}

func (c *ExecutorConfig) validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url required")
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1: %d", c.MaxAttempts)
	}
	durations := map[string]string{
		"timeout":          c.Timeout,
		"initial_interval": c.InitialInterval,
		"max_interval":     c.MaxInterval,
		"max_elapsed":      c.MaxElapsed,
	}
	for name, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	return nil
}
