package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	EnvIntakeQueueSize = "OPSGATE_INTAKE_QUEUE_SIZE"
	EnvIntakeWorkers   = "OPSGATE_INTAKE_WORKERS"
)

// IntakeConfig sizes the request queue and classification worker pool.
type IntakeConfig struct {
	QueueSize int `toml:"queue_size"`
	Workers   int `toml:"workers"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *IntakeConfig) Finalize() error {
	if c.QueueSize == 0 {
		c.QueueSize = 256
	}
	if c.Workers == 0 {
		c.Workers = 4
	}
	if v := os.Getenv(EnvIntakeQueueSize); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.QueueSize = n
		}
	}
	if v := os.Getenv(EnvIntakeWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workers = n
		}
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("queue_size must be at least 1: %d", c.QueueSize)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1: %d", c.Workers)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *IntakeConfig) Merge(overlay *IntakeConfig) {
	if overlay.QueueSize != 0 {
		c.QueueSize = overlay.QueueSize
	}
	if overlay.Workers != 0 {
		c.Workers = overlay.Workers
	}
}
