package config

import (
	"fmt"
	"os"
	"time"
)

const (
	EnvNotifierWebhookURL = "OPSGATE_NOTIFIER_WEBHOOK_URL"
	EnvNotifierTimeout    = "OPSGATE_NOTIFIER_TIMEOUT"
)

// NotifierConfig holds the approval notification webhook. An empty URL
// downgrades notifications to log entries.
type NotifierConfig struct {
	WebhookURL string `toml:"webhook_url"`
	Timeout    string `toml:"timeout"`
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *NotifierConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *NotifierConfig) Finalize() error {
	if c.Timeout == "" {
		c.Timeout = "10s"
	}
	if v := os.Getenv(EnvNotifierWebhookURL); v != "" {
		c.WebhookURL = v
	}
	if v := os.Getenv(EnvNotifierTimeout); v != "" {
		c.Timeout = v
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *NotifierConfig) Merge(overlay *NotifierConfig) {
	if overlay.WebhookURL != "" {
		c.WebhookURL = overlay.WebhookURL
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}
