package config

import (
	"fmt"
	"os"
	"time"
)

const (
	EnvApprovalsLowWindow           = "OPSGATE_APPROVALS_LOW_WINDOW"
	EnvApprovalsMediumWindow        = "OPSGATE_APPROVALS_MEDIUM_WINDOW"
	EnvApprovalsHighWindow          = "OPSGATE_APPROVALS_HIGH_WINDOW"
	EnvApprovalsCriticalWindow      = "OPSGATE_APPROVALS_CRITICAL_WINDOW"
	EnvApprovalsSweepInterval       = "OPSGATE_APPROVALS_SWEEP_INTERVAL"
	EnvApprovalsRequireDualApproval = "OPSGATE_APPROVALS_REQUIRE_DUAL_APPROVAL"
)

// ApprovalsConfig holds expiration windows per risk tier and the sweep
// cadence that enforces them.
type ApprovalsConfig struct {
	LowWindow           string `toml:"low_window"`
	MediumWindow        string `toml:"medium_window"`
	HighWindow          string `toml:"high_window"`
	CriticalWindow      string `toml:"critical_window"`
	SweepInterval       string `toml:"sweep_interval"`
	RequireDualApproval bool   `toml:"require_dual_approval"`
}

func (c *ApprovalsConfig) LowWindowDuration() time.Duration {
	d, _ := time.ParseDuration(c.LowWindow)
	return d
}

func (c *ApprovalsConfig) MediumWindowDuration() time.Duration {
	d, _ := time.ParseDuration(c.MediumWindow)
	return d
}

func (c *ApprovalsConfig) HighWindowDuration() time.Duration {
	d, _ := time.ParseDuration(c.HighWindow)
	return d
}

func (c *ApprovalsConfig) CriticalWindowDuration() time.Duration {
	d, _ := time.ParseDuration(c.CriticalWindow)
	return d
}

func (c *ApprovalsConfig) SweepIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.SweepInterval)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ApprovalsConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ApprovalsConfig) Merge(overlay *ApprovalsConfig) {
	if overlay.LowWindow != "" {
		c.LowWindow = overlay.LowWindow
	}
	if overlay.MediumWindow != "" {
		c.MediumWindow = overlay.MediumWindow
	}
	if overlay.HighWindow != "" {
		c.HighWindow = overlay.HighWindow
	}
	if overlay.CriticalWindow != "" {
		c.CriticalWindow = overlay.CriticalWindow
	}
	if overlay.SweepInterval != "" {
		c.SweepInterval = overlay.SweepInterval
	}
	if overlay.RequireDualApproval {
		c.RequireDualApproval = true
	}
}

func (c *ApprovalsConfig) loadDefaults() {
	if c.LowWindow == "" {
		c.LowWindow = "30m"
	}
	if c.MediumWindow == "" {
		c.MediumWindow = "20m"
	}
	if c.HighWindow == "" {
		c.HighWindow = "15m"
	}
	if c.CriticalWindow == "" {
		c.CriticalWindow = "10m"
	}
	if c.SweepInterval == "" {
		c.SweepInterval = "1m"
	}
}

func (c *ApprovalsConfig) loadEnv() {
	if v := os.Getenv(EnvApprovalsLowWindow); v != "" {
		c.LowWindow = v
	}
	if v := os.Getenv(EnvApprovalsMediumWindow); v != "" {
		c.MediumWindow = v
	}
	if v := os.Getenv(EnvApprovalsHighWindow); v != "" {
		c.HighWindow = v
	}
	if v := os.Getenv(EnvApprovalsCriticalWindow); v != "" {
		c.CriticalWindow = v
	}
	if v := os.Getenv(EnvApprovalsSweepInterval); v != "" {
		c.SweepInterval = v
	}
	if v := os.Getenv(EnvApprovalsRequireDualApproval); v == "true" {
		c.RequireDualApproval = true
	}
}

func (c *ApprovalsConfig) validate() error {
	windows := map[string]string{
		"low_window":      c.LowWindow,
		"medium_window":   c.MediumWindow,
		"high_window":     c.HighWindow,
		"critical_window": c.CriticalWindow,
		"sweep_interval":  c.SweepInterval,
	}
	for name, value := range windows {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	return nil
}
