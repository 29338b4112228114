package config

import (
	"fmt"
	"os"
	"time"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

const EnvClassifierTimeout = "OPSGATE_CLASSIFIER_TIMEOUT"

var primaryAgentEnv = &AgentEnv{
	ProviderName: "OPSGATE_CLASSIFIER_PRIMARY_PROVIDER_NAME",
	BaseURL:      "OPSGATE_CLASSIFIER_PRIMARY_BASE_URL",
	Token:        "OPSGATE_CLASSIFIER_PRIMARY_TOKEN",
	Deployment:   "OPSGATE_CLASSIFIER_PRIMARY_DEPLOYMENT",
	APIVersion:   "OPSGATE_CLASSIFIER_PRIMARY_API_VERSION",
	AuthType:     "OPSGATE_CLASSIFIER_PRIMARY_AUTH_TYPE",
	ModelName:    "OPSGATE_CLASSIFIER_PRIMARY_MODEL_NAME",
}

var secondaryAgentEnv = &AgentEnv{
	ProviderName: "OPSGATE_CLASSIFIER_SECONDARY_PROVIDER_NAME",
	BaseURL:      "OPSGATE_CLASSIFIER_SECONDARY_BASE_URL",
	Token:        "OPSGATE_CLASSIFIER_SECONDARY_TOKEN",
	Deployment:   "OPSGATE_CLASSIFIER_SECONDARY_DEPLOYMENT",
	APIVersion:   "OPSGATE_CLASSIFIER_SECONDARY_API_VERSION",
	AuthType:     "OPSGATE_CLASSIFIER_SECONDARY_AUTH_TYPE",
	ModelName:    "OPSGATE_CLASSIFIER_SECONDARY_MODEL_NAME",
}

// ClassifierConfig holds the classification provider agents. Secondary is
// optional: when absent, classification runs single-provider and accepts
// only high-confidence proposals.
type ClassifierConfig struct {
	Primary   gaconfig.AgentConfig  `toml:"primary"`
	Secondary *gaconfig.AgentConfig `toml:"secondary"`
	Timeout   string                `toml:"timeout"`
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *ClassifierConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation
// to both agents.
func (c *ClassifierConfig) Finalize() error {
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
	if v := os.Getenv(EnvClassifierTimeout); v != "" {
		c.Timeout = v
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}

	if err := FinalizeAgent(&c.Primary, primaryAgentEnv); err != nil {
		return fmt.Errorf("primary: %w", err)
	}
	if c.Secondary != nil {
		if err := FinalizeAgent(c.Secondary, secondaryAgentEnv); err != nil {
			return fmt.Errorf("secondary: %w", err)
		}
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *ClassifierConfig) Merge(overlay *ClassifierConfig) {
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	c.Primary.Merge(&overlay.Primary)
	if overlay.Secondary != nil {
		c.Secondary = overlay.Secondary
	}
}
