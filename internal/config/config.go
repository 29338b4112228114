package config

import (
	"fmt"
	"os"
	"time"

	"github.com/opsgate/opsgate/pkg/database"
	"github.com/opsgate/opsgate/pkg/storage"
	"github.com/pelletier/go-toml/v2"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvOpsgateEnv             = "OPSGATE_ENV"
	EnvOpsgateShutdownTimeout = "OPSGATE_SHUTDOWN_TIMEOUT"
	EnvOpsgateVersion         = "OPSGATE_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "OPSGATE_DB_HOST",
	Port:            "OPSGATE_DB_PORT",
	Name:            "OPSGATE_DB_NAME",
	User:            "OPSGATE_DB_USER",
	Password:        "OPSGATE_DB_PASSWORD",
	SSLMode:         "OPSGATE_DB_SSL_MODE",
	MaxOpenConns:    "OPSGATE_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "OPSGATE_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "OPSGATE_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "OPSGATE_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "OPSGATE_STORAGE_CONTAINER_NAME",
	ConnectionString: "OPSGATE_STORAGE_CONNECTION_STRING",
	MaxListSize:      "OPSGATE_STORAGE_MAX_LIST_SIZE",
}

// Config is the root configuration for the opsgate service.
type Config struct {
	Server          ServerConfig     `toml:"server"`
	Database        database.Config  `toml:"database"`
	Storage         storage.Config   `toml:"storage"`
	API             APIConfig        `toml:"api"`
	Classifier      ClassifierConfig `toml:"classifier"`
	Approvals       ApprovalsConfig  `toml:"approvals"`
	Executor        ExecutorConfig   `toml:"executor"`
	Notifier        NotifierConfig   `toml:"notifier"`
	Intake          IntakeConfig     `toml:"intake"`
	ShutdownTimeout string           `toml:"shutdown_timeout"`
	Version         string           `toml:"version"`
}

// Env returns the OPSGATE_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvOpsgateEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Classifier.Merge(&overlay.Classifier)
	c.Approvals.Merge(&overlay.Approvals)
	c.Executor.Merge(&overlay.Executor)
	c.Notifier.Merge(&overlay.Notifier)
	c.Intake.Merge(&overlay.Intake)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Classifier.Finalize(); err != nil {
		return fmt.Errorf("classifier: %w", err)
	}
	if err := c.Approvals.Finalize(); err != nil {
		return fmt.Errorf("approvals: %w", err)
	}
	if err := c.Executor.Finalize(); err != nil {
		return fmt.Errorf("executor: %w", err)
	}
	if err := c.Notifier.Finalize(); err != nil {
		return fmt.Errorf("notifier: %w", err)
	}
	if err := c.Intake.Finalize(); err != nil {
		return fmt.Errorf("intake: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvOpsgateShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvOpsgateVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvOpsgateEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
