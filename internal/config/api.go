package config

import (
	"fmt"
	"os"

	"github.com/opsgate/opsgate/pkg/middleware"
	"github.com/opsgate/opsgate/pkg/openapi"
	"github.com/opsgate/opsgate/pkg/pagination"
)

const (
	EnvAPIBasePath  = "OPSGATE_API_BASE_PATH"
	EnvAuthEnabled  = "OPSGATE_AUTH_ENABLED"
	EnvAuthIssuer   = "OPSGATE_AUTH_ISSUER"
	EnvAuthClientID = "OPSGATE_AUTH_CLIENT_ID"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "OPSGATE_CORS_ENABLED",
	Origins:          "OPSGATE_CORS_ORIGINS",
	AllowedMethods:   "OPSGATE_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "OPSGATE_CORS_ALLOWED_HEADERS",
	AllowCredentials: "OPSGATE_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "OPSGATE_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "OPSGATE_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "OPSGATE_PAGINATION_MAX_PAGE_SIZE",
}

var docsEnv = &openapi.ConfigEnv{
	Title:       "OPSGATE_DOCS_TITLE",
	Description: "OPSGATE_DOCS_DESCRIPTION",
}

// AuthConfig holds OIDC verification settings for the API module. When
// disabled, decision submissions fall back to the approver named in the
// request body.
type AuthConfig struct {
	Enabled  bool   `toml:"enabled"`
	Issuer   string `toml:"issuer"`
	ClientID string `toml:"client_id"`
}

// Finalize applies environment variable overrides and validation.
func (c *AuthConfig) Finalize() error {
	if v := os.Getenv(EnvAuthEnabled); v == "true" {
		c.Enabled = true
	}
	if v := os.Getenv(EnvAuthIssuer); v != "" {
		c.Issuer = v
	}
	if v := os.Getenv(EnvAuthClientID); v != "" {
		c.ClientID = v
	}
	if c.Enabled && c.Issuer == "" {
		return fmt.Errorf("issuer required when auth is enabled")
	}
	if c.Enabled && c.ClientID == "" {
		return fmt.Errorf("client_id required when auth is enabled")
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *AuthConfig) Merge(overlay *AuthConfig) {
	if overlay.Enabled {
		c.Enabled = true
	}
	if overlay.Issuer != "" {
		c.Issuer = overlay.Issuer
	}
	if overlay.ClientID != "" {
		c.ClientID = overlay.ClientID
	}
}

// APIConfig holds API routing, CORS, auth, pagination, and docs settings.
type APIConfig struct {
	BasePath   string                `toml:"base_path"`
	CORS       middleware.CORSConfig `toml:"cors"`
	Auth       AuthConfig            `toml:"auth"`
	Pagination pagination.Config     `toml:"pagination"`
	Docs       openapi.Config        `toml:"docs"`
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS, auth, and pagination configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Auth.Finalize(); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.Docs.Finalize(docsEnv); err != nil {
		return fmt.Errorf("docs: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}

	c.CORS.Merge(&overlay.CORS)
	c.Auth.Merge(&overlay.Auth)
	c.Pagination.Merge(&overlay.Pagination)
	c.Docs.Merge(&overlay.Docs)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv(EnvAPIBasePath); v != "" {
		c.BasePath = v
	}
}
