// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"fmt"
	"net/http"

	"github.com/opsgate/opsgate/internal/config"
	"github.com/opsgate/opsgate/internal/infrastructure"
	"github.com/opsgate/opsgate/pkg/middleware"
	"github.com/opsgate/opsgate/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware,
// and registers the domain's background loops with the lifecycle coordinator.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(cfg, runtime)

	if err := domain.Start(runtime.Lifecycle); err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	if err := registerRoutes(mux, cfg, domain, runtime); err != nil {
		return nil, err
	}

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))

	if cfg.API.Auth.Enabled {
		verifier, err := middleware.NewOIDCVerifier(
			runtime.Lifecycle.Context(),
			cfg.API.Auth.Issuer,
			cfg.API.Auth.ClientID,
		)
		if err != nil {
			return nil, fmt.Errorf("oidc verifier init failed: %w", err)
		}
		m.Use(middleware.Auth(verifier))
	}

	return m, nil
}
