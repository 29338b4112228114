package api

import (
	"net/http"

	"github.com/opsgate/opsgate/internal/config"
	"github.com/opsgate/opsgate/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, cfg *config.Config, domain *Domain, runtime *Runtime) error {
	storage := newStorageHandler(runtime.Storage, runtime.Logger, cfg.Storage.MaxListSize)

	routes.Register(
		mux,
		domain.Intake.Handler().Routes(),
		domain.Approvals.Handler().Routes(),
		domain.Audit.Handler().Routes(),
		storage.routes(),
	)

	docs, err := newDocsHandler(cfg)
	if err != nil {
		return err
	}
	mux.Handle("GET /openapi.json", docs)

	return nil
}
