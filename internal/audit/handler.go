package audit

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/opsgate/opsgate/pkg/handlers"
	"github.com/opsgate/opsgate/pkg/pagination"
	"github.com/opsgate/opsgate/pkg/routes"
)

// Handler provides HTTP endpoints for ledger queries and compliance export.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// ExportRequest is the JSON body for the export endpoint.
type ExportRequest struct {
	TenantID string    `json:"tenant_id"`
	From     time.Time `json:"from"`
	To       time.Time `json:"to"`
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "audit"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for audit endpoints.
// The ledger is append-only: there are no mutation routes.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/audit",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "POST", Pattern: "/export", Handler: h.Export},
		},
	}
}

// List returns a paginated list of audit entries filtered by tenant,
// approval, actor, and time range query parameters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Export writes the requested tenant/time-range slice of the ledger to blob
// storage and returns the blob key.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	key, err := h.sys.Export(r.Context(), req.TenantID, req.From, req.To)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, map[string]string{"key": key})
}
