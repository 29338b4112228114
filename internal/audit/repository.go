package audit

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/opsgate/opsgate/pkg/formatting"
	"github.com/opsgate/opsgate/pkg/pagination"
	"github.com/opsgate/opsgate/pkg/query"
	"github.com/opsgate/opsgate/pkg/repository"
	"github.com/opsgate/opsgate/pkg/storage"
)

type repo struct {
	db         *sql.DB
	storage    storage.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates an audit repository implementing the System interface.
// storage may be nil, which disables compliance export.
func New(
	db *sql.DB,
	store storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		logger:     logger.With("system", "audit"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) Record(ctx context.Context, entry *Entry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if entry.Actor == "" {
		entry.Actor = SystemActor
	}

	insert := `
		INSERT INTO audit_log(
			id, entity_id, tenant_id, action, actor, approval_id,
			confirmation_hash, success, detail, risk_score, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	var detail []byte
	if len(entry.Detail) > 0 {
		detail = entry.Detail
	}

	err := repository.ExecExpectOne(ctx, r.db, insert,
		entry.ID,
		entry.EntityID,
		entry.TenantID,
		entry.Action,
		entry.Actor,
		entry.ApprovalID,
		entry.ConfirmationHash,
		entry.Success,
		detail,
		entry.RiskScore,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record audit entry: %w", repository.MapError(err, ErrNotFound, ErrDuplicate))
	}

	return nil
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Entry], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Action", "EntityID")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count audit entries: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanEntry)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

// Export streams every matching entry as JSONL into blob storage, keyed by
// tenant and range so repeated exports of the same window overwrite rather
// than accumulate.
func (r *repo) Export(ctx context.Context, tenantID string, from, to time.Time) (string, error) {
	if tenantID == "" {
		return "", ErrMissingTenant
	}
	if r.storage == nil {
		return "", fmt.Errorf("audit export: no storage configured")
	}

	qb := query.
		NewBuilder(projection, query.SortField{Field: "CreatedAt"}).
		WhereEquals("TenantID", tenantID).
		WhereCompare("CreatedAt", ">=", from).
		WhereCompare("CreatedAt", "<=", to)

	listSQL, args := qb.Build()
	entries, err := repository.QueryMany(ctx, r.db, listSQL, args, scanEntry)
	if err != nil {
		return "", fmt.Errorf("query export entries: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			return "", fmt.Errorf("encode export entry %s: %w", e.ID, err)
		}
	}

	key := fmt.Sprintf(
		"audit/%s/%s_%s.jsonl",
		tenantID,
		from.UTC().Format("20060102T150405Z"),
		to.UTC().Format("20060102T150405Z"),
	)

	size := int64(buf.Len())
	if err := r.storage.Upload(ctx, key, &buf, "application/x-ndjson"); err != nil {
		return "", fmt.Errorf("upload export: %w", err)
	}

	r.logger.Info(
		"audit export complete",
		"tenant_id", tenantID,
		"entries", len(entries),
		"size", formatting.FormatBytes(size, 1),
		"key", key,
	)

	return key, nil
}
