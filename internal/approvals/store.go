package approvals

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/opsgate/opsgate/internal/biometrics"
	"github.com/opsgate/opsgate/pkg/pagination"
	"github.com/opsgate/opsgate/pkg/query"
	"github.com/opsgate/opsgate/pkg/repository"
)

// Change carries the fields written by a status transition.
type Change struct {
	To           Status
	DecidedAt    *time.Time
	Approver     *string
	Confirmation *biometrics.Confirmation
	Notes        *string
	Results      []ExecutionResult
}

// Store is the durable approval store. Transition is the single mutation
// primitive: an atomic conditional write keyed on the expected current
// status, so concurrent transitions for the same id cannot both succeed.
type Store interface {
	Insert(ctx context.Context, a *Approval) error
	Find(ctx context.Context, id uuid.UUID) (*Approval, error)
	FindPending(ctx context.Context, tenantID string, now time.Time) ([]Approval, error)
	FindOverdue(ctx context.Context, now time.Time) ([]Approval, error)
	Page(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Approval], error)

	// Transition atomically moves id from status `from` to change.To.
	// Returns ErrAlreadyProcessed when the row is no longer in `from`, and
	// ErrNotFound when the id does not exist.
	Transition(ctx context.Context, id uuid.UUID, from Status, change Change) error
}

type pgStore struct {
	db *sql.DB
}

// NewStore creates the PostgreSQL-backed approval store.
func NewStore(db *sql.DB) Store {
	return &pgStore{db: db}
}

func (s *pgStore) Insert(ctx context.Context, a *Approval) error {
	actionsJSON, err := json.Marshal(a.Actions)
	if err != nil {
		return fmt.Errorf("marshal actions: %w", err)
	}

	insert := `
		INSERT INTO approvals(
			id, tenant_id, client_label, action, risk_score, summary,
			actions, status, created_at, expires_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	err = repository.ExecExpectOne(ctx, s.db, insert,
		a.ID,
		a.TenantID,
		a.ClientLabel,
		a.Action,
		a.RiskScore,
		a.Summary,
		actionsJSON,
		a.Status,
		a.CreatedAt,
		a.ExpiresAt,
	)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	return nil
}

func (s *pgStore) Find(ctx context.Context, id uuid.UUID) (*Approval, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	a, err := repository.QueryOne(ctx, s.db, q, args, scanApproval)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &a, nil
}

func (s *pgStore) FindPending(ctx context.Context, tenantID string, now time.Time) ([]Approval, error) {
	status := StatusPending
	qb := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("TenantID", tenantID).
		WhereEquals("Status", status).
		WhereCompare("ExpiresAt", ">", now)

	listSQL, args := qb.Build()
	return repository.QueryMany(ctx, s.db, listSQL, args, scanApproval)
}

func (s *pgStore) FindOverdue(ctx context.Context, now time.Time) ([]Approval, error) {
	status := StatusPending
	qb := query.
		NewBuilder(projection, query.SortField{Field: "ExpiresAt"}).
		WhereEquals("Status", status).
		WhereCompare("ExpiresAt", "<=", now)

	listSQL, args := qb.Build()
	return repository.QueryMany(ctx, s.db, listSQL, args, scanApproval)
}

func (s *pgStore) Page(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Approval], error) {
	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Summary", "ClientLabel")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := s.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count approvals: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, s.db, pageSQL, pageArgs, scanApproval)
	if err != nil {
		return nil, fmt.Errorf("query approvals: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (s *pgStore) Transition(ctx context.Context, id uuid.UUID, from Status, change Change) error {
	var confirmationJSON, resultsJSON []byte
	var err error

	if change.Confirmation != nil {
		if confirmationJSON, err = json.Marshal(change.Confirmation); err != nil {
			return fmt.Errorf("marshal confirmation: %w", err)
		}
	}
	if change.Results != nil {
		if resultsJSON, err = json.Marshal(change.Results); err != nil {
			return fmt.Errorf("marshal results: %w", err)
		}
	}

	// The WHERE clause is the compare-and-set: zero rows affected means the
	// row left `from` between read and write, and the caller lost the race.
	update := `
		UPDATE approvals SET
			status = $3,
			decided_at = COALESCE($4, decided_at),
			approver = COALESCE($5, approver),
			confirmation = COALESCE($6, confirmation),
			notes = COALESCE($7, notes),
			results = COALESCE($8, results)
		WHERE id = $1 AND status = $2`

	err = repository.ExecExpectOne(ctx, s.db, update,
		id,
		from,
		change.To,
		change.DecidedAt,
		change.Approver,
		confirmationJSON,
		change.Notes,
		resultsJSON,
	)
	if err == nil {
		return nil
	}

	if mapped := repository.MapError(err, ErrAlreadyProcessed, ErrDuplicate); mapped == ErrAlreadyProcessed {
		// Distinguish a lost race from a missing row.
		if _, findErr := s.Find(ctx, id); findErr != nil {
			return findErr
		}
		return ErrAlreadyProcessed
	}

	return err
}
