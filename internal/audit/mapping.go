package audit

import (
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/opsgate/opsgate/pkg/query"
	"github.com/opsgate/opsgate/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "audit_log", "a").
	Project("id", "ID").
	Project("entity_id", "EntityID").
	Project("tenant_id", "TenantID").
	Project("action", "Action").
	Project("actor", "Actor").
	Project("approval_id", "ApprovalID").
	Project("confirmation_hash", "ConfirmationHash").
	Project("success", "Success").
	Project("detail", "Detail").
	Project("risk_score", "RiskScore").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for ledger queries.
// Nil fields are ignored. From and To bound CreatedAt inclusively.
type Filters struct {
	TenantID   *string    `json:"tenant_id,omitempty"`
	ApprovalID *uuid.UUID `json:"approval_id,omitempty"`
	Actor      *string    `json:"actor,omitempty"`
	From       *time.Time `json:"from,omitempty"`
	To         *time.Time `json:"to,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("TenantID", f.TenantID).
		WhereEquals("ApprovalID", f.ApprovalID).
		WhereEquals("Actor", f.Actor).
		WhereCompare("CreatedAt", ">=", f.From).
		WhereCompare("CreatedAt", "<=", f.To)
}

// FiltersFromQuery extracts filter values from URL query parameters.
// Timestamps parse as RFC 3339.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if t := values.Get("tenant_id"); t != "" {
		f.TenantID = &t
	}

	if a := values.Get("approval_id"); a != "" {
		if id, err := uuid.Parse(a); err == nil {
			f.ApprovalID = &id
		}
	}

	if a := values.Get("actor"); a != "" {
		f.Actor = &a
	}

	if v := values.Get("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.From = &t
		}
	}

	if v := values.Get("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.To = &t
		}
	}

	return f
}

func scanEntry(s repository.Scanner) (Entry, error) {
	var e Entry

	err := s.Scan(
		&e.ID,
		&e.EntityID,
		&e.TenantID,
		&e.Action,
		&e.Actor,
		&e.ApprovalID,
		&e.ConfirmationHash,
		&e.Success,
		&e.Detail,
		&e.RiskScore,
		&e.CreatedAt,
	)

	return e, err
}
