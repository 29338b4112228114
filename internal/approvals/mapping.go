package approvals

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/opsgate/opsgate/pkg/query"
	"github.com/opsgate/opsgate/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "approvals", "ap").
	Project("id", "ID").
	Project("tenant_id", "TenantID").
	Project("client_label", "ClientLabel").
	Project("action", "Action").
	Project("risk_score", "RiskScore").
	Project("summary", "Summary").
	Project("actions", "Actions").
	Project("status", "Status").
	Project("created_at", "CreatedAt").
	Project("expires_at", "ExpiresAt").
	Project("decided_at", "DecidedAt").
	Project("approver", "Approver").
	Project("confirmation", "Confirmation").
	Project("notes", "Notes").
	Project("results", "Results")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for approval queries.
// Nil fields are ignored.
type Filters struct {
	TenantID *string `json:"tenant_id,omitempty"`
	Status   *Status `json:"status,omitempty"`
	Approver *string `json:"approver,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("TenantID", f.TenantID).
		WhereEquals("Status", f.Status).
		WhereEquals("Approver", f.Approver)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if t := values.Get("tenant_id"); t != "" {
		f.TenantID = &t
	}

	if s := values.Get("status"); s != "" {
		status := Status(s)
		f.Status = &status
	}

	if a := values.Get("approver"); a != "" {
		f.Approver = &a
	}

	return f
}

func scanApproval(s repository.Scanner) (Approval, error) {
	var a Approval
	var actionsRaw, confirmationRaw, resultsRaw []byte

	err := s.Scan(
		&a.ID,
		&a.TenantID,
		&a.ClientLabel,
		&a.Action,
		&a.RiskScore,
		&a.Summary,
		&actionsRaw,
		&a.Status,
		&a.CreatedAt,
		&a.ExpiresAt,
		&a.DecidedAt,
		&a.Approver,
		&confirmationRaw,
		&a.Notes,
		&resultsRaw,
	)
	if err != nil {
		return a, err
	}

	if len(actionsRaw) > 0 {
		if err := json.Unmarshal(actionsRaw, &a.Actions); err != nil {
			return a, fmt.Errorf("unmarshal actions: %w", err)
		}
	}

	if len(confirmationRaw) > 0 {
		if err := json.Unmarshal(confirmationRaw, &a.Confirmation); err != nil {
			return a, fmt.Errorf("unmarshal confirmation: %w", err)
		}
	}

	if len(resultsRaw) > 0 {
		if err := json.Unmarshal(resultsRaw, &a.Results); err != nil {
			return a, fmt.Errorf("unmarshal results: %w", err)
		}
	}

	return a, nil
}
