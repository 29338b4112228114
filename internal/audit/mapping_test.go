package audit_test

import (
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/opsgate/opsgate/internal/audit"
)

func TestFiltersFromQuery(t *testing.T) {
	approvalID := uuid.New()
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC)

	values := url.Values{}
	values.Set("tenant_id", "contoso")
	values.Set("approval_id", approvalID.String())
	values.Set("actor", "jdoe@contoso.com")
	values.Set("from", from.Format(time.RFC3339))
	values.Set("to", to.Format(time.RFC3339))

	f := audit.FiltersFromQuery(values)

	if f.TenantID == nil || *f.TenantID != "contoso" {
		t.Errorf("TenantID = %v, want contoso", f.TenantID)
	}
	if f.ApprovalID == nil || *f.ApprovalID != approvalID {
		t.Errorf("ApprovalID = %v, want %s", f.ApprovalID, approvalID)
	}
	if f.Actor == nil || *f.Actor != "jdoe@contoso.com" {
		t.Errorf("Actor = %v", f.Actor)
	}
	if f.From == nil || !f.From.Equal(from) {
		t.Errorf("From = %v, want %v", f.From, from)
	}
	if f.To == nil || !f.To.Equal(to) {
		t.Errorf("To = %v, want %v", f.To, to)
	}
}

func TestFiltersFromQueryIgnoresInvalid(t *testing.T) {
	values := url.Values{}
	values.Set("approval_id", "not-a-uuid")
	values.Set("from", "March 1st")
	values.Set("to", "2026-03-31")

	f := audit.FiltersFromQuery(values)

	if f.ApprovalID != nil {
		t.Errorf("ApprovalID = %v, want nil for malformed uuid", f.ApprovalID)
	}
	if f.From != nil {
		t.Errorf("From = %v, want nil for non-RFC3339 value", f.From)
	}
	if f.To != nil {
		t.Errorf("To = %v, want nil for date-only value", f.To)
	}
}

func TestFiltersFromQueryEmpty(t *testing.T) {
	f := audit.FiltersFromQuery(url.Values{})

	if f.TenantID != nil || f.ApprovalID != nil || f.Actor != nil || f.From != nil || f.To != nil {
		t.Errorf("empty query produced filters: %+v", f)
	}
}
