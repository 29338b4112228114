// Package audit implements the append-only audit ledger. Every
// classification, approval decision, and execution outcome produces exactly
// one entry; entries are durable before the calling operation reports
// success, and no update or delete operation exists anywhere in the package.
package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Entry is one immutable audit record.
type Entry struct {
	ID               uuid.UUID       `json:"id"`
	EntityID         string          `json:"entity_id"`
	TenantID         string          `json:"tenant_id"`
	Action           string          `json:"action"`
	Actor            string          `json:"actor"`
	ApprovalID       *uuid.UUID      `json:"approval_id,omitempty"`
	ConfirmationHash *string         `json:"confirmation_hash,omitempty"`
	Success          bool            `json:"success"`
	Detail           json.RawMessage `json:"detail,omitempty"`
	RiskScore        int             `json:"risk_score"`
	CreatedAt        time.Time       `json:"created_at"`
}

// SystemActor identifies entries written by the engine itself rather than a
// human approver.
const SystemActor = "system"
