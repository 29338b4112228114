// Package notify emits outbound notification events consumed by the
// push-notification collaborator. Delivery is best-effort: a failed
// notification is logged, never allowed to fail the operation that
// produced it.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is emitted when an approval request is created and on every status
// change.
type Event struct {
	RequestID   uuid.UUID `json:"request_id"`
	TenantID    string    `json:"tenant_id"`
	ClientLabel string    `json:"client_label"`
	RiskScore   int       `json:"risk_score"`
	Status      string    `json:"status"`
	Description string    `json:"description"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Notifier delivers events to an outbound collaborator.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}
