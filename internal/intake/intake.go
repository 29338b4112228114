// Package intake accepts administrative requests, queues them, and drives
// each one through classification into either an approval or direct
// execution. Requests are accepted immediately and processed by a bounded
// worker pool; callers poll the approval endpoints for the outcome.
package intake

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/opsgate/opsgate/internal/classifier"
	"github.com/opsgate/opsgate/pkg/lifecycle"
)

// SubmitCommand is the caller-supplied portion of a request.
type SubmitCommand struct {
	Content     string            `json:"content"`
	Source      string            `json:"source"`
	TenantID    string            `json:"tenant_id"`
	ClientLabel string            `json:"client_label"`
	Context     map[string]string `json:"context,omitempty"`
}

// Receipt acknowledges an accepted request.
type Receipt struct {
	RequestID  uuid.UUID `json:"request_id"`
	AcceptedAt time.Time `json:"accepted_at"`
}

// Classifier produces a reconciled classification for a request. Implemented
// by classifier.Orchestrator; test doubles implement it directly.
type Classifier interface {
	Classify(ctx context.Context, req classifier.Request) (*classifier.Result, error)
}

// System defines the public contract for request intake.
type System interface {
	Handler() *Handler

	// Start registers the worker pool with the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator) error

	// Submit validates and enqueues a request, returning a receipt without
	// waiting for classification.
	Submit(ctx context.Context, cmd SubmitCommand) (*Receipt, error)
}
