package audit

import (
	"context"
	"time"

	"github.com/opsgate/opsgate/pkg/pagination"
)

// System defines the public contract for the audit ledger: an append-only
// write path and read-only retrieval for compliance export.
type System interface {
	Handler() *Handler

	// Record durably appends an entry. The entry's ID and CreatedAt are
	// assigned when zero. Safe for unordered concurrent writes.
	Record(ctx context.Context, entry *Entry) error

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Entry], error)

	// Export writes all entries for a tenant and time range as JSONL to
	// blob storage and returns the blob key.
	Export(ctx context.Context, tenantID string, from, to time.Time) (string, error)
}
