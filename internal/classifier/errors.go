package classifier

import "errors"

// Provider error taxonomy. Transient failures are retried inside the
// orchestrator; permanent failures surface immediately and force the
// human-review fallback.
var (
	ErrProviderTransient = errors.New("classification provider transient failure")
	ErrProviderPermanent = errors.New("classification provider permanent failure")
	ErrClassifyFailed    = errors.New("classification failed")
)
