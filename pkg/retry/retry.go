// Package retry wraps cenkalti/backoff with a transience predicate so callers
// retry only the failures worth retrying.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy bounds a retry loop: how many attempts, where the backoff starts,
// where it caps, and the total time budget across all attempts.
type Policy struct {
	MaxAttempts     uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsed      time.Duration
}

// DefaultPolicy matches the provider and executor retry contract:
// three attempts, doubling delay with jitter, bounded total budget.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     10 * time.Second,
		MaxElapsed:      2 * time.Minute,
	}
}

// Do runs op, retrying with exponential backoff while transient(err) is true.
// Non-transient errors abort immediately and are returned as-is. The context
// bounds the whole loop, including backoff sleeps.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error), transient func(error) bool) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval
	b.MaxElapsedTime = p.MaxElapsed

	var wrapped backoff.BackOff = b
	if p.MaxAttempts > 0 {
		wrapped = backoff.WithMaxRetries(b, uint64(p.MaxAttempts-1))
	}

	return backoff.RetryWithData(func() (T, error) {
		result, err := op(ctx)
		if err != nil && !transient(err) {
			return result, backoff.Permanent(err)
		}
		return result, err
	}, backoff.WithContext(wrapped, ctx))
}
