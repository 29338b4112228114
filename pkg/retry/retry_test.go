package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/opsgate/opsgate/pkg/retry"
)

var errTransient = errors.New("transient")

func isTransient(err error) bool {
	return errors.Is(err, errTransient)
}

func fastPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts:     3,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		MaxElapsed:      100 * time.Millisecond,
	}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	got, err := retry.Do(context.Background(), fastPolicy(), func(ctx context.Context) (string, error) {
		calls++
		return "ok", nil
	}, isTransient)

	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if got != "ok" {
		t.Errorf("Do() = %q, want ok", got)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDoRetriesTransient(t *testing.T) {
	calls := 0
	got, err := retry.Do(context.Background(), fastPolicy(), func(ctx context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errTransient
		}
		return 42, nil
	}, isTransient)

	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if got != 42 {
		t.Errorf("Do() = %d, want 42", got)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDoStopsAtAttemptCap(t *testing.T) {
	calls := 0
	_, err := retry.Do(context.Background(), fastPolicy(), func(ctx context.Context) (int, error) {
		calls++
		return 0, errTransient
	}, isTransient)

	if !errors.Is(err, errTransient) {
		t.Fatalf("Do() error = %v, want transient", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3 (the attempt cap)", calls)
	}
}

func TestDoPermanentAbortsImmediately(t *testing.T) {
	permanent := errors.New("bad request")
	calls := 0
	_, err := retry.Do(context.Background(), fastPolicy(), func(ctx context.Context) (int, error) {
		calls++
		return 0, permanent
	}, isTransient)

	if !errors.Is(err, permanent) {
		t.Fatalf("Do() error = %v, want permanent error", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (permanent errors never retry)", calls)
	}
}

func TestDoRespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := retry.Do(ctx, fastPolicy(), func(ctx context.Context) (int, error) {
		return 0, errTransient
	}, isTransient)

	if err == nil {
		t.Fatal("Do() should fail when the context is cancelled")
	}
}
