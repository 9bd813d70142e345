package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetrier_SucceedsAfterTransientFailures(t *testing.T) {
	r := New(&Config{MaxRetries: 3, InitialInterval: time.Millisecond, JitterFactor: 0})

	attempts := 0
	err := r.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetrier_ReturnsLastErrorAfterExhaustion(t *testing.T) {
	r := New(&Config{MaxRetries: 2, InitialInterval: time.Millisecond, JitterFactor: 0})

	attempts := 0
	wantErr := errors.New("still broken")
	err := r.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return wantErr
	})

	if !errors.Is(err, wantErr) {
		t.Errorf("expected last error, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected initial attempt + 2 retries, got %d", attempts)
	}
}

func TestRetrier_PermanentErrorStopsRetrying(t *testing.T) {
	r := New(&Config{MaxRetries: 5, InitialInterval: time.Millisecond, JitterFactor: 0})

	attempts := 0
	wantErr := errors.New("bad request")
	err := r.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return Permanent(wantErr)
	})

	if !errors.Is(err, wantErr) {
		t.Errorf("expected unwrapped permanent error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("permanent error must not be retried, got %d attempts", attempts)
	}
}

func TestRetrier_ContextCancellation(t *testing.T) {
	r := New(&Config{MaxRetries: 10, InitialInterval: 50 * time.Millisecond, JitterFactor: 0})

	ctx, cancel := context.WithCancel(context.Background())
	transient := errors.New("transient")

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := r.Do(ctx, func(ctx context.Context) error {
		return transient
	})
	if !errors.Is(err, transient) {
		t.Errorf("expected last attempt error on cancellation, got %v", err)
	}
}

func TestCalculateIntervalCapsAtMax(t *testing.T) {
	r := New(&Config{
		MaxRetries:      10,
		InitialInterval: time.Second,
		MaxInterval:     2 * time.Second,
		Multiplier:      10,
		JitterFactor:    0,
	})

	if got := r.calculateInterval(5); got != 2*time.Second {
		t.Errorf("expected interval capped at 2s, got %s", got)
	}
}
