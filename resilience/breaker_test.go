package resilience

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker("svc", WithBreakerThreshold(2), WithBreakerResetTimeout(time.Hour))
	boom := errors.New("boom")
	_ = cb.Guard(func() error { return boom })
	_ = cb.Guard(func() error { return boom })
	if cb.State() != BreakerOpen {
		t.Fatalf("expected breaker to be open after 2 failures")
	}
	err := cb.Guard(func() error { return nil })
	var openErr *ErrCircuitOpen
	if !errors.As(err, &openErr) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if openErr.Name != "svc" {
		t.Errorf("ErrCircuitOpen.Name = %q, want %q", openErr.Name, "svc")
	}
}

func TestCircuitBreakerHalfOpenRecovers(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	cb := NewCircuitBreaker("svc", WithBreakerThreshold(1), WithBreakerResetTimeout(time.Second), WithBreakerHalfOpenMax(1), WithBreakerClock(clock))
	_ = cb.Guard(func() error { return errors.New("boom") })
	if cb.State() != BreakerOpen {
		t.Fatalf("expected open")
	}
	now = now.Add(2 * time.Second)
	if err := cb.Guard(func() error { return nil }); err != nil {
		t.Fatalf("expected half-open probe to succeed, got %v", err)
	}
	if cb.State() != BreakerClosed {
		t.Fatalf("expected breaker to close after successful probe")
	}
}

func TestCircuitBreakerLogsTransitionsUnderItsOwnName(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	cb := NewCircuitBreaker("flaky-host", WithBreakerThreshold(1), WithBreakerLogger(logger))

	_ = cb.Guard(func() error { return errors.New("boom") })

	out := buf.String()
	if !strings.Contains(out, "name=flaky-host") {
		t.Errorf("log output missing breaker name: %s", out)
	}
	if !strings.Contains(out, "to=open") {
		t.Errorf("log output missing open transition: %s", out)
	}
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), 3, time.Millisecond, nil, func(context.Context) error {
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
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestDoStopsOnCircuitOpen(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), 5, time.Millisecond, nil, func(context.Context) error {
		attempts++
		return &ErrCircuitOpen{Name: "x"}
	})
	if attempts != 1 {
		t.Fatalf("expected no retries on circuit-open, got %d attempts", attempts)
	}
	var openErr *ErrCircuitOpen
	if !errors.As(err, &openErr) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
}
