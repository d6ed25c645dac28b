package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "openai"); err != nil {
		t.Errorf("wait failed: %v", err)
	}

	// Different key has its own bucket
	if err := limiter.Wait(ctx, "gemini"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestLimiter_BurstExhausted(t *testing.T) {
	limiter := NewLimiter(0.01, 1)

	if err := limiter.Wait(context.Background(), "openai"); err != nil {
		t.Fatalf("first wait failed: %v", err)
	}

	// The next token is 100s away, far past the deadline
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := limiter.Wait(ctx, "openai"); err == nil {
		t.Error("expected wait to fail with the burst spent")
	}

	if err := limiter.Wait(context.Background(), "anthropic"); err != nil {
		t.Errorf("expected other key to proceed: %v", err)
	}
}

func TestLimiter_WaitCancelled(t *testing.T) {
	limiter := NewLimiter(1, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := limiter.Wait(ctx, "openai"); err == nil {
		t.Error("expected wait to fail once the context is done")
	}
}

func TestLimiter_Disabled(t *testing.T) {
	limiter := NewLimiter(0, 1)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	for i := 0; i < 100; i++ {
		if err := limiter.Wait(ctx, "openai"); err != nil {
			t.Fatalf("expected unlimited limiter to admit request %d: %v", i, err)
		}
	}
}
