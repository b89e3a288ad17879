package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestTokenBucketAllowsWithinBurst(t *testing.T) {
	limiter := NewTokenBucket(100, time.Second, 2)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for i := 0; i < 2; i++ {
		if err := limiter.Wait(ctx); err != nil {
			t.Fatalf("Wait %d: %v", i, err)
		}
	}
}

func TestTokenBucketClampsNonPositiveRate(t *testing.T) {
	// A zero rate must not panic the constructor and must still admit
	// at least one call.
	limiter := NewTokenBucket(0, time.Second, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := limiter.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
}

func TestTokenBucketHonorsCancellation(t *testing.T) {
	limiter := NewTokenBucket(1, time.Hour, 1)

	// Drain the only token, then a cancelled wait must return promptly.
	if err := limiter.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := limiter.Wait(ctx); err == nil {
		t.Fatal("expected an error once the context expired")
	}
}
