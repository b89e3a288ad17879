package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/orgball2608/twitter-parser-telegram-bot/pkg/logger"
)

func fastConfig() Config {
	return Config{
		MaxRetries:      3,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		Multiplier:      1.1,
	}
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), logger.New(logger.Opts{Env: "production"}), "flaky op", func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	}, fastConfig())

	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestDoGivesUpAfterMaxRetries(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), logger.New(logger.Opts{Env: "production"}), "dead op", func() error {
		attempts++
		return errors.New("still down")
	}, fastConfig())

	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if attempts != 4 {
		t.Errorf("attempts = %d, want 4 (initial + 3 retries)", attempts)
	}
}

func TestDoStopsOnPermanentError(t *testing.T) {
	sentinel := errors.New("gone for good")
	attempts := 0
	err := Do(context.Background(), logger.New(logger.Opts{Env: "production"}), "doomed op", func() error {
		attempts++
		return Permanent(sentinel)
	}, fastConfig())

	if !errors.Is(err, sentinel) {
		t.Fatalf("err = %v, want the permanent cause", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (no retries after a permanent error)", attempts)
	}
}

func TestPermanentNil(t *testing.T) {
	if Permanent(nil) != nil {
		t.Error("Permanent(nil) must stay nil")
	}
}
