package crawler

import (
	"context"
	"errors"

	"github.com/orgball2608/twitter-parser-telegram-bot/internal/domain"
)

var (
	// ErrAuthentication signals an unexpected failure inside the login flow.
	// It is fatal for the account being scraped, never for the whole run.
	ErrAuthentication = errors.New("authentication failed unexpectedly")

	// ErrLoginVerification signals that login submitted but the authenticated
	// landmark never showed up within the verification timeout.
	ErrLoginVerification = errors.New("login verification failed")
)

type Client interface {
	// CrawlAll walks the timelines of the given account handles and returns
	// the new tweet stubs per account, newest first. Account-scoped failures
	// are logged and skipped; only run-scoped failures (no dedup snapshot,
	// no browser page) are returned as errors.
	CrawlAll(ctx context.Context, handles []string) (map[string][]domain.TweetStub, error)
}
