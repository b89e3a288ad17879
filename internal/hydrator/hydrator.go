package hydrator

import (
	"context"
	"errors"

	"github.com/orgball2608/twitter-parser-telegram-bot/internal/domain"
)

var (
	// ErrTweetNotFound means the content API answered 404; the id is gone
	// for this run and is not retried.
	ErrTweetNotFound = errors.New("tweet not found upstream")

	// ErrHydrationTimeout means the content API did not answer in time.
	ErrHydrationTimeout = errors.New("hydration timed out")

	// ErrBadPayload means the response decoded but failed schema validation.
	ErrBadPayload = errors.New("hydration payload failed validation")
)

type Client interface {
	// Hydrate fetches full content for one stub id.
	Hydrate(ctx context.Context, id string) (domain.HydratedTweet, error)

	// HydrateAll hydrates independent stubs concurrently with a bounded
	// worker pool. Failures are recorded per id and never abort the batch;
	// result order is unspecified.
	HydrateAll(ctx context.Context, stubs []domain.TweetStub) (hydrated []domain.HydratedTweet, failedIDs []string)
}
