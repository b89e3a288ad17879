package pipeline

import "context"

type Client interface {
	// RunOnce executes one full crawl-hydrate-persist run across all tracked
	// accounts. Account-scoped failures are reported and skipped.
	RunOnce(ctx context.Context) error

	// ScheduleCrawl registers the recurring crawl job.
	ScheduleCrawl(ctx context.Context) error
}
