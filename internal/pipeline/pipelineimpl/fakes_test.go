package pipelineimpl

import (
	"context"
	"time"

	"github.com/orgball2608/twitter-parser-telegram-bot/internal/domain"
	"github.com/orgball2608/twitter-parser-telegram-bot/pkg/config"
	"github.com/orgball2608/twitter-parser-telegram-bot/pkg/logger"
)

type fakeCrawler struct {
	stubs map[string][]domain.TweetStub
	err   error
	calls int

	// dedup, when set, drops stubs already present in the store snapshot,
	// mirroring how the real crawler seeds its tracker.
	dedup *fakeTweetRepo
}

func (c *fakeCrawler) CrawlAll(ctx context.Context, _ []string) (map[string][]domain.TweetStub, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	if c.dedup == nil {
		return c.stubs, nil
	}

	snapshot, err := c.dedup.GetAllTwitterIDs(ctx)
	if err != nil {
		return nil, err
	}
	persisted := make(map[string]bool, len(snapshot))
	for _, id := range snapshot {
		persisted[id] = true
	}

	filtered := make(map[string][]domain.TweetStub, len(c.stubs))
	for handle, stubs := range c.stubs {
		var fresh []domain.TweetStub
		for _, stub := range stubs {
			if !persisted[stub.ID] {
				fresh = append(fresh, stub)
			}
		}
		filtered[handle] = fresh
	}
	return filtered, nil
}

// fakeHydrator hydrates from a canned table; ids absent from it fail.
type fakeHydrator struct {
	tweets map[string]domain.HydratedTweet
}

func (h *fakeHydrator) Hydrate(_ context.Context, id string) (domain.HydratedTweet, error) {
	return h.tweets[id], nil
}

func (h *fakeHydrator) HydrateAll(_ context.Context, stubs []domain.TweetStub) ([]domain.HydratedTweet, []string) {
	var hydrated []domain.HydratedTweet
	var failed []string
	for _, stub := range stubs {
		tweet, ok := h.tweets[stub.ID]
		if !ok {
			failed = append(failed, stub.ID)
			continue
		}
		hydrated = append(hydrated, tweet)
	}
	return hydrated, failed
}

type fakeTweetRepo struct {
	known     []string
	inserted  [][]domain.Tweet
	insertErr map[string]error // keyed by first tweet's twitter id
}

func (r *fakeTweetRepo) GetAllTwitterIDs(_ context.Context) ([]string, error) {
	return r.known, nil
}

func (r *fakeTweetRepo) InsertBatch(_ context.Context, tweets []domain.Tweet) error {
	if len(tweets) > 0 {
		if err := r.insertErr[tweets[0].TwitterID]; err != nil {
			return err
		}
	}
	r.inserted = append(r.inserted, tweets)
	return nil
}

func (r *fakeTweetRepo) allInserted() []domain.Tweet {
	var all []domain.Tweet
	for _, batch := range r.inserted {
		all = append(all, batch...)
	}
	return all
}

type fakeAccountRepo struct {
	accounts    []domain.TrackedAccount
	lastFetched map[string]time.Time
}

func (r *fakeAccountRepo) GetActiveUsernames(_ context.Context) ([]string, error) {
	var handles []string
	for _, acct := range r.accounts {
		if acct.IsActive {
			handles = append(handles, acct.Username)
		}
	}
	return handles, nil
}

func (r *fakeAccountRepo) GetIDUsernamePairs(_ context.Context) ([]domain.TrackedAccount, error) {
	return r.accounts, nil
}

func (r *fakeAccountRepo) UpdateLastFetched(_ context.Context, username string, fetchedAt time.Time) error {
	if r.lastFetched == nil {
		r.lastFetched = make(map[string]time.Time)
	}
	r.lastFetched[username] = fetchedAt
	return nil
}

type fakeCategoryRepo struct {
	pairs []domain.AccountCategory
}

func (r *fakeCategoryRepo) GetAccountCategoryPairs(_ context.Context) ([]domain.AccountCategory, error) {
	return r.pairs, nil
}

type fakeTelegram struct {
	userMessages    []string
	channelMessages []string
}

func (t *fakeTelegram) SendMessageToUser(msg string) {
	t.userMessages = append(t.userMessages, msg)
}

func (t *fakeTelegram) SendMessageToChannel(msg string) {
	t.channelMessages = append(t.channelMessages, msg)
}

func newTestPipeline(crawler *fakeCrawler, hydratorClient *fakeHydrator, tweets *fakeTweetRepo, accounts *fakeAccountRepo, categories *fakeCategoryRepo, tg *fakeTelegram) *PipelineImpl {
	cfg := &config.Config{}
	cfg.Crawler.RunTimeoutMinutes = 1
	cfg.Pipeline.CrawlInterval = "* * * * *"
	return New(Opts{
		Crawler:      crawler,
		Hydrator:     hydratorClient,
		TweetRepo:    tweets,
		AccountRepo:  accounts,
		CategoryRepo: categories,
		Telegram:     tg,
		Logger:       logger.New(logger.Opts{Env: "production"}),
		Config:       cfg,
	})
}
