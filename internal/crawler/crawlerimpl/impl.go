package crawlerimpl

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/orgball2608/twitter-parser-telegram-bot/internal/browser"
	"github.com/orgball2608/twitter-parser-telegram-bot/internal/crawler"
	"github.com/orgball2608/twitter-parser-telegram-bot/internal/domain"
	"github.com/orgball2608/twitter-parser-telegram-bot/internal/repositories/tweet"
	"github.com/orgball2608/twitter-parser-telegram-bot/pkg/config"
	"github.com/orgball2608/twitter-parser-telegram-bot/pkg/logger"
	"github.com/orgball2608/twitter-parser-telegram-bot/pkg/retry"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Browser   browser.Client
	TweetRepo tweet.Repository
	Logger    logger.Logger
	Config    *config.Config
}

type CrawlerImpl struct {
	Browser   browser.Client
	TweetRepo tweet.Repository
	Logger    logger.Logger
	Config    *config.Config

	auth    *Authenticator
	scraper *Scraper
	now     func() time.Time
}

var _ crawler.Client = (*CrawlerImpl)(nil)

func New(opts Opts) *CrawlerImpl {
	log := opts.Logger.WithComponent("Crawler")

	policy := ScrollPolicy{
		BaseDistance: opts.Config.Crawler.BaseScrollPx,
		BackoffStep:  opts.Config.Crawler.ScrollBackoffPx,
		Jitter:       DefaultJitter(rand.New(rand.NewSource(time.Now().UnixNano()))),
	}

	return &CrawlerImpl{
		Browser:   opts.Browser,
		TweetRepo: opts.TweetRepo,
		Logger:    log,
		Config:    opts.Config,
		auth: NewAuthenticator(Credentials{
			Username: opts.Config.Twitter.User,
			Password: opts.Config.Twitter.Pass,
			Email:    opts.Config.Twitter.Email,
		}, opts.Logger),
		scraper: NewScraper(policy,
			opts.Config.Crawler.EmptyLimit,
			opts.Config.Crawler.MaxIterations,
			40*time.Second,
			opts.Logger),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// CrawlAll walks every handle sequentially on one shared page. The session
// authenticates once; account-scoped failures are logged and skipped so the
// remaining accounts still get crawled.
func (c *CrawlerImpl) CrawlAll(ctx context.Context, handles []string) (map[string][]domain.TweetStub, error) {
	runTimeout := time.Duration(c.Config.Crawler.RunTimeoutMinutes) * time.Minute
	if runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, runTimeout)
		defer cancel()
	}

	snapshot, err := c.TweetRepo.GetAllTwitterIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching dedup snapshot: %w", err)
	}
	tracker := NewDedupTracker(snapshot)
	c.Logger.Info("Loaded dedup snapshot", "persisted_ids", tracker.Size())

	page, err := c.Browser.NewPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening browser page: %w", err)
	}
	defer page.Close()

	now := c.now()
	cutoff := now.AddDate(0, 0, -c.Config.Crawler.LookbackDays)
	urls := BuildSearchURLs(handles, c.Config.Crawler.LookbackDays, now)

	results := make(map[string][]domain.TweetStub, len(handles))
	authenticated := false

	for i, handle := range handles {
		// The run deadline is only checked between accounts so the account
		// in flight finishes or is abandoned cleanly, never killed mid-wait.
		if ctx.Err() != nil {
			c.Logger.Warn("Run deadline reached, abandoning remaining accounts",
				"remaining", len(handles)-i)
			break
		}

		handle = NormalizeHandle(handle)
		searchURL := urls[i]

		err := retry.Do(ctx, c.Logger, "navigate search page", func() error {
			if err := page.Navigate(ctx, searchURL); err != nil {
				// A dead context cannot recover; retrying just burns the
				// remaining run deadline.
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return retry.Permanent(err)
				}
				return err
			}
			return nil
		}, retry.DefaultConfig())
		if err != nil {
			c.Logger.Error("Navigation failed, skipping account", "handle", handle, "error", err)
			continue
		}
		c.Logger.Info("Navigated to search page", "handle", handle, "url", searchURL)

		if !authenticated {
			ok, err := c.auth.Authenticate(ctx, page)
			if err != nil {
				c.Logger.Error("Authentication error, skipping account", "handle", handle, "error", err)
				continue
			}
			if !ok {
				c.Logger.Error("Login verification failed, skipping account",
					"handle", handle, "error", crawler.ErrLoginVerification)
				continue
			}
			authenticated = true
		}

		stubs, err := c.scraper.ScrapeAccount(ctx, page, handle, cutoff, tracker)
		if err != nil {
			c.Logger.Error("Scrape aborted", "handle", handle, "collected", len(stubs), "error", err)
		}
		results[handle] = stubs
	}

	return results, nil
}
