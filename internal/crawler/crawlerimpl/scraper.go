package crawlerimpl

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/orgball2608/twitter-parser-telegram-bot/internal/browser"
	"github.com/orgball2608/twitter-parser-telegram-bot/internal/domain"
	"github.com/orgball2608/twitter-parser-telegram-bot/pkg/logger"
)

const (
	selectorTweetCard  = `article[data-testid="tweet"]`
	selectorStatusLink = `a[href*="/status/"]`
	selectorTimestamp  = `time`

	// Short pauses after a failed cycle, mirroring the page dwell the
	// timeline needs to recover from transient DOM churn.
	cycleErrorPause  = 2 * time.Second
	scrollErrorPause = 3 * time.Second
)

var statusIDPattern = regexp.MustCompile(`/status/(\d+)`)

// Scraper walks one account's search results timeline and emits new tweet
// stubs until it hits the cutoff date or runs out of fresh content.
type Scraper struct {
	policy             ScrollPolicy
	emptyLimit         int
	maxIterations      int
	networkIdleTimeout time.Duration
	logger             logger.Logger
}

func NewScraper(policy ScrollPolicy, emptyLimit, maxIterations int, networkIdleTimeout time.Duration, log logger.Logger) *Scraper {
	return &Scraper{
		policy:             policy,
		emptyLimit:         emptyLimit,
		maxIterations:      maxIterations,
		networkIdleTimeout: networkIdleTimeout,
		logger:             log.WithComponent("Scraper"),
	}
}

// ScrapeAccount assumes page is authenticated and positioned on the
// account's search results. Returned stubs are newest first, deduplicated
// against tracker, and all strictly newer than cutoff.
func (s *Scraper) ScrapeAccount(ctx context.Context, page browser.Page, handle string, cutoff time.Time, tracker *DedupTracker) ([]domain.TweetStub, error) {
	var stubs []domain.TweetStub
	emptyStreak := 0

	for iteration := 0; iteration < s.maxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			return stubs, err
		}

		fresh, hitCutoff, err := s.extractVisible(ctx, page, cutoff, tracker)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return stubs, err
			}
			emptyStreak++
			s.logger.Warn("Extraction cycle failed, continuing",
				"handle", handle, "error", err, "empty_streak", emptyStreak)
			if err := sleepCtx(ctx, cycleErrorPause); err != nil {
				return stubs, err
			}
			continue
		}

		if len(fresh) > 0 {
			emptyStreak = 0
			stubs = append(stubs, fresh...)
			s.logger.Info("Collected tweets",
				"handle", handle, "total", len(stubs), "last_tweet_date", fresh[len(fresh)-1].Date)
		} else if !hitCutoff {
			emptyStreak++
			if emptyStreak >= s.emptyLimit {
				s.logger.Info("No new tweets after consecutive attempts, assuming end of timeline",
					"handle", handle, "attempts", emptyStreak)
				break
			}
		}

		if hitCutoff {
			s.logger.Info("Reached cutoff date", "handle", handle, "cutoff", cutoff)
			break
		}

		if err := s.scroll(ctx, page, emptyStreak); err != nil {
			return stubs, err
		}
	}

	return stubs, nil
}

// extractVisible reads every tweet card currently in the DOM, in timeline
// order. The first card at or older than cutoff stops the scan; it is not
// emitted. Previously seen ids are dropped silently and do not count as new.
func (s *Scraper) extractVisible(ctx context.Context, page browser.Page, cutoff time.Time, tracker *DedupTracker) ([]domain.TweetStub, bool, error) {
	cards, err := page.QuerySelectorAll(ctx, selectorTweetCard)
	if err != nil {
		return nil, false, err
	}

	var fresh []domain.TweetStub
	for _, card := range cards {
		stub, ok := s.extractStub(ctx, card)
		if !ok {
			continue
		}
		if !stub.Date.After(cutoff) {
			return fresh, true, nil
		}
		if tracker.Contains(stub.ID) {
			continue
		}
		tracker.Add(stub.ID)
		fresh = append(fresh, stub)
	}
	return fresh, false, nil
}

// extractStub pulls the id and timestamp out of one card. A card missing
// either is skipped, not an error.
func (s *Scraper) extractStub(ctx context.Context, card browser.Element) (domain.TweetStub, bool) {
	link, err := card.QuerySelector(ctx, selectorStatusLink)
	if err != nil || link == nil {
		return domain.TweetStub{}, false
	}

	href, err := link.GetAttribute(ctx, "href")
	if err != nil {
		return domain.TweetStub{}, false
	}
	match := statusIDPattern.FindStringSubmatch(href)
	if match == nil {
		s.logger.Debug("Card link without a status id, skipping", "href", href)
		return domain.TweetStub{}, false
	}

	timeEl, err := card.QuerySelector(ctx, selectorTimestamp)
	if err != nil || timeEl == nil {
		return domain.TweetStub{}, false
	}
	datetime, err := timeEl.GetAttribute(ctx, "datetime")
	if err != nil {
		return domain.TweetStub{}, false
	}
	date, err := time.Parse(time.RFC3339, datetime)
	if err != nil {
		s.logger.Debug("Card with unparsable timestamp, skipping", "datetime", datetime, "error", err)
		return domain.TweetStub{}, false
	}

	return domain.TweetStub{ID: match[1], Date: date.UTC()}, true
}

// scroll advances the timeline using the adaptive policy, then waits for the
// DOM to settle. A network-idle timeout only makes the next snapshot staler,
// so it is logged and swallowed.
func (s *Scraper) scroll(ctx context.Context, page browser.Page, emptyStreak int) error {
	distance := s.policy.Distance(emptyStreak)
	if err := page.ScrollBy(ctx, distance); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		s.logger.Warn("Scroll failed", "error", err)
		return sleepCtx(ctx, scrollErrorPause)
	}

	if err := sleepCtx(ctx, s.policy.WaitTime(distance)); err != nil {
		return err
	}

	if err := page.WaitForNetworkIdle(ctx, s.networkIdleTimeout); err != nil {
		if errors.Is(err, browser.ErrWaitTimeout) {
			s.logger.Warn("Network idle timeout reached")
			return nil
		}
		return err
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
