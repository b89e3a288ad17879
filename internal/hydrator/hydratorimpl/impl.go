package hydratorimpl

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/orgball2608/twitter-parser-telegram-bot/internal/domain"
	"github.com/orgball2608/twitter-parser-telegram-bot/internal/hydrator"
	"github.com/orgball2608/twitter-parser-telegram-bot/internal/ratelimit"
	"github.com/orgball2608/twitter-parser-telegram-bot/pkg/config"
	"github.com/orgball2608/twitter-parser-telegram-bot/pkg/logger"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/fx"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// tweetPayload is the strict schema validated at the hydration boundary. A
// payload failing it becomes a recorded failure, never a crash downstream.
type tweetPayload struct {
	TweetID        json.Number `json:"tweetID" validate:"required"`
	UserScreenName string      `json:"user_screen_name" validate:"required"`
	Text           string      `json:"text"`
	MediaURLs      []string    `json:"mediaURLs" validate:"omitempty,dive,url"`
	Date           string      `json:"date" validate:"required"`
}

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

type HydratorImpl struct {
	baseURL  string
	workers  int
	client   *http.Client
	limiter  ratelimit.Limiter
	validate *validator.Validate
	logger   logger.Logger
}

var _ hydrator.Client = (*HydratorImpl)(nil)

func New(opts Opts) *HydratorImpl {
	timeout := time.Duration(opts.Config.Hydrator.TimeoutSeconds) * time.Second

	// The content API is a best-effort mirror behind rotating certs; TLS
	// verification is relaxed on purpose.
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
	}

	return &HydratorImpl{
		baseURL: opts.Config.Hydrator.BaseURL,
		workers: opts.Config.Hydrator.Workers,
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		limiter:  ratelimit.NewTokenBucket(opts.Config.Hydrator.RequestsPerSec, time.Second, 2),
		validate: validator.New(),
		logger:   opts.Logger.WithComponent("Hydrator"),
	}
}

func (h *HydratorImpl) Hydrate(ctx context.Context, id string) (domain.HydratedTweet, error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return domain.HydratedTweet{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+id, nil)
	if err != nil {
		return domain.HydratedTweet{}, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return domain.HydratedTweet{}, fmt.Errorf("%w: %v", hydrator.ErrHydrationTimeout, err)
		}
		return domain.HydratedTweet{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.HydratedTweet{}, hydrator.ErrTweetNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return domain.HydratedTweet{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var payload tweetPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.HydratedTweet{}, fmt.Errorf("%w: %v", hydrator.ErrBadPayload, err)
	}
	if err := h.validate.Struct(payload); err != nil {
		return domain.HydratedTweet{}, fmt.Errorf("%w: %v", hydrator.ErrBadPayload, err)
	}

	return domain.HydratedTweet{
		TweetID:      payload.TweetID.String(),
		AuthorHandle: payload.UserScreenName,
		Text:         payload.Text,
		MediaURLs:    payload.MediaURLs,
		Date:         payload.Date,
	}, nil
}

func (h *HydratorImpl) HydrateAll(ctx context.Context, stubs []domain.TweetStub) ([]domain.HydratedTweet, []string) {
	if len(stubs) == 0 {
		return nil, nil
	}

	var (
		mu       sync.Mutex
		hydrated []domain.HydratedTweet
		failed   []string
		wg       sync.WaitGroup
	)

	pool, err := ants.NewPool(h.workers, ants.WithPreAlloc(true))
	if err != nil {
		// Pool construction only fails on nonsensical sizes; fall back to a
		// serial pass rather than dropping the batch.
		h.logger.Warn("Worker pool unavailable, hydrating serially", "error", err)
		for _, stub := range stubs {
			h.hydrateInto(ctx, stub.ID, &mu, &hydrated, &failed)
		}
		return hydrated, failed
	}
	defer pool.Release()

	for _, stub := range stubs {
		id := stub.ID
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			select {
			case <-ctx.Done():
				mu.Lock()
				failed = append(failed, id)
				mu.Unlock()
			default:
				h.hydrateInto(ctx, id, &mu, &hydrated, &failed)
			}
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			failed = append(failed, id)
			mu.Unlock()
			h.logger.Error("Failed to submit hydration job", "tweet_id", id, "error", submitErr)
		}
	}

	wg.Wait()

	h.logger.Info("Hydration batch completed",
		"total", len(stubs), "hydrated", len(hydrated), "failed", len(failed))
	return hydrated, failed
}

func (h *HydratorImpl) hydrateInto(ctx context.Context, id string, mu *sync.Mutex, hydrated *[]domain.HydratedTweet, failed *[]string) {
	tweet, err := h.Hydrate(ctx, id)
	mu.Lock()
	defer mu.Unlock()
	if err != nil {
		*failed = append(*failed, id)
		switch {
		case errors.Is(err, hydrator.ErrTweetNotFound):
			h.logger.Info("Tweet not found upstream", "tweet_id", id)
		case errors.Is(err, hydrator.ErrHydrationTimeout):
			h.logger.Warn("Hydration timed out", "tweet_id", id)
		default:
			h.logger.Error("Hydration failed", "tweet_id", id, "error", err)
		}
		return
	}
	*hydrated = append(*hydrated, tweet)
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
