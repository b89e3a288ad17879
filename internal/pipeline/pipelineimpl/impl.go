package pipelineimpl

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/orgball2608/twitter-parser-telegram-bot/internal/crawler"
	"github.com/orgball2608/twitter-parser-telegram-bot/internal/hydrator"
	"github.com/orgball2608/twitter-parser-telegram-bot/internal/pipeline"
	"github.com/orgball2608/twitter-parser-telegram-bot/internal/repositories/account"
	"github.com/orgball2608/twitter-parser-telegram-bot/internal/repositories/category"
	"github.com/orgball2608/twitter-parser-telegram-bot/internal/repositories/tweet"
	"github.com/orgball2608/twitter-parser-telegram-bot/internal/telegram"
	"github.com/orgball2608/twitter-parser-telegram-bot/pkg/config"
	"github.com/orgball2608/twitter-parser-telegram-bot/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Crawler      crawler.Client
	Hydrator     hydrator.Client
	TweetRepo    tweet.Repository
	AccountRepo  account.Repository
	CategoryRepo category.Repository
	Telegram     telegram.Client
	Logger       logger.Logger
	Config       *config.Config
}

type PipelineImpl struct {
	Crawler      crawler.Client
	Hydrator     hydrator.Client
	TweetRepo    tweet.Repository
	AccountRepo  account.Repository
	CategoryRepo category.Repository
	Telegram     telegram.Client
	Logger       logger.Logger
	Config       *config.Config

	Scheduler gocron.Scheduler
	now       func() time.Time
}

var _ pipeline.Client = (*PipelineImpl)(nil)

func New(opts Opts) *PipelineImpl {
	return &PipelineImpl{
		Crawler:      opts.Crawler,
		Hydrator:     opts.Hydrator,
		TweetRepo:    opts.TweetRepo,
		AccountRepo:  opts.AccountRepo,
		CategoryRepo: opts.CategoryRepo,
		Telegram:     opts.Telegram,
		Logger:       opts.Logger.WithComponent("Pipeline"),
		Config:       opts.Config,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// RunOnce does one full pass: build the category mapping, crawl every
// tracked account, hydrate the stubs and persist per account. Failures are
// isolated per account; only run-scoped failures come back as errors.
func (p *PipelineImpl) RunOnce(ctx context.Context) error {
	mapper, err := p.buildMapper(ctx)
	if err != nil {
		return fmt.Errorf("building category mapping: %w", err)
	}

	handles, err := p.AccountRepo.GetActiveUsernames(ctx)
	if err != nil {
		return fmt.Errorf("listing tracked accounts: %w", err)
	}
	if len(handles) == 0 {
		p.Logger.Info("No tracked accounts. Skipping run.")
		return nil
	}

	stubsByAccount, err := p.Crawler.CrawlAll(ctx, handles)
	if err != nil {
		p.Telegram.SendMessageToUser("Crawl run failed: " + err.Error())
		return fmt.Errorf("crawling accounts: %w", err)
	}

	var (
		totalInserted  int
		totalSkipped   int
		totalFailed    int
		failedAccounts []string
	)

	for _, handle := range handles {
		stubs := stubsByAccount[handle]
		if len(stubs) == 0 {
			p.Logger.Info("No new tweets for account", "handle", handle)
			continue
		}

		hydrated, failedIDs := p.Hydrator.HydrateAll(ctx, stubs)
		totalFailed += len(failedIDs)
		if len(failedIDs) > 0 {
			p.Logger.Warn("Some tweets failed hydration",
				"handle", handle, "failed_ids", failedIDs)
		}

		result, err := p.persistAccount(ctx, handle, mapper, hydrated)
		if err != nil {
			p.Logger.Error("Persisting account batch failed", "handle", handle, "error", err)
			failedAccounts = append(failedAccounts, handle)
			p.Telegram.SendMessageToChannel(fmt.Sprintf(
				"Account @%s: tweet batch was not stored, will retry next run", handle))
			continue
		}
		totalInserted += result.InsertedCount
		totalSkipped += len(result.SkippedIDs)

		if err := p.AccountRepo.UpdateLastFetched(ctx, handle, p.now()); err != nil {
			p.Logger.Error("Failed to advance last-fetched marker", "handle", handle, "error", err)
		}
	}

	p.Logger.Info("Crawl run completed",
		"accounts", len(handles),
		"inserted", totalInserted,
		"skipped", totalSkipped,
		"hydration_failures", totalFailed,
		"failed_accounts", failedAccounts)

	summary := fmt.Sprintf(
		"Crawl run completed: %d accounts, %d tweets stored, %d skipped, %d hydration failures",
		len(handles), totalInserted, totalSkipped, totalFailed)
	p.Telegram.SendMessageToUser(summary)
	p.Telegram.SendMessageToChannel(summary)

	return nil
}

func (p *PipelineImpl) buildMapper(ctx context.Context) (*CategoryMapper, error) {
	accounts, err := p.AccountRepo.GetIDUsernamePairs(ctx)
	if err != nil {
		return nil, err
	}

	pairs, err := p.CategoryRepo.GetAccountCategoryPairs(ctx)
	if err != nil {
		return nil, err
	}

	mapper := BuildCategoryMapper(accounts, pairs)
	p.Logger.Info("Built category mapping", "mapped_accounts", mapper.Size())
	return mapper, nil
}

// ScheduleCrawl sets up the recurring crawl job.
func (p *PipelineImpl) ScheduleCrawl(ctx context.Context) error {
	p.Logger.Info("Setting up crawl scheduler", "interval", p.Config.Pipeline.CrawlInterval)

	if p.Scheduler == nil {
		scheduler, err := gocron.NewScheduler()
		if err != nil {
			return fmt.Errorf("failed to create crawl scheduler: %w", err)
		}
		p.Scheduler = scheduler
	}

	runTimeout := time.Duration(p.Config.Crawler.RunTimeoutMinutes) * time.Minute

	_, err := p.Scheduler.NewJob(
		gocron.CronJob(
			p.Config.Pipeline.CrawlInterval,
			false,
		),
		gocron.NewTask(func() {
			if ctx.Err() != nil {
				p.Logger.Info("Context cancelled, stopping crawl schedule")
				return
			}

			p.Logger.Info("Running scheduled crawl")

			runCtx, cancel := context.WithTimeout(ctx, runTimeout)
			defer cancel()

			if err := p.RunOnce(runCtx); err != nil {
				p.Logger.Error("Scheduled crawl failed", "error", err)
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule crawl: %w", err)
	}

	p.Scheduler.Start()

	go func() {
		<-ctx.Done()
		p.Logger.Info("Stopping crawl scheduler")
		if err := p.Scheduler.Shutdown(); err != nil {
			p.Logger.Error("Failed to shut down crawl scheduler", "error", err)
		}
	}()

	return nil
}
