package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	_ "github.com/lib/pq"
	"github.com/orgball2608/twitter-parser-telegram-bot/internal/browser"
	"github.com/orgball2608/twitter-parser-telegram-bot/internal/browser/chromedpimpl"
	"github.com/orgball2608/twitter-parser-telegram-bot/internal/crawler"
	"github.com/orgball2608/twitter-parser-telegram-bot/internal/crawler/crawlerimpl"
	"github.com/orgball2608/twitter-parser-telegram-bot/internal/hydrator"
	"github.com/orgball2608/twitter-parser-telegram-bot/internal/hydrator/hydratorimpl"
	_ "github.com/orgball2608/twitter-parser-telegram-bot/internal/migrations"
	"github.com/orgball2608/twitter-parser-telegram-bot/internal/pgx"
	"github.com/orgball2608/twitter-parser-telegram-bot/internal/pipeline"
	"github.com/orgball2608/twitter-parser-telegram-bot/internal/pipeline/pipelineimpl"
	repositories "github.com/orgball2608/twitter-parser-telegram-bot/internal/repositories/fx"
	"github.com/orgball2608/twitter-parser-telegram-bot/internal/telegram"
	"github.com/orgball2608/twitter-parser-telegram-bot/internal/telegram/telegramimpl"
	"github.com/orgball2608/twitter-parser-telegram-bot/pkg/config"
	"github.com/orgball2608/twitter-parser-telegram-bot/pkg/logger"
	"github.com/pressly/goose/v3"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(
		config.New,
		logger.FxOption,
		pgx.New,
	),
	fx.Provide(
		fx.Annotate(
			chromedpimpl.New,
			fx.As(new(browser.Client)),
		),
		fx.Annotate(
			telegramimpl.New,
			fx.As(new(telegram.Client)),
		),
		fx.Annotate(
			crawlerimpl.New,
			fx.As(new(crawler.Client)),
		),
		fx.Annotate(
			hydratorimpl.New,
			fx.As(new(hydrator.Client)),
		),
		fx.Annotate(
			pipelineimpl.New,
			fx.As(new(pipeline.Client)),
		),
	),
	repositories.Module,
	fx.Invoke(runMigrations),
	fx.Invoke(run),
)

func runMigrations(c *config.Config) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	db, err := sql.Open("postgres", c.GetDSN())
	if err != nil {
		return err
	}
	defer db.Close()

	return goose.Up(db, "internal/migrations")
}

func run(lc fx.Lifecycle, log logger.Logger, cfg *config.Config, tgClient telegram.Client,
	pipelineClient pipeline.Client) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {

			go startHttpServer(log, cfg)

			ctx := context.Background()
			if err := pipelineClient.ScheduleCrawl(ctx); err != nil {
				log.Error("Schedule crawl error", "Error", err)
				tgClient.SendMessageToUser("Schedule crawl error: " + err.Error())
			}

			return nil
		},
	})
}

func startHttpServer(log logger.Logger, cfg *config.Config) {
	http.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		healthCheckHandler(w, r, log)
	})

	log.Info(fmt.Sprintf("Starting server on :%d", cfg.App.Port))

	if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.App.Port), nil); err != nil {
		log.Error("Server failed to start: %v", err)
	}
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request, logger logger.Logger) {
	logger.Info("Health check request received", "Method", r.Method, "URL", r.URL.String())
	w.Header().Set("Content-Type", "text/plain")
	if _, err := w.Write([]byte("ok")); err != nil {
		logger.Error("Failed to write response", "Error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
