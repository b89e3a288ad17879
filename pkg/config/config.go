package config

import (
	"fmt"
	"log"
	"sync"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App struct {
		Env       string `env:"APP_ENV" env-default:"development"`
		Port      int    `env:"APP_PORT" env-default:"8080"`
		SentryUrl string `env:"SENTRY_URL"`
	}
	Postgres struct {
		Port    int    `env:"POSTGRES_PORT"`
		Host    string `env:"POSTGRES_HOST"`
		User    string `env:"POSTGRES_USER"`
		Pass    string `env:"POSTGRES_PASS"`
		Name    string `env:"POSTGRES_NAME"`
		SslMode string `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	}
	Telegram struct {
		User    int64  `env:"TELEGRAM_USER"`
		Token   string `env:"TELEGRAM_TOKEN"`
		Channel string `env:"TELEGRAM_CHANNEL"`
	}
	Twitter struct {
		User     string `env:"TWITTER_USER"`
		Pass     string `env:"TWITTER_PASS"`
		Email    string `env:"TWITTER_EMAIL"`
		Headless bool   `env:"TWITTER_HEADLESS" env-default:"true"`
	}
	Crawler struct {
		LookbackDays      int `env:"CRAWLER_LOOKBACK_DAYS" env-default:"7"`
		EmptyLimit        int `env:"CRAWLER_EMPTY_LIMIT" env-default:"3"`
		BaseScrollPx      int `env:"CRAWLER_BASE_SCROLL_PX" env-default:"800"`
		ScrollBackoffPx   int `env:"CRAWLER_SCROLL_BACKOFF_PX" env-default:"200"`
		MaxIterations     int `env:"CRAWLER_MAX_ITERATIONS" env-default:"200"`
		RunTimeoutMinutes int `env:"CRAWLER_RUN_TIMEOUT_MINUTES" env-default:"30"`
	}
	Hydrator struct {
		BaseURL        string `env:"HYDRATOR_BASE_URL" env-default:"https://api.vxtwitter.com/Twitter/status/"`
		Workers        int    `env:"HYDRATOR_WORKERS" env-default:"5"`
		TimeoutSeconds int    `env:"HYDRATOR_TIMEOUT_SECONDS" env-default:"15"`
		RequestsPerSec int    `env:"HYDRATOR_REQUESTS_PER_SEC" env-default:"4"`
	}
	Pipeline struct {
		CrawlInterval string `env:"PIPELINE_CRAWL_INTERVAL" env-default:"0 */6 * * *"`
	}
}

var (
	once sync.Once
	cfg  *Config
)

func New() (*Config, error) {
	once.Do(func() {
		cfg = &Config{}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			help, _ := cleanenv.GetDescription(cfg, nil)
			log.Fatalf("Failed to read configuration: %v\n%v", err, help)
		}
	})
	return cfg, nil
}

// GetDSN builds the Postgres connection string shared by pgxpool and goose.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("dbname=%s user=%s password=%s host=%s port=%d sslmode=%s",
		c.Postgres.Name, c.Postgres.User, c.Postgres.Pass, c.Postgres.Host, c.Postgres.Port, c.Postgres.SslMode,
	)
}
