package pgx

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orgball2608/twitter-parser-telegram-bot/pkg/config"
	apperrors "github.com/orgball2608/twitter-parser-telegram-bot/pkg/errors"
	"github.com/orgball2608/twitter-parser-telegram-bot/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In
	LC fx.Lifecycle

	Logger logger.Logger
	Config *config.Config
}

func New(opts Opts) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(context.Background(), opts.Config.GetDSN())
	if err != nil {
		return nil, apperrors.Wrap(err, "creating postgres pool")
	}

	opts.LC.Append(
		fx.Hook{
			OnStart: func(ctx context.Context) error {
				if err := pool.Ping(ctx); err != nil {
					return apperrors.WrapWithCode(err, "DB_UNREACHABLE", "pinging postgres")
				}

				opts.Logger.Info("Connected to postgres")
				return nil
			},
			OnStop: func(ctx context.Context) error {
				pool.Close()
				return nil
			},
		},
	)

	return pool, nil
}
