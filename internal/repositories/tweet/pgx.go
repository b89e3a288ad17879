package tweet

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orgball2608/twitter-parser-telegram-bot/internal/domain"
	"github.com/orgball2608/twitter-parser-telegram-bot/internal/repositories"
	"github.com/orgball2608/twitter-parser-telegram-bot/pkg/logger"
)

type Pgx struct {
	pg     *pgxpool.Pool
	logger logger.Logger
}

func NewPgx(pg *pgxpool.Pool, logger logger.Logger) *Pgx {
	return &Pgx{
		pg:     pg,
		logger: logger.WithComponent("TweetRepo"),
	}
}

var _ Repository = (*Pgx)(nil)

func (p *Pgx) GetAllTwitterIDs(ctx context.Context) ([]string, error) {
	query, args, err := repositories.SqBuilder.
		Select("twitter_id").
		From("tweets").
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := p.pg.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}

// InsertBatch inserts per account inside one transaction. A unique violation
// on twitter_id aborts the batch with ErrAlreadyExists so the caller can
// report the whole account as failed rather than half-persisted.
func (p *Pgx) InsertBatch(ctx context.Context, tweets []domain.Tweet) error {
	if len(tweets) == 0 {
		return nil
	}

	tx, err := p.pg.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	now := time.Now().UTC()
	for _, t := range tweets {
		query, args, err := repositories.SqBuilder.
			Insert("tweets").
			Columns("twitter_id", "account_id", "category_id", "text", "media_urls", "created_at", "inserted_at").
			Values(t.TwitterID, t.AccountID, t.CategoryID, t.Text, t.MediaURLs, t.CreatedAt, now).
			ToSql()
		if err != nil {
			return repositories.ErrBadQuery
		}

		if _, err := tx.Exec(ctx, query, args...); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return ErrAlreadyExists
			}
			return err
		}
	}

	return tx.Commit(ctx)
}
