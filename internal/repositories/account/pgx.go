package account

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orgball2608/twitter-parser-telegram-bot/internal/domain"
	"github.com/orgball2608/twitter-parser-telegram-bot/internal/repositories"
	"github.com/orgball2608/twitter-parser-telegram-bot/pkg/logger"

	sq "github.com/Masterminds/squirrel"
)

type Pgx struct {
	pg     *pgxpool.Pool
	logger logger.Logger
}

func NewPgx(pg *pgxpool.Pool, logger logger.Logger) *Pgx {
	return &Pgx{
		pg:     pg,
		logger: logger.WithComponent("AccountRepo"),
	}
}

var _ Repository = (*Pgx)(nil)

func (p *Pgx) GetActiveUsernames(ctx context.Context) ([]string, error) {
	query, args, err := repositories.SqBuilder.
		Select("username").
		From("twitter_accounts").
		Where(sq.Eq{"is_active": true}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := p.pg.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var usernames []string
	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			return nil, err
		}
		usernames = append(usernames, username)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return usernames, nil
}

func (p *Pgx) GetIDUsernamePairs(ctx context.Context) ([]domain.TrackedAccount, error) {
	query, args, err := repositories.SqBuilder.
		Select("id", "username").
		From("twitter_accounts").
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := p.pg.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.TrackedAccount
	for rows.Next() {
		var acct domain.TrackedAccount
		if err := rows.Scan(&acct.ID, &acct.Username); err != nil {
			return nil, err
		}
		accounts = append(accounts, acct)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return accounts, nil
}

func (p *Pgx) UpdateLastFetched(ctx context.Context, username string, fetchedAt time.Time) error {
	query, args, err := repositories.SqBuilder.
		Update("twitter_accounts").
		Set("last_fetched", fetchedAt).
		Where(sq.Eq{"username": username}).
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	result, err := p.pg.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
