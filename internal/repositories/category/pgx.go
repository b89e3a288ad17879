package category

import (
	"context"

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
		logger: logger.WithComponent("CategoryRepo"),
	}
}

var _ Repository = (*Pgx)(nil)

func (p *Pgx) GetAccountCategoryPairs(ctx context.Context) ([]domain.AccountCategory, error) {
	query, args, err := repositories.SqBuilder.
		Select("twitter_account_id", "category_id").
		From("twitter_account_categories").
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := p.pg.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pairs []domain.AccountCategory
	for rows.Next() {
		var pair domain.AccountCategory
		if err := rows.Scan(&pair.AccountID, &pair.CategoryID); err != nil {
			return nil, err
		}
		pairs = append(pairs, pair)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return pairs, nil
}
