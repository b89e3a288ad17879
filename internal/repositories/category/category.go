package category

import (
	"context"

	"github.com/orgball2608/twitter-parser-telegram-bot/internal/domain"
)

type Repository interface {
	// GetAccountCategoryPairs returns the account-category join rows used to
	// build the per-run category mapping.
	GetAccountCategoryPairs(ctx context.Context) ([]domain.AccountCategory, error)
}
