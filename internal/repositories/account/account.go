package account

import (
	"context"
	"errors"
	"time"

	"github.com/orgball2608/twitter-parser-telegram-bot/internal/domain"
)

var ErrNotFound = errors.New("tracked account not found")

type Repository interface {
	// GetActiveUsernames returns the handles the crawl run should visit.
	GetActiveUsernames(ctx context.Context) ([]string, error)

	// GetIDUsernamePairs returns (id, username) for every tracked account,
	// used to build the category mapping.
	GetIDUsernamePairs(ctx context.Context) ([]domain.TrackedAccount, error)

	// UpdateLastFetched advances the account's last-fetched marker after a
	// successful persist.
	UpdateLastFetched(ctx context.Context, username string, fetchedAt time.Time) error
}
