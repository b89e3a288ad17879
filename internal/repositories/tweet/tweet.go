package tweet

import (
	"context"
	"errors"

	"github.com/orgball2608/twitter-parser-telegram-bot/internal/domain"
)

var ErrAlreadyExists = errors.New("tweet already exists")

type Repository interface {
	// GetAllTwitterIDs returns every persisted external id. Fetched once at
	// the start of a crawl run to seed the dedup tracker.
	GetAllTwitterIDs(ctx context.Context) ([]string, error)

	// InsertBatch stores all tweets inside a single transaction: either the
	// whole batch lands or none of it does.
	InsertBatch(ctx context.Context, tweets []domain.Tweet) error
}
