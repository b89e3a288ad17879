package pipelineimpl

import (
	"context"
	"fmt"
	"time"

	"github.com/orgball2608/twitter-parser-telegram-bot/internal/domain"
)

// nativeDateLayout is the timestamp format of the hydration API, e.g.
// "Wed Oct 10 20:19:24 +0000 2018".
const nativeDateLayout = "Mon Jan 2 15:04:05 -0700 2006"

func parseNativeDate(value string) (time.Time, error) {
	parsed, err := time.Parse(nativeDateLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	return parsed.UTC(), nil
}

// persistAccount validates and stores one account's hydrated tweets inside a
// single transaction. Posts failing validation (no category mapping, bad
// date) are discarded and recorded; a transaction failure fails the whole
// account batch and is returned to the caller.
func (p *PipelineImpl) persistAccount(ctx context.Context, handle string, mapper *CategoryMapper, tweets []domain.HydratedTweet) (domain.PersistResult, error) {
	result := domain.PersistResult{}

	rows := make([]domain.Tweet, 0, len(tweets))
	for _, t := range tweets {
		author := t.AuthorHandle
		if author == "" {
			author = handle
		}

		mapping, ok := mapper.Resolve(author)
		if !ok {
			p.Logger.Warn("No category mapping for account, discarding tweet",
				"handle", author, "tweet_id", t.TweetID)
			result.SkippedIDs = append(result.SkippedIDs, t.TweetID)
			continue
		}

		createdAt, err := parseNativeDate(t.Date)
		if err != nil {
			p.Logger.Warn("Unparsable tweet date, discarding tweet",
				"tweet_id", t.TweetID, "date", t.Date, "error", err)
			result.SkippedIDs = append(result.SkippedIDs, t.TweetID)
			continue
		}

		rows = append(rows, domain.Tweet{
			TwitterID:  t.TweetID,
			AccountID:  mapping.AccountID,
			CategoryID: mapping.CategoryID,
			Text:       t.Text,
			MediaURLs:  t.MediaURLs,
			CreatedAt:  createdAt,
		})
	}

	if len(rows) == 0 {
		return result, nil
	}

	if err := p.TweetRepo.InsertBatch(ctx, rows); err != nil {
		return result, fmt.Errorf("inserting batch for %s: %w", handle, err)
	}
	result.InsertedCount = len(rows)

	return result, nil
}
