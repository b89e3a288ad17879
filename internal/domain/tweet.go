package domain

import "time"

// TweetStub is the minimal reference extracted from a timeline card. It only
// lives between extraction and hydration.
type TweetStub struct {
	ID   string
	Date time.Time
}

// HydratedTweet is the full content fetched from the hydration API. Date is
// kept in the API's native format and parsed to UTC at persist time.
type HydratedTweet struct {
	TweetID      string
	AuthorHandle string
	Text         string
	MediaURLs    []string
	Date         string
}

// Tweet is the storage row shape.
type Tweet struct {
	ID         int
	TwitterID  string
	AccountID  int
	CategoryID int
	Text       string
	MediaURLs  []string
	CreatedAt  time.Time
}

// PersistResult summarizes one account's persist batch.
type PersistResult struct {
	InsertedCount int
	SkippedIDs    []string
}
