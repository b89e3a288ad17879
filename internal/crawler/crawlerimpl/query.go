package crawlerimpl

import (
	"fmt"
	"strings"
	"time"
)

const searchEndpoint = "https://twitter.com/search?q=%s&src=typed_query&f=live"

// NormalizeHandle strips a leading @ and lowercases the handle. Handles are
// case-insensitive upstream and the directory stores them lowercased.
func NormalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(handle), "@")))
}

// BuildSearchURLs produces one live-search URL per handle, in input order.
// The query restricts results to original posts from the handle within the
// lookback window ending today (UTC).
func BuildSearchURLs(handles []string, lookbackDays int, now time.Time) []string {
	until := now.UTC()
	since := until.AddDate(0, 0, -lookbackDays)

	urls := make([]string, 0, len(handles))
	for _, handle := range handles {
		parts := []string{
			"from:" + NormalizeHandle(handle),
			"-filter:replies",
			"-filter:retweets",
			"since:" + since.Format("2006-01-02"),
			"until:" + until.Format("2006-01-02"),
		}
		query := strings.Join(parts, "%20")
		urls = append(urls, fmt.Sprintf(searchEndpoint, query))
	}
	return urls
}
