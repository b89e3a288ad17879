package crawlerimpl

import (
	"strings"
	"testing"
	"time"
)

func TestNormalizeHandle(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"LinusTech", "linustech"},
		{"@Neovim", "neovim"},
		{"  @Vim_Tricks  ", "vim_tricks"},
		{"msc72m", "msc72m"},
	}

	for _, test := range tests {
		if got := NormalizeHandle(test.input); got != test.expected {
			t.Errorf("NormalizeHandle(%q) = %q, want %q", test.input, got, test.expected)
		}
	}
}

func TestBuildSearchURLs(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	urls := BuildSearchURLs([]string{"@LinusTech", "neovim"}, 7, now)

	if len(urls) != 2 {
		t.Fatalf("expected 2 urls, got %d", len(urls))
	}

	expectedFirst := "https://twitter.com/search?q=from:linustech%20-filter:replies%20-filter:retweets%20since:2024-03-08%20until:2024-03-15&src=typed_query&f=live"
	if urls[0] != expectedFirst {
		t.Errorf("first url mismatch:\n got %s\nwant %s", urls[0], expectedFirst)
	}

	if !strings.Contains(urls[1], "from:neovim") {
		t.Errorf("second url should target neovim, got %s", urls[1])
	}
}

func TestBuildSearchURLsPreservesInputOrder(t *testing.T) {
	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	handles := []string{"zzz", "aaa", "mmm"}
	urls := BuildSearchURLs(handles, 1, now)

	for i, handle := range handles {
		if !strings.Contains(urls[i], "from:"+handle) {
			t.Errorf("url %d should be for %s, got %s", i, handle, urls[i])
		}
	}
}

func TestBuildSearchURLsWindow(t *testing.T) {
	// The window must be computed in UTC even from a non-UTC clock.
	loc := time.FixedZone("UTC+9", 9*3600)
	now := time.Date(2024, 1, 1, 2, 0, 0, 0, loc) // 2023-12-31 17:00 UTC

	urls := BuildSearchURLs([]string{"user"}, 10, now)
	if !strings.Contains(urls[0], "since:2023-12-21") || !strings.Contains(urls[0], "until:2023-12-31") {
		t.Errorf("window not computed in UTC: %s", urls[0])
	}
}
