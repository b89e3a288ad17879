package browser

import (
	"context"
	"errors"
	"time"
)

// ErrWaitTimeout is returned by the Wait* methods when the condition did not
// show up within the given timeout. Callers decide whether that is fatal.
var ErrWaitTimeout = errors.New("browser: wait timed out")

type Cookie struct {
	Name   string
	Value  string
	Domain string
}

// Element is a handle to a DOM node. Handles become stale after navigation;
// they are only valid within the extraction cycle that produced them.
type Element interface {
	// QuerySelector resolves the first descendant matching selector, or
	// (nil, nil) when there is none.
	QuerySelector(ctx context.Context, selector string) (Element, error)

	// GetAttribute returns the attribute value, or "" when absent.
	GetAttribute(ctx context.Context, name string) (string, error)
}

// Page abstracts one browser tab. The crawl logic only ever talks to this
// interface, never to a concrete automation library.
//
// Selectors are CSS by default; selectors starting with "//" are treated as
// XPath (needed for text-based button matching in the login flow).
type Page interface {
	Navigate(ctx context.Context, url string) error
	QuerySelectorAll(ctx context.Context, selector string) ([]Element, error)
	EvaluateScript(ctx context.Context, js string, out any) error
	ScrollBy(ctx context.Context, px int) error
	Fill(ctx context.Context, selector, value string) error
	Click(ctx context.Context, selector string) error
	WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error
	WaitForNetworkIdle(ctx context.Context, timeout time.Duration) error
	Cookies(ctx context.Context) ([]Cookie, error)
	Close() error
}

// Client owns a browser process and hands out pages. One page is shared by
// all accounts of a crawl run; pages must not be driven concurrently.
type Client interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}
