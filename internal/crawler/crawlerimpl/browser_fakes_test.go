package crawlerimpl

import (
	"context"
	"errors"
	"time"

	"github.com/orgball2608/twitter-parser-telegram-bot/internal/browser"
	"github.com/orgball2608/twitter-parser-telegram-bot/pkg/logger"
)

var errNodeQuery = errors.New("node query failed")

func testLogger() logger.Logger {
	return logger.New(logger.Opts{Env: "production"})
}

// --- Fake DOM ---

type fakeElement struct {
	attrs    map[string]string
	children map[string]*fakeElement
}

func (e *fakeElement) QuerySelector(_ context.Context, selector string) (browser.Element, error) {
	child, ok := e.children[selector]
	if !ok {
		return nil, nil
	}
	return child, nil
}

func (e *fakeElement) GetAttribute(_ context.Context, name string) (string, error) {
	return e.attrs[name], nil
}

func tweetCard(id string, ts time.Time) *fakeElement {
	return &fakeElement{
		children: map[string]*fakeElement{
			selectorStatusLink: {attrs: map[string]string{"href": "/someone/status/" + id}},
			selectorTimestamp:  {attrs: map[string]string{"datetime": ts.UTC().Format("2006-01-02T15:04:05.000Z")}},
		},
	}
}

// brokenCard has neither a status link nor a timestamp.
func brokenCard() *fakeElement {
	return &fakeElement{children: map[string]*fakeElement{}}
}

// --- Fake page ---

// fakePage simulates an infinite-scroll timeline: batches[i] holds the cards
// that become visible after i scrolls, and earlier cards stay in the DOM.
type fakePage struct {
	batches [][]*fakeElement
	scrolls int

	// extractErrsLeft makes the next N tweet-card queries fail.
	extractErrsLeft int

	present  map[string]bool
	queryErr map[string]error
	waitErr  map[string]error
	cookies  []browser.Cookie

	navigated   []string
	navAttempts int
	navErr      error
	filled      map[string]string
	clicks      []string
}

func newFakePage() *fakePage {
	return &fakePage{
		present:  make(map[string]bool),
		queryErr: make(map[string]error),
		waitErr:  make(map[string]error),
		filled:   make(map[string]string),
	}
}

var _ browser.Page = (*fakePage)(nil)

func (p *fakePage) Navigate(_ context.Context, url string) error {
	p.navAttempts++
	if p.navErr != nil {
		return p.navErr
	}
	p.navigated = append(p.navigated, url)
	return nil
}

func (p *fakePage) QuerySelectorAll(_ context.Context, selector string) ([]browser.Element, error) {
	if selector == selectorTweetCard {
		if p.extractErrsLeft > 0 {
			p.extractErrsLeft--
			return nil, errNodeQuery
		}
		var visible []browser.Element
		for i, batch := range p.batches {
			if i > p.scrolls {
				break
			}
			for _, card := range batch {
				visible = append(visible, card)
			}
		}
		return visible, nil
	}

	if err := p.queryErr[selector]; err != nil {
		return nil, err
	}
	if p.present[selector] {
		return []browser.Element{&fakeElement{}}, nil
	}
	return nil, nil
}

func (p *fakePage) EvaluateScript(_ context.Context, _ string, _ any) error { return nil }

func (p *fakePage) ScrollBy(_ context.Context, _ int) error {
	p.scrolls++
	return nil
}

func (p *fakePage) Fill(_ context.Context, selector, value string) error {
	p.filled[selector] = value
	return nil
}

func (p *fakePage) Click(_ context.Context, selector string) error {
	p.clicks = append(p.clicks, selector)
	return nil
}

func (p *fakePage) WaitForSelector(_ context.Context, selector string, _ time.Duration) error {
	return p.waitErr[selector]
}

func (p *fakePage) WaitForNetworkIdle(_ context.Context, _ time.Duration) error { return nil }

func (p *fakePage) Cookies(_ context.Context) ([]browser.Cookie, error) {
	return p.cookies, nil
}

func (p *fakePage) Close() error { return nil }
