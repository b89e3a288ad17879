package chromedpimpl

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
	"github.com/orgball2608/twitter-parser-telegram-bot/internal/browser"
	"github.com/orgball2608/twitter-parser-telegram-bot/pkg/config"
	"github.com/orgball2608/twitter-parser-telegram-bot/pkg/logger"
	"go.uber.org/fx"
)

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/118.0.0.0 Safari/537.36"

	// networkQuietWindow is how long the network must stay silent before we
	// consider it idle.
	networkQuietWindow = 500 * time.Millisecond

	// interactTimeout bounds the implicit node wait inside Fill and Click.
	// Without it a missing element would stall until the run deadline.
	interactTimeout = 15 * time.Second
)

type Opts struct {
	fx.In
	LC fx.Lifecycle

	Config *config.Config
	Logger logger.Logger
}

type Chromedp struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	logger      logger.Logger
}

var _ browser.Client = (*Chromedp)(nil)

func New(opts Opts) *Chromedp {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Config.Twitter.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-features", "IsolateOrigins,site-per-process"),
		chromedp.Flag("disable-site-isolation-trials", true),
		chromedp.IgnoreCertErrors,
		chromedp.UserAgent(userAgent),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)

	c := &Chromedp{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		logger:      opts.Logger.WithComponent("Browser"),
	}

	opts.LC.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return c.Close()
		},
	})

	return c
}

func (c *Chromedp) NewPage(ctx context.Context) (browser.Page, error) {
	pageCtx, cancel := chromedp.NewContext(c.allocCtx)

	// Starts the browser and enables network events for the idle detector.
	if err := chromedp.Run(pageCtx, network.Enable()); err != nil {
		cancel()
		return nil, err
	}

	return &page{ctx: pageCtx, cancel: cancel, logger: c.logger}, nil
}

func (c *Chromedp) Close() error {
	c.allocCancel()
	return nil
}

type page struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger logger.Logger
}

var _ browser.Page = (*page)(nil)

// run executes chromedp actions against the page, bounded by timeout when
// non-zero and by the caller's context either way.
func (p *page) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx := p.ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(runCtx, timeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() {
		done <- chromedp.Run(runCtx, actions...)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func queryOption(selector string) chromedp.QueryOption {
	if strings.HasPrefix(selector, "//") {
		return chromedp.BySearch
	}
	return chromedp.ByQuery
}

func (p *page) Navigate(ctx context.Context, url string) error {
	return p.run(ctx, 0, chromedp.Navigate(url))
}

func (p *page) QuerySelectorAll(ctx context.Context, selector string) ([]browser.Element, error) {
	var nodes []*cdp.Node
	err := p.run(ctx, 0, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)))
	if err != nil {
		return nil, err
	}

	elements := make([]browser.Element, 0, len(nodes))
	for _, node := range nodes {
		elements = append(elements, &element{page: p, node: node})
	}
	return elements, nil
}

func (p *page) EvaluateScript(ctx context.Context, js string, out any) error {
	if out == nil {
		// chromedp requires a non-nil result target for expressions that
		// return a value, so discard into a raw message.
		var discard any
		return p.run(ctx, 0, chromedp.Evaluate(js, &discard))
	}
	return p.run(ctx, 0, chromedp.Evaluate(js, out))
}

func (p *page) ScrollBy(ctx context.Context, px int) error {
	var discard any
	return p.run(ctx, 0, chromedp.Evaluate(
		"window.scrollBy(0, "+strconv.Itoa(px)+")", &discard))
}

func (p *page) Fill(ctx context.Context, selector, value string) error {
	opt := queryOption(selector)
	return p.run(ctx, interactTimeout,
		chromedp.WaitVisible(selector, opt),
		chromedp.Clear(selector, opt),
		chromedp.SendKeys(selector, value, opt),
	)
}

func (p *page) Click(ctx context.Context, selector string) error {
	return p.run(ctx, interactTimeout, chromedp.Click(selector, queryOption(selector)))
}

func (p *page) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	err := p.run(ctx, timeout, chromedp.WaitReady(selector, queryOption(selector)))
	if errors.Is(err, context.DeadlineExceeded) {
		return browser.ErrWaitTimeout
	}
	return err
}

func (p *page) WaitForNetworkIdle(ctx context.Context, timeout time.Duration) error {
	activity := make(chan struct{}, 64)

	listenCtx, stopListening := context.WithCancel(p.ctx)
	defer stopListening()

	chromedp.ListenTarget(listenCtx, func(ev interface{}) {
		switch ev.(type) {
		case *network.EventRequestWillBeSent, *network.EventLoadingFinished, *network.EventLoadingFailed:
			select {
			case activity <- struct{}{}:
			default:
			}
		}
	})

	quiet := time.NewTimer(networkQuietWindow)
	defer quiet.Stop()
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		select {
		case <-activity:
			if !quiet.Stop() {
				select {
				case <-quiet.C:
				default:
				}
			}
			quiet.Reset(networkQuietWindow)
		case <-quiet.C:
			return nil
		case <-deadline.C:
			return browser.ErrWaitTimeout
		case <-ctx.Done():
			return ctx.Err()
		case <-p.ctx.Done():
			return p.ctx.Err()
		}
	}
}

func (p *page) Cookies(ctx context.Context) ([]browser.Cookie, error) {
	var cookies []browser.Cookie
	err := p.run(ctx, 0, chromedp.ActionFunc(func(actionCtx context.Context) error {
		raw, err := storage.GetCookies().Do(actionCtx)
		if err != nil {
			return err
		}
		for _, c := range raw {
			cookies = append(cookies, browser.Cookie{
				Name:   c.Name,
				Value:  c.Value,
				Domain: c.Domain,
			})
		}
		return nil
	}))
	if err != nil {
		return nil, err
	}
	return cookies, nil
}

func (p *page) Close() error {
	p.cancel()
	return nil
}

type element struct {
	page *page
	node *cdp.Node
}

var _ browser.Element = (*element)(nil)

func (e *element) QuerySelector(ctx context.Context, selector string) (browser.Element, error) {
	var nodes []*cdp.Node
	err := e.page.run(ctx, 0, chromedp.Nodes(selector, &nodes,
		chromedp.ByQueryAll, chromedp.FromNode(e.node), chromedp.AtLeast(0)))
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, nil
	}
	return &element{page: e.page, node: nodes[0]}, nil
}

func (e *element) GetAttribute(_ context.Context, name string) (string, error) {
	return e.node.AttributeValue(name), nil
}
