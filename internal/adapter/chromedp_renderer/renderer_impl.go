package chromedp_renderer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/inspector"
	cdppage "github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/user/catalog-crawler/internal/entity"
	"github.com/user/catalog-crawler/internal/proxy"
	"github.com/user/catalog-crawler/internal/repository"
)

type Config struct {
	Headless   bool
	BrowserBin string
	Proxies    *proxy.Rotator
}

// ChromedpRenderer starts one Chrome process per session.
type ChromedpRenderer struct {
	cfg    Config
	logger *zap.Logger
}

// NewChromedpRenderer creates a new renderer implementation using chromedp.
func NewChromedpRenderer(cfg Config, logger *zap.Logger) repository.Renderer {
	return &ChromedpRenderer{cfg: cfg, logger: logger}
}

// AcquireSession launches a browser. The browser lives until the session is
// closed or ctx ends.
func (r *ChromedpRenderer) AcquireSession(ctx context.Context) (repository.Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", r.cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	if r.cfg.BrowserBin != "" {
		opts = append(opts, chromedp.ExecPath(r.cfg.BrowserBin))
	}
	proxyURL := r.cfg.Proxies.Next()
	if proxyURL != "" {
		opts = append(opts, chromedp.ProxyServer(proxyURL))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	sugar := r.logger.Sugar()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(sugar.Debugf),
		chromedp.WithErrorf(sugar.Debugf),
	)

	// The first Run starts the browser process.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, eris.Wrapf(repository.ErrSessionUnavailable, "start chrome: %v", err)
	}

	r.logger.Debug("browser session started", zap.Bool("proxied", proxyURL != ""))
	return &session{
		browserCtx:  browserCtx,
		cancelAlloc: cancelAlloc,
		logger:      r.logger,
	}, nil
}

type session struct {
	browserCtx  context.Context
	cancelAlloc context.CancelFunc
	logger      *zap.Logger
}

func (s *session) OpenPage(ctx context.Context) (repository.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tabCtx, cancel := chromedp.NewContext(s.browserCtx)
	p := &page{ctx: tabCtx, cancel: cancel, crashed: make(chan struct{})}

	chromedp.ListenTarget(tabCtx, func(ev interface{}) {
		if _, ok := ev.(*inspector.EventTargetCrashed); ok {
			p.markCrashed()
		}
	})

	runCtx, done := p.bind(ctx, 0)
	defer done()
	if err := chromedp.Run(runCtx, inspector.Enable()); err != nil {
		cancel()
		return nil, eris.Wrap(err, "open tab")
	}
	return p, nil
}

func (s *session) Close() error {
	err := chromedp.Cancel(s.browserCtx)
	s.cancelAlloc()
	if err != nil && !errors.Is(err, context.Canceled) {
		return eris.Wrap(err, "close browser")
	}
	return nil
}

type page struct {
	ctx    context.Context
	cancel context.CancelFunc

	crashOnce sync.Once
	crashed   chan struct{}
}

func (p *page) markCrashed() {
	p.crashOnce.Do(func() { close(p.crashed) })
}

func (p *page) isCrashed() bool {
	select {
	case <-p.crashed:
		return true
	default:
		return false
	}
}

// bind derives a context for one chromedp.Run on this tab that also ends
// when the caller's ctx does. Cancelling it does not close the tab.
func (p *page) bind(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithCancel(p.ctx)
	if timeout > 0 {
		var cancelTimeout context.CancelFunc
		runCtx, cancelTimeout = context.WithTimeout(runCtx, timeout)
		prev := cancel
		cancel = func() { cancelTimeout(); prev() }
	}
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

func (p *page) Configure(ctx context.Context, opts repository.PageOptions) error {
	runCtx, done := p.bind(ctx, 0)
	defer done()
	return chromedp.Run(runCtx,
		chromedp.EmulateViewport(int64(opts.ViewportWidth), int64(opts.ViewportHeight)),
		emulation.SetUserAgentOverride(opts.UserAgent),
	)
}

func (p *page) Navigate(ctx context.Context, url string, opts repository.NavigateOptions) error {
	runCtx, done := p.bind(ctx, opts.Timeout)
	defer done()

	idle := make(chan struct{})
	var (
		once    sync.Once
		started bool
	)
	listenCtx, stopListening := context.WithCancel(runCtx)
	defer stopListening()
	// Lifecycle events before "init" belong to the previous document.
	chromedp.ListenTarget(listenCtx, func(ev interface{}) {
		e, ok := ev.(*cdppage.EventLifecycleEvent)
		if !ok {
			return
		}
		switch e.Name {
		case "init":
			started = true
		case "networkAlmostIdle":
			if started {
				once.Do(func() { close(idle) })
			}
		}
	})

	err := chromedp.Run(runCtx,
		cdppage.SetLifecycleEventsEnabled(true),
		chromedp.Navigate(url),
	)
	if err == nil && opts.WaitCondition == repository.WaitNetworkIdle {
		select {
		case <-idle:
		case <-p.crashed:
		case <-runCtx.Done():
			err = runCtx.Err()
		}
	}
	return navigationError(ctx, url, err, p.isCrashed())
}

func (p *page) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	runCtx, done := p.bind(ctx, timeout)
	defer done()

	err := chromedp.Run(runCtx, chromedp.WaitReady(selector, chromedp.ByQuery))
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	case p.isCrashed():
		return eris.Wrapf(repository.ErrPageCrashed, "wait for %q", selector)
	case errors.Is(err, context.DeadlineExceeded):
		return eris.Wrapf(repository.ErrSelectorTimeout, "wait for %q", selector)
	default:
		return eris.Wrapf(err, "wait for %q", selector)
	}
}

func (p *page) Snapshot(ctx context.Context) (*entity.PageSnapshot, error) {
	if p.isCrashed() {
		return nil, repository.ErrPageCrashed
	}
	runCtx, done := p.bind(ctx, 0)
	defer done()

	var location, html string
	err := chromedp.Run(runCtx,
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, eris.Wrap(err, "read document")
	}
	return &entity.PageSnapshot{URL: location, HTML: html}, nil
}

// Close closes the tab.
func (p *page) Close() error {
	p.cancel()
	return nil
}

// navigationError maps a chromedp navigation error onto the repository
// sentinels. The caller's own cancellation is returned untouched.
func navigationError(ctx context.Context, url string, err error, crashed bool) error {
	switch {
	case ctx.Err() != nil:
		return ctx.Err()
	case crashed:
		return eris.Wrapf(repository.ErrPageCrashed, "navigate to %s", url)
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return eris.Wrapf(repository.ErrNavigationTimeout, "navigate to %s", url)
	default:
		return eris.Wrapf(repository.ErrNavigationFailed, "navigate to %s: %v", url, err)
	}
}
