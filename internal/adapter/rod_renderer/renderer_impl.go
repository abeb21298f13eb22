package rod_renderer

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
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

// RodRenderer launches a browser through rod's launcher for every session.
type RodRenderer struct {
	cfg    Config
	logger *zap.Logger
}

func NewRodRenderer(cfg Config, logger *zap.Logger) repository.Renderer {
	return &RodRenderer{cfg: cfg, logger: logger}
}

func (r *RodRenderer) AcquireSession(ctx context.Context) (repository.Session, error) {
	l := launcher.New().
		Context(ctx).
		Headless(r.cfg.Headless).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		NoSandbox(true).
		Logger(io.Discard)
	if r.cfg.BrowserBin != "" {
		l = l.Bin(r.cfg.BrowserBin)
	}
	proxyURL := r.cfg.Proxies.Next()
	if proxyURL != "" {
		l = l.Proxy(proxyURL)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, eris.Wrapf(repository.ErrSessionUnavailable, "launch browser: %v", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, eris.Wrapf(repository.ErrSessionUnavailable, "connect browser: %v", err)
	}

	r.logger.Debug("browser session started", zap.Bool("proxied", proxyURL != ""))
	return &session{browser: browser, launcher: l}, nil
}

type session struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
}

func (s *session) OpenPage(ctx context.Context) (repository.Page, error) {
	rp, err := s.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, eris.Wrap(err, "open tab")
	}
	// Detach the tab from the caller's ctx; each call re-binds its own.
	rp = rp.Context(s.browser.GetContext())

	listenCtx, stopListening := context.WithCancel(s.browser.GetContext())
	p := &page{page: rp, stopListening: stopListening, crashed: make(chan struct{})}

	if err := (proto.InspectorEnable{}).Call(rp); err != nil {
		stopListening()
		_ = rp.Close()
		return nil, eris.Wrap(err, "enable inspector")
	}
	wait := rp.Context(listenCtx).EachEvent(func(e *proto.InspectorTargetCrashed) {
		p.markCrashed()
	})
	go wait()

	return p, nil
}

func (s *session) Close() error {
	err := s.browser.Close()
	s.launcher.Kill()
	s.launcher.Cleanup()
	if err != nil {
		return eris.Wrap(err, "close browser")
	}
	return nil
}

type page struct {
	page          *rod.Page
	stopListening context.CancelFunc

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

func (p *page) Configure(ctx context.Context, opts repository.PageOptions) error {
	rp := p.page.Context(ctx)
	err := rp.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             opts.ViewportWidth,
		Height:            opts.ViewportHeight,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		return eris.Wrap(err, "set viewport")
	}
	if err := rp.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: opts.UserAgent}); err != nil {
		return eris.Wrap(err, "set user agent")
	}
	return nil
}

func (p *page) Navigate(ctx context.Context, url string, opts repository.NavigateOptions) error {
	rp := p.page.Context(ctx)
	if opts.Timeout > 0 {
		rp = rp.Timeout(opts.Timeout)
		defer rp.CancelTimeout()
	}

	event := proto.PageLifecycleEventNameLoad
	if opts.WaitCondition == repository.WaitNetworkIdle {
		event = proto.PageLifecycleEventNameNetworkAlmostIdle
	}
	wait := rp.WaitNavigation(event)

	err := rp.Navigate(url)
	if err == nil {
		wait()
		err = rp.GetContext().Err()
	}
	return navigationError(ctx, url, err, p.isCrashed())
}

func (p *page) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	rp := p.page.Context(ctx).Timeout(timeout)
	defer rp.CancelTimeout()

	_, err := rp.Element(selector)
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
	rp := p.page.Context(ctx)
	html, err := rp.HTML()
	if err != nil {
		return nil, eris.Wrap(err, "read document")
	}
	info, err := rp.Info()
	if err != nil {
		return nil, eris.Wrap(err, "read page info")
	}
	return &entity.PageSnapshot{URL: info.URL, HTML: html}, nil
}

func (p *page) Close() error {
	p.stopListening()
	return p.page.Close()
}

func navigationError(ctx context.Context, url string, err error, crashed bool) error {
	var navErr *rod.NavigationError
	switch {
	case ctx.Err() != nil:
		return ctx.Err()
	case crashed:
		return eris.Wrapf(repository.ErrPageCrashed, "navigate to %s", url)
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return eris.Wrapf(repository.ErrNavigationTimeout, "navigate to %s", url)
	case errors.As(err, &navErr):
		return eris.Wrapf(repository.ErrNavigationFailed, "navigate to %s: %s", url, navErr.Reason)
	default:
		return eris.Wrapf(repository.ErrNavigationFailed, "navigate to %s: %v", url, err)
	}
}
