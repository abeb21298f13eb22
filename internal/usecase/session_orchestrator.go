package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/user/catalog-crawler/internal/entity"
	"github.com/user/catalog-crawler/internal/repository"
	"github.com/user/catalog-crawler/pkg/metrics"
)

type stepKind int

const (
	// stepNext hands over to the following step.
	stepNext stepKind = iota
	// stepEmpty ends the target with zero listings without counting as a failure.
	stepEmpty
	// stepSoftFailure ends the target with zero listings; the run goes on.
	stepSoftFailure
	// stepFatal stops the run; only the caller's context ending gets here.
	stepFatal
)

// stepResult is what every per-target step reports.
type stepResult struct {
	kind   stepKind
	reason string // metrics label for soft failures
	err    error
}

func next() stepResult { return stepResult{kind: stepNext} }

func classifyStepError(ctx context.Context, err error) stepResult {
	if ctx.Err() != nil {
		return stepResult{kind: stepFatal, reason: "cancelled", err: ctx.Err()}
	}
	reason := "page"
	switch {
	case errors.Is(err, repository.ErrNavigationTimeout):
		reason = "timeout"
	case errors.Is(err, repository.ErrNavigationFailed):
		reason = "navigation"
	case errors.Is(err, repository.ErrPageCrashed):
		reason = "crash"
	}
	return stepResult{kind: stepSoftFailure, reason: reason, err: err}
}

// OrchestratorConfig bounds the browser work done per category target.
type OrchestratorConfig struct {
	Page              repository.PageOptions
	NavigationTimeout time.Duration
	SelectorTimeout   time.Duration
}

// SessionOrchestrator walks a site's category targets inside one browser
// session, one page at a time.
type SessionOrchestrator struct {
	cfg    OrchestratorConfig
	logger *zap.Logger
}

func NewSessionOrchestrator(cfg OrchestratorConfig, logger *zap.Logger) *SessionOrchestrator {
	return &SessionOrchestrator{cfg: cfg, logger: logger}
}

// Run crawls site.Targets in order and returns every listing found. A target
// that fails contributes nothing and is only logged. Run stops early only if
// ctx ends.
func (o *SessionOrchestrator) Run(ctx context.Context, session repository.Session, site entity.SiteConfig) []entity.RawListing {
	var all []entity.RawListing
	for _, target := range site.Targets {
		listings, res := o.crawlTarget(ctx, session, site, target)

		switch res.kind {
		case stepEmpty:
			o.logger.Info("no listings found", zap.String("site", site.Name), zap.String("url", target.URL))
		case stepSoftFailure:
			metrics.TargetFailuresTotal.WithLabelValues(site.Name, res.reason).Inc()
			o.logger.Warn("category target failed, continuing",
				zap.String("site", site.Name),
				zap.String("url", target.URL),
				zap.String("reason", res.reason),
				zap.Error(res.err),
			)
		case stepFatal:
			o.logger.Error("stopping crawl", zap.String("site", site.Name), zap.Error(res.err))
			return all
		}

		if len(listings) > 0 {
			metrics.ListingsExtracted.WithLabelValues(site.Name).Add(float64(len(listings)))
			all = append(all, listings...)
		}
	}
	return all
}

// crawlTarget runs open -> configure -> navigate -> wait -> snapshot -> extract
// for one target. The page is closed on every path.
func (o *SessionOrchestrator) crawlTarget(ctx context.Context, session repository.Session, site entity.SiteConfig, target entity.CategoryTarget) ([]entity.RawListing, stepResult) {
	o.logger.Debug("crawling category", zap.String("site", site.Name), zap.String("url", target.URL))

	page, err := session.OpenPage(ctx)
	if err != nil {
		return nil, classifyStepError(ctx, eris.Wrap(err, "open page"))
	}
	defer func() {
		if err := page.Close(); err != nil {
			o.logger.Debug("failed to close page", zap.String("url", target.URL), zap.Error(err))
		}
	}()

	wait := o.cfg.SelectorTimeout
	if target.MaxWait > 0 {
		wait = target.MaxWait
	}

	steps := []func() stepResult{
		func() stepResult {
			if err := page.Configure(ctx, o.cfg.Page); err != nil {
				return classifyStepError(ctx, eris.Wrap(err, "configure page"))
			}
			return next()
		},
		func() stepResult {
			err := page.Navigate(ctx, target.URL, repository.NavigateOptions{
				Timeout:       o.cfg.NavigationTimeout,
				WaitCondition: repository.WaitNetworkIdle,
			})
			if err != nil {
				return classifyStepError(ctx, err)
			}
			return next()
		},
		func() stepResult {
			err := page.WaitForSelector(ctx, site.Selectors.Listing, wait)
			switch {
			case err == nil:
				return next()
			case errors.Is(err, repository.ErrSelectorTimeout) && ctx.Err() == nil:
				return stepResult{kind: stepEmpty}
			default:
				return classifyStepError(ctx, err)
			}
		},
	}
	for _, step := range steps {
		if res := step(); res.kind != stepNext {
			return nil, res
		}
	}

	snapshot, err := page.Snapshot(ctx)
	if err != nil {
		res := classifyStepError(ctx, eris.Wrap(err, "snapshot page"))
		if res.kind == stepSoftFailure && res.reason == "page" {
			res.reason = "snapshot"
		}
		return nil, res
	}

	listings := ExtractListings(snapshot, site)
	o.logger.Debug("category extracted",
		zap.String("site", site.Name),
		zap.String("url", target.URL),
		zap.Int("listings", len(listings)),
	)
	return listings, next()
}
