package usecase

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/user/catalog-crawler/internal/entity"
	"github.com/user/catalog-crawler/internal/repository"
	"github.com/user/catalog-crawler/pkg/metrics"
)

// Scraper runs the crawl-and-reconcile engine for one website.
type Scraper interface {
	Scrape(ctx context.Context, websiteID string, site entity.SiteConfig) entity.ScrapeOutcome
}

// ScrapeCoordinator owns one browser session per Scrape call.
type ScrapeCoordinator struct {
	renderer     repository.Renderer
	orchestrator *SessionOrchestrator
	reconciler   *Reconciler
	logger       *zap.Logger
}

func NewScrapeCoordinator(
	renderer repository.Renderer,
	orchestrator *SessionOrchestrator,
	reconciler *Reconciler,
	logger *zap.Logger,
) *ScrapeCoordinator {
	return &ScrapeCoordinator{
		renderer:     renderer,
		orchestrator: orchestrator,
		reconciler:   reconciler,
		logger:       logger,
	}
}

// Scrape crawls site and reconciles the listings into the catalog. Only a
// failure to acquire a browser session, or ctx ending before the crawl is
// done, produces a failed outcome; everything else is absorbed into lower
// counts.
func (c *ScrapeCoordinator) Scrape(ctx context.Context, websiteID string, site entity.SiteConfig) (outcome entity.ScrapeOutcome) {
	start := time.Now()
	logger := c.logger.With(zap.String("site", site.Name), zap.String("website_id", websiteID))
	logger.Info("starting scrape", zap.Int("targets", len(site.Targets)))

	defer func() {
		metrics.ScrapeRunsTotal.WithLabelValues(site.Name, string(outcome.Status)).Inc()
		metrics.ScrapeDuration.WithLabelValues(site.Name).Observe(time.Since(start).Seconds())
	}()

	session, err := c.renderer.AcquireSession(ctx)
	if err != nil {
		err = eris.Wrapf(err, "scrape %s", site.Name)
		logger.Error("could not acquire browser session", zap.Error(err))
		return entity.FailedOutcome(err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Warn("failed to close browser session", zap.Error(err))
		}
	}()

	raw := c.orchestrator.Run(ctx, session, site)
	if err := ctx.Err(); err != nil {
		err = eris.Wrapf(err, "scrape %s interrupted", site.Name)
		logger.Error("scrape interrupted", zap.Int("raw_listings", len(raw)), zap.Error(err))
		return entity.FailedOutcome(err)
	}

	listings, skipped := DedupeListings(site.BaseURL, raw)
	if skipped > 0 {
		logger.Warn("dropped listings with unresolvable urls", zap.Int("count", skipped))
	}

	updated := c.reconciler.Reconcile(ctx, websiteID, listings)

	outcome = entity.ScrapeOutcome{
		ItemsScraped: len(listings),
		ItemsUpdated: updated,
		Status:       entity.ScrapeStatusSuccess,
	}
	logger.Info("scrape finished",
		zap.Int("raw_listings", len(raw)),
		zap.Int("items_scraped", outcome.ItemsScraped),
		zap.Int("items_updated", outcome.ItemsUpdated),
		zap.Duration("duration", time.Since(start)),
	)
	return outcome
}
