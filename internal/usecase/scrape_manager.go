package usecase

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/user/catalog-crawler/internal/entity"
	"github.com/user/catalog-crawler/internal/repository"
)

var (
	ErrWebsiteNotFound = errors.New("website not found")
	ErrWebsiteDisabled = errors.New("website is disabled")
	ErrNoSiteConfig    = errors.New("no scraper available for this website")
	ErrRunInProgress   = errors.New("a scrape for this website is already running")
)

const (
	defaultLogPageSize = 20
	maxLogPageSize     = 100
)

// SiteLookup resolves a website name to its crawl configuration.
type SiteLookup interface {
	Lookup(name string) (entity.SiteConfig, bool)
}

// LogPage is one page of scrape logs.
type LogPage struct {
	Logs  []*entity.ScrapeLog
	Page  int
	Limit int
	Total int
	Pages int
}

// ScrapeManager defines the interface for triggering runs and reading their history.
type ScrapeManager interface {
	RunScrape(ctx context.Context, nameOrID string) (*entity.ScrapeLog, error)
	RunAll(ctx context.Context) ([]*entity.ScrapeLog, error)
	ListLogs(ctx context.Context, websiteID string, page, limit int) (*LogPage, error)
}

// ScrapeManagerConfig tunes run coordination.
type ScrapeManagerConfig struct {
	LockTTL     time.Duration
	MaxParallel int
}

type scrapeManagerUseCase struct {
	websites repository.WebsiteRepository
	logs     repository.ScrapeLogRepository
	locks    repository.RunLockRepository
	sites    SiteLookup
	scraper  Scraper
	cfg      ScrapeManagerConfig
	logger   *zap.Logger
	now      func() time.Time
}

// NewScrapeManager creates a new ScrapeManager use case.
func NewScrapeManager(
	websites repository.WebsiteRepository,
	logs repository.ScrapeLogRepository,
	locks repository.RunLockRepository,
	sites SiteLookup,
	scraper Scraper,
	cfg ScrapeManagerConfig,
	logger *zap.Logger,
) ScrapeManager {
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = 1
	}
	return &scrapeManagerUseCase{
		websites: websites,
		logs:     logs,
		locks:    locks,
		sites:    sites,
		scraper:  scraper,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// RunScrape looks up the website, runs the engine and records the outcome.
// A failed outcome is still a successful call: the returned log carries it.
func (uc *scrapeManagerUseCase) RunScrape(ctx context.Context, nameOrID string) (*entity.ScrapeLog, error) {
	website, err := uc.websites.FindByNameOrID(ctx, nameOrID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWebsiteNotFound
		}
		return nil, eris.Wrapf(err, "find website %q", nameOrID)
	}
	if !website.Enabled {
		return nil, ErrWebsiteDisabled
	}

	site, ok := uc.sites.Lookup(website.Name)
	if !ok {
		return nil, ErrNoSiteConfig
	}

	token := uuid.NewString()
	locked, err := uc.locks.Acquire(ctx, website.ID, token, uc.cfg.LockTTL)
	switch {
	case err != nil:
		// Redis being down must not block scraping.
		uc.logger.Warn("run lock unavailable, scraping without it", zap.String("website_id", website.ID), zap.Error(err))
	case !locked:
		return nil, ErrRunInProgress
	default:
		defer func() {
			if err := uc.locks.Release(context.WithoutCancel(ctx), website.ID, token); err != nil {
				uc.logger.Warn("failed to release run lock", zap.String("website_id", website.ID), zap.Error(err))
			}
		}()
	}

	outcome := uc.scraper.Scrape(ctx, website.ID, site)

	// An interrupted run is still recorded.
	recordCtx := context.WithoutCancel(ctx)
	now := uc.now()
	log := entity.NewScrapeLog(website.ID, outcome, now)
	if err := uc.logs.Append(recordCtx, log); err != nil {
		return nil, eris.Wrapf(err, "record scrape log for %s", website.Name)
	}
	if err := uc.websites.UpdateLastScraped(recordCtx, website.ID, now); err != nil {
		uc.logger.Warn("failed to update last scraped time", zap.String("website_id", website.ID), zap.Error(err))
	}
	return log, nil
}

// RunAll scrapes every enabled website, up to MaxParallel at a time. Websites
// that cannot be scraped are logged and left out of the result.
func (uc *scrapeManagerUseCase) RunAll(ctx context.Context) ([]*entity.ScrapeLog, error) {
	websites, err := uc.websites.ListEnabled(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "list enabled websites")
	}

	results := make([]*entity.ScrapeLog, len(websites))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.cfg.MaxParallel)
	for i, w := range websites {
		g.Go(func() error {
			log, err := uc.RunScrape(gctx, w.ID)
			if err != nil {
				uc.logger.Warn("skipping website", zap.String("website", w.Name), zap.Error(err))
				return nil
			}
			results[i] = log
			return nil
		})
	}
	_ = g.Wait()

	logs := make([]*entity.ScrapeLog, 0, len(results))
	for _, l := range results {
		if l != nil {
			logs = append(logs, l)
		}
	}
	return logs, nil
}

func (uc *scrapeManagerUseCase) ListLogs(ctx context.Context, websiteID string, page, limit int) (*LogPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLogPageSize
	}
	if limit > maxLogPageSize {
		limit = maxLogPageSize
	}

	logs, total, err := uc.logs.List(ctx, websiteID, limit, (page-1)*limit)
	if err != nil {
		return nil, eris.Wrap(err, "list scrape logs")
	}
	return &LogPage{
		Logs:  logs,
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}
