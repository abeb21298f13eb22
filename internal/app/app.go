// Package app wires configuration, storage, the browser renderer and the
// scrape use cases together for the binaries under cmd/.
package app

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/user/catalog-crawler/internal/adapter/chromedp_renderer"
	"github.com/user/catalog-crawler/internal/adapter/postgres"
	redis_adapter "github.com/user/catalog-crawler/internal/adapter/redis"
	"github.com/user/catalog-crawler/internal/adapter/rod_renderer"
	"github.com/user/catalog-crawler/internal/delivery/http/handler"
	"github.com/user/catalog-crawler/internal/proxy"
	"github.com/user/catalog-crawler/internal/repository"
	"github.com/user/catalog-crawler/internal/sites"
	"github.com/user/catalog-crawler/internal/usecase"
	"github.com/user/catalog-crawler/pkg/config"
)

type App struct {
	Manager usecase.ScrapeManager
	Sites   *sites.Registry
	Checks  map[string]handler.HealthCheck

	closers []func()
}

// New connects to PostgreSQL and Redis and builds the scrape manager.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{}

	registry, err := NewSiteRegistry(cfg)
	if err != nil {
		return nil, err
	}
	a.Sites = registry

	renderer, err := NewRenderer(cfg, logger)
	if err != nil {
		return nil, err
	}

	dbpool, err := postgres.Connect(ctx, cfg.PostgresDSN())
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, dbpool.Close)
	logger.Info("postgres connection pool established")

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	a.closers = append(a.closers, func() { _ = rdb.Close() })
	// Redis only guards against overlapping runs; scraping works without it.
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, run locks disabled until it recovers", zap.Error(err))
	} else {
		logger.Info("redis connection established")
	}

	a.Checks = map[string]handler.HealthCheck{
		"postgres": dbpool.Ping,
		"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	}

	orchestrator := usecase.NewSessionOrchestrator(usecase.OrchestratorConfig{
		Page: repository.PageOptions{
			ViewportWidth:  cfg.ViewportWidth,
			ViewportHeight: cfg.ViewportHeight,
			UserAgent:      cfg.UserAgent,
		},
		NavigationTimeout: cfg.NavigationTimeout,
		SelectorTimeout:   cfg.SelectorTimeout,
	}, logger)
	reconciler := usecase.NewReconciler(postgres.NewProductRepo(dbpool), logger)
	coordinator := usecase.NewScrapeCoordinator(renderer, orchestrator, reconciler, logger)

	a.Manager = usecase.NewScrapeManager(
		postgres.NewWebsiteRepo(dbpool),
		postgres.NewScrapeLogRepo(dbpool),
		redis_adapter.NewRunLockRepo(rdb),
		registry,
		coordinator,
		usecase.ScrapeManagerConfig{
			LockTTL:     cfg.RunLockTTL,
			MaxParallel: cfg.MaxParallelSites,
		},
		logger,
	)
	return a, nil
}

// Close releases connections in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// NewRenderer picks the browser backend named by RENDERER.
func NewRenderer(cfg *config.Config, logger *zap.Logger) (repository.Renderer, error) {
	proxies, err := proxy.NewRotator(cfg.BrowserProxies)
	if err != nil {
		return nil, eris.Wrap(err, "browser proxies")
	}
	logger.Info("browser renderer configured",
		zap.String("renderer", cfg.Renderer),
		zap.Bool("headless", cfg.BrowserHeadless),
		zap.Int("proxies", proxies.Len()),
	)

	switch cfg.Renderer {
	case "chromedp":
		return chromedp_renderer.NewChromedpRenderer(chromedp_renderer.Config{
			Headless:   cfg.BrowserHeadless,
			BrowserBin: cfg.BrowserBin,
			Proxies:    proxies,
		}, logger), nil
	case "rod":
		return rod_renderer.NewRodRenderer(rod_renderer.Config{
			Headless:   cfg.BrowserHeadless,
			BrowserBin: cfg.BrowserBin,
			Proxies:    proxies,
		}, logger), nil
	default:
		return nil, eris.Errorf("unknown renderer %q", cfg.Renderer)
	}
}

// NewSiteRegistry returns the built-in sites, overridden by SITES_FILE entries.
func NewSiteRegistry(cfg *config.Config) (*sites.Registry, error) {
	registry := sites.NewRegistry(sites.Builtin()...)
	if cfg.SitesFile == "" {
		return registry, nil
	}
	extra, err := sites.LoadFile(cfg.SitesFile)
	if err != nil {
		return nil, err
	}
	for _, site := range extra {
		registry.Register(site)
	}
	return registry, nil
}
