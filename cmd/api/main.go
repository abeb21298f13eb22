package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/user/catalog-crawler/internal/app"
	"github.com/user/catalog-crawler/internal/delivery/http/handler"
	"github.com/user/catalog-crawler/internal/delivery/http/router"
	"github.com/user/catalog-crawler/pkg/config"
	"github.com/user/catalog-crawler/pkg/logger"
	"github.com/user/catalog-crawler/pkg/metrics"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}

	// --- Logger ---
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	// --- Metrics ---
	metrics.Init()

	// --- Dependencies ---
	ctx := context.Background()
	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("could not initialise application", zap.Error(err))
	}
	defer application.Close()
	log.Info("sites registered", zap.Strings("sites", application.Sites.Names()))

	// --- HTTP Server ---
	apiHandler := handler.NewHandler(application.Manager, application.Checks, log)
	server := &http.Server{
		Addr:        ":" + cfg.ServerPort,
		Handler:     router.New(apiHandler, log, cfg.CORSAllowedOrigins),
		ReadTimeout: 10 * time.Second,
		// Scrape requests answer only once the run has finished.
		WriteTimeout: 30 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("could not start server", zap.Error(err))
		}
	}()
	log.Info("server started", zap.String("port", cfg.ServerPort), zap.String("renderer", cfg.Renderer))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	log.Info("server exiting")
}
