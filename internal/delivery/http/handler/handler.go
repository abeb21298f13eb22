package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/user/catalog-crawler/internal/delivery/http/request"
	"github.com/user/catalog-crawler/internal/delivery/http/response"
	"github.com/user/catalog-crawler/internal/usecase"
)

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Handler struct {
	manager usecase.ScrapeManager
	checks  map[string]HealthCheck
	logger  *zap.Logger
}

func NewHandler(manager usecase.ScrapeManager, checks map[string]HealthCheck, logger *zap.Logger) *Handler {
	return &Handler{
		manager: manager,
		checks:  checks,
		logger:  logger,
	}
}

// HandleStartScrape runs a scrape for {website} and answers once it finished.
// The run outlives a client that disconnects.
func (h *Handler) HandleStartScrape(w http.ResponseWriter, r *http.Request) {
	website := chi.URLParam(r, "website")
	if website == "" {
		h.writeJSONError(w, "website is required", http.StatusBadRequest)
		return
	}

	log, err := h.manager.RunScrape(context.WithoutCancel(r.Context()), website)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("scrape failed to run", zap.String("website", website), zap.Error(err))
			h.writeJSONError(w, "Internal server error", status)
			return
		}
		h.writeJSONError(w, err.Error(), status)
		return
	}

	h.writeJSON(w, http.StatusOK, response.ScrapeStartResponse{
		Message: "Scrape completed",
		Data:    log,
	})
}

// HandleListLogs serves both /logs and /logs/{websiteID}.
func (h *Handler) HandleListLogs(w http.ResponseWriter, r *http.Request) {
	p, err := request.ParsePagination(r)
	if err != nil {
		h.writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	page, err := h.manager.ListLogs(r.Context(), chi.URLParam(r, "websiteID"), p.Page, p.Limit)
	if err != nil {
		h.logger.Error("failed to list scrape logs", zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, response.NewScrapeLogsResponse(page))
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	healthStatus := map[string]string{"status": "ok"}
	healthy := true
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			healthStatus[name] = "unhealthy"
			healthy = false
			h.logger.Error("health check failed", zap.String("dependency", name), zap.Error(err))
			continue
		}
		healthStatus[name] = "healthy"
	}

	if !healthy {
		healthStatus["status"] = "degraded"
		h.writeJSON(w, http.StatusServiceUnavailable, healthStatus)
		return
	}
	h.writeJSON(w, http.StatusOK, healthStatus)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrWebsiteNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrWebsiteDisabled), errors.Is(err, usecase.ErrNoSiteConfig):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrRunInProgress):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, response.ErrorResponse{Error: message})
}
