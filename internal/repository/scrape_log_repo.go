package repository

import (
	"context"

	"github.com/user/catalog-crawler/internal/entity"
)

// ScrapeLogRepository stores one row per run.
type ScrapeLogRepository interface {
	Append(ctx context.Context, log *entity.ScrapeLog) error
	// List returns logs newest first. An empty websiteID lists every website
	// and attaches the website to each row.
	List(ctx context.Context, websiteID string, limit, offset int) ([]*entity.ScrapeLog, int, error)
}
