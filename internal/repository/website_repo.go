package repository

import (
	"context"
	"time"

	"github.com/user/catalog-crawler/internal/entity"
)

// WebsiteRepository defines the interface for reading websites and stamping runs.
type WebsiteRepository interface {
	// FindByNameOrID matches the id exactly or the name case-insensitively.
	// It returns ErrNotFound when neither matches.
	FindByNameOrID(ctx context.Context, nameOrID string) (*entity.Website, error)
	ListEnabled(ctx context.Context) ([]*entity.Website, error)
	UpdateLastScraped(ctx context.Context, websiteID string, at time.Time) error
}
