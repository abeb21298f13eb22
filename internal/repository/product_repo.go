package repository

import (
	"context"

	"github.com/user/catalog-crawler/internal/entity"
)

// ProductRepository defines the interface for the persisted product catalog.
type ProductRepository interface {
	// Upsert creates the product or, if the URL already exists, refreshes its
	// price and image URL only. created reports which branch was taken.
	Upsert(ctx context.Context, websiteID string, listing entity.CanonicalListing) (created bool, err error)
}
