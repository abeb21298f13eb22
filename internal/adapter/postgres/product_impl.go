package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/user/catalog-crawler/internal/entity"
)

// ProductRepoImpl provides a concrete implementation for the ProductRepository interface using PostgreSQL.
type ProductRepoImpl struct {
	db DBTX
}

// NewProductRepo creates a new instance of ProductRepoImpl.
func NewProductRepo(db DBTX) *ProductRepoImpl {
	return &ProductRepoImpl{db: db}
}

// xmax is 0 only for a row this statement inserted.
const upsertProductSQL = `
	INSERT INTO products (website_id, title, url, price, image_url)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (url) DO UPDATE SET
		price = EXCLUDED.price,
		image_url = EXCLUDED.image_url,
		updated_at = NOW()
	RETURNING (xmax = 0) AS inserted;
`

// Upsert inserts the listing or refreshes price and image of the existing product.
func (r *ProductRepoImpl) Upsert(ctx context.Context, websiteID string, listing entity.CanonicalListing) (bool, error) {
	wid, err := uuid.Parse(websiteID)
	if err != nil {
		return false, eris.Wrapf(err, "invalid website id %q", websiteID)
	}

	var inserted bool
	err = r.db.QueryRow(ctx, upsertProductSQL,
		wid,
		listing.Title,
		listing.URL,
		listing.Price,
		nullIfEmpty(listing.ImageURL),
	).Scan(&inserted)
	if err != nil {
		return false, eris.Wrapf(err, "upsert product %s", listing.URL)
	}
	return inserted, nil
}
