package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/user/catalog-crawler/internal/entity"
	"github.com/user/catalog-crawler/internal/repository"
)

type WebsiteRepoImpl struct {
	db DBTX
}

func NewWebsiteRepo(db DBTX) *WebsiteRepoImpl {
	return &WebsiteRepoImpl{db: db}
}

const websiteColumns = `id::text, name, url, enabled, last_scraped_at`

func scanWebsite(row pgx.Row) (*entity.Website, error) {
	var w entity.Website
	if err := row.Scan(&w.ID, &w.Name, &w.URL, &w.Enabled, &w.LastScrapedAt); err != nil {
		return nil, err
	}
	return &w, nil
}

// FindByNameOrID matches the id exactly or the name ignoring case.
func (r *WebsiteRepoImpl) FindByNameOrID(ctx context.Context, nameOrID string) (*entity.Website, error) {
	query := `
		SELECT ` + websiteColumns + `
		FROM websites
		WHERE id::text = $1 OR LOWER(name) = LOWER($1)
		ORDER BY (id::text = $1) DESC
		LIMIT 1;
	`
	w, err := scanWebsite(r.db.QueryRow(ctx, query, nameOrID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, eris.Wrapf(err, "find website %q", nameOrID)
	}
	return w, nil
}

func (r *WebsiteRepoImpl) ListEnabled(ctx context.Context) ([]*entity.Website, error) {
	query := `
		SELECT ` + websiteColumns + `
		FROM websites
		WHERE enabled
		ORDER BY name ASC;
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "list enabled websites")
	}
	defer rows.Close()

	var websites []*entity.Website
	for rows.Next() {
		w, err := scanWebsite(rows)
		if err != nil {
			return nil, eris.Wrap(err, "scan website")
		}
		websites = append(websites, w)
	}
	return websites, rows.Err()
}

func (r *WebsiteRepoImpl) UpdateLastScraped(ctx context.Context, websiteID string, at time.Time) error {
	wid, err := uuid.Parse(websiteID)
	if err != nil {
		return eris.Wrapf(err, "invalid website id %q", websiteID)
	}
	query := `UPDATE websites SET last_scraped_at = $1 WHERE id = $2;`
	tag, err := r.db.Exec(ctx, query, at, wid)
	if err != nil {
		return eris.Wrapf(err, "update last scraped for %s", websiteID)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
