package postgres

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/user/catalog-crawler/internal/entity"
)

type ScrapeLogRepoImpl struct {
	db DBTX
}

func NewScrapeLogRepo(db DBTX) *ScrapeLogRepoImpl {
	return &ScrapeLogRepoImpl{db: db}
}

// Append assigns the log a fresh id and stores it.
func (r *ScrapeLogRepoImpl) Append(ctx context.Context, log *entity.ScrapeLog) error {
	wid, err := uuid.Parse(log.WebsiteID)
	if err != nil {
		return eris.Wrapf(err, "invalid website id %q", log.WebsiteID)
	}
	id := uuid.New()

	query := `
		INSERT INTO scrape_logs (id, website_id, items_scraped, items_updated, status, error_message, scraped_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err = r.db.Exec(ctx, query,
		id,
		wid,
		log.ItemsScraped,
		log.ItemsUpdated,
		string(log.Status),
		log.ErrorMessage,
		log.ScrapedAt,
	)
	if err != nil {
		return eris.Wrap(err, "insert scrape log")
	}
	log.ID = id.String()
	return nil
}

// List returns one page of logs, newest first, and the total row count.
func (r *ScrapeLogRepoImpl) List(ctx context.Context, websiteID string, limit, offset int) ([]*entity.ScrapeLog, int, error) {
	where := ""
	args := []any{}
	if websiteID != "" {
		where = "WHERE l.website_id::text = $1"
		args = append(args, websiteID)
	}

	var total int
	countSQL := `SELECT COUNT(*) FROM scrape_logs l ` + where + `;`
	if err := r.db.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, eris.Wrap(err, "count scrape logs")
	}

	listSQL := `
		SELECT l.id::text, l.website_id::text, l.items_scraped, l.items_updated, l.status, l.error_message, l.scraped_at,
			w.name, w.url, w.enabled, w.last_scraped_at
		FROM scrape_logs l
		JOIN websites w ON w.id = l.website_id
		` + where + `
		ORDER BY l.scraped_at DESC
		LIMIT ` + placeholder(len(args)+1) + ` OFFSET ` + placeholder(len(args)+2) + `;
	`
	rows, err := r.db.Query(ctx, listSQL, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, eris.Wrap(err, "list scrape logs")
	}
	defer rows.Close()

	logs := make([]*entity.ScrapeLog, 0, limit)
	for rows.Next() {
		var (
			l      entity.ScrapeLog
			w      entity.Website
			status string
		)
		if err := rows.Scan(
			&l.ID, &l.WebsiteID, &l.ItemsScraped, &l.ItemsUpdated, &status, &l.ErrorMessage, &l.ScrapedAt,
			&w.Name, &w.URL, &w.Enabled, &w.LastScrapedAt,
		); err != nil {
			return nil, 0, eris.Wrap(err, "scan scrape log")
		}
		l.Status = entity.ScrapeStatus(status)
		// The per-website listing already knows its website.
		if websiteID == "" {
			w.ID = l.WebsiteID
			l.Website = &w
		}
		logs = append(logs, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, eris.Wrap(err, "iterate scrape logs")
	}
	return logs, total, nil
}

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}
