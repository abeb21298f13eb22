package entity

import "time"

// ScrapeLog mirrors the `scrape_logs` PostgreSQL table schema.
type ScrapeLog struct {
	ID           string       `json:"id"`
	WebsiteID    string       `json:"website_id"`
	ItemsScraped int          `json:"items_scraped"`
	ItemsUpdated int          `json:"items_updated"`
	Status       ScrapeStatus `json:"status"`
	ErrorMessage *string      `json:"error_message,omitempty"`
	ScrapedAt    time.Time    `json:"scraped_at"`
	Website      *Website     `json:"website,omitempty"`
}

// NewScrapeLog maps a run outcome onto a log row.
func NewScrapeLog(websiteID string, outcome ScrapeOutcome, at time.Time) *ScrapeLog {
	log := &ScrapeLog{
		WebsiteID:    websiteID,
		ItemsScraped: outcome.ItemsScraped,
		ItemsUpdated: outcome.ItemsUpdated,
		Status:       outcome.Status,
		ScrapedAt:    at,
	}
	if outcome.Error != "" {
		msg := outcome.Error
		log.ErrorMessage = &msg
	}
	return log
}
