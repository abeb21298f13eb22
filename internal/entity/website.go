package entity

import "time"

// Website mirrors the `websites` PostgreSQL table schema.
type Website struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	URL           string     `json:"url"`
	Enabled       bool       `json:"enabled"`
	LastScrapedAt *time.Time `json:"last_scraped_at,omitempty"`
}

// Product mirrors the `products` PostgreSQL table schema. URL is unique.
type Product struct {
	ID        int64
	WebsiteID string
	Title     string
	URL       string
	Price     *float64
	ImageURL  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
