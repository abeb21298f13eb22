package entity

// PageSnapshot is the rendered DOM of one category page, captured after the
// listing selector settled (or timed out).
type PageSnapshot struct {
	URL  string
	HTML string
}

// RawListing is a candidate product pulled from a single DOM element. URL may
// still be relative to the site's base URL.
type RawListing struct {
	Title    string
	URL      string
	Price    *float64 // nil when the page had no parseable price
	ImageURL string
}

// CanonicalListing is a RawListing with an absolute URL, unique within a run.
type CanonicalListing struct {
	Title    string   `json:"title"`
	URL      string   `json:"url"`
	Price    *float64 `json:"price,omitempty"`
	ImageURL string   `json:"image_url,omitempty"`
}
