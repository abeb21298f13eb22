package entity

type ScrapeStatus string

const (
	ScrapeStatusSuccess ScrapeStatus = "success"
	// ScrapeStatusPartial is accepted from stored logs but never produced by
	// the engine: soft failures only reduce counts.
	ScrapeStatusPartial ScrapeStatus = "partial"
	ScrapeStatusFailed  ScrapeStatus = "failed"
)

// ScrapeOutcome is the terminal result of one run.
type ScrapeOutcome struct {
	ItemsScraped int          `json:"items_scraped"`
	ItemsUpdated int          `json:"items_updated"`
	Status       ScrapeStatus `json:"status"`
	Error        string       `json:"error,omitempty"`
}

// FailedOutcome builds the outcome of a run that never got a browser session.
func FailedOutcome(err error) ScrapeOutcome {
	return ScrapeOutcome{Status: ScrapeStatusFailed, Error: err.Error()}
}
