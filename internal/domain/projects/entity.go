package projects

import "time"

// Status enum
type Status string

const (
	StatusNew      Status = "new"
	StatusAnalyzed Status = "analyzed"
)

// Project is a discovered protocol awaiting (or holding) an analysis.
// The record is immutable for the duration of one consensus run.
type Project struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	Source       string    `json:"source"`
	Description  string    `json:"description,omitempty"`
	URL          string    `json:"url,omitempty"`
	TokenSymbol  string    `json:"token_symbol,omitempty"`
	TVL          float64   `json:"tvl"`
	Status       Status    `json:"status"`
	DiscoveredAt time.Time `json:"discovered_at"`

	// Filled after analysis.
	ConfidenceScore float64 `json:"confidence_score,omitempty"`
	Verdict         string  `json:"verdict,omitempty"`
}

// Summary is the aggregate view served by the REST facade.
type Summary struct {
	Total     int `json:"total"`
	New       int `json:"new"`
	Analyzed  int `json:"analyzed"`
	Buys      int `json:"buys"`
	StrongBuy int `json:"strong_buys"`
	Scams     int `json:"scams"`
}
