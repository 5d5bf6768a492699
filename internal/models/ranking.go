package models

import "time"

// DateKey is the layout used for snapshot date keys. Lexicographic order on
// these keys matches chronological order, which the prior-snapshot lookup
// relies on.
const DateKey = "2006-01-02"

// Today returns the current UTC date formatted as a snapshot date key.
func Today() string {
	return time.Now().UTC().Format(DateKey)
}

// RankingEntry is one row of a ranking snapshot, keyed by (snapshot date, rank).
type RankingEntry struct {
	SnapshotDate string  `json:"snapshot_date"`
	Year         int     `json:"year"`
	Rank         int     `json:"rank"`
	Ticker       string  `json:"ticker"`
	MarketCapUSD float64 `json:"market_cap_usd"`
	CompanyName  string  `json:"company_name"` // name at snapshot time, preserved for history
}

// PriceRecord holds one (ticker, date) price observation.
type PriceRecord struct {
	Ticker       string   `json:"ticker"`
	Date         string   `json:"date"`
	Close        *float64 `json:"close,omitempty"`
	MarketCapUSD *float64 `json:"market_cap_usd,omitempty"`
	Volume       int64    `json:"volume,omitempty"`
}

// RankingDelta is the change set between a new snapshot and the most recent
// prior one. PreviousDate is empty when no dated history exists; PreviousYear
// is set instead when the fallback to year-level grouping was used, and zero
// when there is no history at all.
type RankingDelta struct {
	PreviousDate string         `json:"previous_date,omitempty"`
	PreviousYear int            `json:"previous_year,omitempty"`
	Entrants     []string       `json:"entrants"`
	Exits        []string       `json:"exits"`
	SectorCounts map[string]int `json:"sector_counts"`
}

// HasHistory reports whether a prior snapshot was found in either form.
func (d *RankingDelta) HasHistory() bool {
	return d.PreviousDate != "" || d.PreviousYear != 0
}

// RankPoint is one (date, rank) observation for a ticker.
type RankPoint struct {
	SnapshotDate string `json:"snapshot_date"`
	Rank         int    `json:"rank"`
}

// RankHistory is a ticker's rank trajectory across stored snapshots,
// used for bump-chart style rendering.
type RankHistory struct {
	Ticker  string      `json:"ticker"`
	Name    string      `json:"name"`
	History []RankPoint `json:"history"`
}

// RankingRunResult is the outcome of one full pipeline run.
type RankingRunResult struct {
	RunID        string         `json:"run_id"`
	SnapshotDate string         `json:"snapshot_date"`
	Items        []SnapshotItem `json:"items"`
	Delta        *RankingDelta  `json:"delta"`
	Duration     time.Duration  `json:"duration"`
}
