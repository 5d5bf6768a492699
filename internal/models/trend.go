package models

import "time"

// SectorShare is one sector's share of the current top-N.
type SectorShare struct {
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// RankingRef identifies a company within a snapshot, for entrant/exit lists.
type RankingRef struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
	Rank   int    `json:"rank"`
}

// SectorTrend is the derived trend report persisted after each ranking run.
type SectorTrend struct {
	Date            string        `json:"date"`
	DominantSectors []SectorShare `json:"dominant_sectors"`
	NewEntries      []RankingRef  `json:"new_entries"`
	Exited          []RankingRef  `json:"exited"`
	Commentary      string        `json:"commentary,omitempty"`
	ChartFile       string        `json:"chart_file,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
}
