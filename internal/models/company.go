// Package models defines the data structures for Apexrank
package models

import "time"

// Company is the durable entity master record, keyed by canonical ticker.
// Descriptive fields hold the latest known values; they are updated on each
// sighting but never cleared by a missing value.
type Company struct {
	Ticker    string    `json:"ticker"`
	Name      string    `json:"name"`
	Sector    string    `json:"sector,omitempty"`
	Industry  string    `json:"industry,omitempty"`
	Country   string    `json:"country,omitempty"`
	Currency  string    `json:"currency,omitempty"`
	LogoURL   string    `json:"logo_url,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CompanyUpdate carries the incoming master-record attributes for one entity
// from a single run. Empty fields are preserved on the stored record unless the
// field name is listed in Explicit, in which case the value is written even
// when empty. This is how a logo lookup that answered "no image" records the
// absence instead of leaving a stale URL behind.
type CompanyUpdate struct {
	Ticker   string
	Name     string
	Sector   string
	Industry string
	Country  string
	Currency string
	LogoURL  string
	Explicit []string
}

// IsExplicit reports whether field is part of this run's explicit payload.
func (u *CompanyUpdate) IsExplicit(field string) bool {
	for _, f := range u.Explicit {
		if f == field {
			return true
		}
	}
	return false
}
