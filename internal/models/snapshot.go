package models

// SnapshotItem is one instrument's point-in-time market snapshot as assembled
// by the fetcher. Value fields are pointers: a missing local market cap means a
// missing USD market cap, never zero. Items with neither a market value nor a
// price are excluded from fetcher output entirely rather than carried with nil
// fields.
type SnapshotItem struct {
	Ticker   string `json:"ticker"`
	Name     string `json:"name"`
	Sector   string `json:"sector,omitempty"`
	Industry string `json:"industry,omitempty"`
	Country  string `json:"country,omitempty"`
	Currency string `json:"currency,omitempty"`

	MarketCap    *float64 `json:"market_cap,omitempty"`     // local currency
	MarketCapUSD *float64 `json:"market_cap_usd,omitempty"` // derived: MarketCap × FX rate
	Price        *float64 `json:"price,omitempty"`
	Volume       int64    `json:"volume,omitempty"`

	// FXDegraded marks a USD conversion that used the 1.0 fallback rate
	// because no real FX quote could be resolved in either direction.
	FXDegraded bool `json:"fx_degraded,omitempty"`

	LogoURL string `json:"logo_url,omitempty"`
	// LogoChecked means the logo lookup completed this run, so an empty
	// LogoURL is an authoritative "no image" rather than "not attempted".
	LogoChecked bool `json:"logo_checked,omitempty"`
}

// USDValue returns the normalized market value, or 0 if absent.
// Callers ranking items must have excluded nil values upstream.
func (i *SnapshotItem) USDValue() float64 {
	if i.MarketCapUSD == nil {
		return 0
	}
	return *i.MarketCapUSD
}
