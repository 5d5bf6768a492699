package models

// Quote is the fast-path provider response for one identifier: enough to rank
// provisionally, nothing more. Nil value fields mean the provider had no data
// for that field.
type Quote struct {
	Ticker    string   `json:"ticker"`
	MarketCap *float64 `json:"market_cap,omitempty"`
	Price     *float64 `json:"price,omitempty"`
	Currency  string   `json:"currency,omitempty"`
}

// Profile is the detailed-path provider response: full descriptive attributes
// plus the same value fields as the fast path.
type Profile struct {
	Ticker    string   `json:"ticker"`
	Name      string   `json:"name"`
	Sector    string   `json:"sector,omitempty"`
	Industry  string   `json:"industry,omitempty"`
	Country   string   `json:"country,omitempty"`
	Currency  string   `json:"currency,omitempty"`
	MarketCap *float64 `json:"market_cap,omitempty"`
	Price     *float64 `json:"price,omitempty"`
	Volume    int64    `json:"volume,omitempty"`
}
