package models

// ParserStrategy selects how a source page is turned into raw candidates.
type ParserStrategy string

const (
	// ParserTable scans HTML tables for a ticker-bearing column.
	ParserTable ParserStrategy = "table"
	// ParserCodeList scans list items for embedded exchange-code markers
	// (pages that mix headings and bullet lists instead of tables).
	ParserCodeList ParserStrategy = "codelist"
)

// IndexSource describes one public index constituent page.
type IndexSource struct {
	Name     string         `json:"name"`
	URL      string         `json:"url"`
	Country  string         `json:"country"`
	Strategy ParserStrategy `json:"strategy"`
}

// DefaultIndexSources returns the built-in harvest source list covering the
// major global indices.
func DefaultIndexSources() []IndexSource {
	return []IndexSource{
		{Name: "S&P 500", URL: "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies", Country: "US", Strategy: ParserTable},
		{Name: "Nasdaq 100", URL: "https://en.wikipedia.org/wiki/Nasdaq-100", Country: "US", Strategy: ParserTable},
		{Name: "FTSE 100", URL: "https://en.wikipedia.org/wiki/FTSE_100_Index", Country: "UK", Strategy: ParserTable},
		{Name: "DAX 40", URL: "https://en.wikipedia.org/wiki/DAX", Country: "Germany", Strategy: ParserTable},
		{Name: "CAC 40", URL: "https://en.wikipedia.org/wiki/CAC_40", Country: "France", Strategy: ParserTable},
		{Name: "Nikkei 225", URL: "https://en.wikipedia.org/wiki/Nikkei_225", Country: "Japan", Strategy: ParserTable},
		{Name: "Hang Seng Index", URL: "https://en.wikipedia.org/wiki/Hang_Seng_Index", Country: "Hong Kong", Strategy: ParserCodeList},
		{Name: "SSE 50", URL: "https://en.wikipedia.org/wiki/SSE_50_Index", Country: "China", Strategy: ParserTable},
	}
}

// FallbackTickers is returned by the harvester when every source fails, so the
// downstream stages still have a representative large-cap set to work with.
// Keys are canonical identifiers, values their origin country.
func FallbackTickers() map[string]string {
	return map[string]string{
		"AAPL":  "US",
		"MSFT":  "US",
		"GOOGL": "US",
		"AMZN":  "US",
		"NVDA":  "US",
		"META":  "US",
		"TSLA":  "US",
		"BRK-B": "US",
		"LLY":   "US",
		"JPM":   "US",
		"V":     "US",
		"WMT":   "US",
		"MA":    "US",
		"XOM":   "US",
	}
}
