// Package harvest collects candidate identifiers from public index
// constituent pages.
package harvest

import (
	"context"
	"fmt"

	"github.com/jwchung/apexrank/internal/common"
	"github.com/jwchung/apexrank/internal/interfaces"
	"github.com/jwchung/apexrank/internal/models"
	"github.com/jwchung/apexrank/internal/ticker"
)

var parsers = map[models.ParserStrategy]func(content []byte) []string{
	models.ParserTable:    parseTableCandidates,
	models.ParserCodeList: parseCodeListCandidates,
}

// Harvester scrapes the configured index sources and produces a deduplicated
// set of canonical identifiers with their origin country.
type Harvester struct {
	fetcher interfaces.PageFetcher
	sources []models.IndexSource
	logger  *common.Logger
}

// NewHarvester creates a harvester over the given sources. A nil or empty
// sources slice falls back to the built-in index list.
func NewHarvester(fetcher interfaces.PageFetcher, sources []models.IndexSource, logger *common.Logger) *Harvester {
	if len(sources) == 0 {
		sources = models.DefaultIndexSources()
	}
	if logger == nil {
		logger = common.NewDefaultLogger()
	}
	return &Harvester{
		fetcher: fetcher,
		sources: sources,
		logger:  logger,
	}
}

// Harvest fetches and parses every source, normalizes the raw candidates and
// merges them into one identifier→country map. A failing source is logged and
// skipped; it never aborts the run. When every source yields nothing the
// built-in fallback set is returned so downstream stages still have work.
func (h *Harvester) Harvest(ctx context.Context) map[string]string {
	candidates := make(map[string]string)

	for _, src := range h.sources {
		tickers, err := h.harvestSource(ctx, src)
		if err != nil {
			h.logger.Warn().
				Str("source", src.Name).
				Err(err).
				Msg("Index source failed, skipping")
			continue
		}

		added := 0
		for _, t := range tickers {
			if _, seen := candidates[t]; !seen {
				candidates[t] = src.Country
				added++
			}
		}
		h.logger.Info().
			Str("source", src.Name).
			Int("tickers", len(tickers)).
			Int("new", added).
			Msg("Harvested index source")
	}

	if len(candidates) == 0 {
		h.logger.Warn().Msg("All index sources failed, using fallback ticker set")
		return models.FallbackTickers()
	}
	return candidates
}

func (h *Harvester) harvestSource(ctx context.Context, src models.IndexSource) ([]string, error) {
	parse, ok := parsers[src.Strategy]
	if !ok {
		return nil, fmt.Errorf("unknown parser strategy %q", src.Strategy)
	}

	content, err := h.fetcher.Fetch(ctx, src.URL)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", src.URL, err)
	}

	raw := parse(content)
	if len(raw) == 0 {
		return nil, fmt.Errorf("no candidates parsed from %s", src.URL)
	}

	var out []string
	dropped := 0
	for _, candidate := range raw {
		normalized, ok := ticker.Normalize(candidate, src.Country)
		if !ok {
			dropped++
			continue
		}
		out = append(out, normalized)
	}
	h.logger.Debug().
		Str("source", src.Name).
		Int("raw", len(raw)).
		Int("dropped", dropped).
		Msg("Normalized source candidates")

	return out, nil
}
