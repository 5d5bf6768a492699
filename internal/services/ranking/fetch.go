package ranking

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jwchung/apexrank/internal/common"
	"github.com/jwchung/apexrank/internal/interfaces"
	"github.com/jwchung/apexrank/internal/models"
)

const maxConcurrentProfiles = 5

// fxRate is one resolved conversion for a run. Degraded marks the 1.0 default
// used when no real quote could be resolved in either direction.
type fxRate struct {
	rate     float64
	degraded bool
}

// fxCache memoizes FX resolutions for the duration of one run. It is created
// per run, never shared across runs, so tests and concurrent runs cannot leak
// rates into each other.
type fxCache struct {
	mu    sync.Mutex
	rates map[string]fxRate
}

func newFXCache() *fxCache {
	return &fxCache{rates: make(map[string]fxRate)}
}

// resolve returns the USD conversion rate for a currency, querying the
// provider at most once per currency per run. USD resolves to 1.0; a missing
// currency also resolves to 1.0 but flagged degraded, since the provider never
// confirmed the listing is in USD. Unresolvable currencies are flagged degraded.
func (c *fxCache) resolve(ctx context.Context, client interfaces.QuoteClient, currency string, logger *common.Logger) fxRate {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "USD" {
		return fxRate{rate: 1.0}
	}
	if currency == "" {
		return fxRate{rate: 1.0, degraded: true}
	}

	c.mu.Lock()
	if cached, ok := c.rates[currency]; ok {
		c.mu.Unlock()
		return cached
	}
	c.mu.Unlock()

	resolved := lookupRate(ctx, client, currency, logger)

	c.mu.Lock()
	c.rates[currency] = resolved
	c.mu.Unlock()
	return resolved
}

// lookupRate tries the direct pair, then the inverted pair, then gives up with
// a flagged 1.0 default.
func lookupRate(ctx context.Context, client interfaces.QuoteClient, currency string, logger *common.Logger) fxRate {
	if rate, err := client.GetFXRate(ctx, currency+"USD=X"); err == nil && rate > 0 {
		return fxRate{rate: rate}
	}

	if rate, err := client.GetFXRate(ctx, "USD"+currency+"=X"); err == nil && rate > 0 {
		return fxRate{rate: 1 / rate}
	}

	logger.Warn().Str("currency", currency).Msg("No FX pair resolvable either direction, defaulting to 1.0 (degraded)")
	return fxRate{rate: 1.0, degraded: true}
}

// Fetcher assembles market snapshots for candidate identifiers using the
// two-tier strategy: a cheap batch quote pass over everything, then detailed
// profiles for the provisional leaders plus anything the fast path missed.
type Fetcher struct {
	quotes     interfaces.QuoteClient
	logger     *common.Logger
	batchSize  int
	batchPause time.Duration
	topN       int
}

// NewFetcher creates a snapshot fetcher. batchSize and topN fall back to
// sensible values when non-positive.
func NewFetcher(quotes interfaces.QuoteClient, batchSize int, batchPause time.Duration, topN int, logger *common.Logger) *Fetcher {
	if batchSize <= 0 {
		batchSize = 20
	}
	if topN <= 0 {
		topN = 100
	}
	if logger == nil {
		logger = common.NewDefaultLogger()
	}
	return &Fetcher{
		quotes:     quotes,
		logger:     logger,
		batchSize:  batchSize,
		batchPause: batchPause,
		topN:       topN,
	}
}

// FetchAll resolves market data for every candidate and returns snapshot items
// for the identifiers with usable data. Identifiers yielding neither a market
// value nor a price are excluded entirely, never carried with nil fields.
func (f *Fetcher) FetchAll(ctx context.Context, candidates map[string]string) ([]models.SnapshotItem, error) {
	tickers := make([]string, 0, len(candidates))
	for t := range candidates {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	quotes, retry := f.fastPath(ctx, tickers)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fx := newFXCache()
	targets := f.detailTargets(ctx, quotes, retry, fx)
	profiles := f.detailPath(ctx, targets)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	items := make([]models.SnapshotItem, 0, len(tickers))
	for _, t := range tickers {
		item, ok := f.buildItem(ctx, t, candidates[t], quotes[t], profiles[t], fx)
		if !ok {
			continue
		}
		items = append(items, item)
	}

	f.logger.Info().
		Int("candidates", len(tickers)).
		Int("detailed", len(targets)).
		Int("items", len(items)).
		Msg("Snapshot fetch complete")
	return items, nil
}

// fastPath runs the batch quote tier. Returns the quotes found and the set of
// identifiers needing a detailed-path recovery attempt (batch failures and
// identifiers the provider skipped).
func (f *Fetcher) fastPath(ctx context.Context, tickers []string) (map[string]*models.Quote, map[string]bool) {
	quotes := make(map[string]*models.Quote, len(tickers))
	retry := make(map[string]bool)

	for start := 0; start < len(tickers); start += f.batchSize {
		if ctx.Err() != nil {
			break
		}
		end := start + f.batchSize
		if end > len(tickers) {
			end = len(tickers)
		}
		batch := tickers[start:end]

		batchQuotes, err := f.quotes.GetQuotes(ctx, batch)
		if err != nil {
			f.logger.Warn().Int("batch_size", len(batch)).Err(err).Msg("Fast-path batch failed, deferring to detailed path")
			for _, t := range batch {
				retry[t] = true
			}
		} else {
			for _, t := range batch {
				if q, ok := batchQuotes[t]; ok {
					quotes[t] = q
				} else {
					retry[t] = true
				}
			}
		}

		if end < len(tickers) {
			f.pause(ctx)
		}
	}
	return quotes, retry
}

// detailTargets selects the identifiers for the detailed tier: the provisional
// top-N by fast-path market value, plus everything queued for recovery. The
// provisional sort key is USD-normalized; raw local values are not comparable
// across listing currencies (a JPY cap is numerically ~150× the USD figure).
func (f *Fetcher) detailTargets(ctx context.Context, quotes map[string]*models.Quote, retry map[string]bool, fx *fxCache) []string {
	type valued struct {
		ticker string
		cap    float64
	}
	provisional := make([]valued, 0, len(quotes))
	for t, q := range quotes {
		if q.MarketCap != nil {
			rate := fx.resolve(ctx, f.quotes, q.Currency, f.logger)
			provisional = append(provisional, valued{ticker: t, cap: *q.MarketCap * rate.rate})
		}
	}
	sort.SliceStable(provisional, func(i, j int) bool {
		return provisional[i].cap > provisional[j].cap
	})
	if len(provisional) > f.topN {
		provisional = provisional[:f.topN]
	}

	seen := make(map[string]bool, len(provisional)+len(retry))
	targets := make([]string, 0, len(provisional)+len(retry))
	for _, v := range provisional {
		if !seen[v.ticker] {
			seen[v.ticker] = true
			targets = append(targets, v.ticker)
		}
	}
	for t := range retry {
		if !seen[t] {
			seen[t] = true
			targets = append(targets, t)
		}
	}
	sort.Strings(targets)
	return targets
}

// detailPath fetches profiles for the targets in bounded-size groups, with
// bounded concurrency inside each group and a pause between groups. One failed
// identifier never fails its group.
func (f *Fetcher) detailPath(ctx context.Context, targets []string) map[string]*models.Profile {
	profiles := make(map[string]*models.Profile, len(targets))

	type profileResult struct {
		ticker  string
		profile *models.Profile
		err     error
	}

	for start := 0; start < len(targets); start += f.batchSize {
		if ctx.Err() != nil {
			break
		}
		end := start + f.batchSize
		if end > len(targets) {
			end = len(targets)
		}
		batch := targets[start:end]

		semaphore := make(chan struct{}, maxConcurrentProfiles)
		results := make(chan profileResult, len(batch))

		for _, ticker := range batch {
			go func(t string) {
				semaphore <- struct{}{}
				defer func() { <-semaphore }()

				profile, err := f.quotes.GetProfile(ctx, t)
				results <- profileResult{ticker: t, profile: profile, err: err}
			}(ticker)
		}

		for range batch {
			result := <-results
			if result.err != nil {
				if !errors.Is(result.err, interfaces.ErrNoData) {
					f.logger.Warn().Str("ticker", result.ticker).Err(result.err).Msg("Profile fetch failed")
				}
				continue
			}
			profiles[result.ticker] = result.profile
		}
		close(results)

		if end < len(targets) {
			f.pause(ctx)
		}
	}
	return profiles
}

// buildItem merges the fast and detailed tiers for one identifier and applies
// currency normalization. Returns false when the identifier has neither a
// market value nor a price.
func (f *Fetcher) buildItem(ctx context.Context, ticker, country string, quote *models.Quote, profile *models.Profile, fx *fxCache) (models.SnapshotItem, bool) {
	item := models.SnapshotItem{
		Ticker:  ticker,
		Country: country,
	}

	if quote != nil {
		item.Currency = quote.Currency
		item.MarketCap = quote.MarketCap
		item.Price = quote.Price
	}
	if profile != nil {
		item.Name = profile.Name
		item.Sector = profile.Sector
		item.Industry = profile.Industry
		item.Volume = profile.Volume
		if profile.Country != "" {
			item.Country = profile.Country
		}
		if profile.Currency != "" {
			item.Currency = profile.Currency
		}
		// The detailed path is authoritative when both tiers answered.
		if profile.MarketCap != nil {
			item.MarketCap = profile.MarketCap
		}
		if profile.Price != nil {
			item.Price = profile.Price
		}
	}

	if item.MarketCap == nil && item.Price == nil {
		return models.SnapshotItem{}, false
	}

	if item.MarketCap != nil {
		resolved := fx.resolve(ctx, f.quotes, item.Currency, f.logger)
		usd := *item.MarketCap * resolved.rate
		item.MarketCapUSD = &usd
		item.FXDegraded = resolved.degraded
	}

	return item, true
}

func (f *Fetcher) pause(ctx context.Context) {
	if f.batchPause <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(f.batchPause):
	}
}
