// Package ranking implements the global top-N ranking pipeline: harvest,
// snapshot fetch, selection, diff and persistence.
package ranking

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/jwchung/apexrank/internal/common"
	"github.com/jwchung/apexrank/internal/interfaces"
	"github.com/jwchung/apexrank/internal/models"
)

// Harvester produces the candidate identifier set for a run.
type Harvester interface {
	Harvest(ctx context.Context) map[string]string
}

// Service orchestrates one full ranking run end to end.
type Service struct {
	harvester Harvester
	fetcher   *Fetcher
	diff      *DiffEngine
	logos     interfaces.LogoClient // optional
	storage   interfaces.StorageManager
	logger    *common.Logger
	topN      int
}

// NewService creates the ranking service. logos may be nil, in which case logo
// enrichment is skipped entirely.
func NewService(harvester Harvester, fetcher *Fetcher, storage interfaces.StorageManager, logos interfaces.LogoClient, topN int, logger *common.Logger) *Service {
	if topN <= 0 {
		topN = 100
	}
	if logger == nil {
		logger = common.NewDefaultLogger()
	}
	return &Service{
		harvester: harvester,
		fetcher:   fetcher,
		diff:      NewDiffEngine(storage.RankingStorage(), logger),
		logos:     logos,
		storage:   storage,
		logger:    logger,
		topN:      topN,
	}
}

// RunRankingPipeline executes harvest → fetch → select → diff → persist and
// returns the ranked items, the snapshot date and the delta against the prior
// snapshot. Data-quality losses along the way are absorbed; only run-level
// failures (empty final set, persistence failure) surface as errors.
func (s *Service) RunRankingPipeline(ctx context.Context) (*models.RankingRunResult, error) {
	start := time.Now()
	runID := uuid.NewString()
	date := models.Today()

	s.logger.Info().Str("run_id", runID).Str("snapshot_date", date).Msg("Starting ranking run")

	candidates := s.harvester.Harvest(ctx)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("run %s: harvest yielded no candidates", runID)
	}

	items, err := s.fetcher.FetchAll(ctx, candidates)
	if err != nil {
		return nil, fmt.Errorf("run %s: snapshot fetch: %w", runID, err)
	}

	// Only items with a resolved USD value can be ranked; price-only items
	// are dropped here so the selector never sees a nil sort key.
	rankable := make([]models.SnapshotItem, 0, len(items))
	for _, item := range items {
		if item.MarketCapUSD != nil {
			rankable = append(rankable, item)
		}
	}
	if len(rankable) == 0 {
		return nil, fmt.Errorf("run %s: no candidates with resolvable market value", runID)
	}

	top := SelectTopN(rankable, s.topN)

	delta, err := s.diff.Diff(ctx, top, date)
	if err != nil {
		return nil, fmt.Errorf("run %s: diff: %w", runID, err)
	}

	s.enrichLogos(ctx, top)

	updates, entries, prices := buildSnapshotRows(top, date)
	if err := s.storage.SnapshotStorage().PersistSnapshot(ctx, updates, date, entries, prices); err != nil {
		return nil, fmt.Errorf("run %s: persisting snapshot: %w", runID, err)
	}

	// Operational breadcrumb only, never worth failing the run for.
	if err := s.storage.SystemStorage().SetSystemKV(ctx, "last_ranking_run", date); err != nil {
		s.logger.Warn().Err(err).Msg("Recording last ranking run failed")
	}

	result := &models.RankingRunResult{
		RunID:        runID,
		SnapshotDate: date,
		Items:        top,
		Delta:        delta,
		Duration:     time.Since(start),
	}

	s.logger.Info().
		Str("run_id", runID).
		Int("ranked", len(top)).
		Dur("duration", result.Duration).
		Msg("Ranking run complete")
	return result, nil
}

// enrichLogos attempts logo lookup for the final selected set only. A lookup
// that answers "no image" is recorded as checked so the empty value is
// authoritative; a failed lookup leaves the item unchecked so persistence
// preserves any previously stored URL.
func (s *Service) enrichLogos(ctx context.Context, items []models.SnapshotItem) {
	if s.logos == nil {
		return
	}

	type logoResult struct {
		index int
		url   string
		err   error
	}

	semaphore := make(chan struct{}, maxConcurrentProfiles)
	results := make(chan logoResult, len(items))

	for i := range items {
		go func(i int, ticker string) {
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			url, err := s.logos.GetLogoURL(ctx, ticker)
			results <- logoResult{index: i, url: url, err: err}
		}(i, items[i].Ticker)
	}

	checked := 0
	for range items {
		result := <-results
		if result.err != nil {
			s.logger.Debug().Str("ticker", items[result.index].Ticker).Err(result.err).Msg("Logo lookup failed")
			continue
		}
		items[result.index].LogoURL = result.url
		items[result.index].LogoChecked = true
		checked++
	}
	close(results)

	s.logger.Debug().Int("checked", checked).Int("total", len(items)).Msg("Logo enrichment done")
}

// buildSnapshotRows turns the selected items into the three persistence
// payloads: entity updates, ranking rows numbered from 1, and price rows for
// the snapshot date.
func buildSnapshotRows(top []models.SnapshotItem, date string) ([]models.CompanyUpdate, []models.RankingEntry, []models.PriceRecord) {
	year, _ := strconv.Atoi(date[:4])

	updates := make([]models.CompanyUpdate, 0, len(top))
	entries := make([]models.RankingEntry, 0, len(top))
	prices := make([]models.PriceRecord, 0, len(top))

	for i, item := range top {
		update := models.CompanyUpdate{
			Ticker:   item.Ticker,
			Name:     item.Name,
			Sector:   item.Sector,
			Industry: item.Industry,
			Country:  item.Country,
			Currency: item.Currency,
			LogoURL:  item.LogoURL,
		}
		if item.LogoChecked {
			update.Explicit = []string{"logo_url"}
		}
		updates = append(updates, update)

		entries = append(entries, models.RankingEntry{
			SnapshotDate: date,
			Year:         year,
			Rank:         i + 1,
			Ticker:       item.Ticker,
			MarketCapUSD: item.USDValue(),
			CompanyName:  item.Name,
		})

		prices = append(prices, models.PriceRecord{
			Ticker:       item.Ticker,
			Date:         date,
			Close:        item.Price,
			MarketCapUSD: item.MarketCapUSD,
			Volume:       item.Volume,
		})
	}
	return updates, entries, prices
}

// RefreshDailyPrices re-fetches market data for the most recent snapshot's
// constituents and upserts price rows for today. Returns how many identifiers
// were refreshed.
func (s *Service) RefreshDailyPrices(ctx context.Context) (int, error) {
	latest, err := s.storage.RankingStorage().GetLatestDate(ctx)
	if err != nil {
		return 0, fmt.Errorf("looking up latest snapshot: %w", err)
	}
	if latest == "" {
		s.logger.Info().Msg("No snapshot yet, nothing to refresh")
		return 0, nil
	}

	tickers, err := s.storage.RankingStorage().GetRankingTickers(ctx, latest)
	if err != nil {
		return 0, fmt.Errorf("loading snapshot %s constituents: %w", latest, err)
	}

	quotes, _ := s.fetcher.fastPath(ctx, tickers)
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	date := models.Today()
	fx := newFXCache()
	refreshed := 0
	for _, t := range tickers {
		q := quotes[t]
		if q == nil || (q.MarketCap == nil && q.Price == nil) {
			continue
		}

		rec := models.PriceRecord{
			Ticker: t,
			Date:   date,
			Close:  q.Price,
		}
		if q.MarketCap != nil {
			resolved := fx.resolve(ctx, s.fetcher.quotes, q.Currency, s.logger)
			usd := *q.MarketCap * resolved.rate
			rec.MarketCapUSD = &usd
		}

		if err := s.storage.PriceStorage().UpsertPrice(ctx, &rec); err != nil {
			s.logger.Warn().Str("ticker", t).Err(err).Msg("Price upsert failed")
			continue
		}
		refreshed++
	}

	if err := s.storage.SystemStorage().SetSystemKV(ctx, "last_price_refresh", date); err != nil {
		s.logger.Warn().Err(err).Msg("Recording last price refresh failed")
	}

	s.logger.Info().Int("refreshed", refreshed).Int("constituents", len(tickers)).Msg("Daily price refresh complete")
	return refreshed, nil
}

// Ensure Service implements RankingService
var _ interfaces.RankingService = (*Service)(nil)
