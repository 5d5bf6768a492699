package surrealdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/jwchung/apexrank/internal/common"
	"github.com/jwchung/apexrank/internal/models"
)

// RankingStore manages ranking snapshots and price rows.
type RankingStore struct {
	db        *surrealdb.DB
	companies *CompanyStore
	logger    *common.Logger
}

func NewRankingStore(db *surrealdb.DB, companies *CompanyStore, logger *common.Logger) *RankingStore {
	return &RankingStore{db: db, companies: companies, logger: logger}
}

// --- RankingStorage ---

// GetRankings returns the full ranked set for a snapshot date, ordered by rank.
func (s *RankingStore) GetRankings(ctx context.Context, date string) ([]models.RankingEntry, error) {
	sql := "SELECT * FROM ranking WHERE snapshot_date = $date ORDER BY rank ASC"
	vars := map[string]any{"date": date}

	results, err := surrealdb.Query[[]models.RankingEntry](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to get rankings for %s: %w", date, err)
	}

	if results != nil && len(*results) > 0 {
		return (*results)[0].Result, nil
	}
	return nil, nil
}

// GetRankingTickers returns the identifiers ranked on a snapshot date.
func (s *RankingStore) GetRankingTickers(ctx context.Context, date string) ([]string, error) {
	entries, err := s.GetRankings(ctx, date)
	if err != nil {
		return nil, err
	}
	tickers := make([]string, 0, len(entries))
	for _, e := range entries {
		tickers = append(tickers, e.Ticker)
	}
	return tickers, nil
}

type dateResult struct {
	SnapshotDate string `json:"snapshot_date"`
}

// GetLatestDateBefore returns the most recent snapshot date strictly earlier
// than date, or "" when no dated snapshot exists.
func (s *RankingStore) GetLatestDateBefore(ctx context.Context, date string) (string, error) {
	sql := "SELECT snapshot_date FROM ranking WHERE snapshot_date != NONE AND snapshot_date != '' AND snapshot_date < $date ORDER BY snapshot_date DESC LIMIT 1"
	vars := map[string]any{"date": date}

	results, err := surrealdb.Query[[]dateResult](ctx, s.db, sql, vars)
	if err != nil {
		return "", fmt.Errorf("failed to get latest date before %s: %w", date, err)
	}

	if results != nil && len(*results) > 0 && len((*results)[0].Result) > 0 {
		return (*results)[0].Result[0].SnapshotDate, nil
	}
	return "", nil
}

type yearResult struct {
	Year int `json:"year"`
}

// GetLatestYearBefore returns the most recent year-level grouping strictly
// earlier than year among rows lacking an exact date (migration-era data), or
// 0 when none exists.
func (s *RankingStore) GetLatestYearBefore(ctx context.Context, year int) (int, error) {
	sql := "SELECT year FROM ranking WHERE (snapshot_date = NONE OR snapshot_date = '') AND year < $year ORDER BY year DESC LIMIT 1"
	vars := map[string]any{"year": year}

	results, err := surrealdb.Query[[]yearResult](ctx, s.db, sql, vars)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest year before %d: %w", year, err)
	}

	if results != nil && len(*results) > 0 && len((*results)[0].Result) > 0 {
		return (*results)[0].Result[0].Year, nil
	}
	return 0, nil
}

type tickerResult struct {
	Ticker string `json:"ticker"`
}

// GetRankingTickersForYear returns identifiers for a year-level grouping.
func (s *RankingStore) GetRankingTickersForYear(ctx context.Context, year int) ([]string, error) {
	sql := "SELECT ticker FROM ranking WHERE (snapshot_date = NONE OR snapshot_date = '') AND year = $year ORDER BY rank ASC"
	vars := map[string]any{"year": year}

	results, err := surrealdb.Query[[]tickerResult](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to get tickers for year %d: %w", year, err)
	}

	var tickers []string
	if results != nil && len(*results) > 0 {
		for _, r := range (*results)[0].Result {
			tickers = append(tickers, r.Ticker)
		}
	}
	return tickers, nil
}

// GetLatestDate returns the most recent snapshot date, or "" when empty.
func (s *RankingStore) GetLatestDate(ctx context.Context) (string, error) {
	sql := "SELECT snapshot_date FROM ranking WHERE snapshot_date != NONE AND snapshot_date != '' ORDER BY snapshot_date DESC LIMIT 1"

	results, err := surrealdb.Query[[]dateResult](ctx, s.db, sql, nil)
	if err != nil {
		return "", fmt.Errorf("failed to get latest date: %w", err)
	}

	if results != nil && len(*results) > 0 && len((*results)[0].Result) > 0 {
		return (*results)[0].Result[0].SnapshotDate, nil
	}
	return "", nil
}

// GetRankHistory returns rank trajectories across all stored snapshots for the
// top limit tickers of the latest snapshot.
func (s *RankingStore) GetRankHistory(ctx context.Context, limit int) ([]models.RankHistory, error) {
	latest, err := s.GetLatestDate(ctx)
	if err != nil {
		return nil, err
	}
	if latest == "" {
		return nil, nil
	}

	entries, err := s.GetRankings(ctx, latest)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	histories := make([]models.RankHistory, 0, len(entries))
	for _, entry := range entries {
		sql := "SELECT snapshot_date, rank FROM ranking WHERE ticker = $ticker AND snapshot_date != NONE AND snapshot_date != '' ORDER BY snapshot_date ASC"
		vars := map[string]any{"ticker": entry.Ticker}

		results, err := surrealdb.Query[[]models.RankPoint](ctx, s.db, sql, vars)
		if err != nil {
			return nil, fmt.Errorf("failed to get rank history for %s: %w", entry.Ticker, err)
		}

		history := models.RankHistory{Ticker: entry.Ticker, Name: entry.CompanyName}
		if results != nil && len(*results) > 0 {
			history.History = (*results)[0].Result
		}
		histories = append(histories, history)
	}
	return histories, nil
}

// --- PriceStorage ---

func priceRecordID(ticker, date string) surrealmodels.RecordID {
	return surrealmodels.NewRecordID("price", ticker+"|"+date)
}

// GetPrice returns the price row for (identifier, date), or nil when absent.
func (s *RankingStore) GetPrice(ctx context.Context, ticker string, date string) (*models.PriceRecord, error) {
	data, err := surrealdb.Select[models.PriceRecord](ctx, s.db, priceRecordID(ticker, date))
	if err != nil {
		return nil, fmt.Errorf("failed to select price %s/%s: %w", ticker, date, err)
	}
	if data == nil || data.Ticker == "" {
		return nil, nil
	}
	return data, nil
}

// UpsertPrice updates the (identifier, date) row in place, inserting if absent.
func (s *RankingStore) UpsertPrice(ctx context.Context, rec *models.PriceRecord) error {
	sql := "UPSERT $rid CONTENT $data"
	vars := map[string]any{"rid": priceRecordID(rec.Ticker, rec.Date), "data": rec}

	if _, err := surrealdb.Query[[]models.PriceRecord](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to upsert price %s/%s: %w", rec.Ticker, rec.Date, err)
	}
	return nil
}

// --- SnapshotStorage ---

// PersistSnapshot applies entity upserts, replaces the ranking rows for the
// snapshot date (delete-then-insert with ranks from 1) and upserts price rows,
// all inside one SurrealDB transaction. Any statement failure rolls the whole
// write back, so a crash mid-write can never leave a mixed old/new ranking
// visible.
func (s *RankingStore) PersistSnapshot(ctx context.Context, updates []models.CompanyUpdate, date string, entries []models.RankingEntry, prices []models.PriceRecord) error {
	var sql strings.Builder
	vars := map[string]any{"date": date}

	sql.WriteString("BEGIN TRANSACTION;\n")

	for i := range updates {
		stmt, stmtVars := companyUpsertStatement(&updates[i], fmt.Sprintf("c%d", i))
		sql.WriteString(stmt)
		sql.WriteString(";\n")
		for k, v := range stmtVars {
			vars[k] = v
		}
	}

	sql.WriteString("DELETE ranking WHERE snapshot_date = $date;\n")

	for i := range entries {
		key := fmt.Sprintf("r%d", i)
		fmt.Fprintf(&sql, "CREATE ranking CONTENT $%s;\n", key)
		vars[key] = entries[i]
	}

	for i := range prices {
		key := fmt.Sprintf("p%d", i)
		fmt.Fprintf(&sql, "UPSERT type::thing('price', $%s_id) CONTENT $%s;\n", key, key)
		vars[key+"_id"] = prices[i].Ticker + "|" + prices[i].Date
		vars[key] = prices[i]
	}

	sql.WriteString("COMMIT TRANSACTION;")

	if _, err := surrealdb.Query[any](ctx, s.db, sql.String(), vars); err != nil {
		return fmt.Errorf("snapshot transaction for %s failed: %w", date, err)
	}

	s.logger.Info().
		Str("date", date).
		Int("companies", len(updates)).
		Int("rankings", len(entries)).
		Int("prices", len(prices)).
		Msg("Snapshot persisted")
	return nil
}
