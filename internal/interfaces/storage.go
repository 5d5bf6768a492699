package interfaces

import (
	"context"

	"github.com/jwchung/apexrank/internal/models"
)

// CompanyStorage manages entity master records.
type CompanyStorage interface {
	// GetCompany retrieves one entity by canonical identifier.
	GetCompany(ctx context.Context, ticker string) (*models.Company, error)

	// GetCompanies retrieves entities for a batch of identifiers.
	// Unknown identifiers are simply absent from the result.
	GetCompanies(ctx context.Context, tickers []string) ([]*models.Company, error)

	// UpsertCompany applies one update with preserve-on-null semantics:
	// empty incoming fields leave the stored value untouched unless listed
	// in the update's Explicit set.
	UpsertCompany(ctx context.Context, update *models.CompanyUpdate) error
}

// RankingStorage manages ranking snapshots.
type RankingStorage interface {
	// GetRankings returns the full ranked set for a snapshot date, ordered by rank.
	GetRankings(ctx context.Context, date string) ([]models.RankingEntry, error)

	// GetRankingTickers returns the identifiers ranked on a snapshot date.
	GetRankingTickers(ctx context.Context, date string) ([]string, error)

	// GetLatestDateBefore returns the most recent snapshot date strictly
	// earlier than date, or "" when no dated snapshot exists.
	GetLatestDateBefore(ctx context.Context, date string) (string, error)

	// GetLatestYearBefore returns the most recent year-level grouping
	// strictly earlier than year among rows lacking an exact date
	// (migration-era data), or 0 when none exists.
	GetLatestYearBefore(ctx context.Context, year int) (int, error)

	// GetRankingTickersForYear returns identifiers for a year-level grouping.
	GetRankingTickersForYear(ctx context.Context, year int) ([]string, error)

	// GetLatestDate returns the most recent snapshot date, or "" when empty.
	GetLatestDate(ctx context.Context) (string, error)

	// GetRankHistory returns rank trajectories across all stored snapshots
	// for the top limit tickers of the latest snapshot.
	GetRankHistory(ctx context.Context, limit int) ([]models.RankHistory, error)
}

// PriceStorage manages (identifier, date) price rows.
type PriceStorage interface {
	GetPrice(ctx context.Context, ticker string, date string) (*models.PriceRecord, error)
	UpsertPrice(ctx context.Context, rec *models.PriceRecord) error
}

// SnapshotStorage persists one full ranking run atomically.
type SnapshotStorage interface {
	// PersistSnapshot applies entity upserts, replaces the ranking rows for
	// the snapshot date (delete-then-insert), and upserts price rows, all
	// within a single transaction. Any failure rolls the whole write back.
	PersistSnapshot(ctx context.Context, updates []models.CompanyUpdate, date string, entries []models.RankingEntry, prices []models.PriceRecord) error
}

// TrendStorage manages sector trend reports.
type TrendStorage interface {
	SaveTrend(ctx context.Context, trend *models.SectorTrend) error
	GetLatestTrend(ctx context.Context) (*models.SectorTrend, error)
}

// SystemStorage holds small operational key/values (last run date, etc).
type SystemStorage interface {
	// GetSystemKV returns "" without error for an unknown key.
	GetSystemKV(ctx context.Context, key string) (string, error)
	SetSystemKV(ctx context.Context, key, value string) error
}

// StorageManager provides access to all storage areas.
type StorageManager interface {
	CompanyStorage() CompanyStorage
	RankingStorage() RankingStorage
	PriceStorage() PriceStorage
	SnapshotStorage() SnapshotStorage
	TrendStorage() TrendStorage
	SystemStorage() SystemStorage

	// WriteRaw writes a raw artifact (e.g. a rendered chart) under the data path.
	WriteRaw(subdir, key string, data []byte) error

	Close() error
}
