package surrealdb

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/jwchung/apexrank/internal/common"
	"github.com/jwchung/apexrank/internal/models"
)

// TrendStore manages sector trend reports, keyed by snapshot date so a re-run
// replaces that date's report.
type TrendStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewTrendStore(db *surrealdb.DB, logger *common.Logger) *TrendStore {
	return &TrendStore{db: db, logger: logger}
}

func (s *TrendStore) SaveTrend(ctx context.Context, trend *models.SectorTrend) error {
	sql := "UPSERT $rid CONTENT $data"
	vars := map[string]any{
		"rid":  surrealmodels.NewRecordID("sector_trend", trend.Date),
		"data": trend,
	}

	if _, err := surrealdb.Query[[]models.SectorTrend](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to save trend for %s: %w", trend.Date, err)
	}
	return nil
}

func (s *TrendStore) GetLatestTrend(ctx context.Context) (*models.SectorTrend, error) {
	sql := "SELECT * FROM sector_trend ORDER BY date DESC LIMIT 1"

	results, err := surrealdb.Query[[]models.SectorTrend](ctx, s.db, sql, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest trend: %w", err)
	}

	if results != nil && len(*results) > 0 && len((*results)[0].Result) > 0 {
		return &(*results)[0].Result[0], nil
	}
	return nil, nil
}
