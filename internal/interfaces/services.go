package interfaces

import (
	"context"

	"github.com/jwchung/apexrank/internal/models"
)

// RankingService runs the global top-N ranking pipeline.
type RankingService interface {
	// RunRankingPipeline executes harvest → resolve → fetch → select →
	// diff → persist and returns the ranked items, snapshot date and delta.
	RunRankingPipeline(ctx context.Context) (*models.RankingRunResult, error)

	// RefreshDailyPrices re-fetches price/value/volume for the most recent
	// snapshot's constituents and upserts today's price rows. Returns the
	// number of identifiers refreshed.
	RefreshDailyPrices(ctx context.Context) (int, error)
}

// TrendService derives and stores sector trend reports.
type TrendService interface {
	// GenerateTrend builds a trend report from a completed ranking run and
	// persists it.
	GenerateTrend(ctx context.Context, run *models.RankingRunResult) (*models.SectorTrend, error)

	// LatestTrend returns the most recently stored trend report.
	LatestTrend(ctx context.Context) (*models.SectorTrend, error)
}
