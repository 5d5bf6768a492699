package app

import (
	"context"
	"time"

	"github.com/jwchung/apexrank/internal/common"
	"github.com/jwchung/apexrank/internal/interfaces"
)

// startRankingScheduler runs the full ranking pipeline on a fixed interval and
// derives a trend report after each successful run.
func startRankingScheduler(ctx context.Context, rankingService interfaces.RankingService, trendService interfaces.TrendService, logger *common.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Ranking scheduler: stopped")
			return
		case <-ticker.C:
			runRankingCollection(ctx, rankingService, trendService, logger)
		}
	}
}

func runRankingCollection(ctx context.Context, rankingService interfaces.RankingService, trendService interfaces.TrendService, logger *common.Logger) {
	start := time.Now()

	result, err := rankingService.RunRankingPipeline(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Scheduled ranking run failed")
		return
	}

	if _, err := trendService.GenerateTrend(ctx, result); err != nil {
		logger.Warn().Err(err).Msg("Trend report generation failed")
	}

	logger.Info().
		Str("run_id", result.RunID).
		Str("snapshot_date", result.SnapshotDate).
		Dur("elapsed", time.Since(start)).
		Msg("Scheduled ranking run: complete")
}

// startPriceScheduler refreshes daily prices for the latest snapshot's
// constituents on a fixed interval.
func startPriceScheduler(ctx context.Context, rankingService interfaces.RankingService, logger *common.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Price scheduler: stopped")
			return
		case <-ticker.C:
			refreshPrices(ctx, rankingService, logger)
		}
	}
}

func refreshPrices(ctx context.Context, rankingService interfaces.RankingService, logger *common.Logger) {
	start := time.Now()

	count, err := rankingService.RefreshDailyPrices(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Price refresh: failed")
		return
	}

	logger.Info().
		Int("tickers", count).
		Dur("elapsed", time.Since(start)).
		Msg("Price refresh: complete")
}
