package data

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwchung/apexrank/internal/models"
)

func TestTrendStore_SaveAndGetLatest(t *testing.T) {
	mgr := testManager(t)
	ctx := testContext()

	older := &models.SectorTrend{
		Date: "2024-05-01",
		DominantSectors: []models.SectorShare{
			{Name: "Technology", Count: 40, Percentage: 40},
		},
		CreatedAt: time.Now().UTC(),
	}
	newer := &models.SectorTrend{
		Date: "2024-06-01",
		DominantSectors: []models.SectorShare{
			{Name: "Technology", Count: 45, Percentage: 45},
			{Name: "Energy", Count: 10, Percentage: 10},
		},
		NewEntries: []models.RankingRef{{Ticker: "NVDA", Name: "NVIDIA Corporation", Rank: 3}},
		Exited:     []models.RankingRef{{Ticker: "GONE", Name: "Gone Corp"}},
		Commentary: "Technology extended its lead this period.",
		ChartFile:  "charts/rank_history_2024-06-01.png",
		CreatedAt:  time.Now().UTC(),
	}

	require.NoError(t, mgr.TrendStorage().SaveTrend(ctx, older))
	require.NoError(t, mgr.TrendStorage().SaveTrend(ctx, newer))

	latest, err := mgr.TrendStorage().GetLatestTrend(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "2024-06-01", latest.Date)
	assert.Len(t, latest.DominantSectors, 2)
	require.Len(t, latest.NewEntries, 1)
	assert.Equal(t, "NVDA", latest.NewEntries[0].Ticker)
	assert.Equal(t, "Technology extended its lead this period.", latest.Commentary)
	assert.Equal(t, "charts/rank_history_2024-06-01.png", latest.ChartFile)
}

func TestTrendStore_SaveSameDateOverwrites(t *testing.T) {
	mgr := testManager(t)
	ctx := testContext()

	first := &models.SectorTrend{Date: "2024-06-01", Commentary: "first pass", CreatedAt: time.Now().UTC()}
	second := &models.SectorTrend{Date: "2024-06-01", Commentary: "rerun after fix", CreatedAt: time.Now().UTC()}

	require.NoError(t, mgr.TrendStorage().SaveTrend(ctx, first))
	require.NoError(t, mgr.TrendStorage().SaveTrend(ctx, second))

	latest, err := mgr.TrendStorage().GetLatestTrend(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "rerun after fix", latest.Commentary)
}

func TestTrendStore_EmptyReturnsNil(t *testing.T) {
	mgr := testManager(t)
	ctx := testContext()

	latest, err := mgr.TrendStorage().GetLatestTrend(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest)
}
