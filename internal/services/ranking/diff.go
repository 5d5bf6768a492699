package ranking

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/jwchung/apexrank/internal/common"
	"github.com/jwchung/apexrank/internal/interfaces"
	"github.com/jwchung/apexrank/internal/models"
)

// UnknownSector is the reserved bucket for items lacking a sector field.
const UnknownSector = "Unknown"

// DiffEngine compares a new snapshot against stored history. It only reads;
// calling it repeatedly with the same inputs yields the same delta.
type DiffEngine struct {
	rankings interfaces.RankingStorage
	logger   *common.Logger
}

// NewDiffEngine creates a diff engine over ranking storage.
func NewDiffEngine(rankings interfaces.RankingStorage, logger *common.Logger) *DiffEngine {
	if logger == nil {
		logger = common.NewDefaultLogger()
	}
	return &DiffEngine{rankings: rankings, logger: logger}
}

// Diff computes the change set between the current items and the most recent
// prior snapshot strictly before snapshotDate. When no dated snapshot exists it
// falls back to the most recent prior year-level grouping before concluding
// there is no history. The sector distribution always covers every current
// item exactly once.
func (e *DiffEngine) Diff(ctx context.Context, items []models.SnapshotItem, snapshotDate string) (*models.RankingDelta, error) {
	delta := &models.RankingDelta{
		Entrants:     []string{},
		Exits:        []string{},
		SectorCounts: sectorCounts(items),
	}

	previous, err := e.previousTickers(ctx, snapshotDate, delta)
	if err != nil {
		return nil, err
	}
	if !delta.HasHistory() {
		// First snapshot ever: nothing enters or exits.
		return delta, nil
	}

	current := make(map[string]bool, len(items))
	for _, item := range items {
		current[item.Ticker] = true
	}
	prior := make(map[string]bool, len(previous))
	for _, t := range previous {
		prior[t] = true
	}

	for t := range current {
		if !prior[t] {
			delta.Entrants = append(delta.Entrants, t)
		}
	}
	for t := range prior {
		if !current[t] {
			delta.Exits = append(delta.Exits, t)
		}
	}
	sort.Strings(delta.Entrants)
	sort.Strings(delta.Exits)

	e.logger.Info().
		Str("previous_date", delta.PreviousDate).
		Int("previous_year", delta.PreviousYear).
		Int("entrants", len(delta.Entrants)).
		Int("exits", len(delta.Exits)).
		Msg("Ranking delta computed")
	return delta, nil
}

// previousTickers locates the prior constituent set, recording which form of
// history was found on the delta.
func (e *DiffEngine) previousTickers(ctx context.Context, snapshotDate string, delta *models.RankingDelta) ([]string, error) {
	prevDate, err := e.rankings.GetLatestDateBefore(ctx, snapshotDate)
	if err != nil {
		return nil, fmt.Errorf("looking up prior snapshot date: %w", err)
	}
	if prevDate != "" {
		delta.PreviousDate = prevDate
		tickers, err := e.rankings.GetRankingTickers(ctx, prevDate)
		if err != nil {
			return nil, fmt.Errorf("loading prior snapshot %s: %w", prevDate, err)
		}
		return tickers, nil
	}

	// Migration-era rows carry only a year.
	if len(snapshotDate) < 4 {
		return nil, fmt.Errorf("invalid snapshot date %q", snapshotDate)
	}
	year, err := strconv.Atoi(snapshotDate[:4])
	if err != nil {
		return nil, fmt.Errorf("invalid snapshot date %q: %w", snapshotDate, err)
	}
	prevYear, err := e.rankings.GetLatestYearBefore(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("looking up prior snapshot year: %w", err)
	}
	if prevYear == 0 {
		return nil, nil
	}
	delta.PreviousYear = prevYear
	tickers, err := e.rankings.GetRankingTickersForYear(ctx, prevYear)
	if err != nil {
		return nil, fmt.Errorf("loading prior year grouping %d: %w", prevYear, err)
	}
	return tickers, nil
}

// sectorCounts buckets every item by sector, with the Unknown bucket for items
// lacking one. Counts always sum to len(items).
func sectorCounts(items []models.SnapshotItem) map[string]int {
	counts := make(map[string]int)
	for _, item := range items {
		sector := item.Sector
		if sector == "" {
			sector = UnknownSector
		}
		counts[sector]++
	}
	return counts
}
