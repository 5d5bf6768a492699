// Package trend derives sector trend reports from completed ranking runs.
package trend

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jwchung/apexrank/internal/common"
	"github.com/jwchung/apexrank/internal/interfaces"
	"github.com/jwchung/apexrank/internal/models"
)

const chartHistoryLimit = 10

// Service builds and stores SectorTrend reports.
type Service struct {
	storage interfaces.StorageManager
	ai      interfaces.AIClient // optional
	logger  *common.Logger
}

// NewService creates the trend service. ai may be nil; commentary is then
// omitted from the reports.
func NewService(storage interfaces.StorageManager, ai interfaces.AIClient, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewDefaultLogger()
	}
	return &Service{storage: storage, ai: ai, logger: logger}
}

// GenerateTrend builds a trend report from a completed ranking run and
// persists it. Commentary and chart rendering are best-effort: their failure
// never fails the report.
func (s *Service) GenerateTrend(ctx context.Context, run *models.RankingRunResult) (*models.SectorTrend, error) {
	if run == nil || run.Delta == nil {
		return nil, fmt.Errorf("trend generation needs a completed run with a delta")
	}

	trend := &models.SectorTrend{
		Date:            run.SnapshotDate,
		DominantSectors: dominantSectors(run.Delta.SectorCounts, len(run.Items)),
		NewEntries:      currentRefs(run.Items, run.Delta.Entrants),
		Exited:          s.exitedRefs(ctx, run.Delta.Exits),
		CreatedAt:       time.Now().UTC(),
	}

	if s.ai != nil {
		commentary, err := s.ai.GenerateContent(ctx, buildTrendPrompt(trend))
		if err != nil {
			s.logger.Warn().Err(err).Msg("Trend commentary generation failed, continuing without")
		} else {
			trend.Commentary = strings.TrimSpace(commentary)
		}
	}

	if file := s.renderChart(ctx, run.SnapshotDate); file != "" {
		trend.ChartFile = file
	}

	if err := s.storage.TrendStorage().SaveTrend(ctx, trend); err != nil {
		return nil, fmt.Errorf("saving trend report: %w", err)
	}

	s.logger.Info().
		Str("date", trend.Date).
		Int("sectors", len(trend.DominantSectors)).
		Int("new_entries", len(trend.NewEntries)).
		Int("exited", len(trend.Exited)).
		Msg("Trend report saved")
	return trend, nil
}

// LatestTrend returns the most recently stored trend report.
func (s *Service) LatestTrend(ctx context.Context) (*models.SectorTrend, error) {
	return s.storage.TrendStorage().GetLatestTrend(ctx)
}

// dominantSectors turns the delta's sector counts into shares sorted by count
// descending, name ascending for equal counts.
func dominantSectors(counts map[string]int, total int) []models.SectorShare {
	shares := make([]models.SectorShare, 0, len(counts))
	for name, count := range counts {
		share := models.SectorShare{Name: name, Count: count}
		if total > 0 {
			share.Percentage = float64(count) / float64(total) * 100
		}
		shares = append(shares, share)
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Count != shares[j].Count {
			return shares[i].Count > shares[j].Count
		}
		return shares[i].Name < shares[j].Name
	})
	return shares
}

// currentRefs resolves tickers against the current snapshot for name and rank.
func currentRefs(items []models.SnapshotItem, tickers []string) []models.RankingRef {
	index := make(map[string]int, len(items))
	for i, item := range items {
		index[item.Ticker] = i
	}

	refs := make([]models.RankingRef, 0, len(tickers))
	for _, t := range tickers {
		ref := models.RankingRef{Ticker: t}
		if i, ok := index[t]; ok {
			ref.Name = items[i].Name
			ref.Rank = i + 1
		}
		refs = append(refs, ref)
	}
	return refs
}

// exitedRefs resolves exited tickers against the entity master for display
// names. Exits have no rank in the current snapshot.
func (s *Service) exitedRefs(ctx context.Context, tickers []string) []models.RankingRef {
	refs := make([]models.RankingRef, 0, len(tickers))
	names := make(map[string]string)

	companies, err := s.storage.CompanyStorage().GetCompanies(ctx, tickers)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Could not resolve names for exited tickers")
	} else {
		for _, c := range companies {
			names[c.Ticker] = c.Name
		}
	}

	for _, t := range tickers {
		refs = append(refs, models.RankingRef{Ticker: t, Name: names[t]})
	}
	return refs
}

// renderChart renders the rank-history chart and writes it under the data
// path. Returns the file name, or "" when there is not enough history.
func (s *Service) renderChart(ctx context.Context, date string) string {
	histories, err := s.storage.RankingStorage().GetRankHistory(ctx, chartHistoryLimit)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Rank history lookup failed, skipping chart")
		return ""
	}

	png, err := RenderRankChart(histories)
	if err != nil {
		s.logger.Debug().Err(err).Msg("Skipping rank chart")
		return ""
	}

	file := fmt.Sprintf("rank_history_%s.png", date)
	if err := s.storage.WriteRaw("charts", file, png); err != nil {
		s.logger.Warn().Err(err).Msg("Could not write rank chart")
		return ""
	}
	return file
}

// buildTrendPrompt creates a prompt summarizing the report for commentary.
func buildTrendPrompt(trend *models.SectorTrend) string {
	var sb strings.Builder
	sb.WriteString("You are a financial analyst. Write a concise (3-4 sentence) commentary on the latest global top-100 market-cap ranking.\n\n")
	fmt.Fprintf(&sb, "Snapshot date: %s\n\nSector distribution:\n", trend.Date)
	for _, s := range trend.DominantSectors {
		fmt.Fprintf(&sb, "- %s: %d companies (%.1f%%)\n", s.Name, s.Count, s.Percentage)
	}

	if len(trend.NewEntries) > 0 {
		sb.WriteString("\nNew entries:\n")
		for _, e := range trend.NewEntries {
			fmt.Fprintf(&sb, "- %s (%s) at rank %d\n", e.Name, e.Ticker, e.Rank)
		}
	}
	if len(trend.Exited) > 0 {
		sb.WriteString("\nDropped out:\n")
		for _, e := range trend.Exited {
			fmt.Fprintf(&sb, "- %s (%s)\n", e.Name, e.Ticker)
		}
	}

	sb.WriteString("\nFocus on sector concentration and notable movements. Plain prose, no headers.")
	return sb.String()
}

// Ensure Service implements TrendService
var _ interfaces.TrendService = (*Service)(nil)
