package trend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jwchung/apexrank/internal/common"
	"github.com/jwchung/apexrank/internal/interfaces"
	"github.com/jwchung/apexrank/internal/models"
)

func fptr(v float64) *float64 { return &v }

type stubStorage struct {
	companies map[string]*models.Company
	histories []models.RankHistory
	saved     []*models.SectorTrend
	raw       map[string][]byte
}

func newStubStorage() *stubStorage {
	return &stubStorage{
		companies: make(map[string]*models.Company),
		raw:       make(map[string][]byte),
	}
}

func (s *stubStorage) CompanyStorage() interfaces.CompanyStorage   { return s }
func (s *stubStorage) RankingStorage() interfaces.RankingStorage   { return s }
func (s *stubStorage) PriceStorage() interfaces.PriceStorage       { return nil }
func (s *stubStorage) SnapshotStorage() interfaces.SnapshotStorage { return nil }
func (s *stubStorage) TrendStorage() interfaces.TrendStorage       { return s }
func (s *stubStorage) SystemStorage() interfaces.SystemStorage     { return nil }
func (s *stubStorage) Close() error                                { return nil }

func (s *stubStorage) WriteRaw(subdir, key string, data []byte) error {
	s.raw[subdir+"/"+key] = data
	return nil
}

func (s *stubStorage) GetCompany(ctx context.Context, ticker string) (*models.Company, error) {
	return s.companies[ticker], nil
}

func (s *stubStorage) GetCompanies(ctx context.Context, tickers []string) ([]*models.Company, error) {
	var out []*models.Company
	for _, t := range tickers {
		if c, ok := s.companies[t]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *stubStorage) UpsertCompany(ctx context.Context, update *models.CompanyUpdate) error {
	return nil
}

func (s *stubStorage) GetRankings(ctx context.Context, date string) ([]models.RankingEntry, error) {
	return nil, nil
}
func (s *stubStorage) GetRankingTickers(ctx context.Context, date string) ([]string, error) {
	return nil, nil
}
func (s *stubStorage) GetLatestDateBefore(ctx context.Context, date string) (string, error) {
	return "", nil
}
func (s *stubStorage) GetLatestYearBefore(ctx context.Context, year int) (int, error) { return 0, nil }
func (s *stubStorage) GetRankingTickersForYear(ctx context.Context, year int) ([]string, error) {
	return nil, nil
}
func (s *stubStorage) GetLatestDate(ctx context.Context) (string, error) { return "", nil }
func (s *stubStorage) GetRankHistory(ctx context.Context, limit int) ([]models.RankHistory, error) {
	return s.histories, nil
}

func (s *stubStorage) SaveTrend(ctx context.Context, trend *models.SectorTrend) error {
	s.saved = append(s.saved, trend)
	return nil
}

func (s *stubStorage) GetLatestTrend(ctx context.Context) (*models.SectorTrend, error) {
	if len(s.saved) == 0 {
		return nil, nil
	}
	return s.saved[len(s.saved)-1], nil
}

type stubAI struct {
	response string
	err      error
	prompts  []string
}

func (a *stubAI) GenerateContent(ctx context.Context, prompt string) (string, error) {
	a.prompts = append(a.prompts, prompt)
	if a.err != nil {
		return "", a.err
	}
	return a.response, nil
}

func sampleRun() *models.RankingRunResult {
	return &models.RankingRunResult{
		RunID:        "run-1",
		SnapshotDate: "2024-06-01",
		Items: []models.SnapshotItem{
			{Ticker: "AAPL", Name: "Apple Inc.", Sector: "Technology", MarketCapUSD: fptr(3.4e12)},
			{Ticker: "NVDA", Name: "NVIDIA", Sector: "Technology", MarketCapUSD: fptr(3.2e12)},
			{Ticker: "XOM", Name: "Exxon Mobil", Sector: "Energy", MarketCapUSD: fptr(5e11)},
			{Ticker: "MYSTERY", Name: "Mystery Co", MarketCapUSD: fptr(1e11)},
		},
		Delta: &models.RankingDelta{
			PreviousDate: "2024-05-01",
			Entrants:     []string{"NVDA"},
			Exits:        []string{"GONE"},
			SectorCounts: map[string]int{"Technology": 2, "Energy": 1, "Unknown": 1},
		},
	}
}

func TestGenerateTrend_BuildsAndSavesReport(t *testing.T) {
	storage := newStubStorage()
	storage.companies["GONE"] = &models.Company{Ticker: "GONE", Name: "Gone Corp"}

	svc := NewService(storage, nil, common.NewSilentLogger())
	trend, err := svc.GenerateTrend(context.Background(), sampleRun())
	if err != nil {
		t.Fatalf("GenerateTrend failed: %v", err)
	}

	if trend.Date != "2024-06-01" {
		t.Errorf("expected date 2024-06-01, got %s", trend.Date)
	}

	if len(trend.DominantSectors) != 3 {
		t.Fatalf("expected 3 sectors, got %d", len(trend.DominantSectors))
	}
	first := trend.DominantSectors[0]
	if first.Name != "Technology" || first.Count != 2 || first.Percentage != 50.0 {
		t.Errorf("unexpected dominant sector: %+v", first)
	}

	if len(trend.NewEntries) != 1 {
		t.Fatalf("expected 1 new entry, got %d", len(trend.NewEntries))
	}
	entry := trend.NewEntries[0]
	if entry.Ticker != "NVDA" || entry.Name != "NVIDIA" || entry.Rank != 2 {
		t.Errorf("unexpected new entry: %+v", entry)
	}

	if len(trend.Exited) != 1 {
		t.Fatalf("expected 1 exit, got %d", len(trend.Exited))
	}
	if trend.Exited[0].Name != "Gone Corp" {
		t.Errorf("expected exit name resolved from master, got %+v", trend.Exited[0])
	}

	if len(storage.saved) != 1 {
		t.Fatal("trend was not persisted")
	}
	if trend.CreatedAt.IsZero() || time.Since(trend.CreatedAt) > time.Minute {
		t.Error("expected a fresh CreatedAt timestamp")
	}
}

func TestGenerateTrend_CommentaryFromAI(t *testing.T) {
	storage := newStubStorage()
	ai := &stubAI{response: "Tech concentration keeps climbing.\n"}

	svc := NewService(storage, ai, common.NewSilentLogger())
	trend, err := svc.GenerateTrend(context.Background(), sampleRun())
	if err != nil {
		t.Fatalf("GenerateTrend failed: %v", err)
	}

	if trend.Commentary != "Tech concentration keeps climbing." {
		t.Errorf("unexpected commentary: %q", trend.Commentary)
	}
	if len(ai.prompts) != 1 {
		t.Fatalf("expected 1 prompt, got %d", len(ai.prompts))
	}
}

func TestGenerateTrend_AIFailureIsNotFatal(t *testing.T) {
	storage := newStubStorage()
	ai := &stubAI{err: errors.New("quota exceeded")}

	svc := NewService(storage, ai, common.NewSilentLogger())
	trend, err := svc.GenerateTrend(context.Background(), sampleRun())
	if err != nil {
		t.Fatalf("AI failure must not fail the report: %v", err)
	}
	if trend.Commentary != "" {
		t.Errorf("expected empty commentary, got %q", trend.Commentary)
	}
	if len(storage.saved) != 1 {
		t.Error("report should still be persisted")
	}
}

func TestGenerateTrend_ChartWrittenWithEnoughHistory(t *testing.T) {
	storage := newStubStorage()
	storage.histories = []models.RankHistory{
		{Ticker: "AAPL", Name: "Apple Inc.", History: []models.RankPoint{
			{SnapshotDate: "2024-05-01", Rank: 1},
			{SnapshotDate: "2024-06-01", Rank: 2},
		}},
		{Ticker: "NVDA", Name: "NVIDIA", History: []models.RankPoint{
			{SnapshotDate: "2024-05-01", Rank: 3},
			{SnapshotDate: "2024-06-01", Rank: 1},
		}},
	}

	svc := NewService(storage, nil, common.NewSilentLogger())
	trend, err := svc.GenerateTrend(context.Background(), sampleRun())
	if err != nil {
		t.Fatalf("GenerateTrend failed: %v", err)
	}

	if trend.ChartFile != "rank_history_2024-06-01.png" {
		t.Errorf("unexpected chart file: %q", trend.ChartFile)
	}
	if len(storage.raw["charts/"+trend.ChartFile]) == 0 {
		t.Error("expected PNG bytes written under charts/")
	}
}

func TestGenerateTrend_SingleSnapshotSkipsChart(t *testing.T) {
	storage := newStubStorage()
	storage.histories = []models.RankHistory{
		{Ticker: "AAPL", History: []models.RankPoint{{SnapshotDate: "2024-06-01", Rank: 1}}},
	}

	svc := NewService(storage, nil, common.NewSilentLogger())
	trend, err := svc.GenerateTrend(context.Background(), sampleRun())
	if err != nil {
		t.Fatalf("GenerateTrend failed: %v", err)
	}
	if trend.ChartFile != "" {
		t.Errorf("expected no chart with a single snapshot, got %q", trend.ChartFile)
	}
}

func TestRenderRankChart_NoUsableHistory(t *testing.T) {
	if _, err := RenderRankChart(nil); err == nil {
		t.Fatal("expected error with no histories")
	}
}
