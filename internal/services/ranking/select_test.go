package ranking

import (
	"testing"

	"github.com/jwchung/apexrank/internal/models"
)

func item(ticker string, usd float64) models.SnapshotItem {
	return models.SnapshotItem{Ticker: ticker, MarketCapUSD: &usd}
}

func TestSelectTopN_OrdersByUSDValueDescending(t *testing.T) {
	items := []models.SnapshotItem{
		item("SMALL", 1e9),
		item("BIG", 3e12),
		item("MID", 5e11),
	}

	top := SelectTopN(items, 3)

	want := []string{"BIG", "MID", "SMALL"}
	for i, w := range want {
		if top[i].Ticker != w {
			t.Errorf("rank %d: got %s, want %s", i+1, top[i].Ticker, w)
		}
	}
}

func TestSelectTopN_Truncates(t *testing.T) {
	items := []models.SnapshotItem{
		item("A", 4), item("B", 3), item("C", 2), item("D", 1),
	}

	top := SelectTopN(items, 2)
	if len(top) != 2 {
		t.Fatalf("expected 2 items, got %d", len(top))
	}
	if top[0].Ticker != "A" || top[1].Ticker != "B" {
		t.Errorf("unexpected top set: %s, %s", top[0].Ticker, top[1].Ticker)
	}
}

func TestSelectTopN_DoesNotMutateInput(t *testing.T) {
	items := []models.SnapshotItem{
		item("LOW", 1),
		item("HIGH", 2),
	}

	SelectTopN(items, 2)

	if items[0].Ticker != "LOW" || items[1].Ticker != "HIGH" {
		t.Error("input slice order was mutated")
	}
}

func TestSelectTopN_TiesKeepInputOrder(t *testing.T) {
	items := []models.SnapshotItem{
		item("FIRST", 100),
		item("SECOND", 100),
		item("THIRD", 100),
	}

	top := SelectTopN(items, 3)
	want := []string{"FIRST", "SECOND", "THIRD"}
	for i, w := range want {
		if top[i].Ticker != w {
			t.Errorf("tie order changed: position %d got %s, want %s", i, top[i].Ticker, w)
		}
	}
}

func TestSelectTopN_NLargerThanInput(t *testing.T) {
	items := []models.SnapshotItem{item("ONLY", 1)}
	top := SelectTopN(items, 100)
	if len(top) != 1 {
		t.Fatalf("expected 1 item, got %d", len(top))
	}
}
