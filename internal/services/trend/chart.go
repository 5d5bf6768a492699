package trend

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/jwchung/apexrank/internal/models"
)

// seriesPalette cycles across the plotted tickers.
var seriesPalette = []string{
	"2563eb", // blue-600
	"dc2626", // red-600
	"16a34a", // green-600
	"9333ea", // purple-600
	"ea580c", // orange-600
	"0891b2", // cyan-600
	"ca8a04", // yellow-600
	"db2777", // pink-600
	"4b5563", // gray-600
	"65a30d", // lime-600
}

// RenderRankChart renders a PNG line chart of rank trajectories across stored
// snapshots. The Y axis is inverted by plotting negative ranks so rank 1 sits
// on top. Returns raw PNG bytes.
func RenderRankChart(histories []models.RankHistory) ([]byte, error) {
	series := make([]chart.Series, 0, len(histories))
	plotted := 0

	for _, h := range histories {
		if len(h.History) < 2 {
			continue
		}

		xValues := make([]time.Time, 0, len(h.History))
		yValues := make([]float64, 0, len(h.History))
		for _, p := range h.History {
			date, err := time.Parse(models.DateKey, p.SnapshotDate)
			if err != nil {
				continue
			}
			xValues = append(xValues, date)
			yValues = append(yValues, -float64(p.Rank))
		}
		if len(xValues) < 2 {
			continue
		}

		name := h.Ticker
		if h.Name != "" {
			name = h.Name
		}
		series = append(series, chart.TimeSeries{
			Name: name,
			Style: chart.Style{
				StrokeColor: drawing.ColorFromHex(seriesPalette[plotted%len(seriesPalette)]),
				StrokeWidth: 2.0,
			},
			XValues: xValues,
			YValues: yValues,
		})
		plotted++
	}

	if len(series) == 0 {
		return nil, fmt.Errorf("no ticker has enough history to chart")
	}

	graph := chart.Chart{
		Title:  "Rank History",
		Width:  900,
		Height: 500,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("#%.0f", -f)
				}
				return ""
			},
		},
		Series: series,
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
