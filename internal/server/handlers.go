package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/jwchung/apexrank/internal/models"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/collect/rankings", s.handleCollectRankings)
	mux.HandleFunc("/api/rankings/history", s.handleRankingHistory)
	mux.HandleFunc("/api/rankings/", s.handleRankingsByDate)
	mux.HandleFunc("/api/trends/latest", s.handleLatestTrend)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	payload := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.app.StartupTime).String(),
	}
	if lastRun, err := s.app.Storage.SystemStorage().GetSystemKV(r.Context(), "last_ranking_run"); err == nil && lastRun != "" {
		payload["last_ranking_run"] = lastRun
	}
	if lastRefresh, err := s.app.Storage.SystemStorage().GetSystemKV(r.Context(), "last_price_refresh"); err == nil && lastRefresh != "" {
		payload["last_price_refresh"] = lastRefresh
	}
	WriteJSON(w, http.StatusOK, payload)
}

// handleCollectRankings triggers a full ranking run synchronously and derives
// a trend report from the result.
func (s *Server) handleCollectRankings(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	result, err := s.app.RankingService.RunRankingPipeline(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Ranking run failed")
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if _, err := s.app.TrendService.GenerateTrend(r.Context(), result); err != nil {
		s.logger.Warn().Err(err).Msg("Trend report generation failed")
	}

	WriteJSON(w, http.StatusOK, result)
}

// handleRankingsByDate serves GET /api/rankings/{date}. "latest" resolves to
// the most recent snapshot date.
func (s *Server) handleRankingsByDate(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	date := strings.TrimPrefix(r.URL.Path, "/api/rankings/")
	if date == "" {
		WriteError(w, http.StatusBadRequest, "Snapshot date is required")
		return
	}

	if date == "latest" {
		latest, err := s.app.Storage.RankingStorage().GetLatestDate(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if latest == "" {
			WriteError(w, http.StatusNotFound, "No snapshot stored yet")
			return
		}
		date = latest
	}

	if _, err := time.Parse(models.DateKey, date); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid snapshot date, expected YYYY-MM-DD")
		return
	}

	entries, err := s.app.Storage.RankingStorage().GetRankings(r.Context(), date)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"snapshot_date": date,
		"rankings":      entries,
	})
}

// handleRankingHistory serves rank trajectories for the latest snapshot's
// top 10, bump-chart shaped.
func (s *Server) handleRankingHistory(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	histories, err := s.app.Storage.RankingStorage().GetRankHistory(r.Context(), 10)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"history": histories,
	})
}

func (s *Server) handleLatestTrend(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	trend, err := s.app.TrendService.LatestTrend(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if trend == nil {
		WriteError(w, http.StatusNotFound, "No trend report stored yet")
		return
	}

	WriteJSON(w, http.StatusOK, trend)
}
