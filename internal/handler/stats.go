package handler

import (
	"log/slog"
	"net/http"

	"github.com/patinho/quack-board/internal/service"
)

// StatsHandler exposes the board-wide aggregates endpoint.
type StatsHandler struct {
	stats  *service.StatsService
	logger *slog.Logger
}

// NewStatsHandler creates a StatsHandler.
func NewStatsHandler(stats *service.StatsService, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{
		stats:  stats,
		logger: logger,
	}
}

// HandleStats returns question/answer totals, the accepted count and the
// per-language breakdown.
//
// HTTP: GET /api/stats
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
