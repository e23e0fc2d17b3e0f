// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/Gjorgji13/gradetrack/internal/domain/model"
)

// StatsProvider supplies the service state snapshot served at /stats.
type StatsProvider interface {
	GetStats() model.Stats
}

// StatsHandler serves the service stats snapshot.
type StatsHandler struct {
	statsProvider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider}
}

// HandleStats handles GET /stats requests with the grade policy and
// entity counters.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.statsProvider.GetStats())
}
