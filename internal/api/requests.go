package api

import (
	"net/http"

	"github.com/seantiz/prism/internal/model"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// listGenerationsResponse wraps the paginated journal listing.
type listGenerationsResponse struct {
	Generations []*model.Generation `json:"generations"`
	Total       int                 `json:"total"`
	Limit       int                 `json:"limit"`
	Offset      int                 `json:"offset"`
}

// statsResponse is the JSON response for GET /api/stats.
type statsResponse struct {
	Total         int            `json:"total"`
	ByStatus      map[string]int `json:"by_status"`
	AvgDurationMS float64        `json:"avg_duration_ms"`
}

func (s *Server) handleListRequests(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", defaultListLimit)
	offset := parseIntQuery(r, "offset", 0)

	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}

	generations, total, err := s.store.ListGenerations(r.Context(), limit, offset)
	if err != nil {
		s.logger.Error("list generations", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list requests")
		return
	}

	if generations == nil {
		generations = []*model.Generation{}
	}

	s.writeJSON(w, http.StatusOK, listGenerationsResponse{
		Generations: generations,
		Total:       total,
		Limit:       limit,
		Offset:      offset,
	})
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetGenerationStats(r.Context())
	if err != nil {
		s.logger.Error("get generation stats", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}

	s.writeJSON(w, http.StatusOK, statsResponse{
		Total:         stats.Total,
		ByStatus:      stats.CountByStatus,
		AvgDurationMS: stats.AvgDurationMS,
	})
}
