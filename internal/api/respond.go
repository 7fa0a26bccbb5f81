package api

import (
	"encoding/json"
	"net/http"
	"strconv"
)

const maxBodySize = 1 << 20 // 1 MB

// errorResponse is the JSON error shape returned by every handler.
// QuotaExceeded is set only for provider quota rejections so clients can
// show a specific remediation message.
type errorResponse struct {
	Error         string `json:"error"`
	QuotaExceeded bool   `json:"quota_exceeded,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Error: message})
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return n
}
