package api

import "net/http"

// debugResponse is the configuration introspection shape. It never reveals
// more than the last four characters of the credential.
type debugResponse struct {
	HasKey   bool    `json:"hasKey"`
	KeyTail  *string `json:"keyTail"`
	Endpoint string  `json:"endpoint"`
}

// handleDebug reports how the relay is configured. It performs no network
// call and mutates nothing; repeated calls return the same shape.
func (s *Server) handleDebug(w http.ResponseWriter, r *http.Request) {
	resp := debugResponse{
		HasKey:   s.hasKey,
		Endpoint: s.providerURL,
	}
	if s.hasKey {
		tail := s.keyTail
		resp.KeyTail = &tail
	}
	s.writeJSON(w, http.StatusOK, resp)
}
