package api

import (
	"net/http"
)

// healthResponse reports liveness along with instance and queue counts.
type healthResponse struct {
	Status    string `json:"status"`
	Instances int    `json:"instances"`
	Pending   int    `json:"pending"`
}

// handleHealthz answers 503 once the server has started shutting down.
func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{Status: "ok"}
	if s.instances != nil {
		resp.Instances = len(s.instances.Instances())
	}
	if s.host != nil {
		resp.Pending = s.host.Pending()
	}

	select {
	case <-s.closing:
		resp.Status = "stopping"
		s.writeJSON(w, http.StatusServiceUnavailable, resp)
	default:
		s.writeJSON(w, http.StatusOK, resp)
	}
}
