package api

import (
	"net/http"
)

// statsResponse is the JSON response for GET /v1/stats.
type statsResponse struct {
	Total            int            `json:"total"`
	ByStatus         map[string]int `json:"by_status"`
	Scheduled        int            `json:"scheduled"`
	ScheduleRejected int            `json:"schedule_rejected"`
	Executed         int            `json:"executed"`
	WorkFailed       int            `json:"work_failed"`
	Responses        int            `json:"responses"`
	ResponseRejected int            `json:"response_rejected"`
	ResponseFailed   int            `json:"response_failed"`
	AvgDurationUS    float64        `json:"avg_duration_us"`
	MaxDurationUS    int64          `json:"max_duration_us"`
	Pending          int            `json:"pending"`
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetCycleStats(r.Context())
	if err != nil {
		s.logger.Error("get cycle stats", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}

	resp := statsResponse{
		Total:            stats.Total,
		ByStatus:         stats.CountByStatus,
		Scheduled:        stats.Scheduled,
		ScheduleRejected: stats.ScheduleRejected,
		Executed:         stats.Executed,
		WorkFailed:       stats.WorkFailed,
		Responses:        stats.Responses,
		ResponseRejected: stats.ResponseRejected,
		ResponseFailed:   stats.ResponseFailed,
		AvgDurationUS:    stats.AvgDurationUS,
		MaxDurationUS:    stats.MaxDurationUS,
	}
	if s.host != nil {
		resp.Pending = s.host.Pending()
	}
	s.writeJSON(w, http.StatusOK, resp)
}
