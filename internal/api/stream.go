package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// handleStreamCycles streams cycle reports as server-sent events until the
// client goes away, the host shuts down, or the server stops.
func (s *Server) handleStreamCycles(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// Disable write timeout for long-lived SSE connections.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		s.logger.Error("set write deadline for SSE", "error", err)
	}

	ch, unsub := s.host.Broker().Subscribe()
	defer unsub()

	w.WriteHeader(http.StatusOK)
	flusher, canFlush := w.(http.Flusher)
	if canFlush {
		flusher.Flush()
	}

	for {
		select {
		case c, ok := <-ch:
			if !ok {
				s.endStream(w, flusher, canFlush)
				return
			}
			data, err := json.Marshal(c)
			if err != nil {
				s.logger.Error("encode cycle event", "cycle_id", c.ID, "error", err)
				continue
			}
			if err := writeSSEEvent(w, "cycle", string(data)); err != nil {
				return // Write failed (e.g. client gone).
			}
			if canFlush {
				flusher.Flush()
			}
		case <-s.closing:
			s.endStream(w, flusher, canFlush)
			return
		case <-r.Context().Done():
			return // Client disconnected.
		}
	}
}

func (s *Server) endStream(w http.ResponseWriter, flusher http.Flusher, canFlush bool) {
	_ = writeSSEEvent(w, "done", "stream complete")
	if canFlush {
		flusher.Flush()
	}
}

// writeSSEEvent writes a named SSE event (event: <type>\ndata: <data>\n\n).
// data must not contain newlines.
func writeSSEEvent(w http.ResponseWriter, eventType, data string) error {
	if _, err := fmt.Fprintf(w, "event: %s\n", eventType); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	return nil
}
