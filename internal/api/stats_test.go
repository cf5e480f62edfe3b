package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/seantiz/rtwork/internal/model"
)

func TestGetStatsEmpty(t *testing.T) {
	srv := newTestServer(t)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/stats")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	var stats statsResponse
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if stats.Total != 0 {
		t.Errorf("total = %d, want 0", stats.Total)
	}
	if stats.AvgDurationUS != 0 {
		t.Errorf("avg_duration_us = %f, want 0", stats.AvgDurationUS)
	}
	if stats.Pending != 0 {
		t.Errorf("pending = %d, want 0", stats.Pending)
	}
}

func TestGetStatsPopulated(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	base := time.Now().UTC()

	for i := range 3 {
		c := &model.Cycle{
			ID: model.NewID(), Seq: uint64(i + 1),
			Scheduled: 10, Executed: 10, Responses: 5, Barriers: 1,
			StartedAt: base.Add(time.Duration(i) * time.Millisecond),
		}
		c.Finish(c.StartedAt.Add(100 * time.Microsecond))
		if err := srv.store.InsertCycle(ctx, c); err != nil {
			t.Fatalf("InsertCycle: %v", err)
		}
	}

	// One degraded cycle.
	dc := &model.Cycle{
		ID: model.NewID(), Seq: 4,
		Scheduled: 4, ScheduleRejected: 6, Executed: 4, Barriers: 1,
		StartedAt: base.Add(10 * time.Millisecond),
	}
	dc.Finish(dc.StartedAt.Add(500 * time.Microsecond))
	if err := srv.store.InsertCycle(ctx, dc); err != nil {
		t.Fatalf("InsertCycle: %v", err)
	}

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/stats")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var stats statsResponse
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if stats.Total != 4 {
		t.Errorf("total = %d, want 4", stats.Total)
	}
	if stats.ByStatus[model.StatusOK] != 3 {
		t.Errorf("by_status[ok] = %d, want 3", stats.ByStatus[model.StatusOK])
	}
	if stats.ByStatus[model.StatusDegraded] != 1 {
		t.Errorf("by_status[degraded] = %d, want 1", stats.ByStatus[model.StatusDegraded])
	}
	if stats.Scheduled != 34 || stats.ScheduleRejected != 6 || stats.Responses != 15 {
		t.Errorf("sums = %+v", stats)
	}
	if stats.AvgDurationUS != 200 {
		t.Errorf("avg_duration_us = %f, want 200", stats.AvgDurationUS)
	}
	if stats.MaxDurationUS != 500 {
		t.Errorf("max_duration_us = %d, want 500", stats.MaxDurationUS)
	}
}
