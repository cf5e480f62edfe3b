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

func insertCycles(t *testing.T, srv *Server, n int) []*model.Cycle {
	t.Helper()
	base := time.Now().UTC()
	cycles := make([]*model.Cycle, n)
	for i := range n {
		c := &model.Cycle{
			ID:        model.NewID(),
			Seq:       uint64(i + 1),
			Instances: 1,
			Scheduled: 10,
			Executed:  10,
			Responses: 5,
			Barriers:  1,
			StartedAt: base.Add(time.Duration(i) * time.Millisecond),
		}
		c.Finish(c.StartedAt.Add(100 * time.Microsecond))
		if err := srv.store.InsertCycle(context.Background(), c); err != nil {
			t.Fatalf("InsertCycle: %v", err)
		}
		cycles[i] = c
	}
	return cycles
}

func TestGetCycle(t *testing.T) {
	srv := newTestServer(t)
	c := insertCycles(t, srv, 1)[0]

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/cycles/" + c.ID)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var got model.Cycle
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != c.ID || got.Seq != 1 || got.Responses != 5 {
		t.Errorf("cycle = %+v", got)
	}
	if got.Status != model.StatusOK {
		t.Errorf("status = %q, want %q", got.Status, model.StatusOK)
	}
}

func TestGetCycleNotFound(t *testing.T) {
	srv := newTestServer(t)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/cycles/" + model.NewID())
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "cycle not found" {
		t.Errorf("error = %q, want %q", body["error"], "cycle not found")
	}
}

func TestGetCycleInvalidID(t *testing.T) {
	srv := newTestServer(t)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/cycles/nonexistent")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestListCycles(t *testing.T) {
	srv := newTestServer(t)
	insertCycles(t, srv, 5)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/cycles?limit=2&offset=1")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	var list listCyclesResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if list.Total != 5 || list.Limit != 2 || list.Offset != 1 {
		t.Errorf("total/limit/offset = %d/%d/%d, want 5/2/1", list.Total, list.Limit, list.Offset)
	}
	if len(list.Cycles) != 2 || list.Cycles[0].Seq != 4 || list.Cycles[1].Seq != 3 {
		t.Errorf("cycles = %+v", list.Cycles)
	}
}

func TestListCyclesEmptyIsArray(t *testing.T) {
	srv := newTestServer(t)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/cycles")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(raw["cycles"]) != "[]" {
		t.Errorf("cycles = %s, want []", raw["cycles"])
	}
}

func TestListCyclesLimitBounds(t *testing.T) {
	srv := newTestServer(t)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	tests := []struct {
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"", defaultListLimit, 0},
		{"?limit=0", defaultListLimit, 0},
		{"?limit=1000", defaultListLimit, 0},
		{"?limit=abc&offset=-3", defaultListLimit, 0},
		{"?limit=50&offset=7", 50, 7},
	}

	for _, tt := range tests {
		resp, err := http.Get(ts.URL + "/v1/cycles" + tt.query)
		if err != nil {
			t.Fatalf("GET %q: %v", tt.query, err)
		}
		var list listCyclesResponse
		err = json.NewDecoder(resp.Body).Decode(&list)
		resp.Body.Close()
		if err != nil {
			t.Fatalf("decode %q: %v", tt.query, err)
		}
		if list.Limit != tt.wantLimit || list.Offset != tt.wantOffset {
			t.Errorf("%q: limit/offset = %d/%d, want %d/%d",
				tt.query, list.Limit, list.Offset, tt.wantLimit, tt.wantOffset)
		}
	}
}
