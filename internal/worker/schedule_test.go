package worker_test

import (
	"errors"
	"testing"

	"github.com/seantiz/rtwork/internal/host"
	"github.com/seantiz/rtwork/internal/worker"
)

func newSchedule(t *testing.T, fs *host.FeatureSet, codec *countingCodec) *worker.Schedule[msg] {
	t.Helper()
	s, err := worker.NewSchedule[msg](fs, host.ClassAudio, codec, msgSize)
	if err != nil {
		t.Fatalf("NewSchedule: %v", err)
	}
	return s
}

func TestScheduleFailureClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   host.Status
		wantErr  error
		wantKind worker.Kind
	}{
		{"success", host.StatusSuccess, nil, 0},
		{"unknown", host.StatusErrUnknown, worker.ErrUnknown, worker.KindUnknown},
		{"no space", host.StatusErrNoSpace, worker.ErrNoSpace, worker.KindNoSpace},
		{"unrecognised status", host.Status(99), worker.ErrUnknown, worker.KindUnknown},
	}

	for _, tc := range tests {
		h := &mockHost{status: tc.status}
		s := newSchedule(t, h.features(), newCountingCodec())
		v := msg{Cycle: 1, Task: 7}
		req := worker.NewRequest(v)

		err := s.ScheduleWork(req)
		if h.calls != 1 {
			t.Errorf("%s: host called %d times, want 1", tc.name, h.calls)
		}

		if tc.wantErr == nil {
			if err != nil {
				t.Errorf("%s: ScheduleWork = %v, want nil", tc.name, err)
			}
			if !req.Consumed() {
				t.Errorf("%s: request not consumed after success", tc.name)
			}
			continue
		}

		if !errors.Is(err, tc.wantErr) {
			t.Errorf("%s: err = %v, want %v", tc.name, err, tc.wantErr)
		}
		var se *worker.ScheduleError[msg]
		if !errors.As(err, &se) {
			t.Fatalf("%s: err %T is not *ScheduleError[msg]", tc.name, err)
		}
		if se.Kind != tc.wantKind {
			t.Errorf("%s: Kind = %v, want %v", tc.name, se.Kind, tc.wantKind)
		}
		if se.Value != v {
			t.Errorf("%s: returned payload = %+v, want %+v", tc.name, se.Value, v)
		}
		if req.Consumed() {
			t.Errorf("%s: request consumed although the transfer failed", tc.name)
		}
		if got, err := req.Value(); err != nil || got != v {
			t.Errorf("%s: request value = %+v, %v, want %+v, nil", tc.name, got, err, v)
		}
	}
}

func TestScheduleNoCallbackDoesNotCallHost(t *testing.T) {
	codec := newCountingCodec()
	fs := host.NewFeatureSet(map[string]any{
		host.URISchedule: host.ScheduleFeature{Handle: "h"},
	})
	s := newSchedule(t, fs, codec)

	v := msg{Cycle: 2, Task: 3}
	req := worker.NewRequest(v)
	err := s.ScheduleWork(req)

	if !errors.Is(err, worker.ErrNoCallback) {
		t.Fatalf("err = %v, want ErrNoCallback", err)
	}
	var se *worker.ScheduleError[msg]
	if !errors.As(err, &se) || se.Kind != worker.KindNoCallback || se.Value != v {
		t.Errorf("err = %#v, want NoCallback carrying %+v", err, v)
	}
	if req.Consumed() {
		t.Error("request consumed on NoCallback")
	}
}

func TestScheduleSuccessHandsExactView(t *testing.T) {
	codec := newCountingCodec()
	h := &mockHost{status: host.StatusSuccess}
	s := newSchedule(t, h.features(), codec)

	v := msg{Cycle: 5, Task: 9}
	if err := s.ScheduleWork(worker.NewRequest(v)); err != nil {
		t.Fatalf("ScheduleWork: %v", err)
	}
	if len(h.views) != 1 || len(h.views[0]) != msgSize {
		t.Fatalf("host views = %v, want one view of %d bytes", h.views, msgSize)
	}
	if string(h.views[0]) != string(codec.encode(v)) {
		t.Errorf("view = %x, want %x", h.views[0], codec.encode(v))
	}
}

func TestScheduleConsumedRequestIsNotReused(t *testing.T) {
	h := &mockHost{status: host.StatusSuccess}
	s := newSchedule(t, h.features(), newCountingCodec())

	req := worker.NewRequest(msg{Task: 1})
	if err := s.ScheduleWork(req); err != nil {
		t.Fatalf("first ScheduleWork: %v", err)
	}
	if err := s.ScheduleWork(req); !errors.Is(err, worker.ErrConsumed) {
		t.Errorf("second ScheduleWork err = %v, want ErrConsumed", err)
	}
	if h.calls != 1 {
		t.Errorf("host called %d times, want 1", h.calls)
	}
	if _, err := req.Value(); !errors.Is(err, worker.ErrConsumed) {
		t.Errorf("Value() err = %v, want ErrConsumed", err)
	}

	req.Reset(msg{Task: 2})
	if err := s.ScheduleWork(req); err != nil {
		t.Errorf("ScheduleWork after Reset: %v", err)
	}
	if h.calls != 2 {
		t.Errorf("host called %d times, want 2", h.calls)
	}
}

func TestScheduleRetryAfterNoSpace(t *testing.T) {
	h := &mockHost{status: host.StatusErrNoSpace}
	s := newSchedule(t, h.features(), newCountingCodec())

	req := worker.NewRequest(msg{Task: 4})
	if err := s.ScheduleWork(req); !errors.Is(err, worker.ErrNoSpace) {
		t.Fatalf("err = %v, want ErrNoSpace", err)
	}

	h.status = host.StatusSuccess
	if err := s.ScheduleWork(req); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if !req.Consumed() {
		t.Error("request not consumed after successful retry")
	}
}

func TestScheduleDoesNotAllocate(t *testing.T) {
	fs := host.NewFeatureSet(map[string]any{
		host.URISchedule: host.ScheduleFeature{ScheduleWork: func(any, []byte) host.Status { return host.StatusSuccess }},
	})
	s := newSchedule(t, fs, newCountingCodec())
	req := worker.NewRequest(msg{})

	allocs := testing.AllocsPerRun(100, func() {
		req.Reset(msg{Cycle: 1, Task: 2})
		_ = s.ScheduleWork(req)
	})
	if allocs != 0 {
		t.Errorf("ScheduleWork allocated %.1f times per run, want 0", allocs)
	}
}

func TestNewScheduleRequiresAudioClass(t *testing.T) {
	h := &mockHost{}
	for _, class := range []host.ThreadingClass{host.ClassInstantiation, host.ClassOther} {
		_, err := worker.NewSchedule[msg](h.features(), class, newCountingCodec(), msgSize)
		if !errors.Is(err, worker.ErrThreadingClass) {
			t.Errorf("class %v: err = %v, want ErrThreadingClass", class, err)
		}
	}
}

func TestNewScheduleMissingFeature(t *testing.T) {
	_, err := worker.NewSchedule[msg](host.NewFeatureSet(nil), host.ClassAudio, newCountingCodec(), msgSize)
	if !errors.Is(err, worker.ErrMissingFeature) {
		t.Errorf("err = %v, want ErrMissingFeature", err)
	}
}
