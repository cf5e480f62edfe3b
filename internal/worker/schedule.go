package worker

import (
	"fmt"

	"github.com/seantiz/rtwork/internal/host"
	"github.com/seantiz/rtwork/internal/transfer"
)

// Schedule submits work requests from the real-time thread.
type Schedule[W any] struct {
	feature host.ScheduleFeature
	codec   transfer.Codec[W]
	scratch []byte
}

// NewSchedule binds the scheduling capability from features. It may only be
// bound in the audio threading class. scratchSize preallocates the encode
// buffer; for a transfer.Fixed codec pass its Size so ScheduleWork never grows it.
func NewSchedule[W any](features *host.FeatureSet, class host.ThreadingClass, codec transfer.Codec[W], scratchSize int) (*Schedule[W], error) {
	if class != host.ClassAudio {
		return nil, fmt.Errorf("%s in %s class: %w", host.URISchedule, class, ErrThreadingClass)
	}
	f, ok := features.Schedule()
	if !ok {
		return nil, fmt.Errorf("%s: %w", host.URISchedule, ErrMissingFeature)
	}
	return &Schedule[W]{
		feature: f,
		codec:   codec,
		scratch: make([]byte, 0, scratchSize),
	}, nil
}

// ScheduleWork asks the host to run Work with the request's value on a
// worker thread.
//
// On success the request is consumed and ownership passes to the host. On
// failure the request keeps its value and the returned *ScheduleError carries
// it as well; the caller decides whether to retry, drop or log.
//
// The host may run the work before ScheduleWork returns (freewheeling).
func (s *Schedule[W]) ScheduleWork(req *Request[W]) error {
	if req.consumed {
		return ErrConsumed
	}
	if s.feature.ScheduleWork == nil {
		return &ScheduleError[W]{Kind: KindNoCallback, Value: req.value}
	}

	view, err := transfer.IntoView(s.codec, s.scratch, req.value)
	if err != nil {
		return &ScheduleError[W]{Kind: KindUnknown, Value: req.value, cause: err}
	}
	s.scratch = view[:0]

	status := s.feature.ScheduleWork(s.feature.Handle, view)
	if status == host.StatusSuccess {
		req.consume()
		return nil
	}
	return &ScheduleError[W]{Kind: kindOf(status), Value: req.value}
}
