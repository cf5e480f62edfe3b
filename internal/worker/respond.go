package worker

import (
	"sync/atomic"

	"github.com/seantiz/rtwork/internal/host"
	"github.com/seantiz/rtwork/internal/transfer"
)

// ResponseHandler sends responses from a Work call back to the real-time
// context. It is bound to a single Work invocation and expires when that
// invocation returns. Respond may be called any number of times, and from
// goroutines other than the one running Work.
type ResponseHandler[R any] struct {
	respond host.RespondFunc
	handle  any
	codec   transfer.Codec[R]
	scratch []byte
	state   *atomic.Int32
	sent    atomic.Int64
	expired atomic.Bool
}

// Respond hands v to the host for delivery to WorkResponse. On failure the
// returned *RespondError carries v back.
func (h *ResponseHandler[R]) Respond(v R) error {
	if h.expired.Load() {
		return ErrHandlerExpired
	}
	if h.respond == nil {
		return &RespondError[R]{Kind: KindNoCallback, Value: v}
	}

	view, err := transfer.IntoView(h.codec, h.scratch, v)
	if err != nil {
		return &RespondError[R]{Kind: KindUnknown, Value: v, cause: err}
	}
	h.scratch = view[:0]

	if h.state != nil {
		h.state.CompareAndSwap(int32(StateExecuting), int32(StateResponding))
		defer h.state.CompareAndSwap(int32(StateResponding), int32(StateExecuting))
	}

	status := h.respond(h.handle, view)
	if status == host.StatusSuccess {
		h.sent.Add(1)
		return nil
	}
	return &RespondError[R]{Kind: kindOf(status), Value: v}
}

// Sent returns the number of responses accepted by the host so far.
func (h *ResponseHandler[R]) Sent() int {
	return int(h.sent.Load())
}

func (h *ResponseHandler[R]) expire() {
	h.expired.Store(true)
}
