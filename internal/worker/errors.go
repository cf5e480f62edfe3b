package worker

import (
	"errors"

	"github.com/seantiz/rtwork/internal/host"
)

var (
	// ErrUnknown is a generic host or worker failure.
	ErrUnknown = errors.New("unknown error")

	// ErrNoSpace means the host queue is saturated.
	ErrNoSpace = errors.New("not enough space")

	// ErrNoCallback means the host never supplied the callback.
	ErrNoCallback = errors.New("no callback")

	// ErrConsumed is returned when a request that was already handed to the
	// host is used again.
	ErrConsumed = errors.New("request already consumed")

	// ErrHandlerExpired is returned by a ResponseHandler used after its Work
	// call returned.
	ErrHandlerExpired = errors.New("response handler expired")

	// ErrMissingFeature is returned when the host did not supply a capability.
	ErrMissingFeature = errors.New("missing host feature")

	// ErrThreadingClass is returned when a capability is bound in a threading
	// class it is not allowed in.
	ErrThreadingClass = errors.New("feature not allowed in threading class")
)

// Kind classifies a failed transfer.
type Kind int

const (
	KindUnknown Kind = iota
	KindNoSpace
	KindNoCallback
)

func (k Kind) String() string {
	switch k {
	case KindNoSpace:
		return "NoSpace"
	case KindNoCallback:
		return "NoCallback"
	default:
		return "Unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindNoSpace:
		return ErrNoSpace
	case KindNoCallback:
		return ErrNoCallback
	default:
		return ErrUnknown
	}
}

// kindOf maps a failing host status to its Kind. Unrecognised codes are Unknown.
func kindOf(s host.Status) Kind {
	if s == host.StatusErrNoSpace {
		return KindNoSpace
	}
	return KindUnknown
}

// ScheduleError is returned by Schedule.ScheduleWork when the request could
// not be handed to the host. Value carries the payload back; the request it
// came from stays unconsumed.
type ScheduleError[T any] struct {
	Kind  Kind
	Value T
	cause error
}

func (e *ScheduleError[T]) Error() string {
	msg := "schedule work: " + e.Kind.sentinel().Error()
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *ScheduleError[T]) Unwrap() []error {
	if e.cause != nil {
		return []error{e.Kind.sentinel(), e.cause}
	}
	return []error{e.Kind.sentinel()}
}

// RespondError is returned by ResponseHandler.Respond when the response could
// not be handed to the host. Value carries the payload back to the worker.
type RespondError[T any] struct {
	Kind  Kind
	Value T
	cause error
}

func (e *RespondError[T]) Error() string {
	msg := "respond: " + e.Kind.sentinel().Error()
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *RespondError[T]) Unwrap() []error {
	if e.cause != nil {
		return []error{e.Kind.sentinel(), e.cause}
	}
	return []error{e.Kind.sentinel()}
}

// statusOf maps an error returned by application hooks to a host status.
func statusOf(err error) host.Status {
	switch {
	case err == nil:
		return host.StatusSuccess
	case errors.Is(err, ErrNoSpace):
		return host.StatusErrNoSpace
	default:
		return host.StatusErrUnknown
	}
}
