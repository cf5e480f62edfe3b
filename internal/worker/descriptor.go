package worker

import (
	"github.com/seantiz/rtwork/internal/host"
	"github.com/seantiz/rtwork/internal/transfer"
)

// Worker is implemented by instances that offload work.
//
// Work runs on a host worker thread, possibly concurrently with the instance's
// real-time processing, so it must only touch state the real-time side does
// not. It may block. The host never overlaps two Work calls for one instance.
// Returning ErrNoSpace or ErrUnknown (or any other error) is reported to the
// host as the matching status.
type Worker[W, R any] interface {
	Work(rh *ResponseHandler[R], data W) error
}

// ResponseConsumer is implemented by instances that handle responses. It runs
// in the real-time serialization domain, once per delivered response, in the
// order the host chooses. Instances without it ignore responses.
type ResponseConsumer[R any] interface {
	WorkResponse(data R) error
}

// CycleCoordinator is implemented by instances that need to know when every
// response of a cycle has been delivered. EndRun runs once per cycle after the
// last WorkResponse of that cycle.
type CycleCoordinator interface {
	EndRun() error
}

// Descriptor adapts instances of P to host.WorkerInterface. The host gets an
// InstanceKey from Register and passes it back on every call.
type Descriptor[W, R any, P Worker[W, R]] struct {
	work     transfer.Codec[W]
	response transfer.Codec[R]
	registry *Registry[P]
}

// NewDescriptor creates a descriptor decoding work requests with work and
// responses with response.
func NewDescriptor[W, R any, P Worker[W, R]](work transfer.Codec[W], response transfer.Codec[R]) *Descriptor[W, R, P] {
	return &Descriptor[W, R, P]{
		work:     work,
		response: response,
		registry: NewRegistry[P](),
	}
}

// Register adds an instance and returns the key the host must use for it.
func (d *Descriptor[W, R, P]) Register(p P) host.InstanceKey {
	return d.registry.Register(p)
}

// Unregister removes the instance behind key.
func (d *Descriptor[W, R, P]) Unregister(key host.InstanceKey) bool {
	return d.registry.Unregister(key)
}

// Resolve returns the instance behind key.
func (d *Descriptor[W, R, P]) Resolve(key host.InstanceKey) (P, bool) {
	return d.registry.Resolve(key)
}

// Instances lists registered instances and their executor state.
func (d *Descriptor[W, R, P]) Instances() []InstanceInfo {
	return d.registry.List()
}

// Work decodes the request view and runs the instance's Work. A view of the
// wrong size is rejected before any value is built. A Work call that overlaps
// another one for the same instance is rejected as StatusErrUnknown.
func (d *Descriptor[W, R, P]) Work(key host.InstanceKey, respond host.RespondFunc, handle any, view []byte) host.Status {
	s, inst, ok := d.registry.slot(key)
	if !ok {
		return host.StatusErrUnknown
	}
	data, err := transfer.FromView(d.work, view)
	if err != nil {
		return host.StatusErrUnknown
	}
	if !s.transition(StateIdle, StateExecuting) {
		return host.StatusErrUnknown
	}
	defer s.state.Store(int32(StateIdle))
	s.works.Add(1)

	rh := &ResponseHandler[R]{
		respond: respond,
		handle:  handle,
		codec:   d.response,
		state:   &s.state,
	}
	defer rh.expire()

	return statusOf(inst.Work(rh, data))
}

// WorkResponse decodes a response view and hands it to the instance.
func (d *Descriptor[W, R, P]) WorkResponse(key host.InstanceKey, view []byte) host.Status {
	_, inst, ok := d.registry.slot(key)
	if !ok {
		return host.StatusErrUnknown
	}
	data, err := transfer.FromView(d.response, view)
	if err != nil {
		return host.StatusErrUnknown
	}
	if c, ok := any(inst).(ResponseConsumer[R]); ok {
		return statusOf(c.WorkResponse(data))
	}
	return host.StatusSuccess
}

// EndRun signals the end of the cycle to the instance.
func (d *Descriptor[W, R, P]) EndRun(key host.InstanceKey) host.Status {
	_, inst, ok := d.registry.slot(key)
	if !ok {
		return host.StatusErrUnknown
	}
	if c, ok := any(inst).(CycleCoordinator); ok {
		return statusOf(c.EndRun())
	}
	return host.StatusSuccess
}
