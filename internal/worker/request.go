package worker

// Request owns a value until it is handed to the host. Once ScheduleWork
// succeeds the request is consumed: its value is cleared and further use
// fails with ErrConsumed until Reset refills it.
//
// A Request is not safe for concurrent use; it belongs to the real-time thread.
type Request[T any] struct {
	value    T
	consumed bool
}

// NewRequest returns a request owning v.
func NewRequest[T any](v T) *Request[T] {
	return &Request[T]{value: v}
}

// Reset makes the request own v again. Preallocated requests are refilled with
// Reset so the real-time path never allocates.
func (r *Request[T]) Reset(v T) {
	r.value = v
	r.consumed = false
}

// Value returns the owned value, or ErrConsumed.
func (r *Request[T]) Value() (T, error) {
	if r.consumed {
		var zero T
		return zero, ErrConsumed
	}
	return r.value, nil
}

// Consumed reports whether the value was handed to the host.
func (r *Request[T]) Consumed() bool {
	return r.consumed
}

func (r *Request[T]) consume() {
	var zero T
	r.value = zero
	r.consumed = true
}
