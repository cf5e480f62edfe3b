package hostsim

import (
	"sync"

	"github.com/seantiz/rtwork/internal/host"
)

// ring is a bounded FIFO of byte views with storage allocated up front, so
// pushing from the real-time thread copies but never allocates.
type ring struct {
	mu       sync.Mutex
	entries  []entry
	head     int
	count    int
	slotSize int
}

type entry struct {
	inst *Instance
	buf  []byte
	n    int
}

func newRing(capacity, slotSize int) *ring {
	r := &ring{
		entries:  make([]entry, capacity),
		slotSize: slotSize,
	}
	for i := range r.entries {
		r.entries[i].buf = make([]byte, slotSize)
	}
	return r
}

// push copies view into the next free slot. It reports StatusErrNoSpace when
// the ring is full and StatusErrUnknown when view exceeds the slot size.
func (r *ring) push(inst *Instance, view []byte) host.Status {
	if len(view) > r.slotSize {
		return host.StatusErrUnknown
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.count == len(r.entries) {
		return host.StatusErrNoSpace
	}
	e := &r.entries[(r.head+r.count)%len(r.entries)]
	e.inst = inst
	e.n = copy(e.buf, view)
	r.count++
	return host.StatusSuccess
}

// pop copies the oldest view into dst and returns it with its instance.
func (r *ring) pop(dst []byte) (*Instance, []byte, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.count == 0 {
		return nil, dst, false
	}
	e := &r.entries[r.head]
	dst = append(dst[:0], e.buf[:e.n]...)
	inst := e.inst
	e.inst = nil
	r.head = (r.head + 1) % len(r.entries)
	r.count--
	return inst, dst, true
}

func (r *ring) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}
