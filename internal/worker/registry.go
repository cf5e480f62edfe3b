package worker

import (
	"sync"
	"sync/atomic"

	"github.com/seantiz/rtwork/internal/host"
)

// InstanceInfo describes one registered instance.
type InstanceInfo struct {
	Key   host.InstanceKey `json:"key"`
	State string           `json:"state"`
	Works uint64           `json:"works"`
}

type slot[P any] struct {
	inst  P
	gen   uint32
	live  bool
	state atomic.Int32
	works atomic.Uint64
}

// transition moves the slot to next. An invalid transition means the host
// broke mutual exclusion; the state is left untouched.
func (s *slot[P]) transition(from, next State) bool {
	if !ValidTransition(from, next) {
		return false
	}
	return s.state.CompareAndSwap(int32(from), int32(next))
}

// Registry holds instances in an arena and hands out generation-checked keys.
// A key whose slot was freed and reused no longer resolves.
type Registry[P any] struct {
	mu    sync.RWMutex
	slots []*slot[P]
	free  []uint32
}

// NewRegistry creates an empty registry.
func NewRegistry[P any]() *Registry[P] {
	return &Registry[P]{}
}

// Register stores p and returns its key.
func (r *Registry[P]) Register(p P) host.InstanceKey {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n := len(r.free); n > 0 {
		idx := r.free[n-1]
		r.free = r.free[:n-1]
		s := r.slots[idx]
		s.inst = p
		s.live = true
		s.state.Store(int32(StateIdle))
		s.works.Store(0)
		return host.InstanceKey{Index: idx, Generation: s.gen}
	}

	s := &slot[P]{inst: p, gen: 1, live: true}
	r.slots = append(r.slots, s)
	return host.InstanceKey{Index: uint32(len(r.slots) - 1), Generation: s.gen}
}

// Unregister frees the slot behind key. It reports false for stale keys.
func (r *Registry[P]) Unregister(key host.InstanceKey) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.lookup(key)
	if !ok {
		return false
	}
	var zero P
	s.inst = zero
	s.live = false
	s.gen++
	r.free = append(r.free, key.Index)
	return true
}

// Resolve returns the instance behind key.
func (r *Registry[P]) Resolve(key host.InstanceKey) (P, bool) {
	_, p, ok := r.slot(key)
	return p, ok
}

// Len returns the number of live instances.
func (r *Registry[P]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.slots) - len(r.free)
}

// List returns information about all live instances in key order.
func (r *Registry[P]) List() []InstanceInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]InstanceInfo, 0, len(r.slots))
	for i, s := range r.slots {
		if !s.live {
			continue
		}
		infos = append(infos, InstanceInfo{
			Key:   host.InstanceKey{Index: uint32(i), Generation: s.gen},
			State: State(s.state.Load()).String(),
			Works: s.works.Load(),
		})
	}
	return infos
}

// slot returns the slot behind key together with the instance it held at
// lookup time. Callers use the returned instance, never s.inst, since
// Unregister may clear the slot once the lock is released.
func (r *Registry[P]) slot(key host.InstanceKey) (*slot[P], P, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.lookup(key)
	if !ok {
		var zero P
		return nil, zero, false
	}
	return s, s.inst, true
}

// lookup must be called with mu held.
func (r *Registry[P]) lookup(key host.InstanceKey) (*slot[P], bool) {
	if int(key.Index) >= len(r.slots) {
		return nil, false
	}
	s := r.slots[key.Index]
	if !s.live || s.gen != key.Generation {
		return nil, false
	}
	return s, true
}
