// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hazardq

import (
	"sync/atomic"
	"unsafe"
)

// Slot is a cache-line aligned hazard-pointer record. A thread that holds a
// Slot handle may publish up to two interior node addresses it is currently
// dereferencing, so that a concurrent reclaimer can decide whether the node
// is safe to free.
//
// Only the holder of a Slot writes protect[*]; any thread may read them.
type Slot struct {
	_       pad
	owned   atomic.Bool       // Free → Owned → Free, monotonic per acquisition
	_       pad
	protect [2]atomic.Pointer[byte] // opaque protected addresses
	_       pad
}

// Registry is a fixed-size hazard-pointer table shared by one MPMCQ. Its
// lifetime is tied to the owning queue.
//
// Acquire, Release and IsProtected are safe under full concurrency and
// allocate no heap.
type Registry struct {
	slots []Slot
}

// NewRegistry builds a registry with the given number of slots. Capacity is
// fixed for the registry's lifetime.
func NewRegistry(capacity int) *Registry {
	if capacity < 1 {
		capacity = 1
	}
	return &Registry{slots: make([]Slot, capacity)}
}

// Acquire reserves a free slot and returns a handle to it. The caller keeps
// the handle for the duration of one logical queue operation and returns it
// via Release when done — see SPEC_FULL.md §3 for why this implementation
// uses caller-held handles rather than OS-thread-keyed reuse.
//
// Acquire returns (nil, false) if the table is full; callers treat this as a
// transient inability to make progress, not an error.
func (r *Registry) Acquire() (*Slot, bool) {
	for i := range r.slots {
		s := &r.slots[i]
		if s.owned.CompareAndSwap(false, true) {
			s.protect[0].Store(nil)
			s.protect[1].Store(nil)
			return s, true
		}
	}
	return nil, false
}

// Release publishes null to both protect cells and then frees the slot for
// reuse by any thread.
func (r *Registry) Release(s *Slot) {
	if s == nil {
		return
	}
	s.protect[0].Store(nil)
	s.protect[1].Store(nil)
	s.owned.Store(false)
}

// IsProtected reports whether any slot currently publishes p.
func (r *Registry) IsProtected(p unsafe.Pointer) bool {
	target := (*byte)(p)
	for i := range r.slots {
		s := &r.slots[i]
		if s.protect[0].Load() == target || s.protect[1].Load() == target {
			return true
		}
	}
	return false
}

// Publish stores p into protect cell i (0 or 1) with release-equivalent
// ordering (atomic.Pointer stores are sequentially consistent in Go, which
// is strictly stronger than the release spec.md's §4.1/§5 require). Only
// the slot's holder may call Publish; any goroutine may observe the result
// through Registry.IsProtected.
func (s *Slot) Publish(i int, p unsafe.Pointer) {
	s.protect[i].Store((*byte)(p))
}

// Clear nulls both protect cells, matching Release's publish-null step
// without giving the slot back to the table. Pop calls Clear once it no
// longer needs h/next protected, ahead of the slot's eventual Release.
func (s *Slot) Clear() {
	s.protect[0].Store(nil)
	s.protect[1].Store(nil)
}
