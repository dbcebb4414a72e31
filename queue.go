// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hazardq

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// node is a queue element. data is absent for the dummy head and for nodes
// whose value has already been extracted; next is atomic throughout,
// including while the node sits on the retirement chain, per spec.md §9's
// "next must be atomic throughout" note.
type node[T any] struct {
	next    atomic.Pointer[node[T]]
	data    T
	hasData bool
}

// Queue is an unbounded, multi-producer multi-consumer FIFO queue. Push is
// lock-free; Pop is lock-free but not wait-free (a slow reader can be
// starved by repeated head changes, and a stalled enqueuer can loop helping
// before its own CAS wins). Dequeued nodes go through the queue's own
// hazard-pointer Registry: a node that some hazard slot still publishes is
// parked on a retirement chain and re-checked by later sweeps; a node that
// no slot publishes has its last queue reference dropped, and the garbage
// collector reclaims its memory.
type Queue[T any] struct {
	_            pad
	head         atomic.Pointer[node[T]]
	_            pad
	tail         atomic.Pointer[node[T]]
	_            pad
	retired      atomic.Pointer[node[T]]
	_            pad
	size         atomix.Int64
	reclaimTicks atomix.Int64
	retireEvery  int64
	hazards      *Registry

	// PushStallHook, when non-nil, is invoked by Push immediately after a
	// successful next-CAS but before the follow-up tail-CAS. It exists only
	// so tests can deterministically reproduce the help-advance scenario
	// (spec.md S6); production callers never set it.
	PushStallHook func()
}

// New constructs an empty queue. hazardCapacity is the maximum number of
// concurrent participating goroutines; the effective hazard-table size is
// doubled internally (spec.md §6), and retireThreshold is the number of
// dequeue ticks between opportunistic retirement-chain sweeps.
func New[T any](hazardCapacity, retireThreshold int) *Queue[T] {
	if hazardCapacity < 1 {
		hazardCapacity = 16
	}
	if retireThreshold < 1 {
		retireThreshold = 32
	}
	dummy := &node[T]{}
	q := &Queue[T]{
		hazards:     NewRegistry(hazardCapacity * 2),
		retireEvery: int64(retireThreshold),
	}
	q.head.Store(dummy)
	q.tail.Store(dummy)
	return q
}

// Push adds value to the tail of the queue. Push never blocks on
// application state and is total.
func (q *Queue[T]) Push(value T) {
	n := &node[T]{data: value, hasData: true}
	sw := spin.Wait{}
	for {
		t := q.tail.Load()
		next := t.next.Load()
		if next != nil {
			// Another producer linked but has not yet advanced tail; help.
			q.tail.CompareAndSwap(t, next)
			sw.Once()
			continue
		}
		if t.next.CompareAndSwap(nil, n) {
			if q.PushStallHook != nil {
				q.PushStallHook()
			}
			// Best-effort advance; failure here is harmless, some other
			// thread (possibly this node's own eventual dequeuer's helper)
			// will have advanced tail already.
			q.tail.CompareAndSwap(t, n)
			break
		}
		sw.Once()
	}
	// size is relaxed (spec.md §5): atomix has no AddRelaxed, so AddAcqRel
	// is used instead — strictly stronger than relaxed, conservative per
	// the same reasoning DESIGN.md gives for sync/atomic.Pointer CAS.
	q.size.AddAcqRel(1)
}

// Pop removes and returns the value at the head of the queue. It returns
// (zero, false) if the queue is observed empty, or if hazard-slot
// acquisition fails — spec.md treats both as advisory-empty; the caller is
// expected to retry.
func (q *Queue[T]) Pop() (T, bool) {
	var zero T

	slot, ok := q.hazards.Acquire()
	if !ok {
		return zero, false
	}
	defer q.hazards.Release(slot)

	sw := spin.Wait{}
	var h, next *node[T]
	for {
		h = q.head.Load()
		slot.Publish(0, unsafe.Pointer(h))
		if q.head.Load() != h {
			sw.Once()
			continue
		}

		next = h.next.Load()
		slot.Publish(1, unsafe.Pointer(next))
		if q.head.Load() != h {
			sw.Once()
			continue
		}

		if next == nil {
			slot.Clear()
			return zero, false
		}

		// A producer may have linked next without advancing tail yet; move
		// tail past h first so that h is unreachable from both head and tail
		// once the head-CAS below unlinks it.
		if q.tail.Load() == h {
			q.tail.CompareAndSwap(h, next)
		}

		if q.head.CompareAndSwap(h, next) {
			break
		}
		sw.Once()
	}

	value := next.data
	var zeroT T
	next.data = zeroT
	next.hasData = false
	slot.Clear()

	q.retire(h)
	q.size.AddAcqRel(-1)

	// reclaimTicks is relaxed too (spec.md §5); same AddAcqRel substitution.
	if q.reclaimTicks.AddAcqRel(1)%q.retireEvery == 0 {
		q.sweep()
	}

	return value, true
}

// retire pushes h onto the retirement chain if some other thread still
// publishes it, or frees it immediately otherwise. h has already been
// unlinked from head/tail at this point and is therefore safe to repurpose
// its next field for retirement-chain linkage (spec.md §9).
func (q *Queue[T]) retire(h *node[T]) {
	if !q.hazards.IsProtected(unsafe.Pointer(h)) {
		return
	}
	for {
		old := q.retired.Load()
		h.next.Store(old)
		if q.retired.CompareAndSwap(old, h) {
			return
		}
		// loop until the CAS succeeds — spec.md §9 flags a historical bug
		// where this loop ran while the CAS *succeeded*, corrupting the
		// chain; it must run until success instead.
	}
}

// sweep atomically detaches the retirement chain and frees every node no
// longer published by any hazard slot, re-pushing the rest. It is wait-free
// with respect to the main queue's producers and consumers.
func (q *Queue[T]) sweep() {
	chain := q.retired.Swap(nil)
	for chain != nil {
		m := chain
		chain = m.next.Load()
		if q.hazards.IsProtected(unsafe.Pointer(m)) {
			q.requeueRetired(m)
		}
		// else: m becomes unreachable and is left for the garbage
		// collector; Go has no explicit free, so "destroy" here means
		// "drop the last reference."
	}
}

func (q *Queue[T]) requeueRetired(m *node[T]) {
	for {
		old := q.retired.Load()
		m.next.Store(old)
		if q.retired.CompareAndSwap(old, m) {
			return
		}
	}
}

// Len returns an advisory, non-negative element count. It is best-effort
// and not linearizable with Push/Pop; it must never be used to gate
// correctness (spec.md §3, §4.3).
func (q *Queue[T]) Len() int {
	n := q.size.LoadRelaxed()
	if n < 0 {
		return 0
	}
	return int(n)
}

// Clear drains the queue by repeated Pop and sweeps the retirement chain.
// Destruction (letting the final reference to the Queue go away) still
// requires that no other goroutine holds a reference into the queue at that
// point — Clear does not itself establish quiescence (spec.md §4.2.5, §6).
func (q *Queue[T]) Clear() {
	for {
		if _, ok := q.Pop(); !ok {
			break
		}
	}
	q.sweep()
}

// String reports advisory length for debug logging, matching the teacher's
// light optional conveniences (Cap()).
func (q *Queue[T]) String() string {
	return fmt.Sprintf("hazardq.Queue{len=%d}", q.Len())
}
