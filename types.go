// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hazardq

// Producer is the interface for enqueueing elements. It is satisfied by
// *Queue[T] and exists so collaborators (e.g. hazardq/workerpool) can
// depend on the narrower capability they actually need.
type Producer[T any] interface {
	// Push adds an element to the queue. Push is total and never blocks
	// on application state.
	Push(value T)
}

// Consumer is the interface for dequeueing elements.
type Consumer[T any] interface {
	// Pop removes and returns an element. It returns (zero, false) if the
	// queue is observed empty or hazard-slot acquisition fails; both are
	// advisory — callers should retry.
	Pop() (T, bool)
}

// Sized reports an advisory, non-negative element count. Never use it to
// gate correctness (spec.md §4.3, §9).
type Sized interface {
	Len() int
}

// Queuer is the combined producer/consumer interface implemented by
// *Queue[T].
type Queuer[T any] interface {
	Producer[T]
	Consumer[T]
	Sized
	Clear()
}

var _ Queuer[int] = (*Queue[int])(nil)
