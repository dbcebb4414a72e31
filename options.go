// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hazardq

// pad is cache-line padding to prevent false sharing between hot atomic
// fields, matching the teacher's layout technique.
type pad [64]byte

// Builder creates queues with fluent configuration.
//
// Example:
//
//	q := hazardq.Build[Job](hazardq.Default())
//	q := hazardq.Build[Job](hazardq.NewBuilder(64).RetireThreshold(128))
type Builder struct {
	hazardCapacity  int
	retireThreshold int
}

// NewBuilder creates a queue builder. hazardCapacity is the maximum number
// of concurrent participating goroutines (spec.md §6's hazard_capacity,
// default 16 if <= 0); the effective hazard-table size is doubled
// internally.
func NewBuilder(hazardCapacity int) *Builder {
	return &Builder{hazardCapacity: hazardCapacity, retireThreshold: 32}
}

// RetireThreshold sets the number of dequeue ticks between opportunistic
// retirement-chain sweeps (spec.md §6's retire_threshold, default 32). It
// is a tuning knob only and never affects correctness.
func (b *Builder) RetireThreshold(n int) *Builder {
	b.retireThreshold = n
	return b
}

// Build constructs a Queue[T] from the builder's configuration.
func Build[T any](b *Builder) *Queue[T] {
	return New[T](b.hazardCapacity, b.retireThreshold)
}

// Default returns a builder configured with spec.md §6's defaults:
// hazard_capacity 16 (doubled to 32) and retire_threshold 32.
func Default() *Builder {
	return NewBuilder(16)
}
