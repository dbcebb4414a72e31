// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package hazardq provides an unbounded, multi-producer multi-consumer FIFO
// queue reclaimed with hazard pointers instead of locks.
//
// The queue is a Michael–Scott singly-linked queue (help-advance enqueue,
// hazard-protected dequeue). A small fixed-size hazard-pointer registry
// (Registry) tracks which interior node addresses each participating
// goroutine is currently dereferencing, so dequeued nodes can be reclaimed
// as soon as no goroutine still holds a reference to them, without a global
// stop-the-world pause and without leaving nodes pinned forever.
//
// # Quick Start
//
//	q := hazardq.Build[Job](hazardq.Default())
//
//	q.Push(Job{ID: 1})
//
//	job, ok := q.Pop()
//	if !ok {
//	    // queue observed empty, or the hazard table was momentarily full
//	}
//
// # Basic Usage
//
// Push is total and never blocks on application state. Pop returns
// (zero, false) when the queue is empty or when hazard-slot acquisition
// fails — both cases are advisory; the caller should retry:
//
//	backoff := iox.Backoff{}
//	for {
//	    job, ok := q.Pop()
//	    if !ok {
//	        backoff.Wait()
//	        continue
//	    }
//	    backoff.Reset()
//	    process(job)
//	}
//
// # Worker Pool
//
// hazardq/workerpool builds a full thread-pool adapter on top of Queue:
//
//	pool := workerpool.New(ctx, 8, hazardq.Default())
//	pool.Submit(func() { process(job) })
//	pool.Wait()
//	pool.Shutdown(ctx)
//
// # Graceful Shutdown
//
// Queue has no Drain of its own — there is no producer-side backpressure to
// relieve, since the queue is unbounded. Once producers have stopped
// calling Push, a consumer-side Clear drains whatever remains:
//
//	prodWg.Wait()
//	q.Clear()
//
// # Configuration
//
// Build uses a Builder, the same fluent pattern used throughout this
// package's sibling queue implementations:
//
//	q := hazardq.Build[Job](hazardq.NewBuilder(64).RetireThreshold(128))
//
// hazardCapacity is the expected number of goroutines using the queue at
// once; the hazard table holds twice that many slots, each carrying the two
// protected cells one Pop needs. While every slot is held, Pop returns
// advisory-empty rather than being unsound. retireThreshold tunes how often
// the retirement chain is swept; it is a performance knob only and never
// affects correctness.
//
// # Error Handling
//
// Pop never returns an error value; absence is communicated through its
// boolean result. ErrWouldBlock and its [IsWouldBlock] family exist for
// ecosystem consistency with this module's sibling queue packages; no
// operation in this module returns ErrWouldBlock. hazardq/workerpool's
// Submit fails after shutdown with ErrClosed.
//
// # Thread Safety
//
// Queue may be freely shared across goroutines from construction until the
// last reference to it is dropped. There is no explicit destructor: Go's
// collector reclaims the Queue value itself once nothing references it, but
// the hazard-pointer discipline inside Push/Pop/Clear still governs when
// individual *nodes* become eligible for collection, exactly as it would
// govern explicit frees in a non-garbage-collected implementation.
//
// # Race Detection
//
// Go's race detector is not designed for lock-free algorithm verification:
// it tracks explicit synchronization primitives (mutex, channel, WaitGroup)
// but cannot observe happens-before relationships established purely
// through atomic load/store/CAS ordering. Concurrent stress tests in this
// package that rely on the hazard publish/reload protocol are gated behind
// the RaceEnabled constant and excluded from `go test -race` runs; they are
// correct, the detector's model simply cannot certify them.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/atomix] for scalar atomics with
// explicit memory ordering, [code.hybscloud.com/spin] for CAS-retry
// backoff inside Push/Pop, and [code.hybscloud.com/iox] for semantic
// errors shared with this module's sibling queue packages.
package hazardq
