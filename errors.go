// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hazardq

import (
	"errors"

	"code.hybscloud.com/iox"
)

// ErrWouldBlock indicates an operation could not proceed immediately. Pop
// does not return it: Pop reports an empty queue, and a hazard table with
// no free slot, through its boolean result instead.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
var ErrWouldBlock = iox.ErrWouldBlock

// ErrClosed is returned by workerpool.Pool.Submit after the pool has been
// shut down. It has no analogue at the Queue layer — Queue itself never
// closes — and exists only for the thread-pool adapter described in
// spec.md §4.3 / SPEC_FULL.md §4.3.
var ErrClosed = errors.New("hazardq: pool is closed")

// IsWouldBlock reports whether err indicates the operation would block.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsSemantic reports whether err is a control flow signal (not a failure).
// Delegates to [iox.IsSemantic].
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}

// IsNonFailure reports whether err represents a non-failure condition.
// Returns true for nil or ErrWouldBlock. Delegates to [iox.IsNonFailure].
func IsNonFailure(err error) bool {
	return iox.IsNonFailure(err)
}
