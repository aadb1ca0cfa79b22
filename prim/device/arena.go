// Copyright 2026 The go-prim Authors. SPDX-License-Identifier: Apache-2.0

package device

import (
	"unsafe"

	"github.com/cockroachdb/errors"
)

// ErrInsufficientScratch reports that a caller-provided scratch buffer
// is smaller than the size the sizing phase asked for.
var ErrInsufficientScratch = errors.New("device: insufficient scratch storage")

// arenaAlign is the byte alignment of every arena allocation.
const arenaAlign = 64

// Arena carves typed, aligned allocations out of a caller-provided
// scratch buffer. It implements both halves of the two-phase
// size-then-execute contract:
//
//   - NewArena(nil) creates a sizing arena: allocations return nil
//     slices and only tally the bytes a real run would need, reported
//     by Bytes.
//   - NewArena(buf) creates a live arena over buf. The same sequence of
//     allocations then yields real slices, and fails with
//     ErrInsufficientScratch if buf is smaller than the tallied size.
//
// An arena owns its buffer exclusively for the duration of one
// operation; concurrent operations must use disjoint buffers.
type Arena struct {
	buf  []byte
	off  int
	need int
}

// NewArena returns an arena over buf, or a sizing arena if buf is nil.
func NewArena(buf []byte) *Arena {
	return &Arena{buf: buf}
}

// Sizing reports whether the arena only tallies sizes.
func (a *Arena) Sizing() bool { return a.buf == nil }

// Bytes returns the total bytes required by the allocations made so
// far, including worst-case alignment padding.
func (a *Arena) Bytes() int { return a.need }

// Alloc returns an n-element slice of T carved from the arena, aligned
// to arenaAlign bytes. In sizing mode it returns a nil slice and no
// error. The returned memory is not zeroed.
//
// The scratch buffer is untyped memory, so pointers stored through the
// returned slice are invisible to the garbage collector. Element types
// containing pointers are safe only while every stored value stays
// reachable elsewhere for the duration of the operation, which holds
// for scratch copies of caller-provided data.
func Alloc[T any](a *Arena, n int) ([]T, error) {
	var zero T
	size := n * int(unsafe.Sizeof(zero))
	a.need += size + arenaAlign - 1
	if a.Sizing() || n == 0 {
		return nil, nil
	}

	base := uintptr(unsafe.Pointer(unsafe.SliceData(a.buf)))
	addr := base + uintptr(a.off)
	aligned := (addr + arenaAlign - 1) &^ uintptr(arenaAlign-1)
	start := int(aligned - base)
	if start+size > len(a.buf) {
		return nil, errors.Wrapf(ErrInsufficientScratch,
			"need %d more bytes in a %d-byte buffer", start+size-len(a.buf), len(a.buf))
	}
	a.off = start + size
	return unsafe.Slice((*T)(unsafe.Pointer(&a.buf[start])), n), nil
}
