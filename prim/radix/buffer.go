// Copyright 2026 The go-prim Authors. SPDX-License-Identifier: Apache-2.0

package radix

// DoubleBuffer is a pair of equally sized backing arrays that the sort
// alternates between across passes. Exactly one of the two is "current"
// at any time; after a sort completes, Current holds the result and
// Selector reports which slot that is. Using a DoubleBuffer avoids the
// copy-back pass of the in-place entry points and roughly halves the
// required scratch.
type DoubleBuffer[T any] struct {
	bufs     [2][]T
	selector int
}

// NewDoubleBuffer returns a DoubleBuffer whose current slot is current.
// Both slices must be at least as long as the element count sorted.
func NewDoubleBuffer[T any](current, alternate []T) *DoubleBuffer[T] {
	return &DoubleBuffer[T]{bufs: [2][]T{current, alternate}}
}

// Current returns the buffer holding the valid data.
func (d *DoubleBuffer[T]) Current() []T { return d.bufs[d.selector] }

// Alternate returns the other buffer.
func (d *DoubleBuffer[T]) Alternate() []T { return d.bufs[d.selector^1] }

// Selector returns the index (0 or 1) of the current buffer.
func (d *DoubleBuffer[T]) Selector() int { return d.selector }

// flip makes the alternate buffer current. The orchestrator calls this
// once per completed pass.
func (d *DoubleBuffer[T]) flip() { d.selector ^= 1 }
