// Copyright 2026 The go-prim Authors. SPDX-License-Identifier: Apache-2.0

package block

// Exchange reshuffles one tile of blockSize*itemsPerThread items between
// canonical layouts through a per-group scratch buffer. The transform is
// a pure permutation: no item is lost, duplicated, or mutated, and the
// only requirement on T is that it is copyable.
//
// Every method runs in two phases: all threads write their items to
// scratch, a group barrier, then all threads read their items back out.
// Because of the intermediate scratch, in and out may alias the same
// slice. Both power-of-two and non-power-of-two block sizes are
// supported.
//
// An Exchange holds per-group scratch and must not be shared between
// concurrently executing groups.
type Exchange[T any] struct {
	blockSize      int
	itemsPerThread int
	scratch        []T
}

// NewExchange returns an Exchange for tiles of blockSize*itemsPerThread
// items.
func NewExchange[T any](blockSize, itemsPerThread int) *Exchange[T] {
	return &Exchange[T]{
		blockSize:      blockSize,
		itemsPerThread: itemsPerThread,
		scratch:        make([]T, blockSize*itemsPerThread),
	}
}

// TileItems returns the number of items in one tile.
func (e *Exchange[T]) TileItems() int { return e.blockSize * e.itemsPerThread }

// BlockedToStriped transforms a tile from the blocked arrangement to the
// striped arrangement: thread t's item ii changes from tile position
// t*itemsPerThread+ii to tile position ii*blockSize+t. in and out must
// both hold TileItems() items.
func (e *Exchange[T]) BlockedToStriped(in, out []T) {
	bs, ipt := e.blockSize, e.itemsPerThread

	// Write phase: each thread stores its run at its blocked positions.
	for t := 0; t < bs; t++ {
		for ii := 0; ii < ipt; ii++ {
			e.scratch[t*ipt+ii] = in[t*ipt+ii]
		}
	}
	// Barrier, then read phase: each thread gathers its striped items.
	for t := 0; t < bs; t++ {
		for ii := 0; ii < ipt; ii++ {
			out[t*ipt+ii] = e.scratch[ii*bs+t]
		}
	}
}

// StripedToBlocked is the exact inverse of BlockedToStriped.
func (e *Exchange[T]) StripedToBlocked(in, out []T) {
	bs, ipt := e.blockSize, e.itemsPerThread

	// Write phase: each thread stores its striped items at their tile
	// positions.
	for t := 0; t < bs; t++ {
		for ii := 0; ii < ipt; ii++ {
			e.scratch[ii*bs+t] = in[t*ipt+ii]
		}
	}
	// Barrier, then read phase: each thread gathers its blocked run.
	for t := 0; t < bs; t++ {
		for ii := 0; ii < ipt; ii++ {
			out[t*ipt+ii] = e.scratch[t*ipt+ii]
		}
	}
}

// ScatterToBlocked permutes the tile so that the item at position j
// lands at tile position ranks[j], then hands each thread its blocked
// run of the permuted tile. ranks must be a permutation of [0,
// TileItems()); it is how the radix scatter regroups a tile by digit
// while preserving the relative order of equal digits.
func (e *Exchange[T]) ScatterToBlocked(in, out []T, ranks []int32) {
	bs, ipt := e.blockSize, e.itemsPerThread

	for t := 0; t < bs; t++ {
		for ii := 0; ii < ipt; ii++ {
			j := t*ipt + ii
			e.scratch[ranks[j]] = in[j]
		}
	}
	for t := 0; t < bs; t++ {
		for ii := 0; ii < ipt; ii++ {
			out[t*ipt+ii] = e.scratch[t*ipt+ii]
		}
	}
}

// ScatterToStriped is ScatterToBlocked with a striped read phase: after
// the permutation, thread t holds permuted items t, t+blockSize, ...
func (e *Exchange[T]) ScatterToStriped(in, out []T, ranks []int32) {
	bs, ipt := e.blockSize, e.itemsPerThread

	for t := 0; t < bs; t++ {
		for ii := 0; ii < ipt; ii++ {
			j := t*ipt + ii
			e.scratch[ranks[j]] = in[j]
		}
	}
	for t := 0; t < bs; t++ {
		for ii := 0; ii < ipt; ii++ {
			out[t*ipt+ii] = e.scratch[ii*bs+t]
		}
	}
}
