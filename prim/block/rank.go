// Copyright 2026 The go-prim Authors. SPDX-License-Identifier: Apache-2.0

package block

// Ranker computes stable intra-tile ranks over a small digit space. It
// is the shared counting core of the radix scatter and the partition
// variants. Like Exchange, a Ranker holds per-group state and must not
// be shared between concurrently executing groups.
type Ranker struct {
	counts []int32
	starts []int32
}

// NewRanker returns a Ranker for digit values in [0, numDigits).
func NewRanker(numDigits int) *Ranker {
	return &Ranker{
		counts: make([]int32, numDigits),
		starts: make([]int32, numDigits),
	}
}

// RankKeys fills ranks[j] with the position item j would occupy after a
// stable regroup of the items by digit value: items are ordered by
// digit, and items with equal digits keep their relative order. The
// returned slice holds the exclusive per-digit start offsets within the
// tile; it is reused by the next call.
//
// digits and ranks must have equal length, which may be shorter than a
// full tile for the final, partial tile of a launch.
func (r *Ranker) RankKeys(digits []uint8, ranks []int32) (starts []int32) {
	for d := range r.counts {
		r.counts[d] = 0
	}
	for _, d := range digits {
		r.counts[d]++
	}

	// Exclusive scan over the digit axis.
	var sum int32
	for d, c := range r.counts {
		r.starts[d] = sum
		sum += c
	}

	// Assign ranks in item order so equal digits stay in input order.
	copy(r.counts, r.starts)
	for j, d := range digits {
		ranks[j] = r.counts[d]
		r.counts[d]++
	}
	return r.starts
}
