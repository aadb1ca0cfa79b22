// Copyright 2026 The go-prim Authors. SPDX-License-Identifier: Apache-2.0

package radix

import (
	"github.com/ajroetker/go-prim/prim/device"
)

// histogramPass counts, for every group, how many of its keys carry
// each digit value of the pass, and stores the counts into the
// digit-major (digit, group) table. Each group writes only its own
// column, so no cross-group coordination is needed.
func (e *engine[K, V]) histogramPass(s *device.Stream, pool *device.Pool, src []K, ps pass) {
	ipt := e.cfg.ItemsPerThread
	for _, ch := range e.chunks {
		ch := ch
		device.Launch(s, pool, device.Grid{Blocks: ch.groups, BlockSize: e.cfg.BlockSize}, func(b *device.Block) {
			g := ch.firstGroup + b.Index
			counts := make([]int32, ps.digits)

			// Pass-local 32-bit index arithmetic; ch.base lifts the
			// index into the global space.
			tileBase := uint32(b.Index) * uint32(e.tileItems)
			limit := uint32(ch.items)
			b.Threads(func(lid int) {
				base := tileBase + uint32(lid*ipt)
				for ii := uint32(0); ii < uint32(ipt); ii++ {
					j := base + ii
					if j >= limit {
						break
					}
					counts[e.digit(src[ch.base+int(j)], ps)]++
				}
			})

			for d := 0; d < ps.digits; d++ {
				e.offsets[d*e.totalGroups+g] = int64(counts[d])
			}
		})
	}
}

// scanOffsets turns the count table into exclusive scatter bases. A
// single exclusive scan over the digit-major table computes, for every
// (group, digit) pair, the global count of that digit in earlier groups
// plus the total count of all smaller digits — exactly the base offset
// the scatter needs, with no second pass over the keys.
func (e *engine[K, V]) scanOffsets(s *device.Stream, pool *device.Pool, ps pass) {
	length := ps.digits * e.totalGroups
	s.Enqueue("scan offsets", func() error {
		return device.ExclusiveScan(s.Context(), pool.NumWorkers(), e.offsets[:length])
	})
}
