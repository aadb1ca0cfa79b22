// Copyright 2026 The go-prim Authors. SPDX-License-Identifier: Apache-2.0

package radix

import (
	"github.com/ajroetker/go-prim/prim/block"
	"github.com/ajroetker/go-prim/prim/device"
)

// scatterPass writes every key (and paired value) of the pass to its
// globally sorted position. Each group stably ranks its tile by digit,
// regroups the tile through the block exchange so equal digits form
// contiguous runs, and adds each item's within-run position to the
// group's scanned base offset for that digit. The scan makes the
// destinations a bijection onto [0, n), so groups scatter independently.
func (e *engine[K, V]) scatterPass(s *device.Stream, pool *device.Pool,
	keySrc, keyDst []K, valSrc, valDst []V, ps pass) {

	bs, ipt := e.cfg.BlockSize, e.cfg.ItemsPerThread
	for _, ch := range e.chunks {
		ch := ch
		device.Launch(s, pool, device.Grid{Blocks: ch.groups, BlockSize: bs}, func(b *device.Block) {
			g := ch.firstGroup + b.Index
			tileBase := uint32(b.Index) * uint32(e.tileItems)
			count := min(e.tileItems, ch.items-int(tileBase))

			keys := make([]K, count)
			digits := make([]uint8, count)
			ranks := make([]int32, count)
			var vals []V
			if e.pairs {
				vals = make([]V, count)
			}

			// Load the tile in the blocked arrangement and extract
			// digits.
			b.Threads(func(lid int) {
				base := lid * ipt
				for ii := 0; ii < ipt; ii++ {
					j := base + ii
					if j >= count {
						break
					}
					src := ch.base + int(tileBase) + j
					k := keySrc[src]
					keys[j] = k
					digits[j] = e.digit(k, ps)
					if e.pairs {
						vals[j] = valSrc[src]
					}
				}
			})

			ranker := block.NewRanker(ps.digits)
			starts := ranker.RankKeys(digits, ranks)

			if count == e.tileItems {
				// Full tile: regroup by digit through the exchange,
				// preserving the order of equal digits, then write each
				// run out contiguously.
				ex := block.NewExchange[K](bs, ipt)
				ex.ScatterToBlocked(keys, keys, ranks)
				dex := block.NewExchange[uint8](bs, ipt)
				dex.ScatterToBlocked(digits, digits, ranks)
				if e.pairs {
					vex := block.NewExchange[V](bs, ipt)
					vex.ScatterToBlocked(vals, vals, ranks)
				}
				b.Threads(func(lid int) {
					base := lid * ipt
					for ii := 0; ii < ipt; ii++ {
						p := base + ii
						d := digits[p]
						dest := e.offsets[int(d)*e.totalGroups+g] + int64(int32(p)-starts[d])
						keyDst[dest] = keys[p]
						if e.pairs {
							valDst[dest] = vals[p]
						}
					}
				})
			} else {
				// Guarded tail tile: scatter straight from the ranks.
				b.Threads(func(lid int) {
					base := lid * ipt
					for ii := 0; ii < ipt; ii++ {
						j := base + ii
						if j >= count {
							break
						}
						d := digits[j]
						dest := e.offsets[int(d)*e.totalGroups+g] + int64(ranks[j]-starts[d])
						keyDst[dest] = keys[j]
						if e.pairs {
							valDst[dest] = vals[j]
						}
					}
				})
			}
		})
	}
}
