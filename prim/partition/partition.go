// Copyright 2026 go-prim Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package partition

import (
	"github.com/cockroachdb/errors"

	"github.com/ajroetker/go-prim/prim/block"
	"github.com/ajroetker/go-prim/prim/device"
)

// ErrShortBuffer reports an input or output slice shorter than the
// requested count.
var ErrShortBuffer = errors.New("partition: buffer shorter than count")

// ErrInsufficientScratch is device.ErrInsufficientScratch.
var ErrInsufficientScratch = device.ErrInsufficientScratch

// Config tunes the partition kernels. The zero value selects defaults.
type Config struct {
	// BlockSize is the number of cooperating threads per group.
	BlockSize int

	// ItemsPerThread is the number of items each thread owns per tile.
	ItemsPerThread int

	// MaxLaunchItems bounds how many items a single launch may address
	// with pass-local index arithmetic.
	MaxLaunchItems int

	// Workers sets the size of a private worker pool. Zero uses the
	// shared process-wide pool.
	Workers int
}

const (
	defaultBlockSize      = 256
	defaultItemsPerThread = 4
	maxLaunchItems        = 1 << 30
)

func (c Config) withDefaults() Config {
	if c.BlockSize <= 0 {
		c.BlockSize = defaultBlockSize
	}
	if c.ItemsPerThread <= 0 {
		c.ItemsPerThread = defaultItemsPerThread
	}
	if c.MaxLaunchItems <= 0 {
		c.MaxLaunchItems = maxLaunchItems
	}
	return c
}

func (c Config) validate() error {
	if c.MaxLaunchItems < c.BlockSize*c.ItemsPerThread {
		return errors.Newf("partition: MaxLaunchItems %d below a single %d-item tile",
			c.MaxLaunchItems, c.BlockSize*c.ItemsPerThread)
	}
	return nil
}

// Flagged copies in[:n] items whose flag is true to the front of
// out[:n] and the rest after them, both runs in input order, and stores
// the number of selected items in *selected. in and out must not
// overlap.
//
// Two-phase: when scratch is nil, *scratchBytes receives the required
// scratch size and nothing else happens.
func Flagged[T any](stream *device.Stream, scratch []byte, scratchBytes *int,
	in []T, flags []bool, out []T, selected *int, n int) error {
	return FlaggedConfig(stream, scratch, scratchBytes, in, flags, out, selected, n, Config{})
}

// FlaggedConfig is Flagged with explicit tuning.
func FlaggedConfig[T any](stream *device.Stream, scratch []byte, scratchBytes *int,
	in []T, flags []bool, out []T, selected *int, n int, cfg Config) error {
	if scratch != nil && len(flags) < n {
		return errors.Wrapf(ErrShortBuffer, "flags %d for count %d", len(flags), n)
	}
	return run(stream, scratch, scratchBytes, in, [3][]T{out, out}, selected, nil, n, 2, cfg,
		func(j int, _ T) uint8 {
			if flags[j] {
				return 0
			}
			return 1
		})
}

// If is Flagged with a predicate over values instead of a flag slice.
func If[T any](stream *device.Stream, scratch []byte, scratchBytes *int,
	in, out []T, selected *int, n int, pred func(T) bool) error {
	return IfConfig(stream, scratch, scratchBytes, in, out, selected, n, pred, Config{})
}

// IfConfig is If with explicit tuning.
func IfConfig[T any](stream *device.Stream, scratch []byte, scratchBytes *int,
	in, out []T, selected *int, n int, pred func(T) bool, cfg Config) error {
	return run(stream, scratch, scratchBytes, in, [3][]T{out, out}, selected, nil, n, 2, cfg,
		func(_ int, v T) uint8 {
			if pred(v) {
				return 0
			}
			return 1
		})
}

// ThreeWay routes every item of in[:n] to one of three outputs: items
// matching firstPred to firstOut, remaining items matching secondPred
// to secondOut, the rest to unselectedOut. Each output keeps input
// order. counts receives the first two output lengths; the third is
// n minus their sum. The outputs must each hold n items and must not
// overlap in or each other.
func ThreeWay[T any](stream *device.Stream, scratch []byte, scratchBytes *int,
	in, firstOut, secondOut, unselectedOut []T, counts *[2]int, n int,
	firstPred, secondPred func(T) bool) error {
	return ThreeWayConfig(stream, scratch, scratchBytes, in, firstOut, secondOut,
		unselectedOut, counts, n, firstPred, secondPred, Config{})
}

// ThreeWayConfig is ThreeWay with explicit tuning.
func ThreeWayConfig[T any](stream *device.Stream, scratch []byte, scratchBytes *int,
	in, firstOut, secondOut, unselectedOut []T, counts *[2]int, n int,
	firstPred, secondPred func(T) bool, cfg Config) error {
	return run(stream, scratch, scratchBytes, in,
		[3][]T{firstOut, secondOut, unselectedOut}, nil, counts, n, 3, cfg,
		func(_ int, v T) uint8 {
			switch {
			case firstPred(v):
				return 0
			case secondPred(v):
				return 1
			default:
				return 2
			}
		})
}

// chunk is one launch-sized subrange of the input, mirroring the radix
// sort's chunking: kernels use pass-local 32-bit indices and the chunk
// base lifts them into the global space.
type chunk struct {
	base       int
	items      int
	firstGroup int
	groups     int
}

func run[T any](stream *device.Stream, scratch []byte, scratchBytes *int,
	in []T, outs [3][]T, selected *int, counts *[2]int, n, ways int, cfg Config,
	digitOf func(globalIdx int, v T) uint8) error {

	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return err
	}
	if n < 0 {
		return errors.Newf("partition: negative count %d", n)
	}

	tileItems := cfg.BlockSize * cfg.ItemsPerThread
	span := cfg.MaxLaunchItems / tileItems * tileItems
	var chunks []chunk
	totalGroups := 0
	for base := 0; base < n; base += span {
		items := min(span, n-base)
		groups := (items + tileItems - 1) / tileItems
		chunks = append(chunks, chunk{base: base, items: items, firstGroup: totalGroups, groups: groups})
		totalGroups += groups
	}

	arena := device.NewArena(scratch)
	offsets, err := device.Alloc[int64](arena, ways*totalGroups)
	if err != nil {
		return err
	}
	if arena.Sizing() {
		if scratchBytes == nil {
			return errors.New("partition: nil scratchBytes on sizing call")
		}
		*scratchBytes = arena.Bytes()
		return nil
	}

	if len(in) < n {
		return errors.Wrapf(ErrShortBuffer, "input %d for count %d", len(in), n)
	}
	for w := 0; w < ways; w++ {
		if len(outs[w]) < n {
			return errors.Wrapf(ErrShortBuffer, "output %d is %d for count %d", w, len(outs[w]), n)
		}
	}
	if n == 0 {
		if selected != nil {
			*selected = 0
		}
		if counts != nil {
			*counts = [2]int{}
		}
		return nil
	}

	var pool *device.Pool
	if cfg.Workers > 0 {
		p := device.NewPool(cfg.Workers)
		defer p.Close()
		pool = p
	} else {
		pool = device.DefaultPool()
	}
	s := stream
	if s == nil {
		s = device.New(nil)
		defer s.Close()
	}

	ipt := cfg.ItemsPerThread

	// Histogram: each group counts its digits into its own column of
	// the digit-major (digit, group) table.
	for _, ch := range chunks {
		ch := ch
		device.Launch(s, pool, device.Grid{Blocks: ch.groups, BlockSize: cfg.BlockSize}, func(b *device.Block) {
			g := ch.firstGroup + b.Index
			tileCounts := make([]int32, ways)
			tileBase := uint32(b.Index) * uint32(tileItems)
			limit := uint32(ch.items)
			b.Threads(func(lid int) {
				base := tileBase + uint32(lid*ipt)
				for ii := uint32(0); ii < uint32(ipt); ii++ {
					j := base + ii
					if j >= limit {
						break
					}
					src := ch.base + int(j)
					tileCounts[digitOf(src, in[src])]++
				}
			})
			for d := 0; d < ways; d++ {
				offsets[d*totalGroups+g] = int64(tileCounts[d])
			}
		})
	}

	// One exclusive scan over the table yields every group's scatter
	// base per digit, with the totals of smaller digits folded in.
	s.Enqueue("scan offsets", func() error {
		return device.ExclusiveScan(s.Context(), pool.NumWorkers(), offsets)
	})

	// Scatter: stable intra-tile ranks plus the scanned base give each
	// item its final slot; subtracting the digit's global base routes it
	// into that digit's output slice.
	for _, ch := range chunks {
		ch := ch
		device.Launch(s, pool, device.Grid{Blocks: ch.groups, BlockSize: cfg.BlockSize}, func(b *device.Block) {
			g := ch.firstGroup + b.Index
			tileBase := uint32(b.Index) * uint32(tileItems)
			count := min(tileItems, ch.items-int(tileBase))

			digits := make([]uint8, count)
			ranks := make([]int32, count)
			b.Threads(func(lid int) {
				base := lid * ipt
				for ii := 0; ii < ipt; ii++ {
					j := base + ii
					if j >= count {
						break
					}
					src := ch.base + int(tileBase) + j
					digits[j] = digitOf(src, in[src])
				}
			})

			ranker := block.NewRanker(ways)
			starts := ranker.RankKeys(digits, ranks)

			b.Threads(func(lid int) {
				base := lid * ipt
				for ii := 0; ii < ipt; ii++ {
					j := base + ii
					if j >= count {
						break
					}
					d := digits[j]
					dest := offsets[int(d)*totalGroups+g] + int64(ranks[j]-starts[d])
					if ways == 3 {
						// Separate outputs: rebase on the digit's
						// global start. Two-way shares one buffer, so
						// the global destination is already the index.
						dest -= offsets[int(d)*totalGroups]
					}
					outs[d][dest] = in[ch.base+int(tileBase)+j]
				}
			})
		})
	}

	s.Enqueue("report counts", func() error {
		if selected != nil {
			*selected = int(offsets[totalGroups])
		}
		if counts != nil {
			counts[0] = int(offsets[totalGroups])
			counts[1] = int(offsets[2*totalGroups] - offsets[totalGroups])
		}
		return nil
	})
	return s.Wait()
}
