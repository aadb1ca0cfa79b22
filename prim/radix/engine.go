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

package radix

import (
	"github.com/cockroachdb/errors"

	"github.com/ajroetker/go-prim/prim"
	"github.com/ajroetker/go-prim/prim/device"
)

// pass is one digit slice of the configured key bit range.
type pass struct {
	shift  int
	bits   int
	digits int
	mask   uint64
}

// chunk is one launch-sized subrange of the input. Kernels address
// items within a chunk with pass-local 32-bit indices; the chunk base
// lifts them back into the global index space.
type chunk struct {
	base       int
	items      int
	firstGroup int
	groups     int
}

// engine carries one sort operation from sizing through completion. Its
// lifecycle mirrors the two-phase contract: a fresh engine only plans
// (sizing); binding scratch makes it ready; runPasses enqueues the
// passes; the stream's Wait marks it done.
type engine[K, V any] struct {
	cfg   Config
	enc   prim.Encoder[K]
	desc  bool
	pairs bool

	n        int
	beginBit int
	endBit   int

	tileItems   int
	passes      []pass
	chunks      []chunk
	totalGroups int
	maxDigits   int

	// offsets is the per-pass (digit, group) table, digit-major. It
	// holds raw counts after the histogram launch and exclusive scatter
	// bases after the scan. Rebuilt every pass, never persisted.
	offsets []int64
}

func newEngine[K, V any](n, beginBit, endBit int, enc prim.Encoder[K],
	desc, pairs bool, cfg Config) (*engine[K, V], error) {

	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, errors.Newf("radix: negative count %d", n)
	}
	keyBits := enc.Bits()
	if keyBits <= 0 || keyBits > 64 {
		return nil, errors.Wrapf(ErrInvalidBitRange, "encoder reports %d-bit keys", keyBits)
	}
	if beginBit < 0 || beginBit >= endBit || endBit > keyBits {
		return nil, errors.Wrapf(ErrInvalidBitRange,
			"[%d,%d) over %d-bit keys", beginBit, endBit, keyBits)
	}

	e := &engine[K, V]{
		cfg:      cfg,
		enc:      enc,
		desc:     desc,
		pairs:    pairs,
		n:        n,
		beginBit: beginBit,
		endBit:   endBit,
	}
	e.plan()
	return e, nil
}

// plan splits the bit range into passes and the input into chunks. No
// data is touched.
func (e *engine[K, V]) plan() {
	e.tileItems = e.cfg.BlockSize * e.cfg.ItemsPerThread

	// Chunk span rounded down to whole tiles so group boundaries never
	// straddle a chunk.
	span := e.cfg.MaxLaunchItems / e.tileItems * e.tileItems
	for base := 0; base < e.n; base += span {
		items := min(span, e.n-base)
		groups := (items + e.tileItems - 1) / e.tileItems
		e.chunks = append(e.chunks, chunk{
			base:       base,
			items:      items,
			firstGroup: e.totalGroups,
			groups:     groups,
		})
		e.totalGroups += groups
	}

	for shift := e.beginBit; shift < e.endBit; shift += e.cfg.RadixBits {
		bits := min(e.cfg.RadixBits, e.endBit-shift)
		e.passes = append(e.passes, pass{
			shift:  shift,
			bits:   bits,
			digits: 1 << bits,
			mask:   uint64(1<<bits) - 1,
		})
	}
	for _, ps := range e.passes {
		e.maxDigits = max(e.maxDigits, ps.digits)
	}
}

// digit extracts the pass's digit from a key's order pattern. For
// descending sorts the digit space is mirrored, which reverses the
// order of each pass while keeping it stable.
func (e *engine[K, V]) digit(k K, ps pass) uint8 {
	d := (e.enc.OrderKey(k) >> uint(ps.shift)) & ps.mask
	if e.desc {
		d = ps.mask - d
	}
	return uint8(d)
}

// bind allocates the engine's scratch from the arena. The allocation
// sequence is identical in sizing and live mode, which is what makes
// the reported size exact. tmpKeys/tmpVals are only carved in the
// single-buffer entry points.
func (e *engine[K, V]) bind(arena *device.Arena, withTmp bool) (tmpKeys []K, tmpVals []V, err error) {
	e.offsets, err = device.Alloc[int64](arena, e.maxDigits*e.totalGroups)
	if err != nil {
		return nil, nil, err
	}
	if withTmp {
		tmpKeys, err = device.Alloc[K](arena, e.n)
		if err != nil {
			return nil, nil, err
		}
		if e.pairs {
			tmpVals, err = device.Alloc[V](arena, e.n)
			if err != nil {
				return nil, nil, err
			}
		}
	}
	return tmpKeys, tmpVals, nil
}

// runPasses enqueues the full pass sequence on the stream. keySrc and
// valSrc feed pass 0; later passes alternate between the two buffer
// slots starting with firstDst. The stream's FIFO order is the
// full-pipeline barrier between a pass's scatter and the next pass's
// histogram.
func (e *engine[K, V]) runPasses(s *device.Stream, pool *device.Pool,
	keySrc []K, valSrc []V, keyBufs [2][]K, valBufs [2][]V, firstDst int) {

	ks, vs := keySrc, valSrc
	cur := firstDst
	for _, ps := range e.passes {
		kd, vd := keyBufs[cur], valBufs[cur]
		e.histogramPass(s, pool, ks, ps)
		e.scanOffsets(s, pool, ps)
		e.scatterPass(s, pool, ks, kd, vs, vd, ps)
		ks, vs = kd, vd
		cur ^= 1
	}
}
