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

// none is the value type instantiated for keys-only sorts.
type none = struct{}

// SortKeys sorts in[:n] ascending by the digit range [beginBit, endBit)
// of each key's order pattern, writing the result to out[:n]. Equal
// keys keep their relative input order. in and out may be the same
// slice. Pass beginBit 0 and endBit prim.KeyBits[K]() for a full sort.
//
// Two-phase: when scratch is nil, *scratchBytes receives the required
// scratch size and nothing else happens. stream may be nil to run on an
// internal stream; either way the call returns after the sort (or its
// first fault) completes.
func SortKeys[K prim.Keys](stream *device.Stream, scratch []byte, scratchBytes *int,
	in, out []K, n, beginBit, endBit int) error {
	return SortKeysConfig(stream, scratch, scratchBytes, in, out, n,
		prim.NumericEncoder[K](), beginBit, endBit, false, Config{})
}

// SortKeysDesc is SortKeys in descending order.
func SortKeysDesc[K prim.Keys](stream *device.Stream, scratch []byte, scratchBytes *int,
	in, out []K, n, beginBit, endBit int) error {
	return SortKeysConfig(stream, scratch, scratchBytes, in, out, n,
		prim.NumericEncoder[K](), beginBit, endBit, true, Config{})
}

// SortPairs sorts keys ascending and moves each value alongside its
// key. Values are moved, never inspected.
func SortPairs[K prim.Keys, V any](stream *device.Stream, scratch []byte, scratchBytes *int,
	keysIn, keysOut []K, valsIn, valsOut []V, n, beginBit, endBit int) error {
	return SortPairsConfig(stream, scratch, scratchBytes, keysIn, keysOut, valsIn, valsOut, n,
		prim.NumericEncoder[K](), beginBit, endBit, false, Config{})
}

// SortPairsDesc is SortPairs in descending order.
func SortPairsDesc[K prim.Keys, V any](stream *device.Stream, scratch []byte, scratchBytes *int,
	keysIn, keysOut []K, valsIn, valsOut []V, n, beginBit, endBit int) error {
	return SortPairsConfig(stream, scratch, scratchBytes, keysIn, keysOut, valsIn, valsOut, n,
		prim.NumericEncoder[K](), beginBit, endBit, true, Config{})
}

// SortKeysBy is SortKeys with a caller-supplied Encoder, for opaque
// record keys.
func SortKeysBy[K any](stream *device.Stream, scratch []byte, scratchBytes *int,
	in, out []K, n int, enc prim.Encoder[K], beginBit, endBit int) error {
	return SortKeysConfig(stream, scratch, scratchBytes, in, out, n,
		enc, beginBit, endBit, false, Config{})
}

// SortPairsBy is SortPairs with a caller-supplied Encoder.
func SortPairsBy[K, V any](stream *device.Stream, scratch []byte, scratchBytes *int,
	keysIn, keysOut []K, valsIn, valsOut []V, n int, enc prim.Encoder[K], beginBit, endBit int) error {
	return SortPairsConfig(stream, scratch, scratchBytes, keysIn, keysOut, valsIn, valsOut, n,
		enc, beginBit, endBit, false, Config{})
}

// SortKeysDoubleBuffer sorts keys.Current()[:n] ascending. After the
// call keys.Current() holds the result; keys.Selector() reports which
// slot that is. No copy-back pass is performed.
func SortKeysDoubleBuffer[K prim.Keys](stream *device.Stream, scratch []byte, scratchBytes *int,
	keys *DoubleBuffer[K], n, beginBit, endBit int) error {
	return SortKeysDoubleBufferConfig(stream, scratch, scratchBytes, keys, n,
		prim.NumericEncoder[K](), beginBit, endBit, false, Config{})
}

// SortKeysDescDoubleBuffer is SortKeysDoubleBuffer in descending order.
func SortKeysDescDoubleBuffer[K prim.Keys](stream *device.Stream, scratch []byte, scratchBytes *int,
	keys *DoubleBuffer[K], n, beginBit, endBit int) error {
	return SortKeysDoubleBufferConfig(stream, scratch, scratchBytes, keys, n,
		prim.NumericEncoder[K](), beginBit, endBit, true, Config{})
}

// SortPairsDoubleBuffer sorts keys and moves values alongside, both in
// double-buffer form. The two DoubleBuffers flip together.
func SortPairsDoubleBuffer[K prim.Keys, V any](stream *device.Stream, scratch []byte, scratchBytes *int,
	keys *DoubleBuffer[K], vals *DoubleBuffer[V], n, beginBit, endBit int) error {
	return SortPairsDoubleBufferConfig(stream, scratch, scratchBytes, keys, vals, n,
		prim.NumericEncoder[K](), beginBit, endBit, false, Config{})
}

// SortPairsDescDoubleBuffer is SortPairsDoubleBuffer descending.
func SortPairsDescDoubleBuffer[K prim.Keys, V any](stream *device.Stream, scratch []byte, scratchBytes *int,
	keys *DoubleBuffer[K], vals *DoubleBuffer[V], n, beginBit, endBit int) error {
	return SortPairsDoubleBufferConfig(stream, scratch, scratchBytes, keys, vals, n,
		prim.NumericEncoder[K](), beginBit, endBit, true, Config{})
}

// SortKeysConfig is the fully parameterized keys-only entry point.
func SortKeysConfig[K any](stream *device.Stream, scratch []byte, scratchBytes *int,
	in, out []K, n int, enc prim.Encoder[K], beginBit, endBit int,
	descending bool, cfg Config) error {
	return runPlain[K, none](stream, scratch, scratchBytes,
		in, out, nil, nil, n, enc, beginBit, endBit, descending, false, cfg)
}

// SortPairsConfig is the fully parameterized keys+values entry point.
func SortPairsConfig[K, V any](stream *device.Stream, scratch []byte, scratchBytes *int,
	keysIn, keysOut []K, valsIn, valsOut []V, n int, enc prim.Encoder[K],
	beginBit, endBit int, descending bool, cfg Config) error {
	return runPlain[K, V](stream, scratch, scratchBytes,
		keysIn, keysOut, valsIn, valsOut, n, enc, beginBit, endBit, descending, true, cfg)
}

// SortKeysDoubleBufferConfig is the fully parameterized double-buffer
// keys-only entry point.
func SortKeysDoubleBufferConfig[K any](stream *device.Stream, scratch []byte, scratchBytes *int,
	keys *DoubleBuffer[K], n int, enc prim.Encoder[K], beginBit, endBit int,
	descending bool, cfg Config) error {
	return runDoubleBuffer[K, none](stream, scratch, scratchBytes,
		keys, nil, n, enc, beginBit, endBit, descending, false, cfg)
}

// SortPairsDoubleBufferConfig is the fully parameterized double-buffer
// keys+values entry point.
func SortPairsDoubleBufferConfig[K, V any](stream *device.Stream, scratch []byte, scratchBytes *int,
	keys *DoubleBuffer[K], vals *DoubleBuffer[V], n int, enc prim.Encoder[K],
	beginBit, endBit int, descending bool, cfg Config) error {
	return runDoubleBuffer[K, V](stream, scratch, scratchBytes,
		keys, vals, n, enc, beginBit, endBit, descending, true, cfg)
}

// resolvePool returns the pool launches should use and a release func.
func resolvePool(cfg Config) (*device.Pool, func()) {
	if cfg.Workers > 0 {
		p := device.NewPool(cfg.Workers)
		return p, p.Close
	}
	return device.DefaultPool(), func() {}
}

// resolveStream returns the stream to run on and a release func.
func resolveStream(stream *device.Stream) (*device.Stream, func()) {
	if stream != nil {
		return stream, func() {}
	}
	s := device.New(nil)
	return s, s.Close
}

func runPlain[K, V any](stream *device.Stream, scratch []byte, scratchBytes *int,
	keysIn, keysOut []K, valsIn, valsOut []V, n int, enc prim.Encoder[K],
	beginBit, endBit int, descending, pairs bool, cfg Config) error {

	e, err := newEngine[K, V](n, beginBit, endBit, enc, descending, pairs, cfg)
	if err != nil {
		return err
	}

	arena := device.NewArena(scratch)
	tmpKeys, tmpVals, err := e.bind(arena, true)
	if err != nil {
		return err
	}
	if arena.Sizing() {
		if scratchBytes == nil {
			return errors.New("radix: nil scratchBytes on sizing call")
		}
		*scratchBytes = arena.Bytes()
		return nil
	}

	if len(keysIn) < n || len(keysOut) < n {
		return errors.Wrapf(ErrShortBuffer, "keys %d/%d for count %d", len(keysIn), len(keysOut), n)
	}
	if pairs && (len(valsIn) < n || len(valsOut) < n) {
		return errors.Wrapf(ErrShortBuffer, "values %d/%d for count %d", len(valsIn), len(valsOut), n)
	}
	if n == 0 {
		return nil
	}

	pool, releasePool := resolvePool(e.cfg)
	defer releasePool()
	s, releaseStream := resolveStream(stream)
	defer releaseStream()

	// With aliased input and output the first scatter must leave the
	// input intact, forcing the scratch buffer first; otherwise the
	// first destination is chosen by pass parity so the final pass
	// lands in the output with no copy.
	aliased := &keysIn[0] == &keysOut[0]
	np := len(e.passes)
	firstDst := 1
	if !aliased && np%2 == 1 {
		firstDst = 0
	}

	keyBufs := [2][]K{keysOut, tmpKeys}
	valBufs := [2][]V{valsOut, tmpVals}
	e.runPasses(s, pool, keysIn, valsIn, keyBufs, valBufs, firstDst)

	if firstDst^((np-1)&1) != 0 {
		// Odd pass count against an aliased pair: one copy-back pass so
		// the data ends in the caller's slot.
		s.Enqueue("copy back", func() error {
			copy(keysOut[:n], tmpKeys[:n])
			if pairs {
				copy(valsOut[:n], tmpVals[:n])
			}
			return nil
		})
	}
	return s.Wait()
}

func runDoubleBuffer[K, V any](stream *device.Stream, scratch []byte, scratchBytes *int,
	keys *DoubleBuffer[K], vals *DoubleBuffer[V], n int, enc prim.Encoder[K],
	beginBit, endBit int, descending, pairs bool, cfg Config) error {

	e, err := newEngine[K, V](n, beginBit, endBit, enc, descending, pairs, cfg)
	if err != nil {
		return err
	}

	arena := device.NewArena(scratch)
	if _, _, err := e.bind(arena, false); err != nil {
		return err
	}
	if arena.Sizing() {
		if scratchBytes == nil {
			return errors.New("radix: nil scratchBytes on sizing call")
		}
		*scratchBytes = arena.Bytes()
		return nil
	}

	if keys == nil {
		return errors.New("radix: nil key double buffer")
	}
	if len(keys.Current()) < n || len(keys.Alternate()) < n {
		return errors.Wrapf(ErrShortBuffer, "key buffers %d/%d for count %d",
			len(keys.Current()), len(keys.Alternate()), n)
	}
	if pairs {
		if vals == nil {
			return errors.New("radix: nil value double buffer")
		}
		if len(vals.Current()) < n || len(vals.Alternate()) < n {
			return errors.Wrapf(ErrShortBuffer, "value buffers %d/%d for count %d",
				len(vals.Current()), len(vals.Alternate()), n)
		}
	}
	if n == 0 {
		return nil
	}

	pool, releasePool := resolvePool(e.cfg)
	defer releasePool()
	s, releaseStream := resolveStream(stream)
	defer releaseStream()

	keyBufs := [2][]K{keys.Current(), keys.Alternate()}
	var valBufs [2][]V
	var valSrc []V
	if pairs {
		valBufs = [2][]V{vals.Current(), vals.Alternate()}
		valSrc = valBufs[0]
	}
	e.runPasses(s, pool, keyBufs[0], valSrc, keyBufs, valBufs, 1)

	if err := s.Wait(); err != nil {
		return err
	}
	if len(e.passes)%2 == 1 {
		keys.flip()
		if pairs {
			vals.flip()
		}
	}
	return nil
}
