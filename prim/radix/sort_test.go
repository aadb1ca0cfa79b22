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
	"context"
	"math"
	"math/rand"
	"slices"
	"sort"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/ajroetker/go-prim/prim"
	"github.com/ajroetker/go-prim/prim/device"
)

// refSort returns a stable reference sort of keys by the digit range
// [beginBit, endBit) of their order pattern.
func refSort[K prim.Keys](keys []K, beginBit, endBit int, desc bool) []K {
	out := slices.Clone(keys)
	mask := uint64(1)<<(endBit-beginBit) - 1
	field := func(k K) uint64 { return (prim.OrderBits(k) >> beginBit) & mask }
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return field(out[i]) > field(out[j])
		}
		return field(out[i]) < field(out[j])
	})
	return out
}

// twoPhase runs the sizing call, allocates exactly the reported bytes,
// and runs the execute call.
func twoPhase(t *testing.T, run func(scratch []byte, scratchBytes *int) error) {
	t.Helper()
	var need int
	if err := run(nil, &need); err != nil {
		t.Fatalf("sizing call failed: %v", err)
	}
	scratch := make([]byte, need)
	if err := run(scratch, &need); err != nil {
		t.Fatalf("execute call failed: %v", err)
	}
}

// samePattern compares by order pattern so NaNs compare equal to
// themselves and -0/+0 stay distinguishable.
func samePattern[K prim.Keys](a, b []K) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if prim.OrderBits(a[i]) != prim.OrderBits(b[i]) {
			return false
		}
	}
	return true
}

// TestSortKeysSmall sorts [5,3,1,4,2] over a 3-bit digit range.
func TestSortKeysSmall(t *testing.T) {
	in := []uint32{5, 3, 1, 4, 2}
	out := make([]uint32, len(in))
	twoPhase(t, func(scratch []byte, need *int) error {
		return SortKeys(nil, scratch, need, in, out, len(in), 0, 3)
	})
	want := []uint32{1, 2, 3, 4, 5}
	if !slices.Equal(out, want) {
		t.Errorf("out = %v, want %v", out, want)
	}
	if !slices.Equal(in, []uint32{5, 3, 1, 4, 2}) {
		t.Errorf("distinct input was modified: %v", in)
	}
}

// TestSortKeysLowBit sorts [0b101, 0b100] by bit 0 only.
func TestSortKeysLowBit(t *testing.T) {
	in := []uint8{0b101, 0b100}
	out := make([]uint8, 2)
	twoPhase(t, func(scratch []byte, need *int) error {
		return SortKeys(nil, scratch, need, in, out, 2, 0, 1)
	})
	want := []uint8{0b100, 0b101}
	if !slices.Equal(out, want) {
		t.Errorf("out = %v, want %v", out, want)
	}
}

// TestSortKeysZeroCount checks that count 0 is a valid no-op.
func TestSortKeysZeroCount(t *testing.T) {
	buf := []int32{7, 8, 9}
	twoPhase(t, func(scratch []byte, need *int) error {
		return SortKeys(nil, scratch, need, buf, buf, 0, 0, 32)
	})
	if !slices.Equal(buf, []int32{7, 8, 9}) {
		t.Errorf("zero-count sort modified the buffer: %v", buf)
	}
}

func testSortRandom[K prim.Keys](t *testing.T, gen func(*rand.Rand) K) {
	t.Helper()
	rng := rand.New(rand.NewSource(99))
	bits := prim.KeyBits[K]()
	sizes := []int{0, 1, 2, 7, 64, 100, 1000, 1024, 4096, 10000}
	for _, n := range sizes {
		in := make([]K, n)
		for i := range in {
			in[i] = gen(rng)
		}
		out := make([]K, n)
		twoPhase(t, func(scratch []byte, need *int) error {
			return SortKeys(nil, scratch, need, in, out, n, 0, bits)
		})
		if want := refSort(in, 0, bits, false); !samePattern(out, want) {
			t.Errorf("n=%d: sorted output differs from reference", n)
		}
	}
}

func TestSortKeysRandomUint32(t *testing.T) {
	testSortRandom(t, func(r *rand.Rand) uint32 { return r.Uint32() })
}

func TestSortKeysRandomInt32(t *testing.T) {
	testSortRandom(t, func(r *rand.Rand) int32 { return int32(r.Uint32()) })
}

func TestSortKeysRandomInt64(t *testing.T) {
	testSortRandom(t, func(r *rand.Rand) int64 { return int64(r.Uint64()) })
}

func TestSortKeysRandomUint8(t *testing.T) {
	testSortRandom(t, func(r *rand.Rand) uint8 { return uint8(r.Intn(256)) })
}

func TestSortKeysRandomFloat32(t *testing.T) {
	testSortRandom(t, func(r *rand.Rand) float32 { return float32(r.NormFloat64() * 1e6) })
}

func TestSortKeysRandomFloat64(t *testing.T) {
	testSortRandom(t, func(r *rand.Rand) float64 { return r.NormFloat64() * 1e6 })
}

func TestSortKeysInPlace(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for _, n := range []int{1, 5, 100, 2048, 9999} {
		data := make([]int64, n)
		for i := range data {
			data[i] = int64(rng.Uint64())
		}
		want := refSort(data, 0, 64, false)
		twoPhase(t, func(scratch []byte, need *int) error {
			return SortKeys(nil, scratch, need, data, data, n, 0, 64)
		})
		if !slices.Equal(data, want) {
			t.Errorf("n=%d: in-place sort differs from reference", n)
		}
	}
}

func TestSortKeysDescending(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	for _, n := range []int{3, 100, 5000} {
		in := make([]int32, n)
		for i := range in {
			in[i] = int32(rng.Uint32())
		}
		out := make([]int32, n)
		twoPhase(t, func(scratch []byte, need *int) error {
			return SortKeysDesc(nil, scratch, need, in, out, n, 0, 32)
		})
		if want := refSort(in, 0, 32, true); !slices.Equal(out, want) {
			t.Errorf("n=%d: descending sort differs from reference", n)
		}
	}
}

// TestSortKeysFloatSpecials pins the total-order convention for NaN,
// infinities and signed zero.
func TestSortKeysFloatSpecials(t *testing.T) {
	negNaN := math.Float64frombits(0xFFF8_0000_0000_0001)
	in := []float64{1, math.NaN(), math.Inf(1), math.Copysign(0, -1), negNaN, 0, math.Inf(-1), -1}
	out := make([]float64, len(in))
	twoPhase(t, func(scratch []byte, need *int) error {
		return SortKeys(nil, scratch, need, in, out, len(in), 0, 64)
	})
	want := []float64{negNaN, math.Inf(-1), -1, math.Copysign(0, -1), 0, 1, math.Inf(1), math.NaN()}
	if !samePattern(out, want) {
		t.Errorf("out = %v, want %v", out, want)
	}
}

// TestSortPairsStable sorts many duplicate keys with index payloads and
// checks that equal keys keep input order and every payload travels
// with its key.
func TestSortPairsStable(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	const n = 20000
	keys := make([]uint16, n)
	vals := make([]int, n)
	for i := range keys {
		keys[i] = uint16(rng.Intn(8)) // heavy duplication
		vals[i] = i
	}
	keysOut := make([]uint16, n)
	valsOut := make([]int, n)
	twoPhase(t, func(scratch []byte, need *int) error {
		return SortPairs(nil, scratch, need, keys, keysOut, vals, valsOut, n, 0, 16)
	})

	for i := 1; i < n; i++ {
		if keysOut[i-1] > keysOut[i] {
			t.Fatalf("keys not sorted at %d", i)
		}
		if keysOut[i-1] == keysOut[i] && valsOut[i-1] >= valsOut[i] {
			t.Fatalf("equal keys out of input order at %d: %d then %d", i, valsOut[i-1], valsOut[i])
		}
	}
	for i := range keysOut {
		if keys[valsOut[i]] != keysOut[i] {
			t.Fatalf("payload %d separated from its key", valsOut[i])
		}
	}
}

func TestSortPairsDescending(t *testing.T) {
	keys := []int8{3, -1, 3, 0, -5, 3}
	vals := []string{"a", "b", "c", "d", "e", "f"}
	keysOut := make([]int8, len(keys))
	valsOut := make([]string, len(keys))
	twoPhase(t, func(scratch []byte, need *int) error {
		return SortPairsDesc(nil, scratch, need, keys, keysOut, vals, valsOut, len(keys), 0, 8)
	})
	wantKeys := []int8{3, 3, 3, 0, -1, -5}
	wantVals := []string{"a", "c", "f", "d", "b", "e"}
	if !slices.Equal(keysOut, wantKeys) || !slices.Equal(valsOut, wantVals) {
		t.Errorf("got %v/%v, want %v/%v", keysOut, valsOut, wantKeys, wantVals)
	}
}

// TestBitRangeSubset checks that sorting a narrow digit range never
// reorders items whose differing bits lie outside it.
func TestBitRangeSubset(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	const n = 5000
	in := make([]uint32, n)
	for i := range in {
		in[i] = rng.Uint32()
	}
	out := make([]uint32, n)
	twoPhase(t, func(scratch []byte, need *int) error {
		return SortKeys(nil, scratch, need, in, out, n, 8, 16)
	})
	if want := refSort(in, 8, 16, false); !slices.Equal(out, want) {
		t.Errorf("bit-range sort differs from stable reference")
	}
}

// TestNarrowFinalPass uses a bit range that is not a multiple of the
// digit width, forcing the last pass to narrow.
func TestNarrowFinalPass(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	const n = 3000
	in := make([]uint32, n)
	for i := range in {
		in[i] = rng.Uint32()
	}
	out := make([]uint32, n)
	twoPhase(t, func(scratch []byte, need *int) error {
		return SortKeys(nil, scratch, need, in, out, n, 0, 12)
	})
	if want := refSort(in, 0, 12, false); !slices.Equal(out, want) {
		t.Errorf("12-bit sort differs from stable reference")
	}
}

func TestSortKeysDoubleBuffer(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	// 8 and 16 end bits give odd and even pass counts, exercising both
	// final selector outcomes.
	for _, endBit := range []int{8, 16} {
		const n = 4000
		a := make([]uint16, n)
		for i := range a {
			a[i] = uint16(rng.Uint32())
		}
		orig := slices.Clone(a)
		b := make([]uint16, n)
		db := NewDoubleBuffer(a, b)
		twoPhase(t, func(scratch []byte, need *int) error {
			return SortKeysDoubleBuffer(nil, scratch, need, db, n, 0, endBit)
		})
		got := db.Current()[:n]
		if want := refSort(orig, 0, endBit, false); !slices.Equal(got, want) {
			t.Errorf("endBit=%d: double-buffer result differs from reference", endBit)
		}
		wantSel := 0
		if (endBit+7)/8%2 == 1 {
			wantSel = 1
		}
		if db.Selector() != wantSel {
			t.Errorf("endBit=%d: selector = %d, want %d", endBit, db.Selector(), wantSel)
		}
	}
}

func TestSortPairsDoubleBuffer(t *testing.T) {
	rng := rand.New(rand.NewSource(10))
	const n = 2500
	ka := make([]uint32, n)
	va := make([]uint32, n)
	for i := range ka {
		ka[i] = rng.Uint32() % 64
		va[i] = uint32(i)
	}
	origKeys := slices.Clone(ka)
	keys := NewDoubleBuffer(ka, make([]uint32, n))
	vals := NewDoubleBuffer(va, make([]uint32, n))
	twoPhase(t, func(scratch []byte, need *int) error {
		return SortPairsDoubleBuffer(nil, scratch, need, keys, vals, n, 0, 32)
	})
	if keys.Selector() != vals.Selector() {
		t.Fatalf("key and value selectors diverged: %d vs %d", keys.Selector(), vals.Selector())
	}
	k, v := keys.Current()[:n], vals.Current()[:n]
	for i := 1; i < n; i++ {
		if k[i-1] > k[i] {
			t.Fatalf("keys not sorted at %d", i)
		}
		if k[i-1] == k[i] && v[i-1] >= v[i] {
			t.Fatalf("stability violated at %d", i)
		}
	}
	for i := range k {
		if origKeys[v[i]] != k[i] {
			t.Fatalf("payload separated from key at %d", i)
		}
	}
}

// TestSortKeysChunked forces the input to span many launch chunks and
// checks the result against an unchunked reference.
func TestSortKeysChunked(t *testing.T) {
	cfg := Config{
		BlockSize:      32,
		ItemsPerThread: 2,
		MaxLaunchItems: 128, // two tiles per chunk
	}
	rng := rand.New(rand.NewSource(11))
	const n = 100_000
	in := make([]uint64, n)
	for i := range in {
		in[i] = rng.Uint64()
	}
	out := make([]uint64, n)
	twoPhase(t, func(scratch []byte, need *int) error {
		return SortKeysConfig(nil, scratch, need, in, out, n,
			prim.NumericEncoder[uint64](), 0, 64, false, cfg)
	})
	if want := refSort(in, 0, 64, false); !slices.Equal(out, want) {
		t.Errorf("chunked sort differs from reference")
	}
}

// TestSortKeysBy sorts opaque record keys through an injected encoder.
func TestSortKeysBy(t *testing.T) {
	type ver struct {
		major, minor uint8
		tag          string
	}
	enc := prim.FuncEncoder[ver]{
		KeyBits: 16,
		Order: func(v ver) uint64 {
			return uint64(v.major)<<8 | uint64(v.minor)
		},
	}
	in := []ver{
		{2, 0, "a"}, {1, 9, "b"}, {1, 9, "c"}, {0, 1, "d"}, {2, 0, "e"},
	}
	out := make([]ver, len(in))
	twoPhase(t, func(scratch []byte, need *int) error {
		return SortKeysBy(nil, scratch, need, in, out, len(in), enc, 0, 16)
	})
	want := []ver{
		{0, 1, "d"}, {1, 9, "b"}, {1, 9, "c"}, {2, 0, "a"}, {2, 0, "e"},
	}
	if !slices.Equal(out, want) {
		t.Errorf("out = %v, want %v", out, want)
	}
}

func TestSortKeysInvalidBitRange(t *testing.T) {
	data := []uint32{1, 2}
	var need int
	cases := []struct{ begin, end int }{
		{-1, 8}, {8, 8}, {9, 8}, {0, 33},
	}
	for _, c := range cases {
		err := SortKeys(nil, nil, &need, data, data, 2, c.begin, c.end)
		if !errors.Is(err, ErrInvalidBitRange) {
			t.Errorf("[%d,%d): err = %v, want ErrInvalidBitRange", c.begin, c.end, err)
		}
	}
}

func TestSortKeysInsufficientScratch(t *testing.T) {
	data := make([]uint32, 1000)
	var need int
	if err := SortKeys(nil, nil, &need, data, data, len(data), 0, 32); err != nil {
		t.Fatal(err)
	}
	err := SortKeys(nil, make([]byte, need/2), &need, data, data, len(data), 0, 32)
	if !errors.Is(err, ErrInsufficientScratch) {
		t.Errorf("err = %v, want ErrInsufficientScratch", err)
	}
}

func TestSortKeysCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := device.New(ctx)
	defer s.Close()

	data := make([]uint32, 100)
	var need int
	if err := SortKeys(s, nil, &need, data, data, len(data), 0, 32); err != nil {
		t.Fatal(err)
	}
	err := SortKeys(s, make([]byte, need), &need, data, data, len(data), 0, 32)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

// TestConcurrentSorts runs independent sorts over disjoint data and
// scratch with no shared state beyond the worker pool.
func TestConcurrentSorts(t *testing.T) {
	const sorts = 8
	errs := make(chan error, sorts)
	for i := 0; i < sorts; i++ {
		i := i
		go func() {
			rng := rand.New(rand.NewSource(int64(100 + i)))
			n := 5000 + i*117
			data := make([]int32, n)
			for j := range data {
				data[j] = int32(rng.Uint32())
			}
			want := refSort(data, 0, 32, false)
			var need int
			if err := SortKeys(nil, nil, &need, data, data, n, 0, 32); err != nil {
				errs <- err
				return
			}
			if err := SortKeys(nil, make([]byte, need), &need, data, data, n, 0, 32); err != nil {
				errs <- err
				return
			}
			if !slices.Equal(data, want) {
				errs <- errors.Newf("sort %d produced wrong order", i)
				return
			}
			errs <- nil
		}()
	}
	for _i := 0; _i < sorts; _i++ {
		if err := <-errs; err != nil {
			t.Error(err)
		}
	}
}
