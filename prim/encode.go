// Copyright 2026 The go-prim Authors. SPDX-License-Identifier: Apache-2.0

package prim

import (
	"math"
	"unsafe"
)

// An Encoder maps keys of type K to unsigned bit patterns whose natural
// ascending order matches the desired key order. The radix pipeline
// extracts digits from this pattern and never inspects keys directly,
// so any fixed-size record type can act as a key by supplying one.
type Encoder[K any] interface {
	// Bits returns the width of the key's bit pattern. Digit ranges are
	// bounded by this width.
	Bits() int

	// OrderKey returns the order-preserving bit pattern for k. The
	// pattern occupies the low Bits() bits of the result.
	OrderKey(k K) uint64
}

// KeyBits returns the bit width of K's in-memory representation.
func KeyBits[K Keys]() int {
	var k K
	return int(unsafe.Sizeof(k)) * 8
}

// OrderBits maps k to an unsigned bit pattern whose ascending order
// matches the natural order of K:
//
//   - unsigned integers: identity
//   - signed integers: sign bit flipped
//   - floats: sign bit flipped for non-negative values, all bits
//     complemented for negative values
//
// The float mapping implements IEEE-754 total order: negative NaNs sort
// before -Inf, positive NaNs after +Inf, and -0 before +0. Equal-key
// order for the two zeros is therefore well defined rather than
// platform dependent.
func OrderBits[K Keys](k K) uint64 {
	switch v := any(k).(type) {
	case uint8:
		return uint64(v)
	case uint16:
		return uint64(v)
	case uint32:
		return uint64(v)
	case uint64:
		return v
	case int8:
		return uint64(uint8(v) ^ 0x80)
	case int16:
		return uint64(uint16(v) ^ 0x8000)
	case int32:
		return uint64(uint32(v) ^ 0x8000_0000)
	case int64:
		return uint64(v) ^ 0x8000_0000_0000_0000
	case float32:
		bits := math.Float32bits(v)
		if bits&0x8000_0000 != 0 {
			bits = ^bits
		} else {
			bits |= 0x8000_0000
		}
		return uint64(bits)
	case float64:
		bits := math.Float64bits(v)
		if bits&0x8000_0000_0000_0000 != 0 {
			bits = ^bits
		} else {
			bits |= 0x8000_0000_0000_0000
		}
		return bits
	}
	return 0
}

// NumericEncoder returns the built-in Encoder for a numeric key type.
func NumericEncoder[K Keys]() Encoder[K] {
	return numericEncoder[K]{}
}

type numericEncoder[K Keys] struct{}

func (numericEncoder[K]) Bits() int           { return KeyBits[K]() }
func (numericEncoder[K]) OrderKey(k K) uint64 { return OrderBits(k) }

// FuncEncoder adapts a function to the Encoder interface. It is the
// injection point for opaque record keys whose ordering the caller
// defines.
type FuncEncoder[K any] struct {
	// KeyBits is the width of the pattern produced by Order.
	KeyBits int

	// Order returns the order-preserving bit pattern for a key.
	Order func(K) uint64
}

func (e FuncEncoder[K]) Bits() int           { return e.KeyBits }
func (e FuncEncoder[K]) OrderKey(k K) uint64 { return e.Order(k) }
