// Copyright 2026 The go-prim Authors. SPDX-License-Identifier: Apache-2.0

package radix

import (
	"os"
	"strconv"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/cpu"
)

// Config tunes the sort pipeline. The zero value selects defaults, so
// callers that do not care can pass Config{}.
type Config struct {
	// BlockSize is the number of cooperating threads per group.
	BlockSize int

	// ItemsPerThread is the number of items each thread owns per tile.
	ItemsPerThread int

	// RadixBits is the nominal digit width in bits, at most 8. The
	// final pass narrows its width when fewer bits remain.
	RadixBits int

	// MaxLaunchItems bounds how many items a single launch may address
	// with pass-local index arithmetic. Inputs larger than this are
	// split into sequential chunks that share one global offset table.
	MaxLaunchItems int

	// Workers sets the size of a private worker pool for this
	// operation. Zero uses the shared process-wide pool. The
	// GOPRIM_WORKERS environment variable overrides a zero value.
	Workers int
}

const (
	defaultBlockSize = 256
	defaultRadixBits = 8

	// maxLaunchItems keeps pass-local indices inside 32-bit arithmetic
	// with headroom for the tile rounding below.
	maxLaunchItems = 1 << 30
)

// defaultItemsPerThread picks the per-thread grain from the CPU's
// vector width, the same probe the dispatch layer of a SIMD build would
// use. Wider vectors favor larger tiles.
func defaultItemsPerThread() int {
	switch {
	case cpu.X86.HasAVX512F:
		return 8
	case cpu.X86.HasAVX2, cpu.ARM64.HasASIMD:
		return 4
	default:
		return 4
	}
}

func (c Config) withDefaults() Config {
	if c.BlockSize <= 0 {
		c.BlockSize = defaultBlockSize
	}
	if c.ItemsPerThread <= 0 {
		c.ItemsPerThread = defaultItemsPerThread()
	}
	if c.RadixBits <= 0 {
		c.RadixBits = defaultRadixBits
	}
	if c.MaxLaunchItems <= 0 {
		c.MaxLaunchItems = maxLaunchItems
	}
	if c.Workers <= 0 {
		if v, err := strconv.Atoi(os.Getenv("GOPRIM_WORKERS")); err == nil && v > 0 {
			c.Workers = v
		}
	}
	return c
}

func (c Config) validate() error {
	if c.RadixBits > 8 {
		return errors.Newf("radix: RadixBits %d exceeds the 8-bit digit limit", c.RadixBits)
	}
	if c.MaxLaunchItems < c.BlockSize*c.ItemsPerThread {
		return errors.Newf("radix: MaxLaunchItems %d below a single %d-item tile",
			c.MaxLaunchItems, c.BlockSize*c.ItemsPerThread)
	}
	return nil
}
