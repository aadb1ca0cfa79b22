// Copyright 2026 The go-prim Authors. SPDX-License-Identifier: Apache-2.0

package device

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// scanSerialCutoff is the table length below which a parallel scan is
// not worth the fan-out.
const scanSerialCutoff = 1 << 14

// ExclusiveScan replaces data with its exclusive prefix sum. Large
// tables use a two-level scan: per-range totals, a serial exclusive
// scan over the totals, then per-range rewrites seeded with the scanned
// bases.
func ExclusiveScan(ctx context.Context, workers int, data []int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n := len(data)
	if n == 0 {
		return nil
	}
	if workers <= 1 || n < scanSerialCutoff {
		var sum int64
		for i, v := range data {
			data[i] = sum
			sum += v
		}
		return nil
	}

	chunkSize := (n + workers - 1) / workers
	ranges := (n + chunkSize - 1) / chunkSize
	sums := make([]int64, ranges)

	g, _ := errgroup.WithContext(ctx)
	for w := 0; w < ranges; w++ {
		w := w
		g.Go(func() error {
			lo := w * chunkSize
			hi := min(lo+chunkSize, n)
			var sum int64
			for _, v := range data[lo:hi] {
				sum += v
			}
			sums[w] = sum
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var run int64
	for w := range sums {
		sums[w], run = run, run+sums[w]
	}

	g, _ = errgroup.WithContext(ctx)
	for w := 0; w < ranges; w++ {
		w := w
		g.Go(func() error {
			lo := w * chunkSize
			hi := min(lo+chunkSize, n)
			sum := sums[w]
			for i := lo; i < hi; i++ {
				data[i], sum = sum, sum+data[i]
			}
			return nil
		})
	}
	return g.Wait()
}
