// Copyright 2026 The go-prim Authors. SPDX-License-Identifier: Apache-2.0

package device

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
)

// Pool is a persistent worker pool that executes the blocks of kernel
// launches. Workers are spawned once at creation and reused across
// launches, so a steady stream of small launches does not pay goroutine
// spawn overhead per call.
type Pool struct {
	numWorkers int
	workC      chan poolTask
	closeOnce  sync.Once
	closed     atomic.Bool
}

type poolTask struct {
	fn      func()
	barrier *sync.WaitGroup
}

var (
	defaultPoolOnce sync.Once
	defaultPool     *Pool
)

// DefaultPool returns the shared process-wide pool, created on first use
// with one worker per GOMAXPROCS.
func DefaultPool() *Pool {
	defaultPoolOnce.Do(func() {
		defaultPool = NewPool(0)
	})
	return defaultPool
}

// NewPool creates a pool with the given number of workers.
// If numWorkers <= 0, GOMAXPROCS workers are used.
func NewPool(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		numWorkers: numWorkers,
		workC:      make(chan poolTask, numWorkers*2),
	}
	for _i := 0; _i < numWorkers; _i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	for task := range p.workC {
		task.fn()
		task.barrier.Done()
	}
}

// NumWorkers returns the number of workers in the pool.
func (p *Pool) NumWorkers() int { return p.numWorkers }

// Close shuts the pool down. Pending blocks complete first.
// Calling Close multiple times is safe.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.workC)
	})
}

// RunBlocks executes fn once for every block index in [0, blocks),
// distributing blocks over the workers by atomic work stealing. It
// blocks until all blocks have run, a block fails, or ctx is cancelled.
// A panic inside a block is captured and returned as an error; the
// first failure stops the remaining blocks from being picked up.
func (p *Pool) RunBlocks(ctx context.Context, blocks int, fn func(block int) error) error {
	if blocks <= 0 {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	workers := min(p.numWorkers, blocks)
	if p.closed.Load() || workers == 1 {
		for i := 0; i < blocks; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := runBlockCaptured(fn, i); err != nil {
				return err
			}
		}
		return nil
	}

	var (
		next     atomic.Int64
		stop     atomic.Bool
		errOnce  sync.Once
		firstErr error
		wg       sync.WaitGroup
	)
	record := func(err error) {
		errOnce.Do(func() { firstErr = err })
		stop.Store(true)
	}

	wg.Add(workers)
	for _i := 0; _i < workers; _i++ {
		p.workC <- poolTask{
			fn: func() {
				for {
					if stop.Load() || ctx.Err() != nil {
						return
					}
					idx := int(next.Add(1)) - 1
					if idx >= blocks {
						return
					}
					if err := runBlockCaptured(fn, idx); err != nil {
						record(err)
						return
					}
				}
			},
			barrier: &wg,
		}
	}
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

func runBlockCaptured(fn func(int) error, block int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("block %d panicked: %v", block, r)
		}
	}()
	return fn(block)
}
