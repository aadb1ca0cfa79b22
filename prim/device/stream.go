// Copyright 2026 The go-prim Authors. SPDX-License-Identifier: Apache-2.0

package device

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
)

// ErrExecution marks faults reported by enqueued work: a panicking
// kernel, a failing collaborator, anything that went wrong after
// preconditions were checked. Such faults indicate a logic or
// resource-limit bug and are never retried.
var ErrExecution = errors.New("device: execution failure")

// Stream is an ordered asynchronous work queue. Operations enqueued on a
// stream run one at a time in FIFO order on a dedicated goroutine.
//
// Errors do not interrupt the caller: the first fault is recorded, all
// later operations are skipped, and the fault surfaces at the next Wait.
// Cancellation of the stream's context is observed between operations,
// never inside one.
//
// A stream has a single owner: Enqueue and Close must not be called
// concurrently with each other. Wait may be called from any goroutine.
type Stream struct {
	ctx       context.Context
	ops       chan streamOp
	wg        sync.WaitGroup
	mu        sync.Mutex
	err       error
	closed    atomic.Bool
	closeOnce sync.Once
}

type streamOp struct {
	name string
	fn   func() error
}

// New creates a stream. A nil ctx means the stream cannot be cancelled.
func New(ctx context.Context) *Stream {
	if ctx == nil {
		ctx = context.Background()
	}
	s := &Stream{
		ctx: ctx,
		ops: make(chan streamOp, 16),
	}
	go s.run()
	return s
}

func (s *Stream) run() {
	for op := range s.ops {
		if s.Err() == nil && s.ctx.Err() == nil {
			if err := runCaptured(op.fn); err != nil {
				s.fail(errors.Wrap(err, op.name))
			}
		}
		s.wg.Done()
	}
}

func runCaptured(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("panic: %v", r)
		}
	}()
	return fn()
}

func (s *Stream) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		// Join rather than Mark so the sentinel sits in the real error
		// chain and plain errors.Is matching works for callers too.
		s.err = errors.Join(ErrExecution, err)
	}
}

// Context returns the context the stream was created with.
func (s *Stream) Context() context.Context { return s.ctx }

// Err returns the recorded fault, if any, without synchronizing.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Enqueue appends an operation to the stream and returns immediately.
// After Close, operations run inline on the caller's goroutine instead.
func (s *Stream) Enqueue(name string, fn func() error) {
	if s.closed.Load() {
		if s.Err() == nil {
			if err := runCaptured(fn); err != nil {
				s.fail(errors.Wrap(err, name))
			}
		}
		return
	}
	s.wg.Add(1)
	s.ops <- streamOp{name: name, fn: fn}
}

// Wait blocks until every enqueued operation has run or been skipped,
// then reports the first recorded fault. This is the only point at which
// execution failures surface.
func (s *Stream) Wait() error {
	s.wg.Wait()
	if err := s.Err(); err != nil {
		return err
	}
	if err := s.ctx.Err(); err != nil {
		return errors.Wrap(err, "stream cancelled")
	}
	return nil
}

// Close shuts the stream down after pending operations complete.
// Calling Close multiple times is safe.
func (s *Stream) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.ops)
	})
}
