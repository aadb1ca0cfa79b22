// Copyright 2026 The go-prim Authors. SPDX-License-Identifier: Apache-2.0

package device

// Grid describes a kernel launch: Blocks cooperating groups of BlockSize
// threads each.
type Grid struct {
	Blocks    int
	BlockSize int
}

// Block is the execution context handed to a kernel, one per group.
// Groups communicate only through the buffers the kernel closes over;
// there is no cross-group synchronization inside a launch.
type Block struct {
	// Index is the group's index within the grid.
	Index int
	// Dim is the number of threads in the group.
	Dim int
}

// Threads runs phase once for every thread id in [0, Dim). Returning
// from Threads is the group barrier: every write made during one phase
// is visible to all threads of the next phase. Thread execution order
// within a phase is unspecified and must not be relied on beyond the
// barrier guarantee.
func (b *Block) Threads(phase func(lid int)) {
	for lid := 0; lid < b.Dim; lid++ {
		phase(lid)
	}
}

// Launch enqueues a kernel on the stream. The pool runs grid.Blocks
// instances of the kernel concurrently; the launch is fire-and-forget
// and any fault surfaces at the stream's next Wait. A nil pool uses
// DefaultPool.
func Launch(s *Stream, pool *Pool, grid Grid, kernel func(b *Block)) {
	if pool == nil {
		pool = DefaultPool()
	}
	s.Enqueue("launch", func() error {
		return pool.RunBlocks(s.ctx, grid.Blocks, func(i int) error {
			kernel(&Block{Index: i, Dim: grid.BlockSize})
			return nil
		})
	})
}
