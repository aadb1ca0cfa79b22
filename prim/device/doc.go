// Copyright 2026 The go-prim Authors. SPDX-License-Identifier: Apache-2.0

// Package device models the execution and memory collaborator that the
// device-wide primitives are written against: an ordered asynchronous
// Stream, a kernel launcher that runs fixed-size cooperating groups
// ("blocks") on a persistent worker Pool, and an Arena that carves typed
// scratch allocations out of a caller-provided buffer.
//
// Faults inside enqueued work are fire-and-forget: they are recorded on
// the stream and surface at the next Wait, never in between. The Arena
// doubles as the sizing half of the two-phase size-then-execute
// contract: an arena over a nil buffer performs no allocation and only
// tallies the bytes a real run would need.
package device
