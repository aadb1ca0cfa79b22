// Copyright 2026 The go-prim Authors. SPDX-License-Identifier: Apache-2.0

// Package partition provides device-wide stable partitioning: Flagged
// and If split an input into selected and rejected runs, ThreeWay
// splits it into three. All variants are a single histogram, scan and
// scatter pass over a two- or three-value digit space, so every output
// run keeps the input order of its items.
//
// The entry points follow the same two-phase scratch contract as the
// radix sort: call with nil scratch to learn the required size, then
// call again with a buffer at least that large.
package partition
