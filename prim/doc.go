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

// Package prim provides the core types for device-style parallel
// primitives: numeric constraints and order-preserving bit encodings.
//
// The sorting and partitioning packages under prim/ never compare keys.
// They operate on an unsigned bit pattern produced by an Encoder, whose
// natural ascending order matches the desired key order. Package prim
// supplies encoders for the built-in numeric types and lets callers
// inject one for opaque fixed-size record keys.
//
// Subpackages:
//
//   - prim/device: execution streams, group launches, scratch arenas
//   - prim/block: group-level primitives (layout exchange, digit ranking)
//   - prim/radix: device-wide multi-pass radix sorting
//   - prim/partition: flag- and predicate-based stable partitioning
package prim
