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

// Package block provides group-level primitives that operate on one
// tile of blockSize*itemsPerThread items through fast per-group scratch
// storage: layout exchanges between the blocked and striped
// arrangements, rank-directed scatters, and stable digit ranking.
//
// A tile is represented as a flat slice in thread-major order: index
// t*itemsPerThread+ii is item ii of thread t. In the blocked
// arrangement each thread owns a contiguous run of the tile; in the
// striped arrangement thread t owns items t, t+blockSize, t+2*blockSize
// and so on, which is the arrangement that yields coalesced global
// memory traffic.
package block
