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

// Package radix provides device-wide least-significant-digit radix
// sorting over streams of cooperating groups. Keys are decomposed into
// fixed-width digits of their order-preserving bit pattern; each digit
// drives one histogram/scan/scatter pass, and the stable passes compose
// into a stable total sort. Work and memory traffic are data
// independent, which is the point of sorting by digits instead of
// comparisons.
//
// Every entry point follows the two-phase size-then-execute contract:
// called with nil scratch it only reports the required scratch bytes
// and touches no data; called again with a buffer of at least that size
// it performs the sort. The single-buffer forms accept aliased input
// and output and finish with the result in the output slice; the
// DoubleBuffer forms alternate between the two caller-visible buffers
// and report which one holds the result, trading the copy-back pass for
// a second full-size buffer.
//
//	var need int
//	if err := radix.SortKeys(nil, nil, &need, data, data, len(data), 0, 32); err != nil { ... }
//	scratch := make([]byte, need)
//	if err := radix.SortKeys(nil, scratch, &need, data, data, len(data), 0, 32); err != nil { ... }
//
// All preconditions are checked synchronously before any work is
// enqueued; later faults surface at the stream's synchronization point
// as device.ErrExecution.
package radix
