// Copyright 2026 The go-prim Authors. SPDX-License-Identifier: Apache-2.0

package radix

import (
	"github.com/cockroachdb/errors"

	"github.com/ajroetker/go-prim/prim/device"
)

// ErrInvalidBitRange reports a bit-range precondition violation:
// the range [beginBit, endBit) must satisfy
// 0 <= beginBit < endBit <= key width.
var ErrInvalidBitRange = errors.New("radix: invalid bit range")

// ErrShortBuffer reports an input or output slice shorter than the
// element count being sorted.
var ErrShortBuffer = errors.New("radix: buffer shorter than count")

// ErrInsufficientScratch is returned when the caller-provided scratch
// buffer is smaller than the size reported by the sizing call. It
// aliases the device package's sentinel so callers can match either.
var ErrInsufficientScratch = device.ErrInsufficientScratch

// All precondition errors above are reported synchronously, before any
// work is enqueued. Faults after that point surface as
// device.ErrExecution at the stream's next synchronization.
