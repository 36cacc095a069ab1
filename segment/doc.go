// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package segment is a thin wrapper over one OS shared-memory object
// identified by an integer key.
//
// A Segment is not safe for concurrent access from multiple goroutines; a
// Segment is designed for consumption by package parcel, which serializes
// access to it via a cross-process Mutex (package pmutex). Every Segment
// begins with a fixed 7 byte header, little-endian:
//
//	offset 0: u8   state       (Unallocated=0, Allocated=1, Moved=2, Freed=3)
//	offset 1: u32  size_or_key (payload length when Allocated, next key when Moved)
//	offset 5: u16  permissions (OS permission mask recorded at creation)
//	offset 7: ...  payload
//
// The header is not interpreted by Segment itself -- Segment only moves
// bytes in and out of the underlying shared-memory object. Interpreting
// the header, chasing Moved links and reacting to Freed is the job of
// package parcel.
//
// Segment keys are 32-bit values. The low end of the key space, [0, 0xf],
// is reserved (0 collides with IPC_PRIVATE on most System V
// implementations) and Create/Open reject it with ErrSegmentCreate /
// ErrSegmentOpen.
package segment

// HeaderSize is the fixed byte length of a Segment header, see the package
// doc comment for the field layout.
const HeaderSize = 7

// Segment state values, stored in the first header byte.
const (
	StateUnallocated byte = 0
	StateAllocated   byte = 1
	StateMoved       byte = 2
	StateFreed       byte = 3
)

// MinKey is the lowest key Create/Open will accept.
const MinKey uint32 = 0x10

// MaxKey is the highest key a relocation may allocate before wrapping
// around to a random pick, see NextKey.
const MaxKey uint32 = 0xFFFFFFFE
