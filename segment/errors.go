// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package segment

import (
	"errors"
	"fmt"
)

var (
	errShortHeader  = errors.New("short header")
	errKeyOutOfSRng = errors.New("key out of the allowed range")
	errDetached     = errors.New("segment is detached")
	errOutOfRange   = errors.New("offset/length out of range")
)

// ErrSegmentCreate reports a failure to create a new shared-memory segment,
// either because one already exists at Key or the OS denied the request.
type ErrSegmentCreate struct {
	Key uint32
	Err error
}

func (e *ErrSegmentCreate) Error() string {
	return fmt.Sprintf("segment: create key=%#x: %v", e.Key, e.Err)
}

func (e *ErrSegmentCreate) Unwrap() error { return e.Err }

// ErrSegmentOpen reports a failure to attach to an existing shared-memory
// segment.
type ErrSegmentOpen struct {
	Key uint32
	Err error
}

func (e *ErrSegmentOpen) Error() string {
	return fmt.Sprintf("segment: open key=%#x: %v", e.Key, e.Err)
}

func (e *ErrSegmentOpen) Unwrap() error { return e.Err }

// ErrSegmentIO reports a failure of a read, write, or deletion request
// against an already-open Segment.
type ErrSegmentIO struct {
	Op  string
	Err error
}

func (e *ErrSegmentIO) Error() string {
	return fmt.Sprintf("segment: %s: %v", e.Op, e.Err)
}

func (e *ErrSegmentIO) Unwrap() error { return e.Err }
