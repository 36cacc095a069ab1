// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parcel

import (
	"errors"
	"fmt"
)

var (
	errNilCodec       = errors.New("parcel: nil codec")
	errChaseTooLong   = errors.New("parcel: relocation chain too long, possible cycle")
	errEmptyPayload   = errors.New("parcel: header reports a non-positive payload size")
	errUnknownState   = errors.New("parcel: unrecognised header state")
	errShortHandle    = errors.New("parcel: handle shorter than 8 bytes")
)

// ErrParcelInit reports a failure to create the initial segment or mutex
// for a new parcel.
type ErrParcelInit struct{ Err error }

func (e *ErrParcelInit) Error() string { return fmt.Sprintf("parcel: init: %v", e.Err) }
func (e *ErrParcelInit) Unwrap() error { return e.Err }

// ErrParcelFreed reports an operation attempted on a parcel that has
// already been freed, by this handle or another sharing the same segment.
type ErrParcelFreed struct{}

func (*ErrParcelFreed) Error() string { return "parcel: freed" }

// ErrParcelCorrupt reports a header with an unrecognised state, an invalid
// size, or a payload that failed to deserialize.
type ErrParcelCorrupt struct{ Err error }

func (e *ErrParcelCorrupt) Error() string { return fmt.Sprintf("parcel: corrupt: %v", e.Err) }
func (e *ErrParcelCorrupt) Unwrap() error { return e.Err }

// ErrParcelIO reports a failure of an underlying segment read, write, or
// deletion.
type ErrParcelIO struct{ Err error }

func (e *ErrParcelIO) Error() string { return fmt.Sprintf("parcel: io: %v", e.Err) }
func (e *ErrParcelIO) Unwrap() error { return e.Err }
