// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package segment

import "encoding/binary"

// A Header is the decoded form of the fixed 7 byte prefix every Segment
// carries. SizeOrKey is the payload length when State is StateAllocated and
// the relocation target key when State is StateMoved; it is unspecified
// otherwise.
type Header struct {
	State       byte
	SizeOrKey   uint32
	Permissions uint16
}

// Encode writes h into the first HeaderSize bytes of b. It panics if b is
// shorter than HeaderSize, callers are expected to size their buffers from
// HeaderSize.
func (h Header) Encode(b []byte) {
	_ = b[HeaderSize-1]
	b[0] = h.State
	binary.LittleEndian.PutUint32(b[1:5], h.SizeOrKey)
	binary.LittleEndian.PutUint16(b[5:7], h.Permissions)
}

// Bytes returns h encoded as a new HeaderSize byte slice.
func (h Header) Bytes() []byte {
	b := make([]byte, HeaderSize)
	h.Encode(b)
	return b
}

// DecodeHeader parses the first HeaderSize bytes of b into a Header. It
// fails with ErrSegmentIO if b is shorter than HeaderSize.
func DecodeHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, &ErrSegmentIO{Op: "DecodeHeader", Err: errShortHeader}
	}

	return Header{
		State:       b[0],
		SizeOrKey:   binary.LittleEndian.Uint32(b[1:5]),
		Permissions: binary.LittleEndian.Uint16(b[5:7]),
	}, nil
}
