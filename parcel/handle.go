// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parcel

import (
	"encoding/binary"

	"github.com/cznic/parcel/parcel/codec"
	"github.com/cznic/parcel/parcel/stats"
	"github.com/cznic/parcel/pmutex"
	"github.com/cznic/parcel/segment"
)

// A Handle is the serializable pair (current segment key, mutex key) that
// lets another process attach to an existing Parcel. Transit of a Handle
// is not atomic: it is a precondition that some other live handle keeps
// the segment alive during transit, typically the process sending the
// Handle keeping its own Parcel open until the receiver confirms
// FromHandle succeeded.
type Handle struct {
	SegmentKey uint32
	MutexKey   uint32
}

// Bytes encodes h as 8 little-endian bytes, suitable for passing over a
// pipe or embedding in a larger serialized message.
func (h Handle) Bytes() []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint32(b[0:4], h.SegmentKey)
	binary.LittleEndian.PutUint32(b[4:8], h.MutexKey)
	return b
}

// DecodeHandle parses 8 bytes produced by Handle.Bytes.
func DecodeHandle(b []byte) (Handle, error) {
	if len(b) < 8 {
		return Handle{}, &ErrParcelCorrupt{Err: errShortHandle}
	}
	return Handle{
		SegmentKey: binary.LittleEndian.Uint32(b[0:4]),
		MutexKey:   binary.LittleEndian.Uint32(b[4:8]),
	}, nil
}

// Handle returns p's current serializable handle. The handle follows
// relocations made after it was captured only if the holder re-derives it
// via Handle again; a stale Handle describes the segment p had when
// Handle was called.
func (p *Parcel[V]) Handle() Handle {
	return Handle{SegmentKey: p.key, MutexKey: p.lock.Key()}
}

// FromHandle opens (without creating) the segment and mutex named by h.
// It is the deserialization half of Handle: no new segment is allocated, so
// some other live handle must be keeping h.SegmentKey's segment attached
// for the duration of the call. A freed segment surfaces as
// ErrSegmentOpen wrapped in ErrParcelInit, or, if the OS has recycled the
// key for something else entirely, as ErrParcelCorrupt on the first
// Unwrap.
func FromHandle[V any](h Handle, c codec.Codec[V], opts ...Option) (*Parcel[V], error) {
	if c == nil {
		return nil, &ErrParcelInit{Err: errNilCodec}
	}

	cfg := newConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.stats == nil {
		cfg.stats = stats.New(nil)
	}

	seg, err := segment.Open(h.SegmentKey)
	if err != nil {
		return nil, &ErrParcelInit{Err: err}
	}

	lock, err := pmutex.Open(h.MutexKey)
	if err != nil {
		seg.Close()
		return nil, &ErrParcelInit{Err: err}
	}

	return &Parcel[V]{
		codec:         c,
		lock:          &realMutex{m: lock},
		logger:        cfg.logger,
		stats:         cfg.stats,
		createSegment: realCreateSegment,
		openSegment:   realOpenSegment,
		seg:           seg,
		key:           h.SegmentKey,
	}, nil
}
