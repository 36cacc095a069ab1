// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parcel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cznic/parcel/parcel/codec"
)

func TestHandleBytesRoundTrip(t *testing.T) {
	h := Handle{SegmentKey: 0xdeadbeef, MutexKey: 0x10}

	got, err := DecodeHandle(h.Bytes())
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func TestDecodeHandleShort(t *testing.T) {
	_, err := DecodeHandle([]byte{1, 2, 3})
	assert.ErrorAs(t, err, new(*ErrParcelCorrupt))
}

func TestParcelHandleReflectsKeys(t *testing.T) {
	net := newFakeNetwork()
	p := newTestParcel[string](net, newFakeMutex(0x42), 10, 64, codec.Gob[string]{})

	h := p.Handle()
	assert.Equal(t, uint32(10), h.SegmentKey)
	assert.Equal(t, uint32(0x42), h.MutexKey)
}
