// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memFacility is an in-memory stand-in for the System V syscalls: it lets
// the package's tests run on any platform, including CI hosts without a
// working shared-memory facility.
type memFacility struct {
	next int
	segs map[uint32][]byte
}

func newMemFacility() *memFacility { return &memFacility{segs: map[uint32][]byte{}} }

func (f *memFacility) create(key uint32, size int) (int, []byte, error) {
	if _, ok := f.segs[key]; ok {
		return 0, nil, &ErrSegmentCreate{Key: key, Err: errKeyOutOfSRng}
	}
	f.next++
	f.segs[key] = make([]byte, size)
	return f.next, f.segs[key], nil
}

func (f *memFacility) open(key uint32) (int, []byte, error) {
	data, ok := f.segs[key]
	if !ok {
		return 0, nil, &ErrSegmentOpen{Key: key, Err: errKeyOutOfSRng}
	}
	f.next++
	return f.next, data, nil
}

func (f *memFacility) markDeleted(id int) error { return nil }
func (f *memFacility) detach(data []byte) error { return nil }

func withMemFacility(t *testing.T) *memFacility {
	t.Helper()
	prev := osFacility
	mem := newMemFacility()
	osFacility = mem
	t.Cleanup(func() { osFacility = prev })
	return mem
}

func TestCreateOpenRoundTrip(t *testing.T) {
	withMemFacility(t)

	s, err := Create(0x100, 64)
	require.NoError(t, err)
	defer s.Close()

	h := Header{State: StateAllocated, SizeOrKey: 5, Permissions: 0600}
	require.NoError(t, s.WriteAt(0, h.Bytes()))
	require.NoError(t, s.WriteAt(HeaderSize, []byte("hello")))

	s2, err := Open(0x100)
	require.NoError(t, err)
	defer s2.Close()

	b, err := s2.ReadAt(0, HeaderSize)
	require.NoError(t, err)
	got, err := DecodeHeader(b)
	require.NoError(t, err)
	assert.Equal(t, h, got)

	payload, err := s2.ReadAt(HeaderSize, 5)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(payload))
}

func TestCreateCollision(t *testing.T) {
	withMemFacility(t)

	_, err := Create(0x200, 16)
	require.NoError(t, err)

	_, err = Create(0x200, 16)
	require.Error(t, err)
	var ec *ErrSegmentCreate
	assert.ErrorAs(t, err, &ec)
}

func TestOpenMissing(t *testing.T) {
	withMemFacility(t)

	_, err := Open(0x300)
	require.Error(t, err)
	var eo *ErrSegmentOpen
	assert.ErrorAs(t, err, &eo)
}

func TestWriteAtOutOfRange(t *testing.T) {
	withMemFacility(t)

	s, err := Create(0x400, 8)
	require.NoError(t, err)
	defer s.Close()

	err = s.WriteAt(4, make([]byte, 8))
	require.Error(t, err)
	var eio *ErrSegmentIO
	assert.ErrorAs(t, err, &eio)
}

func TestCloseIdempotent(t *testing.T) {
	withMemFacility(t)

	s, err := Create(0x500, 8)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err = s.ReadAt(0, 1)
	require.Error(t, err)
}

func TestNextKeyIncrementsThenWraps(t *testing.T) {
	assert.Equal(t, uint32(0x11), NextKey(0x10))
	wrapped := NextKey(MaxKey)
	assert.GreaterOrEqual(t, wrapped, MinKey)
	assert.LessOrEqual(t, wrapped, MaxKey)
}

func TestDeriveInitialKeyInRange(t *testing.T) {
	for _, id := range [][]byte{[]byte("a"), []byte("b"), []byte("some-uuid-bytes")} {
		k := DeriveInitialKey(id)
		assert.GreaterOrEqual(t, k, MinKey)
		assert.LessOrEqual(t, k, MaxKey)
	}
}

func TestDecodeHeaderShort(t *testing.T) {
	_, err := DecodeHeader([]byte{1, 2, 3})
	require.Error(t, err)
}
