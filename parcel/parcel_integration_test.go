// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux

package parcel

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cznic/parcel/parcel/codec"
)

// TestEndToEndRealSharedMemory exercises New, Synchronized, Handle,
// FromHandle, Clone and Free against real System V shared memory and
// semaphores, the same resources cmd/parceldemo uses across processes.
// The fake-backed tests in parcel_test.go cover relocation and chase
// logic in isolation; this one proves the composition actually works
// against the OS.
func TestEndToEndRealSharedMemory(t *testing.T) {
	p, err := New(0, codec.Gob[int]{}, WithCapacity(64))
	require.NoError(t, err)
	defer p.Free()

	for i := 0; i < 10; i++ {
		_, err := p.Synchronized(func(cur int) (int, bool, error) { return cur + 1, true, nil })
		require.NoError(t, err)
	}

	v, err := p.Unwrap()
	require.NoError(t, err)
	require.Equal(t, 10, v)

	h := p.Handle()
	peer, err := FromHandle(h, codec.Gob[int]{})
	require.NoError(t, err)

	peerVal, err := peer.Unwrap()
	require.NoError(t, err)
	require.Equal(t, 10, peerVal)

	clone, err := p.Clone()
	require.NoError(t, err)
	defer clone.Free()

	_, err = clone.Synchronized(func(cur int) (int, bool, error) { return cur + 100, true, nil })
	require.NoError(t, err)

	cloneVal, err := clone.Unwrap()
	require.NoError(t, err)
	require.Equal(t, 110, cloneVal)

	originalVal, err := p.Unwrap()
	require.NoError(t, err)
	require.Equal(t, 10, originalVal, "cloning must not mutate the original")

	require.NoError(t, p.Free())
	require.True(t, p.IsFreed())
}
