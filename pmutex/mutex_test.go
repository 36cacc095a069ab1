// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pmutex

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memFacility is an in-process stand-in for the System V semaphore
// syscalls, so these tests run on any platform and without real IPC
// resources; it uses a buffered channel as the counting semaphore itself.
type memFacility struct {
	mu   sync.Mutex
	next int
	sems map[int]chan struct{}
}

func newMemFacility() *memFacility {
	return &memFacility{sems: map[int]chan struct{}{}}
}

func (f *memFacility) create(key uint32) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.next++
	ch := make(chan struct{}, 1)
	ch <- struct{}{}
	f.sems[f.next] = ch
	return f.next, nil
}

func (f *memFacility) open(key uint32) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	// Tests only ever Open what they Created; id reuse by key is not
	// modeled since the fake never looks key up by value.
	return f.next, nil
}

func (f *memFacility) acquire(id int) error {
	f.mu.Lock()
	ch := f.sems[id]
	f.mu.Unlock()
	<-ch
	return nil
}

func (f *memFacility) release(id int) error {
	f.mu.Lock()
	ch := f.sems[id]
	f.mu.Unlock()
	ch <- struct{}{}
	return nil
}

func (f *memFacility) remove(id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sems, id)
	return nil
}

func withMemFacility(t *testing.T) {
	t.Helper()
	prev := osFacility
	osFacility = newMemFacility()
	t.Cleanup(func() { osFacility = prev })
}

func TestAcquireReleaseRoundTrip(t *testing.T) {
	withMemFacility(t)

	m, err := New(0x10)
	require.NoError(t, err)

	g, err := m.Acquire()
	require.NoError(t, err)
	require.NoError(t, g.Release())
	require.NoError(t, g.Release()) // idempotent
}

func TestMutualExclusion(t *testing.T) {
	withMemFacility(t)

	m, err := New(0x20)
	require.NoError(t, err)

	var counter int
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g, err := m.Acquire()
			if err != nil {
				return
			}
			defer g.Release()
			tmp := counter
			time.Sleep(time.Microsecond)
			counter = tmp + 1
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
}

func TestFreeIdempotent(t *testing.T) {
	withMemFacility(t)

	m, err := New(0x30)
	require.NoError(t, err)
	require.NoError(t, m.Free())
	require.NoError(t, m.Free())
}
