// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pmutex

import "sync"

// facility abstracts the System V semaphore syscalls; see sysv_linux.go for
// the real implementation and sysv_other.go for the unsupported-platform
// stub.
type facility interface {
	create(key uint32) (id int, err error)
	open(key uint32) (id int, err error)
	acquire(id int) error
	release(id int) error
	remove(id int) error
}

var osFacility facility = newOSFacility()

// A Mutex is a named counting semaphore with maximum 1, initialised to 1.
// Mutex is safe for concurrent use by multiple goroutines in one process;
// across processes, mutual exclusion is provided by the OS semaphore
// itself.
type Mutex struct {
	key  uint32
	id   int
	once sync.Once // guards Free against double-invocation
}

// New creates a fresh semaphore at key, initialised to 1. It fails with
// ErrMutexCreate if one already exists there or the OS denies the request.
func New(key uint32) (*Mutex, error) {
	id, err := osFacility.create(key)
	if err != nil {
		return nil, &ErrMutexCreate{Key: key, Err: err}
	}
	return &Mutex{key: key, id: id}, nil
}

// Open attaches to the semaphore existing at key. It fails with
// ErrMutexOpen if none exists or the OS denies the request.
func Open(key uint32) (*Mutex, error) {
	id, err := osFacility.open(key)
	if err != nil {
		return nil, &ErrMutexOpen{Key: key, Err: err}
	}
	return &Mutex{key: key, id: id}, nil
}

// Key returns the serializable name of m, suitable for Open in another
// process after fork/exec or handle deserialization.
func (m *Mutex) Key() uint32 { return m.key }

// A Guard is returned by Acquire and represents the held Mutex. Release
// must be called exactly once, on every exit path of the critical section
// it guards.
type Guard struct {
	m        *Mutex
	released bool
	mu       sync.Mutex
}

// Acquire blocks cooperatively until the semaphore is taken and returns a
// Guard that releases it. Acquire does not guarantee fairness: a single
// holder must not call Acquire again before releasing the Guard it already
// holds.
func (m *Mutex) Acquire() (*Guard, error) {
	if err := osFacility.acquire(m.id); err != nil {
		return nil, &ErrMutexIO{Op: "Acquire", Err: err}
	}
	return &Guard{m: m}, nil
}

// Release releases the semaphore. Release is idempotent: calling it more
// than once on the same Guard is a no-op after the first call.
func (g *Guard) Release() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.released {
		return nil
	}
	g.released = true

	if err := osFacility.release(g.m.id); err != nil {
		return &ErrMutexIO{Op: "Release", Err: err}
	}
	return nil
}

// Free removes the underlying OS semaphore. Free is idempotent; it is safe
// to call only when no Guard for this Mutex remains held.
func (m *Mutex) Free() error {
	var err error
	m.once.Do(func() {
		if e := osFacility.remove(m.id); e != nil {
			err = &ErrMutexIO{Op: "Free", Err: e}
		}
	})
	return err
}
