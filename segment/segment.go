// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package segment

import "sync"

// facility abstracts the System V shared-memory syscalls so that segment.go
// stays free of build tags; the real implementation lives in shm_linux.go,
// with shm_other.go reporting ErrPlatformUnsupported everywhere else.
type facility interface {
	create(key uint32, size int) (id int, data []byte, err error)
	open(key uint32) (id int, data []byte, err error)
	markDeleted(id int) error
	detach(data []byte) error
}

var osFacility facility = newOSFacility()

// A Segment is a byte-addressable view of one System V shared-memory
// object. Segment is not safe for concurrent use; callers coordinate
// through an external Mutex (package pmutex).
type Segment struct {
	mu       sync.Mutex
	key      uint32
	id       int
	data     []byte
	deleted  bool
	detached bool
}

// Create creates a new Segment of capacity bytes at key, failing with
// ErrSegmentCreate if one already exists there or the OS denies the
// request. Initial bytes are zero.
func Create(key uint32, capacity int) (*Segment, error) {
	if key < MinKey || key > MaxKey {
		return nil, &ErrSegmentCreate{Key: key, Err: errKeyOutOfSRng}
	}

	id, data, err := osFacility.create(key, capacity)
	if err != nil {
		return nil, &ErrSegmentCreate{Key: key, Err: err}
	}

	return &Segment{key: key, id: id, data: data}, nil
}

// Open attaches read/write to the Segment existing at key, failing with
// ErrSegmentOpen if none exists or the OS denies the request.
func Open(key uint32) (*Segment, error) {
	if key < MinKey || key > MaxKey {
		return nil, &ErrSegmentOpen{Key: key, Err: errKeyOutOfSRng}
	}

	id, data, err := osFacility.open(key)
	if err != nil {
		return nil, &ErrSegmentOpen{Key: key, Err: err}
	}

	return &Segment{key: key, id: id, data: data}, nil
}

// Key returns the segment's current key.
func (s *Segment) Key() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key
}

// Capacity returns the current OS-reported size of the segment in bytes.
func (s *Segment) Capacity() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.data))
}

// ReadAt reads length bytes starting at offset. It fails with ErrSegmentIO
// if offset+length exceeds the segment's capacity or the segment is
// detached.
func (s *Segment) ReadAt(offset int64, length int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.detached {
		return nil, &ErrSegmentIO{Op: "ReadAt", Err: errDetached}
	}
	if offset < 0 || length < 0 || offset+int64(length) > int64(len(s.data)) {
		return nil, &ErrSegmentIO{Op: "ReadAt", Err: errOutOfRange}
	}

	out := make([]byte, length)
	copy(out, s.data[offset:offset+int64(length)])
	return out, nil
}

// WriteAt writes b at offset. It fails with ErrSegmentIO if the write would
// run past the segment's capacity or the segment is detached; writes never
// grow a Segment, relocation (see package parcel) is the only way to grow.
func (s *Segment) WriteAt(offset int64, b []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.detached {
		return &ErrSegmentIO{Op: "WriteAt", Err: errDetached}
	}
	if offset < 0 || offset+int64(len(b)) > int64(len(s.data)) {
		return &ErrSegmentIO{Op: "WriteAt", Err: errOutOfRange}
	}

	copy(s.data[offset:], b)
	return nil
}

// MarkDeleted requests OS deletion of the segment on last detach. The
// segment remains usable by currently attached processes, including this
// one, until Close.
func (s *Segment) MarkDeleted() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deleted {
		return nil
	}
	if err := osFacility.markDeleted(s.id); err != nil {
		return &ErrSegmentIO{Op: "MarkDeleted", Err: err}
	}
	s.deleted = true
	return nil
}

// Close detaches the segment. Close is idempotent.
func (s *Segment) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.detached {
		return nil
	}
	if err := osFacility.detach(s.data); err != nil {
		return &ErrSegmentIO{Op: "Close", Err: err}
	}
	s.detached = true
	s.data = nil
	return nil
}
