// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package parcel is the layered protocol over package segment and package
// pmutex that lets cooperating processes share one logically-typed value:
// unwrap, wrap, synchronized mutation, free, and handle serialization,
// built on segment's header format and the relocation rendezvous it
// exposes through the MOVED/FREED states.
//
// A Parcel is not an atomic register: a read or write performed without
// holding its Mutex may observe a torn relocation in progress. Durability,
// versioning, access control beyond OS permission bits, change
// notification, multi-parcel transactions and garbage collection of
// segments leaked by crashed holders are all out of scope; this package
// moves one value around safely and leaves everything above that to its
// caller.
package parcel

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/cznic/parcel/parcel/codec"
	"github.com/cznic/parcel/parcel/stats"
	"github.com/cznic/parcel/pmutex"
	"github.com/cznic/parcel/segment"
)

// A Mutation is the callback Synchronized passes the current value to. It
// returns the next value and whether to actually replace the stored value
// with it; replaced=false leaves the stored value unchanged, Go's
// rendering of a null callback result since there is no value-agnostic
// null to compare next against. Returning replaced=true with next equal
// to the input is equivalent and is how a caller signals "no change" when
// it has already computed next either way.
type Mutation[V any] func(current V) (next V, replaced bool, err error)

// segBackend is the slice of *segment.Segment a Parcel needs, factored out
// as an interface so that tests can substitute an in-memory double
// without touching package segment's own OS plumbing.
type segBackend interface {
	ReadAt(offset int64, length int) ([]byte, error)
	WriteAt(offset int64, b []byte) error
	Capacity() int64
	MarkDeleted() error
	Close() error
}

// releaser is the part of *pmutex.Guard Synchronized and Clone need.
type releaser interface {
	Release() error
}

// mutexHandle is the slice of *pmutex.Mutex a Parcel needs.
type mutexHandle interface {
	Acquire() (releaser, error)
	Key() uint32
	Free() error
}

// realMutex adapts *pmutex.Mutex's concrete *pmutex.Guard return to the
// releaser interface so Parcel can hold a mutexHandle.
type realMutex struct{ m *pmutex.Mutex }

func (r *realMutex) Acquire() (releaser, error) { return r.m.Acquire() }
func (r *realMutex) Key() uint32                { return r.m.Key() }
func (r *realMutex) Free() error                { return r.m.Free() }

// A Parcel stores one logically-typed value of type V in an OS
// shared-memory segment so that cooperating processes can read and mutate
// it under mutual exclusion. The zero value is not usable; construct with
// New or FromHandle.
type Parcel[V any] struct {
	codec  codec.Codec[V]
	lock   mutexHandle
	logger *zap.Logger
	stats  *stats.Recorder

	// createSegment and openSegment back relocate and the MOVED-chase in
	// unwrap. They default to package segment's real Create/Open and are
	// only overridden in tests, the same way package segment itself
	// substitutes osFacility.
	createSegment func(key uint32, capacity int) (segBackend, error)
	openSegment   func(key uint32) (segBackend, error)

	// seg and key change together on relocation and on each MOVED-chase
	// step in unwrap; freed is set
	// permanently once the parcel can no longer be used by this handle.
	seg   segBackend
	key   uint32
	freed bool
}

func realCreateSegment(key uint32, capacity int) (segBackend, error) {
	return segment.Create(key, capacity)
}

func realOpenSegment(key uint32) (segBackend, error) {
	return segment.Open(key)
}

// New creates a Parcel holding value, with capacity and permissions from
// opts (defaults DefaultCapacity and DefaultPermissions). It fails with
// ErrParcelInit if segment or mutex creation fails, or the platform lacks
// shared-memory support.
func New[V any](value V, c codec.Codec[V], opts ...Option) (*Parcel[V], error) {
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

	identity := uuid.New()
	key := segment.DeriveInitialKey(identity[:])

	seg, err := segment.Create(key, cfg.capacity+segment.HeaderSize)
	if err != nil {
		return nil, &ErrParcelInit{Err: err}
	}

	hdr := segment.Header{State: segment.StateAllocated, SizeOrKey: 0, Permissions: cfg.permissions}
	if err := seg.WriteAt(0, hdr.Bytes()); err != nil {
		seg.Close()
		return nil, &ErrParcelInit{Err: err}
	}

	lock, err := pmutex.New(key)
	if err != nil {
		seg.MarkDeleted()
		seg.Close()
		return nil, &ErrParcelInit{Err: err}
	}

	p := &Parcel[V]{
		codec:         c,
		lock:          &realMutex{m: lock},
		logger:        cfg.logger,
		stats:         cfg.stats,
		createSegment: realCreateSegment,
		openSegment:   realOpenSegment,
		seg:           seg,
		key:           key,
	}

	if err := p.wrap(value); err != nil {
		seg.MarkDeleted()
		seg.Close()
		lock.Free()
		return nil, &ErrParcelInit{Err: err}
	}

	return p, nil
}

// Stats returns a snapshot of p's relocation and synchronization counters.
func (p *Parcel[V]) Stats() stats.Snapshot { return p.stats.Snapshot() }

// IsFreed reports whether p is known to be freed. It is a best-effort,
// non-blocking header peek: like any read performed without the Mutex, it
// can race with a concurrent wrap or free in another process.
func (p *Parcel[V]) IsFreed() bool {
	if p.freed {
		return true
	}

	b, err := p.seg.ReadAt(0, segment.HeaderSize)
	if err != nil {
		return false
	}
	h, err := segment.DecodeHeader(b)
	if err != nil {
		return false
	}
	return h.State == segment.StateFreed
}

// Unwrap returns the current value. Callers should hold the Mutex (see
// Synchronized) or accept the possibility of a torn read mid-relocation.
func (p *Parcel[V]) Unwrap() (V, error) {
	var zero V
	if p.freed {
		return zero, &ErrParcelFreed{}
	}
	return p.unwrap()
}

func (p *Parcel[V]) unwrap() (V, error) {
	var zero V

	chased := 0
	for i := 0; ; i++ {
		if i >= maxChase {
			return zero, &ErrParcelCorrupt{Err: errChaseTooLong}
		}

		b, err := p.seg.ReadAt(0, segment.HeaderSize)
		if err != nil {
			return zero, &ErrParcelIO{Err: err}
		}
		hdr, err := segment.DecodeHeader(b)
		if err != nil {
			return zero, &ErrParcelCorrupt{Err: err}
		}

		if hdr.State != segment.StateMoved {
			if chased > 0 {
				p.stats.RecordChaseSteps(chased)
				p.logger.Debug("parcel: chased relocation chain", zap.Int("steps", chased), zap.Uint32("key", p.key))
			}

			switch hdr.State {
			case segment.StateFreed:
				p.freed = true
				return zero, &ErrParcelFreed{}
			case segment.StateAllocated:
				if hdr.SizeOrKey == 0 {
					return zero, &ErrParcelCorrupt{Err: errEmptyPayload}
				}
				payload, err := p.seg.ReadAt(segment.HeaderSize, int(hdr.SizeOrKey))
				if err != nil {
					return zero, &ErrParcelIO{Err: err}
				}
				v, err := p.codec.Decode(payload)
				if err != nil {
					return zero, &ErrParcelCorrupt{Err: err}
				}
				return v, nil
			default:
				return zero, &ErrParcelCorrupt{Err: errUnknownState}
			}
		}

		next, err := p.openSegment(hdr.SizeOrKey)
		if err != nil {
			return zero, &ErrParcelIO{Err: err}
		}
		p.seg.Close()
		p.seg = next
		p.key = hdr.SizeOrKey
		chased++
	}
}

// Wrap stores value, relocating to a larger segment if the serialized form
// no longer fits. It fails with ErrParcelFreed if p is already freed, or
// ErrParcelIO on any underlying segment failure. A failure partway through
// relocation leaves p Freed: the old segment is marked deleted and this
// handle can no longer be used, even though the caller must still release
// any Mutex Guard it holds.
func (p *Parcel[V]) Wrap(value V) error {
	if p.freed {
		return &ErrParcelFreed{}
	}
	return p.wrap(value)
}

func (p *Parcel[V]) wrap(value V) error {
	payload, err := p.codec.Encode(value)
	if err != nil {
		return &ErrParcelCorrupt{Err: err}
	}
	L := len(payload)

	hb, err := p.seg.ReadAt(0, segment.HeaderSize)
	if err != nil {
		return &ErrParcelIO{Err: err}
	}
	cur, err := segment.DecodeHeader(hb)
	if err != nil {
		return &ErrParcelCorrupt{Err: err}
	}
	if cur.State == segment.StateFreed {
		p.freed = true
		return &ErrParcelFreed{}
	}
	perm := cur.Permissions

	if p.seg.Capacity() >= int64(L+segment.HeaderSize) {
		hdr := segment.Header{State: segment.StateAllocated, SizeOrKey: uint32(L), Permissions: perm}
		if err := p.seg.WriteAt(0, hdr.Bytes()); err != nil {
			return &ErrParcelIO{Err: err}
		}
		if err := p.seg.WriteAt(segment.HeaderSize, payload); err != nil {
			return &ErrParcelIO{Err: err}
		}
		return nil
	}

	return p.relocate(payload, perm)
}

// relocate advertises MOVED on the old segment, retires it, allocates a
// segment twice the new payload's size, and writes the value there.
func (p *Parcel[V]) relocate(payload []byte, perm uint16) error {
	L := len(payload)
	newKey := segment.NextKey(p.key)

	moved := segment.Header{State: segment.StateMoved, SizeOrKey: newKey, Permissions: 0}
	if err := p.seg.WriteAt(0, moved.Bytes()); err != nil {
		p.freed = true
		return &ErrParcelIO{Err: err}
	}

	p.seg.MarkDeleted()
	p.seg.Close()

	newCap := 2*L + segment.HeaderSize
	newSeg, err := p.createSegment(newKey, newCap)
	if err != nil {
		p.freed = true
		return &ErrParcelIO{Err: errors.Wrap(err, "relocate: create new segment")}
	}

	hdr := segment.Header{State: segment.StateAllocated, SizeOrKey: uint32(L), Permissions: perm}
	if err := newSeg.WriteAt(0, hdr.Bytes()); err != nil {
		p.freed = true
		return &ErrParcelIO{Err: err}
	}
	if err := newSeg.WriteAt(segment.HeaderSize, payload); err != nil {
		p.freed = true
		return &ErrParcelIO{Err: err}
	}

	p.seg = newSeg
	p.key = newKey
	p.stats.RecordRelocation(L)
	p.logger.Info("parcel: relocated", zap.Uint32("new_key", newKey), zap.Int("bytes", L))
	return nil
}

// Synchronized runs m under the Mutex: it reads the current value,
// invokes m, writes back m's next value (or the current value again when
// m reports replaced=false), and returns the value it wrote, releasing the
// Mutex on every exit path including failure of m or of the read/write
// around it. When m returns an error nothing is written.
func (p *Parcel[V]) Synchronized(m Mutation[V]) (V, error) {
	var zero V

	waitStart := time.Now()
	guard, err := p.lock.Acquire()
	p.stats.RecordMutexWait(time.Since(waitStart).Seconds())
	if err != nil {
		return zero, &ErrParcelIO{Err: err}
	}
	defer guard.Release()

	if p.freed {
		return zero, &ErrParcelFreed{}
	}

	current, err := p.unwrap()
	if err != nil {
		return zero, err
	}

	next, replaced, err := m(current)
	if err != nil {
		return zero, err
	}
	if !replaced {
		next = current
	}

	if err := p.wrap(next); err != nil {
		return zero, err
	}
	return next, nil
}

// Free idempotently marks p's segment FREED, deletes it, and frees the
// Mutex. Concurrent holders in other processes observe StateFreed on their
// next Unwrap and fail with ErrParcelFreed. Freeing while another holder
// is inside Synchronized is a usage error: the OS keeps the segment alive
// until the last detach, but the invariant that the payload is always a
// complete, valid serialization may be violated in the interim.
func (p *Parcel[V]) Free() error {
	if p.freed {
		return nil
	}

	hdr := segment.Header{State: segment.StateFreed, SizeOrKey: 0, Permissions: 0}
	if err := p.seg.WriteAt(0, hdr.Bytes()); err != nil {
		p.freed = true
		return &ErrParcelIO{Err: err}
	}
	if err := p.seg.MarkDeleted(); err != nil {
		p.freed = true
		return &ErrParcelIO{Err: err}
	}
	if err := p.seg.Close(); err != nil {
		p.freed = true
		return &ErrParcelIO{Err: err}
	}
	if err := p.lock.Free(); err != nil {
		p.freed = true
		return &ErrParcelIO{Err: err}
	}

	p.freed = true
	p.logger.Debug("parcel: freed", zap.Uint32("key", p.key))
	return nil
}

// Clone produces an independent Parcel holding a copy of p's current
// value: a new segment and a new Mutex, not the shared identity of p.
// Mutating the clone never changes p.
func (p *Parcel[V]) Clone(opts ...Option) (*Parcel[V], error) {
	guard, err := p.lock.Acquire()
	if err != nil {
		return nil, &ErrParcelIO{Err: err}
	}
	defer guard.Release()

	if p.freed {
		return nil, &ErrParcelFreed{}
	}

	value, err := p.unwrap()
	if err != nil {
		return nil, err
	}

	capacity := int(p.seg.Capacity()) - segment.HeaderSize
	allOpts := append([]Option{WithCapacity(capacity), WithPermissions(p.currentPermissions())}, opts...)
	return New(value, p.codec, allOpts...)
}

func (p *Parcel[V]) currentPermissions() uint16 {
	b, err := p.seg.ReadAt(0, segment.HeaderSize)
	if err != nil {
		return DefaultPermissions
	}
	h, err := segment.DecodeHeader(b)
	if err != nil {
		return DefaultPermissions
	}
	return h.Permissions
}
