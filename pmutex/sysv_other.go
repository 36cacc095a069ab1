// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !linux

package pmutex

import "errors"

// ErrPlatformUnsupported is returned (wrapped in ErrMutexCreate /
// ErrMutexOpen) on platforms without a System V semaphore facility.
var ErrPlatformUnsupported = errors.New("pmutex: no semaphore facility on this platform")

type osFacilityImpl struct{}

func newOSFacility() facility { return osFacilityImpl{} }

func (osFacilityImpl) create(key uint32) (int, error) { return 0, ErrPlatformUnsupported }
func (osFacilityImpl) open(key uint32) (int, error)   { return 0, ErrPlatformUnsupported }
func (osFacilityImpl) acquire(id int) error            { return ErrPlatformUnsupported }
func (osFacilityImpl) release(id int) error            { return ErrPlatformUnsupported }
func (osFacilityImpl) remove(id int) error             { return ErrPlatformUnsupported }
