// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !linux

package segment

import "errors"

// ErrPlatformUnsupported is returned (wrapped in ErrSegmentCreate /
// ErrSegmentOpen) on platforms without a System V shared-memory facility.
var ErrPlatformUnsupported = errors.New("segment: no shared-memory facility on this platform")

type osFacilityImpl struct{}

func newOSFacility() facility { return osFacilityImpl{} }

func (osFacilityImpl) create(key uint32, size int) (int, []byte, error) {
	return 0, nil, ErrPlatformUnsupported
}

func (osFacilityImpl) open(key uint32) (int, []byte, error) {
	return 0, nil, ErrPlatformUnsupported
}

func (osFacilityImpl) markDeleted(id int) error { return ErrPlatformUnsupported }

func (osFacilityImpl) detach(data []byte) error { return ErrPlatformUnsupported }
