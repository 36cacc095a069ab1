// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux

package segment

import (
	"golang.org/x/sys/unix"
)

// shmPerm is the permission bits recorded in the System V ipc_perm struct;
// the parcel header carries its own copy so this is only what the kernel
// needs to allow attach from other processes of the same user.
const shmPerm = 0600

type osFacilityImpl struct{}

func newOSFacility() facility { return osFacilityImpl{} }

func (osFacilityImpl) create(key uint32, size int) (int, []byte, error) {
	id, err := unix.SysvShmGet(int(key), size, unix.IPC_CREAT|unix.IPC_EXCL|shmPerm)
	if err != nil {
		return 0, nil, err
	}

	data, err := unix.SysvShmAttach(id, 0, 0)
	if err != nil {
		return 0, nil, err
	}

	return id, data, nil
}

func (osFacilityImpl) open(key uint32) (int, []byte, error) {
	id, err := unix.SysvShmGet(int(key), 0, shmPerm)
	if err != nil {
		return 0, nil, err
	}

	data, err := unix.SysvShmAttach(id, 0, 0)
	if err != nil {
		return 0, nil, err
	}

	return id, data, nil
}

func (osFacilityImpl) markDeleted(id int) error {
	_, err := unix.SysvShmCtl(id, unix.IPC_RMID, nil)
	return err
}

func (osFacilityImpl) detach(data []byte) error {
	if data == nil {
		return nil
	}
	return unix.SysvShmDetach(data)
}
