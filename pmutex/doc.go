// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pmutex is a cross-process counting semaphore, initialised to 1
// and addressable by a 32-bit key so that it survives fork/exec and can be
// encoded into a parcel's serialized handle (see package parcel).
//
// pmutex does not provide fairness or reentrancy: a single holder must not
// re-acquire, and waiters are served in whatever order the OS semaphore
// queue happens to use. A Guard returned by Acquire releases exactly once,
// on Release, and callers must release it on every exit path including
// failure of the code it protects.
package pmutex
