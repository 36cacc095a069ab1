// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package segment

import (
	"math/rand"

	"github.com/cespare/xxhash/v2"
)

// NextKey implements the relocation key policy: key+1 while there is room
// below the top of the key space, otherwise a random key in [MinKey, MaxKey].
func NextKey(key uint32) uint32 {
	if key < MaxKey {
		return key + 1
	}

	return MinKey + uint32(rand.Int63n(int64(MaxKey-MinKey)+1))
}

// DeriveInitialKey hashes identity (typically a freshly generated handle
// UUID, see parcel.New) into a key in the [MinKey, MaxKey] range. It is a
// uniqueness heuristic, not a guarantee: Create surfaces a collision as
// ErrSegmentCreate, which callers must treat as a construction-time error.
func DeriveInitialKey(identity []byte) uint32 {
	return clampKey(uint32(xxhash.Sum64(identity)))
}

func clampKey(k uint32) uint32 {
	if k < MinKey {
		k += MinKey
	}
	if k > MaxKey {
		k = MaxKey - (k - MaxKey)
	}
	return k
}
