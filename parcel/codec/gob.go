// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codec

import (
	"bytes"
	"encoding/gob"
)

// Gob is a convenience default Codec built on encoding/gob. A parcel
// never hard-wires a serializer; Gob is adequate for the struct/slice/map
// payloads most callers reach for. Values with cycles or
// process-identity-sensitive fields (channels, funcs, pointers meant to
// be compared by identity) need a Codec of their own. encoding/gob does not
// transmit empty slices, so an empty non-nil slice field decodes as nil.
type Gob[V any] struct{}

func (Gob[V]) Encode(v V) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (Gob[V]) Decode(b []byte) (V, error) {
	var v V
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&v); err != nil {
		return v, err
	}
	return v, nil
}
