// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package codec holds the value<->bytes collaborator contract a Parcel is
// parameterized by: the parcel is opaque to what a value means and only
// moves the bytes a Codec produces.
package codec

// A Codec converts values of type V to and from bytes. Both directions
// must be total for valid inputs; Decode failures on data the parcel
// itself wrote (outside of deliberate corruption) indicate a bug in the
// Codec, not in the parcel.
type Codec[V any] interface {
	Encode(v V) ([]byte, error)
	Decode(b []byte) (V, error)
}

// Func adapts a pair of plain functions to the Codec interface.
type Func[V any] struct {
	EncodeFunc func(V) ([]byte, error)
	DecodeFunc func([]byte) (V, error)
}

func (f Func[V]) Encode(v V) ([]byte, error) { return f.EncodeFunc(v) }
func (f Func[V]) Decode(b []byte) (V, error) { return f.DecodeFunc(b) }
