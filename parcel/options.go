// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parcel

import (
	"go.uber.org/zap"

	"github.com/cznic/parcel/parcel/stats"
)

// DefaultCapacity is the payload capacity (in bytes, not counting the
// header) a new Parcel is given absent an explicit WithCapacity option.
const DefaultCapacity = 16384

// DefaultPermissions is the permission mask recorded at creation absent an
// explicit WithPermissions option.
const DefaultPermissions uint16 = 0o600

// maxChase bounds the MOVED-chasing loop in unwrap so that a corrupted
// relocation chain (e.g. a cycle from a misbehaving peer) fails fast with
// ErrParcelCorrupt instead of looping forever.
const maxChase = 1 << 16

type config struct {
	capacity    int
	permissions uint16
	logger      *zap.Logger
	stats       *stats.Recorder
}

func newConfig() *config {
	return &config{
		capacity:    DefaultCapacity,
		permissions: DefaultPermissions,
		logger:      zap.NewNop(),
	}
}

// An Option configures New.
type Option func(*config)

// WithCapacity sets the initial payload capacity in bytes.
func WithCapacity(n int) Option {
	return func(c *config) { c.capacity = n }
}

// WithPermissions sets the permission mask recorded at creation and
// carried across relocations.
func WithPermissions(perm uint16) Option {
	return func(c *config) { c.permissions = perm }
}

// WithLogger attaches a logger used to report relocations, chase steps and
// free events. The default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithStats attaches a stats.Recorder. The default is an unshared Recorder
// created internally, so WithStats is only needed when a caller wants to
// aggregate several parcels' metrics into one Recorder/registry.
func WithStats(r *stats.Recorder) Option {
	return func(c *config) { c.stats = r }
}
