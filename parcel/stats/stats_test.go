// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecorderSnapshot(t *testing.T) {
	r := New(nil)

	r.RecordRelocation(128)
	r.RecordRelocation(256)
	r.RecordChaseSteps(3)
	r.RecordMutexWait(0.01)
	r.RecordMutexWait(0.02)

	s := r.Snapshot()
	assert.Equal(t, int64(2), s.Relocations)
	assert.Equal(t, int64(384), s.BytesRelocated)
	assert.Equal(t, int64(3), s.ChaseSteps)
	assert.Equal(t, uint64(2), s.MutexWaitCount)
	assert.InDelta(t, 0.03, s.MutexWaitSum, 1e-9)
}

func TestRecorderZeroChaseStepsNotRecorded(t *testing.T) {
	r := New(nil)
	r.RecordChaseSteps(0)
	assert.Equal(t, int64(0), r.Snapshot().ChaseSteps)
}
