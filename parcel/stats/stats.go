// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package stats exposes the relocation and synchronization counters a
// Parcel accumulates over its lifetime, live-updated and Prometheus
// scrapable rather than computed once by an offline pass.
package stats

import (
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/client_golang/prometheus"
)

// A Recorder accumulates one parcel's relocation and synchronization
// metrics. The zero value is not usable; construct with New.
type Recorder struct {
	relocations    prometheus.Counter
	bytesRelocated prometheus.Counter
	chaseSteps     prometheus.Counter
	mutexWait      prometheus.Histogram
}

// New returns a Recorder with its own unregistered metrics, so that many
// Parcels (and many tests) can each have one without colliding in the
// default Prometheus registry. Register the result with a
// *prometheus.Registry if the caller wants it scraped.
func New(labels prometheus.Labels) *Recorder {
	return &Recorder{
		relocations: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "parcel_relocations_total",
			Help:        "Number of times this parcel's payload outgrew its segment and was relocated.",
			ConstLabels: labels,
		}),
		bytesRelocated: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "parcel_bytes_relocated_total",
			Help:        "Total payload bytes copied into new segments by relocation.",
			ConstLabels: labels,
		}),
		chaseSteps: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "parcel_chase_steps_total",
			Help:        "Number of MOVED headers followed while chasing a relocation chain.",
			ConstLabels: labels,
		}),
		mutexWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "parcel_mutex_wait_seconds",
			Help:        "Time spent blocked acquiring the cross-process Mutex before a synchronized call.",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}),
	}
}

// Collectors returns r's metrics for registration with a
// *prometheus.Registry.
func (r *Recorder) Collectors() []prometheus.Collector {
	return []prometheus.Collector{r.relocations, r.bytesRelocated, r.chaseSteps, r.mutexWait}
}

// RecordRelocation records one relocation that copied n payload bytes.
func (r *Recorder) RecordRelocation(n int) {
	r.relocations.Inc()
	r.bytesRelocated.Add(float64(n))
}

// RecordChaseSteps records the number of MOVED headers followed by one
// unwrap call.
func (r *Recorder) RecordChaseSteps(n int) {
	if n > 0 {
		r.chaseSteps.Add(float64(n))
	}
}

// RecordMutexWait records how long a synchronized call waited to acquire
// the Mutex.
func (r *Recorder) RecordMutexWait(seconds float64) {
	r.mutexWait.Observe(seconds)
}

// Snapshot is a point-in-time read of a Recorder's counters.
type Snapshot struct {
	Relocations    int64
	BytesRelocated int64
	ChaseSteps     int64
	MutexWaitCount uint64
	MutexWaitSum   float64
}

// Snapshot reads r's current values without needing a Prometheus scrape,
// via the same Write(*dto.Metric) introspection hook the client library
// uses internally for HTTP exposition.
func (r *Recorder) Snapshot() Snapshot {
	var s Snapshot

	var m dto.Metric
	if err := r.relocations.Write(&m); err == nil {
		s.Relocations = int64(m.GetCounter().GetValue())
	}

	m = dto.Metric{}
	if err := r.bytesRelocated.Write(&m); err == nil {
		s.BytesRelocated = int64(m.GetCounter().GetValue())
	}

	m = dto.Metric{}
	if err := r.chaseSteps.Write(&m); err == nil {
		s.ChaseSteps = int64(m.GetCounter().GetValue())
	}

	m = dto.Metric{}
	if err := r.mutexWait.Write(&m); err == nil {
		s.MutexWaitCount = m.GetHistogram().GetSampleCount()
		s.MutexWaitSum = m.GetHistogram().GetSampleSum()
	}

	return s
}
