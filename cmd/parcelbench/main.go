// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Parcelbench measures Synchronized latency against a single parcel from
// one process, sized with an HDR histogram so the tail is visible even
// at a few thousand samples.
package main

import (
	"flag"
	"fmt"
	"time"

	hdrhistogram "github.com/HdrHistogram/hdrhistogram-go"
	"go.uber.org/zap"

	"github.com/cznic/parcel/parcel"
	"github.com/cznic/parcel/parcel/codec"
)

var (
	oIterations = flag.Int("n", 20000, "number of Synchronized calls to measure")
	oCapacity   = flag.Int("capacity", parcel.DefaultCapacity, "parcel payload capacity in bytes")
)

func main() {
	flag.Parse()

	logger := zap.NewNop()
	p, err := parcel.New(0, codec.Gob[int]{}, parcel.WithCapacity(*oCapacity), parcel.WithLogger(logger))
	if err != nil {
		panic(err)
	}
	defer p.Free()

	hist := hdrhistogram.New(1, int64(time.Second), 3)
	increment := func(cur int) (int, bool, error) { return cur + 1, true, nil }

	for i := 0; i < *oIterations; i++ {
		start := time.Now()
		if _, err := p.Synchronized(increment); err != nil {
			panic(err)
		}
		if err := hist.RecordValue(int64(time.Since(start))); err != nil {
			panic(err)
		}
	}

	fmt.Printf("synchronized latency over %d calls:\n", *oIterations)
	fmt.Printf("  min    %s\n", time.Duration(hist.Min()))
	fmt.Printf("  mean   %s\n", time.Duration(int64(hist.Mean())))
	fmt.Printf("  p50    %s\n", time.Duration(hist.ValueAtQuantile(50)))
	fmt.Printf("  p99    %s\n", time.Duration(hist.ValueAtQuantile(99)))
	fmt.Printf("  p99.9  %s\n", time.Duration(hist.ValueAtQuantile(99.9)))
	fmt.Printf("  max    %s\n", time.Duration(hist.Max()))

	snap := p.Stats()
	fmt.Printf("relocations=%d chase_steps=%d\n", snap.Relocations, snap.ChaseSteps)
}
