// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Parceldemo forks a handful of worker processes that all attach to the
// same parcel and hammer Synchronized: a multi-process exerciser run by
// hand, not by go test.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/cznic/parcel/parcel"
	"github.com/cznic/parcel/parcel/codec"
)

var (
	oWorkers = flag.Int("workers", 4, "number of worker processes")
	oPerProc = flag.Int("n", 1000, "synchronized increments per worker")
	oSegKey  = flag.Uint64("segkey", 0, "worker mode: segment key inherited from the master")
	oMutKey  = flag.Uint64("mutkey", 0, "worker mode: mutex key inherited from the master")
	oWorker  = flag.Bool("worker", false, "run as a worker attaching to an existing parcel")
)

func worker(logger *zap.Logger) {
	h := parcel.Handle{SegmentKey: uint32(*oSegKey), MutexKey: uint32(*oMutKey)}
	p, err := parcel.FromHandle(h, codec.Gob[int]{}, parcel.WithLogger(logger))
	if err != nil {
		logger.Fatal("worker: FromHandle", zap.Error(err))
	}

	increment := func(cur int) (int, bool, error) { return cur + 1, true, nil }
	for i := 0; i < *oPerProc; i++ {
		if _, err := p.Synchronized(increment); err != nil {
			logger.Fatal("worker: Synchronized", zap.Error(err))
		}
	}
}

func master(logger *zap.Logger) {
	p, err := parcel.New(0, codec.Gob[int]{}, parcel.WithLogger(logger))
	if err != nil {
		logger.Fatal("master: New", zap.Error(err))
	}
	defer p.Free()

	h := p.Handle()
	logger.Info("master: parcel created", zap.Uint32("segment_key", h.SegmentKey), zap.Uint32("mutex_key", h.MutexKey))

	procs := make([]*os.Process, 0, *oWorkers)
	for i := 0; i < *oWorkers; i++ {
		args := []string{
			os.Args[0],
			"-worker",
			"-segkey", strconv.FormatUint(uint64(h.SegmentKey), 10),
			"-mutkey", strconv.FormatUint(uint64(h.MutexKey), 10),
			"-n", strconv.Itoa(*oPerProc),
		}
		proc, err := os.StartProcess(os.Args[0], args, &os.ProcAttr{
			Files: []*os.File{os.Stdin, os.Stdout, os.Stderr},
		})
		if err != nil {
			logger.Fatal("master: StartProcess", zap.Error(err))
		}
		procs = append(procs, proc)
	}

	for _, proc := range procs {
		if _, err := proc.Wait(); err != nil {
			logger.Fatal("master: Wait", zap.Error(err))
		}
	}

	final, err := p.Unwrap()
	if err != nil {
		logger.Fatal("master: Unwrap", zap.Error(err))
	}

	want := *oWorkers * *oPerProc
	if final != want {
		logger.Fatal("master: mismatch", zap.Int("got", final), zap.Int("want", want))
	}

	snap := p.Stats()
	fmt.Printf("ok: %d workers x %d increments = %d, %d relocations, %d chase steps\n",
		*oWorkers, *oPerProc, final, snap.Relocations, snap.ChaseSteps)
}

func main() {
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	start := time.Now()
	if *oWorker {
		worker(logger)
		return
	}
	master(logger)
	logger.Info("master: done", zap.Duration("elapsed", time.Since(start)))
}
