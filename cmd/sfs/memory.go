package main

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"
)

// memoryMonitorInterval is the interval a [memoryObserver] samples at.
const memoryMonitorInterval = 100 * time.Millisecond

// memoryObserver tracks peak heap allocation over the program lifetime.
type memoryObserver struct {
	maxAlloc atomic.Uint64
	stopChan chan struct{}
	doneChan chan struct{}
}

// newMemoryObserver returns a pointer to a new, running [memoryObserver],
// which needs to be stopped with [memoryObserver.Stop].
func newMemoryObserver(ctx context.Context) *memoryObserver {
	obs := &memoryObserver{
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
	go obs.monitor(ctx)

	return obs
}

// MaxAlloc returns the peak recorded heap allocation in bytes.
func (o *memoryObserver) MaxAlloc() uint64 {
	return o.maxAlloc.Load()
}

// Stop ends the tracking and logs the peak heap allocation, together with
// the peak resident set size reported by the kernel if it can be queried.
func (o *memoryObserver) Stop() {
	close(o.stopChan)
	<-o.doneChan

	maxRSS, err := peakRSS()
	if err != nil {
		slog.Info("Memory consumption peaked at:", "maxAlloc", humanize.IBytes(o.MaxAlloc()))

		return
	}

	slog.Info("Memory consumption peaked at:",
		"maxAlloc", humanize.IBytes(o.MaxAlloc()),
		"maxRSS", humanize.IBytes(maxRSS),
	)
}

// peakRSS returns the peak resident set size of the process in bytes.
func peakRSS() (uint64, error) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0, fmt.Errorf("(main-rusage) %w", err)
	}

	// Linux reports kilobytes.
	return uint64(ru.Maxrss) * 1024, nil //nolint:gosec,mnd
}

func (o *memoryObserver) sample() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	for {
		seen := o.maxAlloc.Load()
		if m.Alloc <= seen || o.maxAlloc.CompareAndSwap(seen, m.Alloc) {
			return
		}
	}
}

func (o *memoryObserver) monitor(ctx context.Context) {
	defer close(o.doneChan)

	ticker := time.NewTicker(memoryMonitorInterval)
	defer ticker.Stop()

	o.sample()

	for {
		select {
		case <-o.stopChan:
			o.sample()

			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.sample()
		}
	}
}
