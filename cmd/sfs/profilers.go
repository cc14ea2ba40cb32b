package main

import (
	"context"
	"log/slog"
	"os"
	"runtime/pprof"
)

type profileKind int

const (
	cpuProfile profileKind = iota
	allocsProfile
)

// profiler writes a CPU or allocations profile to a file. A CPU profile is
// recorded from start until stopped, an allocations profile is written once
// stopped.
//
//nolint:containedctx
type profiler struct {
	kind     profileKind
	ctx      context.Context
	cancel   context.CancelFunc
	doneChan chan struct{}
}

// newProfiler returns a pointer to a new, running [profiler]. Nothing is
// recorded for an empty path, it still needs to be stopped.
func newProfiler(ctx context.Context, kind profileKind, path string) *profiler {
	p := &profiler{
		kind:     kind,
		doneChan: make(chan struct{}),
	}
	p.ctx, p.cancel = context.WithCancel(ctx)

	go p.profile(path)

	return p
}

func (p *profiler) profile(path string) {
	defer close(p.doneChan)

	if path == "" {
		return
	}

	if p.kind == allocsProfile {
		<-p.ctx.Done()
	}

	f, err := os.Create(path)
	if err != nil {
		slog.Error("Could not create profile", "path", path, "err", err)

		return
	}
	defer f.Close()

	switch p.kind {
	case cpuProfile:
		if err := pprof.StartCPUProfile(f); err != nil {
			slog.Error("Could not start cpu profile", "err", err)

			return
		}
		defer pprof.StopCPUProfile()

		<-p.ctx.Done()

	case allocsProfile:
		if err := pprof.Lookup("allocs").WriteTo(f, 0); err != nil {
			slog.Error("Could not write allocs profile", "err", err)
		}
	}
}

// Stop ends the profiling and waits for the profile to be written.
func (p *profiler) Stop() {
	p.cancel()
	<-p.doneChan
}
