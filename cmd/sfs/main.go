// Package main implements the runner of an in-memory block filesystem,
// driving a volume with concurrent scripted clients.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"runtime"

	"github.com/Mkayuni/Simple-File-System/internal/configuration"
	"github.com/Mkayuni/Simple-File-System/internal/workload"
	"golang.org/x/sys/unix"
)

const (
	stackTraceBufMax = 1 << 24
)

//nolint:gochecknoglobals
var (
	ExitCode = 0
	Version  string

	configFile = flag.String("config", "sfs.env", "read configuration from this env file")
	logFile    = flag.String("logfile", "", "additionally write JSON logs to this file")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	memprofile = flag.String("memprofile", "", "write memory profile to this file")
)

func setupSignalHandlers(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, unix.SIGTERM, unix.SIGINT)

	go func() {
		<-sigChan
		slog.Warn("Received signal, stopping workload...")
		cancel()
	}()

	sigChan2 := make(chan os.Signal, 1)
	signal.Notify(sigChan2, unix.SIGUSR1)

	go func() {
		for range sigChan2 {
			buf := make([]byte, stackTraceBufMax)
			stacklen := runtime.Stack(buf, true)
			os.Stderr.Write(buf[:stacklen])
		}
	}()
}

func main() {
	defer func() {
		os.Exit(ExitCode)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	flag.Parse()

	level := &slog.LevelVar{}
	logManager := setupLogging(os.Stdout, level)
	setupSignalHandlers(cancel)

	if *logFile != "" {
		closeLog, err := addLogFile(logManager, *logFile, level)
		if err != nil {
			slog.Error("Failed to open log file.", "err", err)
			ExitCode = 1

			return
		}
		defer closeLog() //nolint:errcheck
	}

	memObserver := newMemoryObserver(ctx)
	defer memObserver.Stop()

	cpuProfiler := newProfiler(ctx, cpuProfile, *cpuprofile)
	defer cpuProfiler.Stop()

	allocProfiler := newProfiler(ctx, allocsProfile, *memprofile)
	defer allocProfiler.Stop()

	configHandler := configuration.NewHandler(&configuration.GodotenvProvider{})

	cfg, err := configHandler.Load(*configFile)
	if err != nil {
		slog.Error("Failed to read the configuration.",
			"file", *configFile,
			"err", err,
		)
		ExitCode = 1

		return
	}
	level.Set(cfg.LogLevel)

	if Version != "" {
		slog.Info("Starting up...", "version", Version)
	}

	app, err := NewApp(cfg, workload.DefaultPhases())
	if err != nil {
		slog.Error("Failed to initialize the volume.",
			"err", err,
		)
		ExitCode = 1

		return
	}

	if err := app.Launch(ctx); err != nil {
		slog.Error("File system program failed.",
			"err", err,
		)
		ExitCode = 1

		return
	}

	slog.Info("File system program finished.")
}
