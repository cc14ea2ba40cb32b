package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Mkayuni/Simple-File-System/internal/configuration"
	"github.com/Mkayuni/Simple-File-System/internal/filesystem"
	"github.com/Mkayuni/Simple-File-System/internal/workload"
	"github.com/dustin/go-humanize"
)

// App is the principal implementation of the runner, driving a volume with
// a workload and checking it afterwards.
type App struct {
	cfg    *configuration.AppConfiguration
	volume *filesystem.Handler
	runner *workload.Runner
	phases []workload.Phase
}

// NewApp returns a pointer to a new [App] running the given phases on a new
// volume built from cfg. An error is returned if the volume cannot be built.
func NewApp(cfg *configuration.AppConfiguration, phases []workload.Phase) (*App, error) {
	volume, err := filesystem.NewHandler(cfg.Volume)
	if err != nil {
		return nil, fmt.Errorf("(app-init) %w", err)
	}

	return &App{
		cfg:    cfg,
		volume: volume,
		runner: workload.NewRunner(volume, cfg.Workers),
		phases: phases,
	}, nil
}

// Launch runs the workload and checks the volume for consistency. An error
// is returned for cancellations, failed steps and an inconsistent volume.
func (app *App) Launch(ctx context.Context) error {
	usage := app.volume.Usage()
	slog.Info("File system program started.",
		"blocks", usage.TotalBlocks,
		"blockSize", humanize.IBytes(usage.BlockSize),
		"capacity", humanize.IBytes(usage.TotalBytes()),
		"slots", usage.Slots,
		"policy", app.cfg.Volume.AllocPolicy,
		"workers", app.cfg.Workers,
	)

	report, err := app.runner.Run(ctx, app.phases...)
	if err != nil {
		return fmt.Errorf("(app) %w", err)
	}

	var errs []error
	if failures := report.Failures(); len(failures) > 0 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrWorkloadFailed, len(failures)))
	}

	if err := app.volume.Check(); err != nil {
		errs = append(errs, err)
	}

	slog.Info("Volume after workload:", "usage", app.volume.Usage().String())

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("(app) %w", err)
	}

	return nil
}
