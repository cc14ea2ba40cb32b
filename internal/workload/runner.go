package workload

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"sync"

	"github.com/Mkayuni/Simple-File-System/internal/filesystem"
	"github.com/Mkayuni/Simple-File-System/internal/queue"
	"github.com/Mkayuni/Simple-File-System/internal/schema"
)

// volume defines the methods needed from the volume the scripts run on.
type volume interface {
	NewProcess(name string) *filesystem.Process
	Delete(name string) error
	List() iter.Seq[schema.Entry]
}

// StepError is a failed [Step] of a [Script].
type StepError struct {
	Script string
	Index  int
	Step   Step
	Err    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: step %d %s: %v", e.Script, e.Index, e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Listing is the result of an [OpList] step.
type Listing struct {
	Script  string
	Entries []schema.Entry
}

// PhaseReport is the outcome of a single [Phase].
type PhaseReport struct {
	Name     string
	Progress queue.Progress
	Failed   []*StepError
}

// Report is the outcome of [Runner.Run].
type Report struct {
	Phases   []PhaseReport
	Listings []Listing
}

// Failures returns all failed steps of all phases.
func (r *Report) Failures() []*StepError {
	var errs []*StepError
	for _, p := range r.Phases {
		errs = append(errs, p.Failed...)
	}

	return errs
}

// Runner runs phases of scripts against a volume.
type Runner struct {
	vol     volume
	workers int

	mu       sync.Mutex
	failed   []*StepError
	listings []Listing
}

// NewRunner returns a pointer to a new [Runner] running at most the given
// number of scripts of a phase at once.
func NewRunner(vol volume, workers int) *Runner {
	return &Runner{
		vol:     vol,
		workers: max(workers, 1),
	}
}

// Run runs the given phases in order, the scripts of each phase
// concurrently. Failing steps are collected into the returned [Report], an
// error is only returned if the context was cancelled.
func (r *Runner) Run(ctx context.Context, phases ...Phase) (*Report, error) {
	report := &Report{}

	for _, phase := range phases {
		q := queue.NewGenericQueue[*Script]()
		q.Enqueue(phase.Scripts...)

		slog.Info("Workload phase started",
			"phase", phase.Name,
			"scripts", len(phase.Scripts),
		)

		err := q.DequeueAndProcessConc(ctx, r.workers, r.runScript)

		r.mu.Lock()
		pr := PhaseReport{
			Name:     phase.Name,
			Progress: q.Progress(),
			Failed:   r.failed,
		}
		r.failed = nil
		r.mu.Unlock()

		report.Phases = append(report.Phases, pr)

		slog.Info("Workload phase finished",
			"phase", phase.Name,
			"succeeded", pr.Progress.SuccessItems,
			"failed", pr.Progress.SkippedItems,
			"elapsed", pr.Progress.Elapsed,
		)

		if err != nil {
			r.collectListings(report)

			return report, fmt.Errorf("(workload-run) %s: %w", phase.Name, err)
		}
	}

	r.collectListings(report)

	return report, nil
}

func (r *Runner) collectListings(report *Report) {
	r.mu.Lock()
	defer r.mu.Unlock()

	report.Listings = append(report.Listings, r.listings...)
	r.listings = nil
}

func (r *Runner) recordFailure(serr *StepError) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.failed = append(r.failed, serr)
}

func (r *Runner) recordListing(script string, entries []schema.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.listings = append(r.listings, Listing{Script: script, Entries: entries})
}

// runScript runs a [Script] as a new process, closing whatever the script
// left open once it is done.
func (r *Runner) runScript(ctx context.Context, s *Script) queue.Decision {
	proc := r.vol.NewProcess(s.Name)
	defer proc.CloseAll()

	handles := make(map[string]schema.FileID)

	for i, step := range s.Steps {
		if ctx.Err() != nil {
			return queue.DecisionSkipped
		}

		if err := r.runStep(s, proc, handles, step); err != nil {
			serr := &StepError{Script: s.Name, Index: i, Step: step, Err: err}
			r.recordFailure(serr)

			slog.Warn("Workload step failed, skipping remaining steps",
				"script", s.Name,
				"step", step.String(),
				"err", err,
			)

			return queue.DecisionSkipped
		}
	}

	return queue.DecisionSuccess
}

func (r *Runner) runStep(s *Script, proc *filesystem.Process, handles map[string]schema.FileID, step Step) error {
	switch step.Op {
	case OpCreate:
		fid, err := proc.Create(step.Name, step.Size)
		if err != nil {
			return err
		}
		handles[step.Name] = fid

		slog.Info("File created",
			"script", s.Name,
			"file", step.Name,
			"fid", fid,
		)

	case OpOpen:
		fid, err := proc.Open(step.Name)
		if err != nil {
			return err
		}
		handles[step.Name] = fid

		slog.Info("File opened",
			"script", s.Name,
			"file", step.Name,
			"fid", fid,
		)

	case OpRead:
		fid, ok := handles[step.Name]
		if !ok {
			return fmt.Errorf("%w: %s", ErrNotOpened, step.Name)
		}

		e, err := proc.Read(fid)
		if err != nil {
			return err
		}

		slog.Info("File read",
			"script", s.Name,
			"file", e.Name,
			"fid", fid,
			"size", e.Size,
		)

	case OpWrite:
		fid, ok := handles[step.Name]
		if !ok {
			return fmt.Errorf("%w: %s", ErrNotOpened, step.Name)
		}

		ack, err := proc.Write(fid, step.Data)
		if err != nil {
			return err
		}

		slog.Info("File written",
			"script", s.Name,
			"file", step.Name,
			"fid", fid,
			"bytes", ack.Bytes,
			"digest", ack.Digest,
		)

	case OpClose:
		fid, ok := handles[step.Name]
		if !ok {
			return fmt.Errorf("%w: %s", ErrNotOpened, step.Name)
		}

		if err := proc.Close(fid); err != nil {
			return err
		}
		delete(handles, step.Name)

		slog.Info("File closed",
			"script", s.Name,
			"file", step.Name,
			"fid", fid,
		)

	case OpDelete:
		if err := r.vol.Delete(step.Name); err != nil {
			return err
		}

		slog.Info("File deleted",
			"script", s.Name,
			"file", step.Name,
		)

	case OpList:
		entries := slices.Collect(r.vol.List())
		r.recordListing(s.Name, entries)

		slog.Info("Listing files",
			"script", s.Name,
			"files", len(entries),
		)
		for _, e := range entries {
			slog.Info("File",
				"file", e.Name,
				"fid", e.ID,
				"startBlock", e.StartBlock,
				"size", e.Size,
			)
		}

	default:
		return fmt.Errorf("%w: %q", ErrUnknownOp, step.Op)
	}

	return nil
}
