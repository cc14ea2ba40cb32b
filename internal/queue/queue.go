// Package queue implements a generic work queue with progress accounting.
// Items are dequeued in insertion order and processed sequentially or by a
// bounded number of concurrent workers, each processing function deciding
// whether an item succeeded, was skipped or needs to be processed again.
package queue

import (
	"time"
)

// Decision is what a processing function decided for an item.
type Decision int

const (
	// DecisionSuccess is returned by a processing function when an item was
	// processed.
	DecisionSuccess Decision = 1

	// DecisionSkipped is returned by a processing function when an item was
	// skipped.
	DecisionSkipped Decision = 0

	// DecisionRequeue is returned by a processing function when an item needs
	// requeueing.
	DecisionRequeue Decision = -1
)

func (d Decision) String() string {
	switch d {
	case DecisionSuccess:
		return "success"
	case DecisionSkipped:
		return "skipped"
	case DecisionRequeue:
		return "requeue"
	default:
		return "unknown"
	}
}

// Progress is a point-in-time view of the processing state of a queue. It is
// meant to be passed by value.
type Progress struct {
	HasStarted      bool
	HasFinished     bool
	StartTime       time.Time
	FinishTime      time.Time
	Elapsed         time.Duration
	ProgressPct     float64
	TotalItems      int
	ProcessedItems  int
	InProgressItems int
	SuccessItems    int
	SkippedItems    int
	RequeuedItems   int
}
