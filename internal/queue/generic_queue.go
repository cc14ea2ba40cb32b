package queue

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

// GenericQueue is a queue that can hold any comparable type of items. Items
// are expected to be unique while they are queued or in progress.
type GenericQueue[T comparable] struct {
	sync.RWMutex
	hasStarted  bool
	hasFinished bool
	startTime   time.Time
	finishTime  time.Time
	head        int
	items       []T
	success     []T
	skipped     []T
	requeued    int
	inProgress  map[T]struct{}
}

// NewGenericQueue returns a pointer to a new [GenericQueue].
func NewGenericQueue[T comparable]() *GenericQueue[T] {
	return &GenericQueue[T]{
		inProgress: make(map[T]struct{}),
	}
}

// HasRemainingItems returns whether the queue has items left to dequeue.
func (q *GenericQueue[T]) HasRemainingItems() bool {
	q.RLock()
	defer q.RUnlock()

	return q.head < len(q.items)
}

// GetSuccessful returns a copy of all successfully processed items.
func (q *GenericQueue[T]) GetSuccessful() []T {
	q.RLock()
	defer q.RUnlock()

	return slices.Clone(q.success)
}

// GetSkipped returns a copy of all skipped items.
func (q *GenericQueue[T]) GetSkipped() []T {
	q.RLock()
	defer q.RUnlock()

	return slices.Clone(q.skipped)
}

// Enqueue adds items to the queue. A finished queue is reopened by this.
func (q *GenericQueue[T]) Enqueue(items ...T) {
	q.Lock()
	defer q.Unlock()

	q.enqueue(items...)
}

func (q *GenericQueue[T]) enqueue(items ...T) {
	if q.hasFinished {
		q.finishTime = time.Time{}
		q.hasFinished = false
	}

	q.items = append(q.items, items...)
}

// Dequeue returns the next item and advances the queue head, the second
// return value is false if no items are left.
func (q *GenericQueue[T]) Dequeue() (T, bool) { //nolint:ireturn
	q.Lock()
	defer q.Unlock()

	if q.head >= len(q.items) {
		var zeroVal T

		return zeroVal, false
	}

	now := time.Now()

	if !q.hasStarted {
		q.startTime = now
		q.hasStarted = true
	}

	if q.head == len(q.items)-1 && !q.hasFinished {
		q.finishTime = now
		q.hasFinished = true
	}

	item := q.items[q.head]
	q.head++

	return item, true
}

// SetProcessing sets the given items as in progress.
func (q *GenericQueue[T]) SetProcessing(items ...T) {
	q.Lock()
	defer q.Unlock()

	for _, item := range items {
		q.inProgress[item] = struct{}{}
	}
}

// SetSuccess sets the given in-progress items as successfully processed.
func (q *GenericQueue[T]) SetSuccess(items ...T) {
	q.Lock()
	defer q.Unlock()

	for _, item := range items {
		delete(q.inProgress, item)
		q.success = append(q.success, item)
	}
}

// SetSkipped sets the given in-progress items as skipped.
func (q *GenericQueue[T]) SetSkipped(items ...T) {
	q.Lock()
	defer q.Unlock()

	for _, item := range items {
		delete(q.inProgress, item)
		q.skipped = append(q.skipped, item)
	}
}

// Requeue moves the given in-progress items back to the end of the queue.
func (q *GenericQueue[T]) Requeue(items ...T) {
	q.Lock()
	defer q.Unlock()

	for _, item := range items {
		delete(q.inProgress, item)
		q.requeued++
	}
	q.enqueue(items...)
}

// Progress returns the [Progress] of the [GenericQueue].
func (q *GenericQueue[T]) Progress() Progress {
	q.RLock()
	defer q.RUnlock()

	// Requeued items appear in the queue more than once.
	totalItems := len(q.items) - q.requeued
	processedItems := min(len(q.success)+len(q.skipped), totalItems)

	var progressPct float64
	if totalItems > 0 {
		progressPct = float64(processedItems) / float64(totalItems) * 100 //nolint:mnd
	}

	var elapsed time.Duration
	switch {
	case q.hasFinished && len(q.inProgress) == 0:
		elapsed = q.finishTime.Sub(q.startTime)
	case q.hasStarted:
		elapsed = time.Since(q.startTime)
	}

	return Progress{
		HasStarted:      q.hasStarted,
		HasFinished:     q.hasFinished,
		StartTime:       q.startTime,
		FinishTime:      q.finishTime,
		Elapsed:         elapsed,
		ProgressPct:     progressPct,
		TotalItems:      totalItems,
		ProcessedItems:  processedItems,
		InProgressItems: len(q.inProgress),
		SuccessItems:    len(q.success),
		SkippedItems:    len(q.skipped),
		RequeuedItems:   q.requeued,
	}
}

// process runs processFunc on an item and books its [Decision].
func (q *GenericQueue[T]) process(ctx context.Context, item T, processFunc func(context.Context, T) Decision) {
	q.SetProcessing(item)

	switch processFunc(ctx, item) {
	case DecisionRequeue:
		q.Requeue(item)

	case DecisionSuccess:
		q.SetSuccess(item)

	default:
		q.SetSkipped(item)
	}
}

// DequeueAndProcess sequentially dequeues and processes items using the given
// processFunc. An error is only returned in case of a context cancellation,
// the processFunc otherwise decides on each item through its [Decision].
// Unknown decisions are treated as [DecisionSkipped].
func (q *GenericQueue[T]) DequeueAndProcess(ctx context.Context, processFunc func(context.Context, T) Decision) error {
	for ctx.Err() == nil {
		item, ok := q.Dequeue()
		if !ok {
			return nil
		}

		q.process(ctx, item, processFunc)
	}

	return fmt.Errorf("(queue-proc) %w", ctx.Err())
}

// DequeueAndProcessConc concurrently dequeues and processes items using the
// given processFunc, running at most maxWorkers at once. Errors and decisions
// are as with [GenericQueue.DequeueAndProcess].
//
// It is the responsibility of the processFunc to ensure thread-safety for
// anything happening inside of it, the [GenericQueue] only guarantees
// thread-safety for itself.
func (q *GenericQueue[T]) DequeueAndProcessConc(ctx context.Context, maxWorkers int, processFunc func(context.Context, T) Decision) error {
	var wg sync.WaitGroup

	semaphore := make(chan struct{}, max(maxWorkers, 1))

	for {
	DISPATCH:
		for {
			select {
			case <-ctx.Done():
				wg.Wait()

				return fmt.Errorf("(queue-concproc) %w", ctx.Err())
			case semaphore <- struct{}{}:
			}

			item, ok := q.Dequeue()
			if !ok {
				<-semaphore

				break DISPATCH
			}

			wg.Add(1)
			go func() {
				defer wg.Done()
				defer func() { <-semaphore }()

				q.process(ctx, item, processFunc)
			}()
		}

		wg.Wait()

		if ctx.Err() != nil {
			return fmt.Errorf("(queue-concproc) %w", ctx.Err())
		}

		// Requeued items can arrive after the dispatcher ran dry.
		if !q.HasRemainingItems() {
			return nil
		}
	}
}
