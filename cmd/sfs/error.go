package main

import "errors"

var (
	// ErrWorkloadFailed occurs when steps of the workload have failed.
	ErrWorkloadFailed = errors.New("workload steps have failed")
)
