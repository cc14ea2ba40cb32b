package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMemoryObserver_Success tests that peak usage is sampled.
func TestMemoryObserver_Success(t *testing.T) {
	t.Parallel()

	obs := newMemoryObserver(t.Context())
	obs.Stop()

	assert.Positive(t, obs.MaxAlloc())
}

// TestPeakRSS_Success tests querying the kernel for the peak resident set.
func TestPeakRSS_Success(t *testing.T) {
	t.Parallel()

	rss, err := peakRSS()
	require.NoError(t, err)
	assert.Positive(t, rss)
}
