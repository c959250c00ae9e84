package main

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedReader struct {
	mu      sync.Mutex
	results []int64
	errs    []error
	calls   int
}

func (s *scriptedReader) TotalTrees(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return 0, s.errs[i]
	}
	if i < len(s.results) {
		return s.results[i], nil
	}
	return s.results[len(s.results)-1], nil
}

func TestGlobalDisplayKeepsLastValueOnFailure(t *testing.T) {
	ctx := context.Background()
	reader := &scriptedReader{
		results: []int64{10, 0, 12},
		errs:    []error{nil, errors.New("timeout"), nil},
	}
	display := NewGlobalDisplay(reader, nil)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	display.now = func() time.Time { return fixed }

	stats, err := display.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(10), stats.TotalTrees)
	assert.InDelta(t, 1180.0, stats.OxygenKg, 1e-9)
	assert.InDelta(t, 220.0, stats.CO2Kg, 1e-9)
	assert.Equal(t, fixed, stats.UpdatedAt)

	stats, err = display.Refresh(ctx)
	assert.EqualError(t, err, "timeout")
	assert.Equal(t, int64(10), stats.TotalTrees)
	assert.Equal(t, int64(10), display.Current().TotalTrees)

	stats, err = display.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(12), stats.TotalTrees)
}

func TestGlobalDisplayInitialFailureShowsZero(t *testing.T) {
	display := NewGlobalDisplay(&scriptedReader{results: []int64{0}, errs: []error{errors.New("down")}}, nil)

	stats, err := display.Refresh(context.Background())
	assert.Error(t, err)
	assert.Equal(t, GlobalStats{}, stats)
}

func TestGlobalDisplayRunPollsUntilCancelled(t *testing.T) {
	reader := &scriptedReader{results: []int64{1, 2, 3, 4, 5}}
	display := NewGlobalDisplay(reader, nil)

	ctx, cancel := context.WithCancel(context.Background())
	var mu sync.Mutex
	var seen []int64
	done := make(chan struct{})
	go func() {
		defer close(done)
		display.Run(ctx, 5*time.Millisecond, func(stats GlobalStats, err error) {
			mu.Lock()
			defer mu.Unlock()
			if err == nil && len(seen) < 3 {
				seen = append(seen, stats.TotalTrees)
			}
			if len(seen) == 3 {
				cancel()
			}
		})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		cancel()
		t.Fatal("Run did not stop after cancel")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int64{1, 2, 3}, seen)
}
