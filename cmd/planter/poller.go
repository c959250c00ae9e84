package main

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Yearly figures used for the collective impact display.
const (
	oxygenKgPerTreeYear = 118.0
	co2KgPerTreeYear    = 22.0
)

type TotalsReader interface {
	TotalTrees(ctx context.Context) (int64, error)
}

type GlobalStats struct {
	TotalTrees int64
	OxygenKg   float64
	CO2Kg      float64
	UpdatedAt  time.Time
}

func newGlobalStats(total int64, now time.Time) GlobalStats {
	return GlobalStats{
		TotalTrees: total,
		OxygenKg:   float64(total) * oxygenKgPerTreeYear,
		CO2Kg:      float64(total) * co2KgPerTreeYear,
		UpdatedAt:  now,
	}
}

// GlobalDisplay keeps the last global total it managed to read. A failed
// refresh leaves the previous value on display.
type GlobalDisplay struct {
	reader TotalsReader
	logger *zap.Logger
	now    func() time.Time

	mu    sync.RWMutex
	stats GlobalStats
}

func NewGlobalDisplay(reader TotalsReader, logger *zap.Logger) *GlobalDisplay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GlobalDisplay{reader: reader, logger: logger, now: time.Now}
}

func (d *GlobalDisplay) Refresh(ctx context.Context) (GlobalStats, error) {
	total, err := d.reader.TotalTrees(ctx)
	if err != nil {
		d.logger.Warn("Error loading global stats", zap.Error(err))
		return d.Current(), err
	}

	stats := newGlobalStats(total, d.now())
	d.mu.Lock()
	d.stats = stats
	d.mu.Unlock()
	d.logger.Debug("Updated global stats", zap.Int64("total_trees", total))
	return stats, nil
}

func (d *GlobalDisplay) Current() GlobalStats {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.stats
}

// Run refreshes immediately and then on every tick until ctx is done.
// onUpdate sees the displayed stats after each attempt, failed or not.
func (d *GlobalDisplay) Run(ctx context.Context, interval time.Duration, onUpdate func(GlobalStats, error)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		stats, err := d.Refresh(ctx)
		if onUpdate != nil {
			onUpdate(stats, err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
