package main

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// runTotalsTick re-reads the counter on every tick so the total_trees gauge
// follows increments made by other instances sharing the store.
func runTotalsTick(ctx context.Context, store CounterStore, metrics *Metrics, logger *zap.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		total, err := store.Total(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			metrics.observeStoreError("refresh")
			logger.Warn("Tick: failed to read total", zap.Error(err))
			continue
		}
		metrics.observeTotal(total)
		logger.Debug("Tick", zap.Int64("total_trees", total))
	}
}
