package main

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const ClicksPerTree = 50

const defaultNotifyTimeout = 10 * time.Second

// TreeNotifier receives one call per locally planted tree.
type TreeNotifier interface {
	AddTree(ctx context.Context) (int64, error)
}

type ClickResult struct {
	Clicks          int64
	Trees           int64
	ClicksRemaining int64
	Planted         bool
}

// Accumulator turns clicks into trees. Local state is the source of truth:
// it is persisted before the remote counter hears about a new tree, and the
// notification is best-effort with no retry. A failed notification only
// means the global total undercounts.
type Accumulator struct {
	mu       sync.Mutex
	store    LocalStore
	notifier TreeNotifier
	logger   *zap.Logger
	clicks   int64
	trees    int64

	pending       sync.WaitGroup
	notifyTimeout time.Duration
	onNotified    func(total int64, err error)
}

func NewAccumulator(store LocalStore, notifier TreeNotifier, logger *zap.Logger) *Accumulator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Accumulator{
		store:         store,
		notifier:      notifier,
		logger:        logger,
		clicks:        readCount(store, keyClicks),
		trees:         readCount(store, keyTrees),
		notifyTimeout: defaultNotifyTimeout,
	}
}

// OnNotified registers a callback run after each remote notification.
func (a *Accumulator) OnNotified(fn func(total int64, err error)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onNotified = fn
}

// RecordClick counts one click. When the click completes a multiple of
// ClicksPerTree the tree is stored locally and the notifier is called in the
// background; ctx only scopes that call's values, not its lifetime.
func (a *Accumulator) RecordClick(ctx context.Context) (ClickResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	clicks := a.clicks + 1
	if err := writeCount(a.store, keyClicks, clicks); err != nil {
		return a.resultLocked(false), err
	}
	a.clicks = clicks

	trees := clicks / ClicksPerTree
	if trees <= a.trees {
		return a.resultLocked(false), nil
	}
	if err := writeCount(a.store, keyTrees, trees); err != nil {
		return a.resultLocked(false), err
	}
	a.trees = trees
	a.logger.Debug("Tree planted locally", zap.Int64("trees", trees), zap.Int64("clicks", clicks))

	a.notifyLocked(ctx)
	return a.resultLocked(true), nil
}

func (a *Accumulator) notifyLocked(ctx context.Context) {
	if a.notifier == nil {
		return
	}
	notifier := a.notifier
	callback := a.onNotified
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.notifyTimeout)

	a.pending.Add(1)
	go func() {
		defer a.pending.Done()
		defer cancel()

		total, err := notifier.AddTree(notifyCtx)
		if err != nil {
			a.logger.Warn("Failed to add tree to global counter", zap.Error(err))
		} else {
			a.logger.Info("Tree planted", zap.Int64("global_total", total))
		}
		if callback != nil {
			callback(total, err)
		}
	}()
}

func (a *Accumulator) resultLocked(planted bool) ClickResult {
	return ClickResult{
		Clicks:          a.clicks,
		Trees:           a.trees,
		ClicksRemaining: clicksRemaining(a.clicks),
		Planted:         planted,
	}
}

func (a *Accumulator) State() ClickResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.resultLocked(false)
}

// Wait blocks until every background notification has returned.
func (a *Accumulator) Wait() {
	a.pending.Wait()
}

// clicksRemaining is 50 right after a tree is planted, never 0.
func clicksRemaining(clicks int64) int64 {
	return ClicksPerTree - clicks%ClicksPerTree
}
