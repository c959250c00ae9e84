package main

import (
	"context"
	"errors"
	"fmt"
)

// counterRowID is the fixed key of the singleton row holding the global count.
const counterRowID = 1

// ErrCounterMissing is returned when the singleton row does not exist.
var ErrCounterMissing = errors.New("counter row not found")

// CounterStore persists the global tree counter.
//
// Increment must be a single atomic operation at the storage layer. Two
// overlapping increments always add two.
type CounterStore interface {
	Total(ctx context.Context) (int64, error)
	Increment(ctx context.Context) (int64, error)
	// EnsureCounter creates the singleton row with count zero when absent
	// and reports whether it did.
	EnsureCounter(ctx context.Context) (bool, error)
	Ping(ctx context.Context) error
	Close() error
}

func openStore(ctx context.Context, cfg Config) (CounterStore, error) {
	switch cfg.StoreBackend {
	case BackendPostgres:
		return openPostgresStore(ctx, cfg.DatabaseURL, cfg.CounterTable)
	case BackendSQLite:
		return openSQLiteStore(ctx, cfg.SQLitePath, cfg.CounterTable)
	case BackendREST:
		return newRESTStore(cfg.SupabaseURL, cfg.SupabaseKey, cfg.CounterTable, nil), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
