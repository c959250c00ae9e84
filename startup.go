package main

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// ensureCounter creates the singleton row when it is missing. A failure is
// logged and swallowed: the service keeps serving and requests report the
// store error until an operator fixes the backend.
func ensureCounter(ctx context.Context, store CounterStore, cfg Config, logger *zap.Logger) bool {
	logger.Info("Initializing counter", zap.String("backend", cfg.StoreBackend), zap.String("table", cfg.CounterTable))

	created, err := store.EnsureCounter(ctx)
	if err != nil {
		fields := []zap.Field{zap.Error(err)}
		if cfg.StoreBackend == BackendREST && isRESTStatus(err, http.StatusNotFound) {
			fields = append(fields, zap.String("hint", "create the table and increment function with --print-schema"))
		}
		logger.Error("Failed to create counter row", fields...)
		return false
	}
	if created {
		logger.Info("Counter row created", zap.Int("id", counterRowID))
	} else {
		logger.Info("Counter row already present", zap.Int("id", counterRowID))
	}

	if _, err := store.Total(ctx); err != nil {
		logger.Warn("Counter row not readable after initialization", zap.Error(err))
		return false
	}
	return true
}

func logEndpoints(logger *zap.Logger, cfg Config) {
	target := cfg.StoreBackend
	switch cfg.StoreBackend {
	case BackendREST:
		target = cfg.SupabaseURL
	case BackendSQLite:
		target = cfg.SQLitePath
	case BackendPostgres:
		target = redactURL(cfg.DatabaseURL)
	}
	logger.Info("Store connected", zap.String("backend", cfg.StoreBackend), zap.String("target", target))
	logger.Info("Available endpoints",
		zap.Strings("routes", []string{
			"GET  /api/total-trees",
			"POST /api/add-tree",
			"GET  /api/health",
			"GET  /metrics",
		}))
}

func redactURL(raw string) string {
	at := strings.LastIndex(raw, "@")
	scheme := strings.Index(raw, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return raw
	}
	return raw[:scheme+3] + "***" + raw[at:]
}
