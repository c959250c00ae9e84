package main

import (
	"context"
	"embed"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

//go:embed public/*
var content embed.FS

var publicFS = mustSubFS(content, "public")

func mustSubFS(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

/* ======================
   Request / Response Types
   ====================== */

type TotalTreesResponse struct {
	TotalTrees int64 `json:"total_trees"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

/* ======================
   main()
   ====================== */

func main() {
	printSchemaFlag := flag.Bool("print-schema", false, "print the SQL for the hosted counter table and exit")
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if *printSchemaFlag {
		if err := printSchema(os.Stdout, cfg.CounterTable); err != nil {
			os.Exit(1)
		}
		return
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg Config, logger *zap.Logger) error {
	if cfg.DevMode {
		logger.Warn("DEV MODE ENABLED")
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()
	logEndpoints(logger, cfg)

	initCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	if err := store.Ping(initCtx); err != nil {
		logger.Warn("Store not reachable yet", zap.Error(err))
	}
	ensureCounter(initCtx, store, cfg, logger)
	cancel()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	srv := newServer(cfg, store, logger, newMetrics(registry), publicFS)

	mux := http.NewServeMux()
	registerRoutes(mux, srv, registry)

	httpServer := &http.Server{
		Addr:              cfg.addr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	if cfg.TickInterval > 0 {
		group.Go(func() error {
			runTotalsTick(groupCtx, store, srv.metrics, logger, cfg.TickInterval)
			return nil
		})
	}
	group.Go(func() error {
		logger.Info("Listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		logger.Info("Shutting down")
		return httpServer.Shutdown(shutdownCtx)
	})
	return group.Wait()
}

/* ======================
   Routes
   ====================== */

func registerRoutes(mux *http.ServeMux, srv *Server, gatherer prometheus.Gatherer) {
	mux.HandleFunc("/", srv.serveIndex)
	mux.HandleFunc("/api/health", srv.withCORS(srv.healthHandler))
	mux.HandleFunc("/api/total-trees", srv.withCORS(srv.totalTreesHandler))
	mux.HandleFunc("/api/add-tree", srv.withCORS(srv.addTreeHandler))
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}
