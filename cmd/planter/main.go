package main

import (
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type cliOptions struct {
	apiBase string
	dataDir string
	verbose bool
	logger  *zap.Logger
	now     func() time.Time
	rng     *rand.Rand
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	return buildRootCmd(&cliOptions{now: time.Now})
}

func buildRootCmd(opts *cliOptions) *cobra.Command {
	root := &cobra.Command{
		Use:          "planter",
		Short:        "Click to plant trees and follow the global total",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config := zap.NewProductionConfig()
			config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
			if opts.verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			logger, err := config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			opts.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&opts.apiBase, "api", envOr("API_BASE_URL", "http://localhost:3000/api"), "counter service API base URL")
	root.PersistentFlags().StringVar(&opts.dataDir, "data", envOr("PLANTER_DATA", defaultDataDir()), "directory holding local state")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newClickCmd(opts),
		newStatusCmd(opts),
		newWatchCmd(opts),
		newGardenCmd(opts),
		newLeaderboardCmd(opts),
	)
	return root
}

func newClickCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "click [count]",
		Short: "Record clicks; every 50 plants a tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			count := 1
			if len(args) == 1 {
				parsed, err := strconv.Atoi(args[0])
				if err != nil || parsed < 1 {
					return fmt.Errorf("count must be a positive integer, got %q", args[0])
				}
				count = parsed
			}

			store, err := openLevelStore(opts.dataDir)
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			acc := NewAccumulator(store, newAPIClient(opts.apiBase, nil), opts.logger)
			acc.OnNotified(func(total int64, err error) {
				if err == nil {
					fmt.Fprintf(out, "Global total: %d trees\n", total)
				}
			})
			// Notifications still in flight finish before the store closes.
			defer acc.Wait()

			var last ClickResult
			for i := 0; i < count; i++ {
				result, err := acc.RecordClick(cmd.Context())
				if err != nil {
					return err
				}
				if result.Planted {
					fmt.Fprintln(out, renderClick(result))
				}
				last = result
			}
			if !last.Planted {
				fmt.Fprintln(out, renderClick(last))
			}
			return nil
		},
	}
}

func newStatusCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show local progress and the global total",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openLevelStore(opts.dataDir)
			if err != nil {
				return err
			}
			defer store.Close()

			local := NewAccumulator(store, nil, opts.logger).State()
			display := NewGlobalDisplay(newAPIClient(opts.apiBase, nil), opts.logger)
			global, globalErr := display.Refresh(cmd.Context())
			fmt.Fprint(cmd.OutOrStdout(), renderStatus(local, global, globalErr))
			return nil
		},
	}
}

func newWatchCmd(opts *cliOptions) *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll the global total until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval <= 0 {
				return fmt.Errorf("interval must be positive")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			display := NewGlobalDisplay(newAPIClient(opts.apiBase, nil), opts.logger)
			display.Run(ctx, interval, func(stats GlobalStats, err error) {
				if ctx.Err() != nil {
					return
				}
				fmt.Fprint(out, renderGlobal(stats, err))
			})
			return nil
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 5*time.Second, "polling interval")
	return cmd
}

func newGardenCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "garden",
		Short: "Show the virtual garden, planting and growing trees as needed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openLevelStore(opts.dataDir)
			if err != nil {
				return err
			}
			defer store.Close()

			now := opts.now()
			userTrees := readCount(store, keyTrees)
			garden := loadGarden(store, opts.rng)
			added := garden.Sync(userTrees, now)
			grown := garden.Grow(now)
			if added > 0 || grown > 0 {
				if err := garden.save(store); err != nil {
					return err
				}
			}
			opts.logger.Debug("Garden synced", zap.Int("added", added), zap.Int("grown", grown))

			fmt.Fprintln(cmd.OutOrStdout(), renderGarden(garden, userTrees))
			return nil
		},
	}
}

func newLeaderboardCmd(opts *cliOptions) *cobra.Command {
	var periodFlag string
	var limit int
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show a demo leaderboard with your local tree count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			period, err := parsePeriod(periodFlag)
			if err != nil {
				return err
			}
			store, err := openLevelStore(opts.dataDir)
			if err != nil {
				return err
			}
			defer store.Close()

			rng := opts.rng
			if rng == nil {
				rng = rand.New(rand.NewPCG(uint64(opts.now().UnixNano()), 1))
			}
			board := newMockLeaderboard(rng, opts.now(), readCount(store, keyTrees))
			fmt.Fprint(cmd.OutOrStdout(), renderLeaderboard(board.Entries(period, limit), board.Summary(), period))
			return nil
		},
	}
	cmd.Flags().StringVar(&periodFlag, "period", string(PeriodAll), "all, month or week")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum rows to show (0 for all)")
	return cmd
}

func envOr(key string, fallback string) string {
	if raw := strings.TrimSpace(os.Getenv(key)); raw != "" {
		return raw
	}
	return fallback
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "planter")
	}
	return ".planter"
}
