package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"rras-datagen/internal/metrics"
	"rras-datagen/internal/simulation"
	"rras-datagen/internal/status"
)

// SimulateCommand creates the simulate command
func SimulateCommand(a *app) *cobra.Command {
	var (
		duration    time.Duration
		rate        float64
		interval    time.Duration
		batchSize   int
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Push batches continuously until the duration elapses or interrupted",
		Long: `Every interval, generate a batch of customers with their accounts, loans and
off-balance-sheet items, push them, then push a randomized capital and
liquidity snapshot. Failed pushes are logged and counted; connectivity
failures pause for SIM_BACKOFF before the run continues.

Stops cleanly on SIGINT/SIGTERM or when --duration elapses.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("duration") {
				a.cfg.Simulation.Duration = duration
			}
			if flags.Changed("rate") {
				a.cfg.Simulation.Rate = rate
			}
			if flags.Changed("interval") {
				a.cfg.Simulation.Interval = interval
			}
			if flags.Changed("batch-size") {
				a.cfg.Simulation.BatchSize = batchSize
			}
			if flags.Changed("metrics-addr") {
				a.cfg.MetricsAddr = metricsAddr
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runSimulate(ctx, a, cmd.OutOrStdout())
		},
	}

	cmd.Flags().DurationVar(&duration, "duration", 0, "Stop after this long; 0 runs until interrupted (overrides SIM_DURATION)")
	cmd.Flags().Float64Var(&rate, "rate", 0, "Customers per second; overrides --interval when set (overrides SIM_RATE)")
	cmd.Flags().DurationVar(&interval, "interval", 5*time.Second, "Pause between batches (overrides SIM_INTERVAL)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 5, "Customers per batch (overrides SIM_BATCH_SIZE)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve /healthz, /metrics and /stats on this address (overrides METRICS_ADDR)")
	return cmd
}

func runSimulate(ctx context.Context, a *app, out io.Writer) error {
	collector := metrics.NewCollector()
	runner, s, err := a.newRunner(ctx, simulation.WithMetrics(collector))
	if err != nil {
		return err
	}
	defer s.Close()

	if addr := a.cfg.MetricsAddr; addr != "" {
		srv := status.NewServer(addr, status.NewRouter(collector.Handler(), func() any {
			return runner.Summary()
		}), a.logger)
		srv.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	sum, err := runner.Run(ctx)
	printSummary(out, sum)
	return err
}
