package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"rras-datagen/internal/datastore"
	"rras-datagen/internal/generator"
	"rras-datagen/internal/simulation"
	"rras-datagen/internal/sink"
)

// SeedCommand creates the seed command
func SeedCommand(a *app) *cobra.Command {
	var (
		customers    int
		snapshotMode string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate a batch of customers and the regulatory snapshot once",
		Long: `Generate customers with their accounts and loans, deliver them parent first,
then deliver the capital stack and liquidity assets for the reference date.

Records whose parent could not be delivered are skipped and counted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("customers") {
				a.cfg.Simulation.Customers = customers
			}
			if cmd.Flags().Changed("snapshot") {
				a.cfg.Simulation.SnapshotMode = snapshotMode
			}
			return runSeed(cmd.Context(), a, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&customers, "customers", 100, "Number of customers to generate (overrides SIM_CUSTOMERS)")
	cmd.Flags().StringVar(&snapshotMode, "snapshot", "fixed", "Snapshot mode: fixed or random (overrides SIM_SNAPSHOT_MODE)")
	return cmd
}

func runSeed(ctx context.Context, a *app, out io.Writer) error {
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	runner, s, err := a.newRunner(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	sum, err := runner.Seed(ctx, a.cfg.Simulation.Customers)
	printSummary(out, sum)
	return err
}

// newRunner opens the configured sink and wires a runner to it.
func (a *app) newRunner(ctx context.Context, opts ...simulation.Option) (*simulation.Runner, sink.Sink, error) {
	policy, err := a.cfg.Policy()
	if err != nil {
		return nil, nil, err
	}
	asOf, err := a.referenceDate()
	if err != nil {
		return nil, nil, err
	}
	gen, err := generator.New(policy, generator.NewState(), asOf)
	if err != nil {
		return nil, nil, err
	}

	dsCfg := a.cfg.DataStore()
	if dsCfg.Type == datastore.PostgreSQLStore {
		a.logger.Info("connecting to database", "dsn", maskConnectionString(dsCfg.Database.DSN()))
	}
	s, err := datastore.New(ctx, dsCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize sink: %w", err)
	}
	checkAPI(ctx, a.logger, s)

	opts = append([]simulation.Option{simulation.WithLogger(a.logger)}, opts...)
	return simulation.NewRunner(gen, s, a.rng(), a.cfg.Runner(), opts...), s, nil
}
