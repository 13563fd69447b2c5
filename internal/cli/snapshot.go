package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"rras-datagen/internal/datastore"
	"rras-datagen/internal/simulation"
	"rras-datagen/internal/snapshot"
)

// SnapshotCommand creates the snapshot command
func SnapshotCommand(a *app) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Deliver only the capital and liquidity snapshot for the reference date",
		Long: `Deliver the capital stack and liquidity positions without generating customers.
Running it twice for the same date is safe: the database sink skips rows that
already exist and reports them as duplicates.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("mode") {
				a.cfg.Simulation.SnapshotMode = mode
			}
			return runSnapshot(cmd.Context(), a, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "fixed", "Snapshot mode: fixed or random (overrides SIM_SNAPSHOT_MODE)")
	return cmd
}

func runSnapshot(ctx context.Context, a *app, out io.Writer) error {
	if err := a.cfg.Validate(); err != nil {
		return err
	}
	m, err := snapshot.ParseMode(a.cfg.Simulation.SnapshotMode)
	if err != nil {
		return err
	}
	asOf, err := a.referenceDate()
	if err != nil {
		return err
	}
	snap, err := snapshot.Build(a.rng(), asOf, m)
	if err != nil {
		return err
	}

	s, err := datastore.New(ctx, a.cfg.DataStore())
	if err != nil {
		return fmt.Errorf("failed to initialize sink: %w", err)
	}
	defer s.Close()
	checkAPI(ctx, a.logger, s)

	// a runner with no generator only ever pushes the snapshot
	runner := simulation.NewRunner(nil, s, nil, a.cfg.Runner(), simulation.WithLogger(a.logger))
	runner.PushSnapshot(ctx, snap)
	printSummary(out, runner.Summary())
	return ctx.Err()
}
