package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"rras-datagen/internal/generator"
	"rras-datagen/internal/snapshot"
)

type previewDoc struct {
	Policy    string             `json:"policy"`
	AsOf      string             `json:"as_of"`
	Customers []*generator.Graph `json:"customers"`
	Snapshot  *snapshot.Snapshot `json:"snapshot,omitempty"`
}

// PreviewCommand creates the preview command
func PreviewCommand(a *app) *cobra.Command {
	var (
		customers    int
		withSnapshot bool
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print generated records as JSON without delivering them",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(a, cmd.OutOrStdout(), customers, withSnapshot)
		},
	}

	cmd.Flags().IntVar(&customers, "customers", 3, "Number of customers to generate")
	cmd.Flags().BoolVar(&withSnapshot, "snapshot", false, "Include the regulatory snapshot")
	return cmd
}

func runPreview(a *app, out io.Writer, customers int, withSnapshot bool) error {
	policy, err := a.cfg.Policy()
	if err != nil {
		return err
	}
	asOf, err := a.referenceDate()
	if err != nil {
		return err
	}
	gen, err := generator.New(policy, generator.NewState(), asOf)
	if err != nil {
		return err
	}

	rng := a.rng()
	doc := previewDoc{Policy: policy.Name, AsOf: asOf.Format("2006-01-02")}
	for i := 0; i < customers; i++ {
		g, err := gen.Graph(rng)
		if err != nil {
			return fmt.Errorf("generating customer %d: %w", i+1, err)
		}
		doc.Customers = append(doc.Customers, g)
	}
	if withSnapshot {
		mode, err := snapshot.ParseMode(a.cfg.Simulation.SnapshotMode)
		if err != nil {
			return err
		}
		if doc.Snapshot, err = snapshot.Build(rng, asOf, mode); err != nil {
			return err
		}
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
