package cli

import (
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"rras-datagen/internal/classification"
)

// ClassifyCommand creates the classify command. It needs no configuration.
func ClassifyCommand() *cobra.Command {
	var pd float64

	cmd := &cobra.Command{
		Use:   "classify DAYS_PAST_DUE...",
		Short: "Show asset class, IFRS 9 stage, NPL flag and risk weight for days past due",
		Example: `  rras-datagen classify 0 45 95 200
  rras-datagen classify --pd 0.2 10`,
		Args: cobra.MinimumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			days := make([]int, 0, len(args))
			for _, arg := range args {
				d, err := strconv.Atoi(arg)
				if err != nil {
					return fmt.Errorf("invalid days past due %q: %w", arg, err)
				}
				days = append(days, d)
			}
			// --seed is inherited from the root; configuration is never loaded here
			seed, _ := cmd.Flags().GetInt64("seed")
			if seed == 0 {
				seed = 1
			}
			return runClassify(cmd.OutOrStdout(), days, pd, rand.New(rand.NewSource(seed)))
		},
	}

	cmd.Flags().Float64Var(&pd, "pd", 0.05, "Borrower probability of default used for the risk weight")
	return cmd
}

func runClassify(out io.Writer, days []int, pd float64, rng classification.Rand) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DPD\tASSET CLASS\tSTAGE\tNPL\tRISK WEIGHT")
	for _, d := range days {
		c := classification.Classify(d)
		rw := classification.RiskWeight(c.DaysPastDue, pd, rng)
		fmt.Fprintf(w, "%d\t%s\t%d\t%t\t%.2f\n", c.DaysPastDue, c.AssetClass, c.Stage, c.NPL, rw)
	}
	return w.Flush()
}
