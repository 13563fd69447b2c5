package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"rras-datagen/internal/apiclient"
	"rras-datagen/internal/classification"
	"rras-datagen/internal/simulation"
	"rras-datagen/internal/sink"
)

// maskConnectionString hides the password of a URL or key=value
// connection string.
func maskConnectionString(connStr string) string {
	if u, err := url.Parse(connStr); err == nil && u.Scheme != "" {
		return u.Redacted()
	}

	fields := strings.Fields(connStr)
	for i, f := range fields {
		if strings.HasPrefix(strings.ToLower(f), "password=") {
			fields[i] = "password=***"
		}
	}
	return strings.Join(fields, " ")
}

// checkAPI warns when the reporting API does not answer its health check.
// The run goes ahead either way; pushes that fail are counted.
func checkAPI(ctx context.Context, logger *slog.Logger, s sink.Sink) bool {
	c, ok := s.(*apiclient.Client)
	if !ok {
		return true
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	h, err := c.Health(ctx)
	if err != nil {
		logger.Warn("API health check failed, continuing", "error", err)
		return false
	}
	logger.Info("API reachable", "status", h.Status, "version", h.Version)
	return true
}

func printSummary(out io.Writer, sum simulation.Summary) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Run %s (%d batches)\n", sum.RunID, sum.Batches)
	fmt.Fprintln(w, "KIND\tPUSHED\tDUPLICATE\tFAILED\tSKIPPED")
	for _, k := range sum.KindsSorted() {
		c := sum.Kinds[k]
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\n", k, c.Pushed, c.Duplicate, c.Failed, c.Skipped)
	}
	t := sum.Total()
	fmt.Fprintf(w, "total\t%d\t%d\t%d\t%d\n", t.Pushed, t.Duplicate, t.Failed, t.Skipped)

	if len(sum.AssetClasses) > 0 {
		classes := make([]classification.AssetClass, 0, len(sum.AssetClasses))
		for c := range sum.AssetClasses {
			classes = append(classes, c)
		}
		sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })
		fmt.Fprintln(w, "\nASSET CLASS\tLOANS")
		for _, c := range classes {
			fmt.Fprintf(w, "%s\t%d\n", c, sum.AssetClasses[c])
		}
		fmt.Fprintf(w, "NPL\t%d\n", sum.NPL)
	}
	_ = w.Flush()
}
