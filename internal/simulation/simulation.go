// Package simulation drives generation and delivery: a one-shot seed of the
// database and a continuous push loop.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"rras-datagen/internal/entities"
	"rras-datagen/internal/generator"
	"rras-datagen/internal/metrics"
	"rras-datagen/internal/sink"
	"rras-datagen/internal/snapshot"
)

// Config controls pacing of a run.
type Config struct {
	// Duration stops Run after it elapses. Zero runs until cancelled.
	Duration time.Duration
	// Interval is the pause between batches.
	Interval time.Duration
	// Rate, when positive, overrides Interval so that BatchSize customers
	// are generated per 1/Rate seconds.
	Rate      float64
	BatchSize int
	// Backoff is the pause after a transient sink failure.
	Backoff      time.Duration
	SnapshotMode snapshot.Mode
}

// BatchInterval is the effective pause between batches.
func (c Config) BatchInterval() time.Duration {
	if c.Rate > 0 {
		n := c.BatchSize
		if n < 1 {
			n = 1
		}
		return time.Duration(float64(n) / c.Rate * float64(time.Second))
	}
	return c.Interval
}

// Runner owns one run. It is not safe for concurrent use apart from Summary.
type Runner struct {
	gen     *generator.Generator
	sink    sink.Sink
	rng     *rand.Rand
	cfg     Config
	logger  *slog.Logger
	metrics *metrics.Collector
	now     func() time.Time

	mu      sync.Mutex
	summary Summary
}

// Option customizes a Runner.
type Option func(*Runner)

func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

func WithMetrics(m *metrics.Collector) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithClock replaces time.Now for snapshot dating.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

func NewRunner(gen *generator.Generator, s sink.Sink, rng *rand.Rand, cfg Config, opts ...Option) *Runner {
	r := &Runner{
		gen:    gen,
		sink:   s,
		rng:    rng,
		cfg:    cfg,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.summary = newSummary(uuid.NewString(), r.now())
	return r
}

// Summary returns a copy of the counts so far.
func (r *Runner) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.summary.clone()
}

// Seed generates customers graphs, delivers them, then delivers a snapshot
// for the generator's as-of date. Delivery failures are logged and counted;
// only generation errors and cancellation are returned.
func (r *Runner) Seed(ctx context.Context, customers int) (Summary, error) {
	r.logger.Info("seeding", "run_id", r.summary.RunID, "customers", customers, "sink", fmt.Sprintf("%T", r.sink))

	for i := 0; i < customers; i++ {
		if err := ctx.Err(); err != nil {
			return r.Summary(), err
		}
		g, err := r.gen.Graph(r.rng)
		if err != nil {
			return r.Summary(), fmt.Errorf("generating customer %d: %w", i+1, err)
		}
		r.PushGraph(ctx, g)
	}
	if err := ctx.Err(); err != nil {
		return r.Summary(), err
	}

	mode := r.cfg.SnapshotMode
	if mode == "" {
		mode = snapshot.ModeFixed
	}
	snap, err := snapshot.Build(r.rng, r.gen.AsOf(), mode)
	if err != nil {
		return r.Summary(), err
	}
	r.PushSnapshot(ctx, snap)
	r.incBatches()

	sum := r.Summary()
	total := sum.Total()
	r.logger.Info("seed complete", "run_id", sum.RunID, "pushed", total.Pushed, "failed", total.Failed,
		"duplicate", total.Duplicate, "skipped", total.Skipped)
	return sum, ctx.Err()
}

// Run pushes a batch and a random snapshot every interval until the
// configured duration elapses or ctx is cancelled. Both are normal stops and
// return nil.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	if r.cfg.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Duration)
		defer cancel()
	}
	batchSize := r.cfg.BatchSize
	if batchSize < 1 {
		batchSize = 1
	}
	interval := r.cfg.BatchInterval()
	r.logger.Info("simulation started", "run_id", r.summary.RunID, "batch_size", batchSize,
		"interval", interval.String(), "duration", r.cfg.Duration.String())

	for {
		if ctx.Err() != nil {
			return r.stopped()
		}
		for i := 0; i < batchSize && ctx.Err() == nil; i++ {
			g, err := r.gen.Graph(r.rng)
			if err != nil {
				return r.Summary(), fmt.Errorf("generating customer: %w", err)
			}
			r.PushGraph(ctx, g)
		}
		// a batch cut short by the deadline gets no snapshot and is not counted
		if ctx.Err() != nil {
			return r.stopped()
		}

		snap, err := snapshot.Build(r.rng, r.now(), snapshot.ModeRandom)
		if err != nil {
			return r.Summary(), err
		}
		r.PushSnapshot(ctx, snap)
		batches := r.incBatches()

		sum := r.Summary()
		total := sum.Total()
		r.logger.Info("batch pushed", "batch", batches, "pushed", total.Pushed, "failed", total.Failed)

		if !sleep(ctx, interval) {
			return r.stopped()
		}
	}
}

func (r *Runner) stopped() (Summary, error) {
	sum := r.Summary()
	total := sum.Total()
	r.logger.Info("simulation stopped", "run_id", sum.RunID, "batches", sum.Batches,
		"pushed", total.Pushed, "failed", total.Failed)
	return sum, nil
}

// PushGraph delivers a customer and everything beneath it in parent-first
// order, rewriting foreign keys to the keys the sink returned. Children of a
// record that was not delivered are skipped.
func (r *Runner) PushGraph(ctx context.Context, g *generator.Graph) {
	for _, l := range g.Loans {
		r.mu.Lock()
		r.summary.loan(&l.Loan)
		r.mu.Unlock()
		if r.metrics != nil {
			r.metrics.ObserveLoan(string(l.Loan.AssetClass), l.Loan.IsNPL)
		}
	}

	cust := *g.Customer
	res := r.put(ctx, &cust)
	if !res.OK() {
		r.skip(entities.KindAccount, len(g.Accounts))
		r.skip(entities.KindLoan, len(g.Loans))
		r.skip(entities.KindOffBalanceSheet, len(g.OffBalanceSheet))
		return
	}
	customerKey := res.Key

	for _, a := range g.Accounts {
		acct := *a
		acct.CustomerID = customerKey
		loans := g.LoansFor(a.ID)

		res := r.put(ctx, &acct)
		if !res.OK() {
			r.skip(entities.KindLoan, len(loans))
			continue
		}
		for _, l := range loans {
			rec := *l
			rec.Loan.AccountID = res.Key
			rec.Loan.CustomerID = customerKey
			rec.Borrower = &cust
			r.put(ctx, &rec)
		}
	}

	for _, item := range g.OffBalanceSheet {
		obs := *item
		obs.CustomerID = customerKey
		r.put(ctx, &obs)
	}
}

// PushSnapshot delivers every row of s the sink supports.
func (r *Runner) PushSnapshot(ctx context.Context, s *snapshot.Snapshot) {
	for _, c := range s.Capital {
		r.put(ctx, c)
	}
	for _, a := range s.Liquidity {
		r.put(ctx, a)
	}
	for _, cf := range s.Cashflows {
		r.put(ctx, cf)
	}
	r.logger.Debug("snapshot pushed", "as_of", s.AsOf.String(), "capital", len(s.Capital),
		"liquidity", len(s.Liquidity), "weighted_hqla", s.WeightedHQLA().StringFixed(2))
}

// put delivers one record. Kinds the sink has no mapping for are passed
// over and reported as delivered under their natural key so that children
// still flow. Records not attempted because ctx is done count as skipped.
func (r *Runner) put(ctx context.Context, rec entities.Record) sink.Result {
	kind := rec.RecordKind()
	if !r.sink.Supports(kind) {
		return sink.Result{Kind: kind, Key: sink.NaturalKey(rec)}
	}
	if err := ctx.Err(); err != nil {
		r.skip(kind, 1)
		return sink.Failed(kind, err)
	}

	start := time.Now()
	res := r.sink.Put(ctx, rec)
	took := time.Since(start)

	r.mu.Lock()
	r.summary.record(res)
	r.mu.Unlock()
	if r.metrics != nil {
		r.metrics.ObservePush(res, took)
	}

	switch {
	case res.OK():
		r.logger.Debug("record pushed", "kind", kind, "key", res.Key, "duplicate", res.Duplicate)
	case errors.Is(res.Err, context.Canceled), errors.Is(res.Err, context.DeadlineExceeded) && ctx.Err() != nil:
		r.logger.Debug("record abandoned", "kind", kind, "error", res.Err)
	default:
		r.logger.Warn("record failed", "kind", kind, "key", sink.NaturalKey(rec), "status", res.Status,
			"transient", res.Transient(), "error", res.Err)
		if res.Transient() {
			sleep(ctx, r.cfg.Backoff)
		}
	}
	return res
}

func (r *Runner) skip(kind entities.Kind, n int) {
	if n == 0 || !r.sink.Supports(kind) {
		return
	}
	r.mu.Lock()
	r.summary.skip(kind, n)
	r.mu.Unlock()
	if r.metrics != nil {
		for i := 0; i < n; i++ {
			r.metrics.ObserveSkip(string(kind))
		}
	}
}

func (r *Runner) incBatches() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summary.Batches++
	return r.summary.Batches
}

// sleep waits for d or until ctx is done, reporting whether the full
// duration elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
