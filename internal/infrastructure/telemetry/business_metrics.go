// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics provides business metrics for the FinBook backend.
// It tracks ledger activity and counterparty backfill runs.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	transactionCreatedTotal *Counter
	transactionAmountTotal  *Counter
	backfillRunsTotal       *Counter
	backfillEntitiesTotal   *Counter
	backfillRelinkedTotal   *Counter

	// Histogram metrics
	backfillRunDuration *Histogram

	// Gauge metrics (point-in-time values)
	backfillPendingTransactions *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	// Data provider for periodic collection
	backfillProvider BackfillMetricsProvider
}

// BackfillMetricsProvider provides backfill backlog data for periodic metrics
// collection. This interface allows the telemetry layer to query ledger state
// without depending on the ledger domain directly.
type BackfillMetricsProvider interface {
	// CountPendingTransactions returns how many transactions still carry an
	// embedded counterparty identifier and no canonical link
	CountPendingTransactions(ctx context.Context) (int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter            metric.Meter
	Logger           *zap.Logger
	CollectInterval  time.Duration // Default: 5 minutes
	BackfillProvider BackfillMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:            cfg.Meter,
		logger:           logger,
		stopChan:         make(chan struct{}),
		backfillProvider: cfg.BackfillProvider,
	}

	// Initialize counter metrics
	var err error

	// Ledger metrics
	bm.transactionCreatedTotal, err = NewCounter(
		cfg.Meter,
		"finbook_transaction_created_total",
		"Total number of ledger transactions created",
		"{transactions}",
	)
	if err != nil {
		return nil, err
	}

	bm.transactionAmountTotal, err = NewCounter(
		cfg.Meter,
		"finbook_transaction_amount_total",
		"Total transaction amount in centavos",
		"{centavos}",
	)
	if err != nil {
		return nil, err
	}

	// Backfill metrics
	bm.backfillRunsTotal, err = NewCounter(
		cfg.Meter,
		"finbook_backfill_runs_total",
		"Total number of counterparty backfill runs",
		"{runs}",
	)
	if err != nil {
		return nil, err
	}

	bm.backfillEntitiesTotal, err = NewCounter(
		cfg.Meter,
		"finbook_backfill_entities_total",
		"Canonical entities touched by backfill runs, by kind and outcome",
		"{entities}",
	)
	if err != nil {
		return nil, err
	}

	bm.backfillRelinkedTotal, err = NewCounter(
		cfg.Meter,
		"finbook_backfill_transactions_relinked_total",
		"Transactions relinked to a canonical counterparty by backfill runs",
		"{transactions}",
	)
	if err != nil {
		return nil, err
	}

	bm.backfillRunDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "finbook_backfill_run_duration_seconds",
		Description: "Duration of counterparty backfill runs",
		Unit:        "s",
		Boundaries:  []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
	})
	if err != nil {
		return nil, err
	}

	// Backlog gauge
	bm.backfillPendingTransactions, err = NewGauge(
		cfg.Meter,
		"finbook_backfill_pending_transactions",
		"Transactions still carrying an embedded counterparty identifier",
		"{transactions}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Ledger Metrics
// =============================================================================

// RecordTransactionCreated records a ledger transaction creation event.
// This should be called from the application layer when a transaction is created.
func (bm *BusinessMetrics) RecordTransactionCreated(ctx context.Context, transactionType string, amount decimal.Decimal) {
	bm.transactionCreatedTotal.Inc(ctx,
		AttrTransactionType.String(transactionType),
	)

	// Convert to centavos (multiply by 100)
	amountCentavos := amount.Mul(decimal.NewFromInt(100)).IntPart()
	bm.transactionAmountTotal.Add(ctx, amountCentavos,
		AttrTransactionType.String(transactionType),
	)
}

// =============================================================================
// Backfill Metrics
// =============================================================================

// RunStatus represents the outcome of a backfill run for metrics labeling.
type RunStatus string

const (
	RunStatusSuccess RunStatus = "success"
	RunStatusFailed  RunStatus = "failed"
)

// RecordBackfillRun records a completed (or failed) backfill run.
func (bm *BusinessMetrics) RecordBackfillRun(ctx context.Context, dryRun bool, duration time.Duration, status RunStatus) {
	bm.backfillRunsTotal.Inc(ctx,
		AttrDryRun.Bool(dryRun),
		AttrRunStatus.String(string(status)),
	)
	bm.backfillRunDuration.RecordDuration(ctx, duration,
		AttrDryRun.Bool(dryRun),
		AttrRunStatus.String(string(status)),
	)
}

// RecordBackfillEntities records how many canonical entities of one kind a
// run created and how many it found already existing.
func (bm *BusinessMetrics) RecordBackfillEntities(ctx context.Context, kind string, created, existing int) {
	if created > 0 {
		bm.backfillEntitiesTotal.Add(ctx, int64(created),
			AttrEntityKind.String(kind),
			AttrEntityOutcome.String("created"),
		)
	}
	if existing > 0 {
		bm.backfillEntitiesTotal.Add(ctx, int64(existing),
			AttrEntityKind.String(kind),
			AttrEntityOutcome.String("existing"),
		)
	}
}

// RecordBackfillRelinked records how many transactions a run relinked.
func (bm *BusinessMetrics) RecordBackfillRelinked(ctx context.Context, count int) {
	if count > 0 {
		bm.backfillRelinkedTotal.Add(ctx, int64(count))
	}
}

// RecordBackfillPending records the current backfill backlog size.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordBackfillPending(ctx context.Context, count int64) {
	bm.backfillPendingTransactions.Record(ctx, count)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// StartPeriodicCollection starts periodic collection of gauge metrics.
// It collects the backfill backlog gauge every interval (default: 5 minutes).
// This is non-blocking - use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go bm.runPeriodicCollection(ctx, interval)
	})
}

// runPeriodicCollection runs the periodic collection loop.
func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	bm.collectBackfillMetrics(ctx)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectBackfillMetrics(ctx)
		}
	}
}

// collectBackfillMetrics collects the backfill backlog gauge.
func (bm *BusinessMetrics) collectBackfillMetrics(ctx context.Context) {
	if bm.backfillProvider == nil {
		bm.logger.Debug("No backfill provider configured, skipping backlog metrics collection")
		return
	}

	pending, err := bm.backfillProvider.CountPendingTransactions(ctx)
	if err != nil {
		bm.logger.Warn("Failed to count pending backfill transactions", zap.Error(err))
		return
	}

	bm.RecordBackfillPending(ctx, pending)
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

// =============================================================================
// Attribute Key Constants
// =============================================================================

// Business metrics attribute keys not already defined in metrics.go
var (
	AttrEntityKind    = attribute.Key("entity_kind")
	AttrEntityOutcome = attribute.Key("entity_outcome")
	AttrDryRun        = attribute.Key("dry_run")
	AttrRunStatus     = attribute.Key("run_status")
)
