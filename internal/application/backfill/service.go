package backfill

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/finbook/backend/internal/domain/shared"
	"github.com/finbook/backend/internal/domain/taxdoc"
	"github.com/finbook/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// runLockKey guards against concurrent backfill invocations across processes.
const runLockKey = "backfill:run-lock"

// ErrRunInProgress is returned when another backfill run holds the run lock.
var ErrRunInProgress = shared.NewDomainError("BACKFILL_RUN_IN_PROGRESS", "Another backfill run is already in progress")

// BucketStats counts resolver outcomes for one entity kind.
type BucketStats struct {
	Created             int `json:"created"`
	Existing            int `json:"existing"`
	TransactionsUpdated int `json:"transactions_updated"`
}

// add accumulates one resolver outcome. A resolver's skip means the
// canonical record already existed.
func (b *BucketStats) add(outcome Outcome) {
	b.Created += outcome.Created
	b.Existing += outcome.Skipped
	b.TransactionsUpdated += outcome.Updated
}

// RunStats aggregates the counters of one backfill run.
type RunStats struct {
	DryRun               bool          `json:"dry_run"`
	TransactionsAnalyzed int           `json:"transactions_analyzed"`
	TransactionsSkipped  int           `json:"transactions_skipped"`
	Companies            BucketStats   `json:"companies"`
	Persons              BucketStats   `json:"persons"`
	AnonymousPersons     BucketStats   `json:"anonymous_persons"`
	StartedAt            time.Time     `json:"started_at"`
	Duration             time.Duration `json:"duration"`
}

// RunResult is what a backfill run returns: counters for every run, plus the
// itemized report when the run was a dry run.
type RunResult struct {
	Stats  *RunStats     `json:"stats"`
	Report *DryRunReport `json:"report,omitempty"`
}

// Service orchestrates the counterparty backfill: it scans transactions that
// still embed a raw counterparty identifier, classifies each identifier and
// dispatches it to the matching resolver inside one database transaction.
// A real run is all-or-nothing; a dry run makes identical decisions without
// writing and returns an itemized report.
type Service struct {
	scope           TransactionScope
	classifier      *taxdoc.Classifier
	validator       taxdoc.Validator
	backfiller      *Backfiller
	companies       *CompanyResolver
	persons         *PersonResolver
	anonymous       *AnonymousPersonResolver
	runLock         shared.RunLockStore
	runLockCfg      shared.RunLockConfig
	businessMetrics *telemetry.BusinessMetrics
	logger          *zap.Logger
}

// NewService creates a new backfill Service. The run lock store may be nil,
// in which case concurrent invocations are not guarded against.
func NewService(
	scope TransactionScope,
	validator taxdoc.Validator,
	runLock shared.RunLockStore,
	runLockCfg shared.RunLockConfig,
	logger *zap.Logger,
) *Service {
	backfiller := NewBackfiller(logger)
	return &Service{
		scope:      scope,
		classifier: taxdoc.NewClassifier(validator),
		validator:  validator,
		backfiller: backfiller,
		companies:  NewCompanyResolver(backfiller, logger),
		persons:    NewPersonResolver(validator, backfiller, logger),
		anonymous:  NewAnonymousPersonResolver(backfiller, logger),
		runLock:    runLock,
		runLockCfg: runLockCfg,
		logger:     logger,
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *Service) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Run executes the backfill over every transaction that still carries an
// embedded counterparty identifier. In dry-run mode the run makes the same
// decisions without writing anything and additionally returns an itemized
// report. If a dry run aborts, the returned result still carries the report
// assembled up to the failure, so the caller can inspect what would have
// failed; an aborted real run returns no result.
func (s *Service) Run(ctx context.Context, dryRun bool) (*RunResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "backfill", "run")
	defer span.End()
	telemetry.SetAttributes(span, "dry_run", dryRun)

	if s.runLock != nil && s.runLockCfg.Enabled {
		acquired, err := s.runLock.Acquire(ctx, runLockKey, s.runLockCfg.TTL)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if !acquired {
			telemetry.RecordError(span, ErrRunInProgress)
			return nil, ErrRunInProgress
		}
		defer func() {
			if err := s.runLock.Release(ctx, runLockKey); err != nil {
				s.logger.Warn("Failed to release backfill run lock", zap.Error(err))
			}
		}()
	}

	start := time.Now()
	stats := &RunStats{DryRun: dryRun, StartedAt: start}
	run := NewRunState(dryRun)

	labels := telemetry.OperationLabels("backfill_run", map[string]string{
		telemetry.ProfilingLabelDryRun: strconv.FormatBool(dryRun),
	})

	var err error
	telemetry.WithProfilingLabels(ctx, labels, func(c context.Context) {
		err = s.scope.Execute(c, func(repos TransactionalRepositories) error {
			return s.process(c, run, stats, repos)
		})
	})

	stats.Duration = time.Since(start)
	s.recordMetrics(ctx, stats, err)
	telemetry.SetAttributes(span,
		"transactions_analyzed", stats.TransactionsAnalyzed,
		"transactions_skipped", stats.TransactionsSkipped,
		"entities_created", stats.Companies.Created+stats.Persons.Created+stats.AnonymousPersons.Created,
		"transactions_relinked", stats.Companies.TransactionsUpdated+stats.Persons.TransactionsUpdated+stats.AnonymousPersons.TransactionsUpdated,
	)

	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Counterparty backfill aborted, no partial writes survive",
			zap.Bool("dry_run", dryRun),
			zap.Error(err),
		)
		if dryRun {
			report := run.Recorder().BuildReport(stats.TransactionsAnalyzed, run.ProcessedCount())
			return &RunResult{Stats: stats, Report: report}, err
		}
		return nil, err
	}
	telemetry.SetOK(span)

	s.logger.Info("Counterparty backfill finished",
		zap.Bool("dry_run", dryRun),
		zap.Int("transactions_analyzed", stats.TransactionsAnalyzed),
		zap.Int("transactions_skipped", stats.TransactionsSkipped),
		zap.Int("companies_created", stats.Companies.Created),
		zap.Int("persons_created", stats.Persons.Created),
		zap.Int("anonymous_persons_created", stats.AnonymousPersons.Created),
		zap.Duration("duration", stats.Duration),
	)

	result := &RunResult{Stats: stats}
	if dryRun {
		result.Report = run.Recorder().BuildReport(stats.TransactionsAnalyzed, run.ProcessedCount())
	}
	return result, nil
}

// process iterates the candidate transactions sequentially. Sequential
// processing is intentional: the run-scoped dedup set requires each
// transaction to be fully resolved before the next one starts.
func (s *Service) process(ctx context.Context, run *RunState, stats *RunStats, repos TransactionalRepositories) error {
	candidates, err := repos.TransactionRepo().FindWithEmbeddedCounterparty(ctx)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		s.logger.Info("No transactions with embedded counterparty data found")
		return nil
	}

	s.logger.Info("Starting counterparty backfill",
		zap.Int("candidates", len(candidates)),
		zap.Bool("dry_run", run.DryRun),
	)

	for i := range candidates {
		transaction := &candidates[i]
		stats.TransactionsAnalyzed++

		rawID := strings.TrimSpace(transaction.Counterparty.TaxID)
		if rawID == "" {
			stats.TransactionsSkipped++
			continue
		}
		if run.AlreadyProcessed(rawID) {
			s.logger.Debug("Document already handled in this run",
				zap.String("document", rawID),
			)
			stats.TransactionsSkipped++
			continue
		}

		classification := s.classifier.Classify(rawID)
		switch classification.Kind {
		case taxdoc.KindAnonymizedCPF:
			outcome, err := s.anonymous.Process(ctx, transaction, run, repos)
			if err != nil {
				return err
			}
			stats.AnonymousPersons.add(outcome)
		case taxdoc.KindCNPJ:
			outcome, err := s.companies.Process(ctx, transaction, run, repos)
			if err != nil {
				return err
			}
			stats.Companies.add(outcome)
		case taxdoc.KindCPF:
			outcome, err := s.persons.Process(ctx, transaction, run, repos)
			if err != nil {
				return err
			}
			stats.Persons.add(outcome)
		case taxdoc.KindInvalid:
			s.logger.Warn("Skipping transaction with unclassifiable document",
				zap.String("transaction_id", transaction.ID.String()),
				zap.String("document", rawID),
			)
			stats.TransactionsSkipped++
		default:
			// The kind enum is closed; a new kind must be wired to a
			// resolver here, not silently dropped.
			return shared.NewDomainError("UNKNOWN_DOCUMENT_KIND",
				fmt.Sprintf("No resolver for document kind %q", classification.Kind))
		}
	}

	return nil
}

// recordMetrics publishes run counters. Entity and relink counters are only
// published for successful real runs; rolled-back and dry runs wrote nothing.
func (s *Service) recordMetrics(ctx context.Context, stats *RunStats, runErr error) {
	if s.businessMetrics == nil {
		return
	}

	status := telemetry.RunStatusSuccess
	if runErr != nil {
		status = telemetry.RunStatusFailed
	}
	s.businessMetrics.RecordBackfillRun(ctx, stats.DryRun, stats.Duration, status)

	if stats.DryRun || runErr != nil {
		return
	}
	s.businessMetrics.RecordBackfillEntities(ctx, EntityKindCompany, stats.Companies.Created, stats.Companies.Existing)
	s.businessMetrics.RecordBackfillEntities(ctx, EntityKindPerson, stats.Persons.Created, stats.Persons.Existing)
	s.businessMetrics.RecordBackfillEntities(ctx, EntityKindAnonymousPerson, stats.AnonymousPersons.Created, stats.AnonymousPersons.Existing)
	s.businessMetrics.RecordBackfillRelinked(ctx,
		stats.Companies.TransactionsUpdated+stats.Persons.TransactionsUpdated+stats.AnonymousPersons.TransactionsUpdated)
}
