package snapshot

import (
	"context"
	"errors"
	"time"

	"github.com/finbook/backend/internal/domain/ledger"
	"github.com/finbook/backend/internal/domain/shared"
	"github.com/finbook/backend/internal/domain/snapshot"
	"go.uber.org/zap"
)

// BalanceSnapshotService computes and maintains monthly balance snapshots
type BalanceSnapshotService struct {
	snapshotRepo    snapshot.Repository
	transactionRepo ledger.TransactionRepository
	logger          *zap.Logger

	// Number of months to retain snapshots (default 36)
	retentionMonths int
}

// BalanceSnapshotServiceConfig contains configuration for BalanceSnapshotService
type BalanceSnapshotServiceConfig struct {
	RetentionMonths int
}

// DefaultBalanceSnapshotServiceConfig returns default configuration
func DefaultBalanceSnapshotServiceConfig() BalanceSnapshotServiceConfig {
	return BalanceSnapshotServiceConfig{
		RetentionMonths: 36,
	}
}

// NewBalanceSnapshotService creates a new BalanceSnapshotService
func NewBalanceSnapshotService(
	snapshotRepo snapshot.Repository,
	transactionRepo ledger.TransactionRepository,
	logger *zap.Logger,
	config BalanceSnapshotServiceConfig,
) *BalanceSnapshotService {
	if config.RetentionMonths <= 0 {
		config.RetentionMonths = 36
	}

	return &BalanceSnapshotService{
		snapshotRepo:    snapshotRepo,
		transactionRepo: transactionRepo,
		logger:          logger,
		retentionMonths: config.RetentionMonths,
	}
}

// GenerateForPeriod computes the balance for a period and upserts its
// snapshot. Regenerating an existing period replaces its totals.
func (s *BalanceSnapshotService) GenerateForPeriod(ctx context.Context, period snapshot.Period) (*BalanceSnapshotResponse, error) {
	totals, err := s.transactionRepo.SumByPeriod(ctx, period.Start(), period.End())
	if err != nil {
		s.logger.Error("Failed to sum transactions for period",
			zap.String("period", period.String()),
			zap.Error(err))
		return nil, shared.NewDomainError("SNAPSHOT_FAILED", "Failed to compute period totals")
	}

	current, err := s.snapshotRepo.FindByPeriod(ctx, period)
	switch {
	case err == nil:
		current.Refresh(totals.Income, totals.Expense, totals.TransactionCount)
	case errors.Is(err, shared.ErrNotFound):
		current = snapshot.NewBalanceSnapshot(period, totals.Income, totals.Expense, totals.TransactionCount)
	default:
		return nil, err
	}

	if err := s.snapshotRepo.Save(ctx, current); err != nil {
		s.logger.Error("Failed to save balance snapshot",
			zap.String("period", period.String()),
			zap.Error(err))
		return nil, shared.NewDomainError("SAVE_FAILED", "Failed to save balance snapshot")
	}

	s.logger.Info("Balance snapshot generated",
		zap.String("period", period.String()),
		zap.String("net_balance", current.NetBalance.String()),
		zap.Int64("transaction_count", current.TransactionCount))

	response := ToBalanceSnapshotResponse(current)
	return &response, nil
}

// RefreshRecent regenerates the current and previous periods. The scheduler
// runs it daily; the previous month is included because entries for it keep
// arriving until its books are reconciled.
func (s *BalanceSnapshotService) RefreshRecent(ctx context.Context) ([]BalanceSnapshotResponse, error) {
	current := snapshot.PeriodOf(time.Now().UTC())
	periods := []snapshot.Period{current.Previous(), current}

	responses := make([]BalanceSnapshotResponse, 0, len(periods))
	for _, period := range periods {
		response, err := s.GenerateForPeriod(ctx, period)
		if err != nil {
			return nil, err
		}
		responses = append(responses, *response)
	}
	return responses, nil
}

// GetByPeriod returns the snapshot for a period
func (s *BalanceSnapshotService) GetByPeriod(ctx context.Context, period snapshot.Period) (*BalanceSnapshotResponse, error) {
	found, err := s.snapshotRepo.FindByPeriod(ctx, period)
	if err != nil {
		return nil, err
	}
	response := ToBalanceSnapshotResponse(found)
	return &response, nil
}

// ListRange returns snapshots for all periods between from and to inclusive
func (s *BalanceSnapshotService) ListRange(ctx context.Context, from, to snapshot.Period) ([]BalanceSnapshotResponse, error) {
	if from.Start().After(to.Start()) {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Range start must not be after range end")
	}

	snapshots, err := s.snapshotRepo.FindRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return ToBalanceSnapshotListResponses(snapshots), nil
}

// CleanupOld removes snapshots older than the retention window
func (s *BalanceSnapshotService) CleanupOld(ctx context.Context) (int64, error) {
	cutoff := snapshot.PeriodOf(time.Now().UTC().AddDate(0, -s.retentionMonths, 0))

	deleted, err := s.snapshotRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Error("Failed to cleanup old snapshots", zap.Error(err))
		return 0, shared.NewDomainError("CLEANUP_FAILED", "Failed to cleanup old snapshots")
	}

	if deleted > 0 {
		s.logger.Info("Old balance snapshots removed",
			zap.String("cutoff_period", cutoff.String()),
			zap.Int64("deleted_count", deleted))
	}

	return deleted, nil
}
