package persistence

import (
	"context"
	"errors"

	"github.com/finbook/backend/internal/domain/shared"
	"github.com/finbook/backend/internal/domain/snapshot"
	"github.com/finbook/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBalanceSnapshotRepository implements snapshot.Repository using GORM
type GormBalanceSnapshotRepository struct {
	db *gorm.DB
}

// NewGormBalanceSnapshotRepository creates a new GormBalanceSnapshotRepository
func NewGormBalanceSnapshotRepository(db *gorm.DB) *GormBalanceSnapshotRepository {
	return &GormBalanceSnapshotRepository{db: db}
}

// FindByPeriod finds the snapshot for a period
func (r *GormBalanceSnapshotRepository) FindByPeriod(ctx context.Context, period snapshot.Period) (*snapshot.BalanceSnapshot, error) {
	var model models.BalanceSnapshotModel
	if err := r.db.WithContext(ctx).
		Where("period_year = ? AND period_month = ?", period.Year, int(period.Month)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindRange finds snapshots for all periods between from and to inclusive,
// ordered by period ascending. Periods compare as year*100+month keys so a
// range can span year boundaries in a single predicate.
func (r *GormBalanceSnapshotRepository) FindRange(ctx context.Context, from, to snapshot.Period) ([]snapshot.BalanceSnapshot, error) {
	fromKey := from.Year*100 + int(from.Month)
	toKey := to.Year*100 + int(to.Month)

	var snapshotModels []models.BalanceSnapshotModel
	if err := r.db.WithContext(ctx).
		Where("period_year * 100 + period_month BETWEEN ? AND ?", fromKey, toKey).
		Order("period_year ASC, period_month ASC").
		Find(&snapshotModels).Error; err != nil {
		return nil, err
	}

	snapshots := make([]snapshot.BalanceSnapshot, len(snapshotModels))
	for i, model := range snapshotModels {
		snapshots[i] = *model.ToDomain()
	}
	return snapshots, nil
}

// Save creates or replaces the snapshot for its period
func (r *GormBalanceSnapshotRepository) Save(ctx context.Context, snap *snapshot.BalanceSnapshot) error {
	model := models.BalanceSnapshotModelFromDomain(snap)

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "period_year"}, {Name: "period_month"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_income",
			"total_expense",
			"net_balance",
			"transaction_count",
			"generated_at",
			"updated_at",
		}),
	}).Create(model).Error
}

// Delete deletes the snapshot for a period
func (r *GormBalanceSnapshotRepository) Delete(ctx context.Context, period snapshot.Period) error {
	result := r.db.WithContext(ctx).
		Where("period_year = ? AND period_month = ?", period.Year, int(period.Month)).
		Delete(&models.BalanceSnapshotModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteOlderThan deletes all snapshots for periods before the given one and
// returns the number deleted
func (r *GormBalanceSnapshotRepository) DeleteOlderThan(ctx context.Context, before snapshot.Period) (int64, error) {
	beforeKey := before.Year*100 + int(before.Month)

	result := r.db.WithContext(ctx).
		Where("period_year * 100 + period_month < ?", beforeKey).
		Delete(&models.BalanceSnapshotModel{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Ensure GormBalanceSnapshotRepository implements snapshot.Repository
var _ snapshot.Repository = (*GormBalanceSnapshotRepository)(nil)
