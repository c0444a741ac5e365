// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"

	"gorm.io/gorm"
)

// GormBackfillMetricsProvider implements BackfillMetricsProvider using GORM.
// It queries the transactions table directly for the backfill backlog.
type GormBackfillMetricsProvider struct {
	db *gorm.DB
}

// NewGormBackfillMetricsProvider creates a new GormBackfillMetricsProvider.
func NewGormBackfillMetricsProvider(db *gorm.DB) *GormBackfillMetricsProvider {
	return &GormBackfillMetricsProvider{db: db}
}

// CountPendingTransactions returns how many transactions still carry an
// embedded counterparty identifier without a canonical link.
func (p *GormBackfillMetricsProvider) CountPendingTransactions(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("transactions").
		Where("counterparty_tax_id IS NOT NULL AND counterparty_tax_id <> ''").
		Where("counterparty_entity_id IS NULL").
		Count(&count).Error

	return count, err
}
