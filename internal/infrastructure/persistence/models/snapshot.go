package models

import (
	"time"

	"github.com/finbook/backend/internal/domain/shared"
	"github.com/finbook/backend/internal/domain/snapshot"
	"github.com/shopspring/decimal"
)

// BalanceSnapshotModel is the persistence model for monthly balance snapshots.
// The period is stored as year plus month with a composite unique index:
// Save replaces the existing row for a period instead of adding another.
type BalanceSnapshotModel struct {
	BaseModel
	PeriodYear       int             `gorm:"not null;uniqueIndex:idx_snapshot_period,priority:1"`
	PeriodMonth      int             `gorm:"not null;uniqueIndex:idx_snapshot_period,priority:2"`
	TotalIncome      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalExpense     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	NetBalance       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TransactionCount int64           `gorm:"not null;default:0"`
	GeneratedAt      time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (BalanceSnapshotModel) TableName() string {
	return "balance_snapshots"
}

// ToDomain converts the persistence model to a domain BalanceSnapshot entity.
func (m *BalanceSnapshotModel) ToDomain() *snapshot.BalanceSnapshot {
	return &snapshot.BalanceSnapshot{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Period: snapshot.Period{
			Year:  m.PeriodYear,
			Month: time.Month(m.PeriodMonth),
		},
		TotalIncome:      m.TotalIncome,
		TotalExpense:     m.TotalExpense,
		NetBalance:       m.NetBalance,
		TransactionCount: m.TransactionCount,
		GeneratedAt:      m.GeneratedAt,
	}
}

// FromDomain populates the persistence model from a domain BalanceSnapshot entity.
func (m *BalanceSnapshotModel) FromDomain(s *snapshot.BalanceSnapshot) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.PeriodYear = s.Period.Year
	m.PeriodMonth = int(s.Period.Month)
	m.TotalIncome = s.TotalIncome
	m.TotalExpense = s.TotalExpense
	m.NetBalance = s.NetBalance
	m.TransactionCount = s.TransactionCount
	m.GeneratedAt = s.GeneratedAt
}

// BalanceSnapshotModelFromDomain creates a new persistence model from a domain BalanceSnapshot entity.
func BalanceSnapshotModelFromDomain(s *snapshot.BalanceSnapshot) *BalanceSnapshotModel {
	m := &BalanceSnapshotModel{}
	m.FromDomain(s)
	return m
}
