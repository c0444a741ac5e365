package snapshot

import (
	"fmt"
	"time"

	"github.com/finbook/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Period identifies a calendar month
type Period struct {
	Year  int
	Month time.Month
}

// NewPeriod creates a period, validating the month
func NewPeriod(year int, month time.Month) (Period, error) {
	if year < 1900 || year > 2200 {
		return Period{}, shared.NewDomainError("INVALID_PERIOD", "Period year is out of range")
	}
	if month < time.January || month > time.December {
		return Period{}, shared.NewDomainError("INVALID_PERIOD", "Period month is out of range")
	}
	return Period{Year: year, Month: month}, nil
}

// PeriodOf returns the period containing the given time
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// Start returns the first instant of the period in UTC
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the first instant of the following period in UTC
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, 0)
}

// Previous returns the preceding calendar month
func (p Period) Previous() Period {
	start := p.Start().AddDate(0, -1, 0)
	return Period{Year: start.Year(), Month: start.Month()}
}

// String returns the period as YYYY-MM
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// BalanceSnapshot is a computed monthly balance, regenerated by the
// snapshot scheduler. It is derived data and can always be rebuilt from
// the transactions of its period.
type BalanceSnapshot struct {
	shared.BaseEntity
	Period           Period
	TotalIncome      decimal.Decimal
	TotalExpense     decimal.Decimal
	NetBalance       decimal.Decimal
	TransactionCount int64
	GeneratedAt      time.Time
}

// NewBalanceSnapshot creates a snapshot from period totals
func NewBalanceSnapshot(period Period, totalIncome, totalExpense decimal.Decimal, transactionCount int64) *BalanceSnapshot {
	return &BalanceSnapshot{
		BaseEntity:       shared.NewBaseEntity(),
		Period:           period,
		TotalIncome:      totalIncome,
		TotalExpense:     totalExpense,
		NetBalance:       totalIncome.Sub(totalExpense),
		TransactionCount: transactionCount,
		GeneratedAt:      time.Now(),
	}
}

// Refresh replaces the snapshot's totals with freshly computed ones
func (s *BalanceSnapshot) Refresh(totalIncome, totalExpense decimal.Decimal, transactionCount int64) {
	s.TotalIncome = totalIncome
	s.TotalExpense = totalExpense
	s.NetBalance = totalIncome.Sub(totalExpense)
	s.TransactionCount = transactionCount
	s.GeneratedAt = time.Now()
	s.UpdatedAt = time.Now()
}
