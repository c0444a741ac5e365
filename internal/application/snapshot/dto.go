package snapshot

import (
	"time"

	"github.com/finbook/backend/internal/domain/snapshot"
	"github.com/shopspring/decimal"
)

// BalanceSnapshotResponse represents a monthly balance in API responses
type BalanceSnapshotResponse struct {
	Period           string          `json:"period"`
	Year             int             `json:"year"`
	Month            int             `json:"month"`
	TotalIncome      decimal.Decimal `json:"total_income"`
	TotalExpense     decimal.Decimal `json:"total_expense"`
	NetBalance       decimal.Decimal `json:"net_balance"`
	TransactionCount int64           `json:"transaction_count"`
	GeneratedAt      time.Time       `json:"generated_at"`
}

// ToBalanceSnapshotResponse converts a domain snapshot to a response DTO
func ToBalanceSnapshotResponse(s *snapshot.BalanceSnapshot) BalanceSnapshotResponse {
	return BalanceSnapshotResponse{
		Period:           s.Period.String(),
		Year:             s.Period.Year,
		Month:            int(s.Period.Month),
		TotalIncome:      s.TotalIncome,
		TotalExpense:     s.TotalExpense,
		NetBalance:       s.NetBalance,
		TransactionCount: s.TransactionCount,
		GeneratedAt:      s.GeneratedAt,
	}
}

// ToBalanceSnapshotListResponses converts a list of domain snapshots to response DTOs
func ToBalanceSnapshotListResponses(snapshots []snapshot.BalanceSnapshot) []BalanceSnapshotResponse {
	responses := make([]BalanceSnapshotResponse, len(snapshots))
	for i := range snapshots {
		responses[i] = ToBalanceSnapshotResponse(&snapshots[i])
	}
	return responses
}
