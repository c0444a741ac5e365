package snapshot

import (
	"context"
)

// Repository defines the interface for balance snapshot persistence
type Repository interface {
	// FindByPeriod finds the snapshot for a period
	FindByPeriod(ctx context.Context, period Period) (*BalanceSnapshot, error)

	// FindRange finds snapshots for all periods between from and to inclusive,
	// ordered by period ascending
	FindRange(ctx context.Context, from, to Period) ([]BalanceSnapshot, error)

	// Save creates or replaces the snapshot for its period
	Save(ctx context.Context, snapshot *BalanceSnapshot) error

	// Delete deletes the snapshot for a period
	Delete(ctx context.Context, period Period) error

	// DeleteOlderThan deletes all snapshots for periods before the given one
	// and returns the number deleted
	DeleteOlderThan(ctx context.Context, before Period) (int64, error)
}
