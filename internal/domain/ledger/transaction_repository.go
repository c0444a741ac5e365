package ledger

import (
	"context"
	"time"

	"github.com/finbook/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionRepository defines the interface for transaction persistence
type TransactionRepository interface {
	// FindByID finds a transaction by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// FindAll finds all transactions matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Transaction, error)

	// FindByPeriod finds transactions whose date falls in [from, to)
	FindByPeriod(ctx context.Context, from, to time.Time, filter shared.Filter) ([]Transaction, error)

	// FindByFiscalBook finds transactions attached to a fiscal book
	FindByFiscalBook(ctx context.Context, bookID uuid.UUID, filter shared.Filter) ([]Transaction, error)

	// FindByCounterpartyEntity finds transactions linked to a canonical
	// registry record
	FindByCounterpartyEntity(ctx context.Context, entityID uuid.UUID, filter shared.Filter) ([]Transaction, error)

	// FindWithEmbeddedCounterparty finds all transactions that still carry
	// a raw counterparty identifier, ordered by creation time. This is the
	// candidate set for the counterparty backfill.
	FindWithEmbeddedCounterparty(ctx context.Context) ([]Transaction, error)

	// RelinkCounterparty points a transaction at a canonical registry
	// record and clears the embedded tax ID, name and seller name in a
	// single atomic update
	RelinkCounterparty(ctx context.Context, id, entityID uuid.UUID) error

	// Save creates or updates a transaction
	Save(ctx context.Context, transaction *Transaction) error

	// Delete deletes a transaction
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts transactions matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// SumByPeriod sums signed amounts of non-cancelled transactions in
	// [from, to) grouped by transaction type
	SumByPeriod(ctx context.Context, from, to time.Time) (PeriodTotals, error)

	// ExistsByFingerprint checks if a transaction with the same occurred
	// date, amount and description already exists (import dedup)
	ExistsByFingerprint(ctx context.Context, occurredAt time.Time, amount decimal.Decimal, description string) (bool, error)
}

// PeriodTotals aggregates transaction amounts over a period
type PeriodTotals struct {
	Income           decimal.Decimal
	Expense          decimal.Decimal
	TransactionCount int64
}
