package backfill

import (
	"context"

	"github.com/finbook/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Backfiller rewrites transactions to reference a resolved canonical record.
type Backfiller struct {
	logger *zap.Logger
}

// NewBackfiller creates a new Backfiller
func NewBackfiller(logger *zap.Logger) *Backfiller {
	return &Backfiller{logger: logger}
}

// Backfill links the transaction to the canonical entity and clears the
// redundant embedded counterparty fields in one atomic update. Returns true
// when a write occurred. A transaction that is already linked is left alone;
// re-running the migration must never overwrite an existing link.
//
// Storage errors propagate to the caller. This is the fatal variant used on
// the company path, where a failed link aborts the whole run.
func (b *Backfiller) Backfill(
	ctx context.Context,
	transaction *ledger.Transaction,
	entityID uuid.UUID,
	repos TransactionalRepositories,
) (bool, error) {
	if transaction.Counterparty.IsLinked() {
		return false, nil
	}

	if err := repos.TransactionRepo().RelinkCounterparty(ctx, transaction.ID, entityID); err != nil {
		return false, err
	}

	// Keep the in-memory aggregate in step with the row so the rest of the
	// run sees the transaction as linked.
	transaction.LinkCounterparty(entityID)

	b.logger.Info("Backfilled transaction counterparty",
		zap.String("transaction_id", transaction.ID.String()),
		zap.String("entity_id", entityID.String()),
	)

	return true, nil
}

// BackfillSoft behaves like Backfill but logs and swallows storage errors,
// reporting no write instead of failing. The person paths use this variant:
// a failed link must not block creation of the person record itself, and the
// link is picked up by a future run.
func (b *Backfiller) BackfillSoft(
	ctx context.Context,
	transaction *ledger.Transaction,
	entityID uuid.UUID,
	repos TransactionalRepositories,
) bool {
	updated, err := b.Backfill(ctx, transaction, entityID, repos)
	if err != nil {
		b.logger.Warn("Failed to backfill transaction counterparty, leaving link to a future run",
			zap.String("transaction_id", transaction.ID.String()),
			zap.String("entity_id", entityID.String()),
			zap.Error(err),
		)
		return false
	}
	return updated
}
