package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/finbook/backend/internal/domain/ledger"
	"github.com/finbook/backend/internal/domain/shared"
	"github.com/finbook/backend/internal/domain/snapshot"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TransactionChangedHandler keeps monthly balance snapshots in step with
// ledger writes by regenerating the period a transaction falls into.
// An edit that moves a transaction across a month boundary refreshes only
// the new period; the stale sibling is caught by the nightly RefreshRecent.
type TransactionChangedHandler struct {
	transactionRepo ledger.TransactionRepository
	snapshotService *BalanceSnapshotService
	logger          *zap.Logger
}

// NewTransactionChangedHandler creates a new handler for transaction change events
func NewTransactionChangedHandler(
	transactionRepo ledger.TransactionRepository,
	snapshotService *BalanceSnapshotService,
	logger *zap.Logger,
) *TransactionChangedHandler {
	return &TransactionChangedHandler{
		transactionRepo: transactionRepo,
		snapshotService: snapshotService,
		logger:          logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *TransactionChangedHandler) EventTypes() []string {
	return []string{
		ledger.EventTypeTransactionCreated,
		ledger.EventTypeTransactionUpdated,
	}
}

// Handle regenerates the balance snapshot for the changed transaction's period
func (h *TransactionChangedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	var transactionID uuid.UUID
	switch e := event.(type) {
	case *ledger.TransactionCreatedEvent:
		transactionID = e.TransactionID
	case *ledger.TransactionUpdatedEvent:
		transactionID = e.TransactionID
	default:
		h.logger.Error("unexpected event type",
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}

	tx, err := h.transactionRepo.FindByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// The transaction can be deleted before the event is handled
			h.logger.Warn("transaction no longer exists, skipping snapshot refresh",
				zap.String("transaction_id", transactionID.String()),
			)
			return nil
		}
		return fmt.Errorf("failed to load transaction for snapshot refresh: %w", err)
	}

	period := snapshot.PeriodOf(tx.OccurredAt)
	if _, err := h.snapshotService.GenerateForPeriod(ctx, period); err != nil {
		return fmt.Errorf("failed to refresh snapshot for period %s: %w", period, err)
	}

	h.logger.Debug("balance snapshot refreshed after transaction change",
		zap.String("transaction_id", transactionID.String()),
		zap.String("period", period.String()),
	)
	return nil
}

// Ensure TransactionChangedHandler implements shared.EventHandler
var _ shared.EventHandler = (*TransactionChangedHandler)(nil)
