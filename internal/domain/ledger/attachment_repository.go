package ledger

import (
	"context"

	"github.com/google/uuid"
)

// AttachmentRepository defines the interface for transaction attachment persistence
type AttachmentRepository interface {
	// FindByID finds an attachment by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*TransactionAttachment, error)

	// FindByTransaction finds all attachments of a transaction
	FindByTransaction(ctx context.Context, transactionID uuid.UUID) ([]TransactionAttachment, error)

	// Save creates or updates an attachment
	Save(ctx context.Context, attachment *TransactionAttachment) error

	// Delete deletes an attachment
	Delete(ctx context.Context, id uuid.UUID) error

	// CountByTransaction counts attachments of a transaction
	CountByTransaction(ctx context.Context, transactionID uuid.UUID) (int64, error)
}
