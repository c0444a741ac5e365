package ledger

import (
	"context"

	"github.com/finbook/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// FiscalBookRepository defines the interface for fiscal book persistence
type FiscalBookRepository interface {
	// FindByID finds a fiscal book by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*FiscalBook, error)

	// FindByYear finds all fiscal books for a calendar year
	FindByYear(ctx context.Context, year int) ([]FiscalBook, error)

	// FindAll finds all fiscal books matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]FiscalBook, error)

	// Save creates or updates a fiscal book
	Save(ctx context.Context, book *FiscalBook) error

	// Delete deletes a fiscal book
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts fiscal books matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
