package ledger

import (
	"context"

	"github.com/finbook/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CategoryRepository defines the interface for category persistence
type CategoryRepository interface {
	// FindByID finds a category by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)

	// FindByNameAndType finds a category by name within a type
	FindByNameAndType(ctx context.Context, name string, categoryType CategoryType) (*Category, error)

	// FindAll finds all categories matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Category, error)

	// FindActive finds all active categories
	FindActive(ctx context.Context) ([]Category, error)

	// Save creates or updates a category
	Save(ctx context.Context, category *Category) error

	// Delete deletes a category
	Delete(ctx context.Context, id uuid.UUID) error

	// ExistsByNameAndType checks if a category with the name exists in a type
	ExistsByNameAndType(ctx context.Context, name string, categoryType CategoryType) (bool, error)
}
