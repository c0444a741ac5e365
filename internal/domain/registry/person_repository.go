package registry

import (
	"context"

	"github.com/finbook/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PersonRepository defines the interface for person persistence
type PersonRepository interface {
	// FindByID finds a person by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Person, error)

	// FindByCPF finds a person by CPF exactly as stored. For identified
	// persons that is the formatted CPF; for anonymous persons it is the
	// raw anonymized string.
	FindByCPF(ctx context.Context, cpf string) (*Person, error)

	// FindAll finds all persons matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Person, error)

	// FindByStatus finds persons by status
	FindByStatus(ctx context.Context, status PersonStatus, filter shared.Filter) ([]Person, error)

	// Save creates or updates a person
	Save(ctx context.Context, person *Person) error

	// Delete deletes a person
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts persons matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// ExistsByCPF checks if a person with the given CPF exists
	ExistsByCPF(ctx context.Context, cpf string) (bool, error)
}
