package registry

import (
	"context"

	"github.com/finbook/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CompanyRepository defines the interface for company persistence
type CompanyRepository interface {
	// FindByID finds a company by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Company, error)

	// FindByCNPJ finds a company by its CNPJ exactly as stored
	FindByCNPJ(ctx context.Context, cnpj string) (*Company, error)

	// FindAll finds all companies matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Company, error)

	// Save creates or updates a company
	Save(ctx context.Context, company *Company) error

	// Delete deletes a company
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts companies matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// ExistsByCNPJ checks if a company with the given CNPJ exists
	ExistsByCNPJ(ctx context.Context, cnpj string) (bool, error)
}
