package persistence

import (
	"context"

	appbackfill "github.com/finbook/backend/internal/application/backfill"
	"github.com/finbook/backend/internal/domain/ledger"
	"github.com/finbook/backend/internal/domain/registry"
	"gorm.io/gorm"
)

// GormTransactionScope implements the backfill TransactionScope using GORM
// transactions. It provides atomic execution of multiple repository
// operations: a backfill run commits as a whole or not at all.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appbackfill.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// TransactionRepo returns the ledger transaction repository scoped to the current transaction.
func (r *gormTransactionalRepositories) TransactionRepo() ledger.TransactionRepository {
	return NewGormTransactionRepository(r.tx)
}

// CompanyRepo returns the company repository scoped to the current transaction.
func (r *gormTransactionalRepositories) CompanyRepo() registry.CompanyRepository {
	return NewGormCompanyRepository(r.tx)
}

// PersonRepo returns the person repository scoped to the current transaction.
func (r *gormTransactionalRepositories) PersonRepo() registry.PersonRepository {
	return NewGormPersonRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appbackfill.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appbackfill.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
