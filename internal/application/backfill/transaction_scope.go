package backfill

import (
	"context"

	"github.com/finbook/backend/internal/domain/ledger"
	"github.com/finbook/backend/internal/domain/registry"
)

// TransactionScope provides transactional access to the repositories a
// backfill run writes through. When a function is executed within a
// transaction scope, all repository operations are part of the same database
// transaction and are committed or rolled back atomically. A backfill run is
// all-or-nothing: a resolver failure must leave no partial writes behind.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories participating
// in a backfill run. All repositories returned share the same underlying
// database transaction.
type TransactionalRepositories interface {
	// TransactionRepo returns the ledger transaction repository scoped to the current transaction
	TransactionRepo() ledger.TransactionRepository
	// CompanyRepo returns the company repository scoped to the current transaction
	CompanyRepo() registry.CompanyRepository
	// PersonRepo returns the person repository scoped to the current transaction
	PersonRepo() registry.PersonRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. This is useful for testing or when transaction support is not
// required.
type NoOpTransactionScope struct {
	transactionRepo ledger.TransactionRepository
	companyRepo     registry.CompanyRepository
	personRepo      registry.PersonRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	transactionRepo ledger.TransactionRepository,
	companyRepo registry.CompanyRepository,
	personRepo registry.PersonRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		transactionRepo: transactionRepo,
		companyRepo:     companyRepo,
		personRepo:      personRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// TransactionRepo returns the ledger transaction repository.
func (s *NoOpTransactionScope) TransactionRepo() ledger.TransactionRepository {
	return s.transactionRepo
}

// CompanyRepo returns the company repository.
func (s *NoOpTransactionScope) CompanyRepo() registry.CompanyRepository {
	return s.companyRepo
}

// PersonRepo returns the person repository.
func (s *NoOpTransactionScope) PersonRepo() registry.PersonRepository {
	return s.personRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
