package ledger

import (
	"time"

	"github.com/finbook/backend/internal/domain/shared"
)

// FiscalBookStatus represents the lifecycle status of a fiscal book
type FiscalBookStatus string

const (
	FiscalBookStatusOpen   FiscalBookStatus = "open"
	FiscalBookStatusClosed FiscalBookStatus = "closed"
)

// IsValid checks if the fiscal book status is valid
func (s FiscalBookStatus) IsValid() bool {
	switch s {
	case FiscalBookStatusOpen, FiscalBookStatusClosed:
		return true
	}
	return false
}

// String returns the string representation
func (s FiscalBookStatus) String() string {
	return string(s)
}

// FiscalBook is a livro-caixa: a yearly book that groups transactions for
// tax reporting. A closed book no longer accepts transactions.
type FiscalBook struct {
	shared.BaseAggregateRoot
	Name        string
	Year        int
	Description string
	Status      FiscalBookStatus
	ClosedAt    *time.Time
}

// NewFiscalBook creates a new open fiscal book for the given year
func NewFiscalBook(name string, year int) (*FiscalBook, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Fiscal book name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_NAME", "Fiscal book name cannot exceed 100 characters")
	}
	if year < 1900 || year > 2200 {
		return nil, shared.NewDomainError("INVALID_YEAR", "Fiscal book year is out of range")
	}

	book := &FiscalBook{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Year:              year,
		Status:            FiscalBookStatusOpen,
	}

	book.AddDomainEvent(NewFiscalBookCreatedEvent(book))

	return book, nil
}

// Update updates the book's editable fields while it is open
func (b *FiscalBook) Update(name, description string) error {
	if b.IsClosed() {
		return shared.ErrBookClosed
	}
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Fiscal book name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Fiscal book name cannot exceed 100 characters")
	}

	b.Name = name
	b.Description = description
	b.UpdatedAt = time.Now()
	b.IncrementVersion()

	return nil
}

// Close closes the book; closed books reject new transactions
func (b *FiscalBook) Close() error {
	if b.IsClosed() {
		return shared.ErrBookClosed
	}
	now := time.Now()
	b.Status = FiscalBookStatusClosed
	b.ClosedAt = &now
	b.UpdatedAt = now
	b.IncrementVersion()

	b.AddDomainEvent(NewFiscalBookClosedEvent(b))

	return nil
}

// Reopen reopens a closed book
func (b *FiscalBook) Reopen() error {
	if !b.IsClosed() {
		return shared.NewDomainError("INVALID_STATE", "Fiscal book is already open")
	}
	b.Status = FiscalBookStatusOpen
	b.ClosedAt = nil
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
	return nil
}

// IsClosed returns true if the book is closed
func (b *FiscalBook) IsClosed() bool {
	return b.Status == FiscalBookStatusClosed
}
