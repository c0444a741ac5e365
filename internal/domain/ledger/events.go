package ledger

import (
	"github.com/finbook/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeTransaction = "Transaction"
	AggregateTypeFiscalBook  = "FiscalBook"
)

// Event type constants
const (
	EventTypeTransactionCreated            = "TransactionCreated"
	EventTypeTransactionUpdated            = "TransactionUpdated"
	EventTypeTransactionCounterpartyLinked = "TransactionCounterpartyLinked"
	EventTypeFiscalBookCreated             = "FiscalBookCreated"
	EventTypeFiscalBookClosed              = "FiscalBookClosed"
)

// TransactionCreatedEvent is published when a new transaction is recorded
type TransactionCreatedEvent struct {
	shared.BaseDomainEvent
	TransactionID uuid.UUID       `json:"transaction_id"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	Type          TransactionType `json:"transaction_type"`
}

// NewTransactionCreatedEvent creates a new TransactionCreatedEvent
func NewTransactionCreatedEvent(transaction *Transaction) *TransactionCreatedEvent {
	return &TransactionCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionCreated, AggregateTypeTransaction, transaction.ID),
		TransactionID:   transaction.ID,
		Description:     transaction.Description,
		Amount:          transaction.Amount,
		Type:            transaction.Type,
	}
}

// TransactionUpdatedEvent is published when a transaction is updated
type TransactionUpdatedEvent struct {
	shared.BaseDomainEvent
	TransactionID uuid.UUID       `json:"transaction_id"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
}

// NewTransactionUpdatedEvent creates a new TransactionUpdatedEvent
func NewTransactionUpdatedEvent(transaction *Transaction) *TransactionUpdatedEvent {
	return &TransactionUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionUpdated, AggregateTypeTransaction, transaction.ID),
		TransactionID:   transaction.ID,
		Description:     transaction.Description,
		Amount:          transaction.Amount,
	}
}

// TransactionCounterpartyLinkedEvent is published when a transaction is
// rewired from embedded counterparty data to a canonical registry record
type TransactionCounterpartyLinkedEvent struct {
	shared.BaseDomainEvent
	TransactionID uuid.UUID `json:"transaction_id"`
	EntityID      uuid.UUID `json:"entity_id"`
}

// NewTransactionCounterpartyLinkedEvent creates a new TransactionCounterpartyLinkedEvent
func NewTransactionCounterpartyLinkedEvent(transaction *Transaction, entityID uuid.UUID) *TransactionCounterpartyLinkedEvent {
	return &TransactionCounterpartyLinkedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionCounterpartyLinked, AggregateTypeTransaction, transaction.ID),
		TransactionID:   transaction.ID,
		EntityID:        entityID,
	}
}

// FiscalBookCreatedEvent is published when a new fiscal book is opened
type FiscalBookCreatedEvent struct {
	shared.BaseDomainEvent
	FiscalBookID uuid.UUID `json:"fiscal_book_id"`
	Name         string    `json:"name"`
	Year         int       `json:"year"`
}

// NewFiscalBookCreatedEvent creates a new FiscalBookCreatedEvent
func NewFiscalBookCreatedEvent(book *FiscalBook) *FiscalBookCreatedEvent {
	return &FiscalBookCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFiscalBookCreated, AggregateTypeFiscalBook, book.ID),
		FiscalBookID:    book.ID,
		Name:            book.Name,
		Year:            book.Year,
	}
}

// FiscalBookClosedEvent is published when a fiscal book is closed
type FiscalBookClosedEvent struct {
	shared.BaseDomainEvent
	FiscalBookID uuid.UUID `json:"fiscal_book_id"`
	Name         string    `json:"name"`
	Year         int       `json:"year"`
}

// NewFiscalBookClosedEvent creates a new FiscalBookClosedEvent
func NewFiscalBookClosedEvent(book *FiscalBook) *FiscalBookClosedEvent {
	return &FiscalBookClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFiscalBookClosed, AggregateTypeFiscalBook, book.ID),
		FiscalBookID:    book.ID,
		Name:            book.Name,
		Year:            book.Year,
	}
}
