package ledger

import (
	"strings"
	"time"

	"github.com/finbook/backend/internal/domain/shared"
	"github.com/finbook/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the direction of a transaction
type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "income"
	TransactionTypeExpense  TransactionType = "expense"
	TransactionTypeTransfer TransactionType = "transfer"
)

// IsValid checks if the transaction type is valid
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeIncome, TransactionTypeExpense, TransactionTypeTransfer:
		return true
	}
	return false
}

// String returns the string representation
func (t TransactionType) String() string {
	return string(t)
}

// TransactionStatus represents the lifecycle status of a transaction
type TransactionStatus string

const (
	TransactionStatusPending    TransactionStatus = "pending"
	TransactionStatusCleared    TransactionStatus = "cleared"
	TransactionStatusReconciled TransactionStatus = "reconciled"
	TransactionStatusCancelled  TransactionStatus = "cancelled"
)

// IsValid checks if the transaction status is valid
func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusCleared,
		TransactionStatusReconciled, TransactionStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation
func (s TransactionStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no further transitions are allowed
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusReconciled || s == TransactionStatusCancelled
}

// PaymentMethod represents how a transaction was settled
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodPix          PaymentMethod = "pix"
	PaymentMethodDebitCard    PaymentMethod = "debit_card"
	PaymentMethodCreditCard   PaymentMethod = "credit_card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodBoleto       PaymentMethod = "boleto"
	PaymentMethodOther        PaymentMethod = "other"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodPix, PaymentMethodDebitCard,
		PaymentMethodCreditCard, PaymentMethodBankTransfer,
		PaymentMethodBoleto, PaymentMethodOther:
		return true
	}
	return false
}

// Counterparty holds the raw counterparty data embedded in a transaction
// as imported from bank statements and receipts. Once the backfill engine
// resolves the counterparty into a canonical registry record, these fields
// are cleared and EntityID points at the record.
type Counterparty struct {
	// EntityID references the canonical registry record. It may point at a
	// company or a person row; the referenced table follows from how the
	// TaxID classified when the link was made.
	EntityID *uuid.UUID
	// TaxID is the raw CNPJ/CPF string as it appeared in the source data,
	// possibly formatted, possibly anonymized, possibly garbage
	TaxID string
	// Name is the counterparty name as it appeared in the source data
	Name string
	// SellerName is the individual seller acting for the counterparty
	SellerName string
}

// IsLinked returns true if the counterparty resolved to a canonical record
func (c Counterparty) IsLinked() bool {
	return c.EntityID != nil
}

// HasEmbedded returns true if raw counterparty data is still embedded
func (c Counterparty) HasEmbedded() bool {
	return strings.TrimSpace(c.TaxID) != ""
}

// Transaction is a financial transaction in the personal ledger.
// It is the aggregate root for transaction-related operations.
type Transaction struct {
	shared.BaseAggregateRoot
	Description   string
	Amount        decimal.Decimal
	Currency      valueobject.Currency
	Type          TransactionType
	Status        TransactionStatus
	OccurredAt    time.Time
	PaymentMethod PaymentMethod
	CategoryID    *uuid.UUID
	FiscalBookID  *uuid.UUID
	Counterparty  Counterparty
	Notes         string
}

// NewTransaction creates a new transaction in pending status
func NewTransaction(
	description string,
	amount valueobject.Money,
	transactionType TransactionType,
	occurredAt time.Time,
) (*Transaction, error) {
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot be empty")
	}
	if len(description) > 500 {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 500 characters")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	if !transactionType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", "Transaction type is not valid")
	}
	if occurredAt.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Transaction date cannot be zero")
	}

	transaction := &Transaction{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Description:       description,
		Amount:            amount.Amount(),
		Currency:          amount.Currency(),
		Type:              transactionType,
		Status:            TransactionStatusPending,
		OccurredAt:        occurredAt,
		PaymentMethod:     PaymentMethodOther,
	}

	transaction.AddDomainEvent(NewTransactionCreatedEvent(transaction))

	return transaction, nil
}

// AmountMoney returns the amount as Money
func (t *Transaction) AmountMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(t.Amount, t.Currency)
	return m
}

// SignedAmount returns the amount with expenses negated, for balance math
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Type == TransactionTypeExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// Update updates the transaction's editable fields
func (t *Transaction) Update(description string, amount valueobject.Money, occurredAt time.Time) error {
	if t.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Cannot update a reconciled or cancelled transaction")
	}
	if description == "" {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot be empty")
	}
	if len(description) > 500 {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 500 characters")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	if occurredAt.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "Transaction date cannot be zero")
	}

	t.Description = description
	t.Amount = amount.Amount()
	t.Currency = amount.Currency()
	t.OccurredAt = occurredAt
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	t.AddDomainEvent(NewTransactionUpdatedEvent(t))

	return nil
}

// SetPaymentMethod sets how the transaction was settled
func (t *Transaction) SetPaymentMethod(method PaymentMethod) error {
	if !method.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method is not valid")
	}
	t.PaymentMethod = method
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}

// SetCategory assigns the transaction to a category
func (t *Transaction) SetCategory(categoryID uuid.UUID) {
	t.CategoryID = &categoryID
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}

// SetNotes replaces the transaction notes
func (t *Transaction) SetNotes(notes string) error {
	if len(notes) > 1000 {
		return shared.NewDomainError("INVALID_NOTES", "Notes cannot exceed 1000 characters")
	}
	t.Notes = notes
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}

// AttachToBook assigns the transaction to a fiscal book
func (t *Transaction) AttachToBook(bookID uuid.UUID) {
	t.FiscalBookID = &bookID
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}

// DetachFromBook removes the transaction from its fiscal book
func (t *Transaction) DetachFromBook() {
	t.FiscalBookID = nil
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}

// SetEmbeddedCounterparty stores raw counterparty data on the transaction.
// Used at import time, before any canonical record exists.
func (t *Transaction) SetEmbeddedCounterparty(taxID, name, sellerName string) {
	t.Counterparty.TaxID = strings.TrimSpace(taxID)
	t.Counterparty.Name = strings.TrimSpace(name)
	t.Counterparty.SellerName = strings.TrimSpace(sellerName)
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}

// LinkCounterparty points the transaction at a canonical registry record
// and clears the embedded raw fields in the same mutation
func (t *Transaction) LinkCounterparty(entityID uuid.UUID) {
	t.Counterparty.EntityID = &entityID
	t.Counterparty.TaxID = ""
	t.Counterparty.Name = ""
	t.Counterparty.SellerName = ""
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	t.AddDomainEvent(NewTransactionCounterpartyLinkedEvent(t, entityID))
}

// Clear marks the transaction as cleared (confirmed against the account)
func (t *Transaction) Clear() error {
	if t.Status != TransactionStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending transactions can be cleared")
	}
	t.Status = TransactionStatusCleared
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}

// Reconcile marks the transaction as reconciled into a fiscal book period
func (t *Transaction) Reconcile() error {
	if t.Status != TransactionStatusCleared {
		return shared.NewDomainError("INVALID_STATE", "Only cleared transactions can be reconciled")
	}
	t.Status = TransactionStatusReconciled
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}

// Cancel cancels the transaction
func (t *Transaction) Cancel() error {
	if t.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Transaction is already in a terminal state")
	}
	t.Status = TransactionStatusCancelled
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}
