package ledger

import (
	"time"

	"github.com/finbook/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ===================== Transaction DTOs =====================

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID                     uuid.UUID       `json:"id"`
	Description            string          `json:"description"`
	Amount                 decimal.Decimal `json:"amount"`
	Currency               string          `json:"currency"`
	Type                   string          `json:"type"`
	Status                 string          `json:"status"`
	OccurredAt             time.Time       `json:"occurred_at"`
	PaymentMethod          string          `json:"payment_method"`
	CategoryID             *uuid.UUID      `json:"category_id,omitempty"`
	FiscalBookID           *uuid.UUID      `json:"fiscal_book_id,omitempty"`
	CounterpartyEntityID   *uuid.UUID      `json:"counterparty_entity_id,omitempty"`
	CounterpartyTaxID      string          `json:"counterparty_tax_id,omitempty"`
	CounterpartyName       string          `json:"counterparty_name,omitempty"`
	CounterpartySellerName string          `json:"counterparty_seller_name,omitempty"`
	Notes                  string          `json:"notes,omitempty"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
	Version                int             `json:"version"`
}

// CreateTransactionRequest represents a request to create a transaction
type CreateTransactionRequest struct {
	Description            string          `json:"description" binding:"required,min=1,max=500"`
	Amount                 decimal.Decimal `json:"amount" binding:"required"`
	Currency               string          `json:"currency" binding:"omitempty,len=3"`
	Type                   string          `json:"type" binding:"required,oneof=income expense transfer"`
	OccurredAt             time.Time       `json:"occurred_at" binding:"required"`
	PaymentMethod          string          `json:"payment_method" binding:"omitempty,oneof=cash pix debit_card credit_card bank_transfer boleto other"`
	CategoryID             *uuid.UUID      `json:"category_id"`
	FiscalBookID           *uuid.UUID      `json:"fiscal_book_id"`
	CounterpartyTaxID      string          `json:"counterparty_tax_id" binding:"omitempty,max=50"`
	CounterpartyName       string          `json:"counterparty_name" binding:"omitempty,max=200"`
	CounterpartySellerName string          `json:"counterparty_seller_name" binding:"omitempty,max=200"`
	Notes                  string          `json:"notes" binding:"omitempty,max=1000"`
}

// UpdateTransactionRequest represents a request to update a transaction.
// Only non-nil fields are applied.
type UpdateTransactionRequest struct {
	Description   *string          `json:"description" binding:"omitempty,min=1,max=500"`
	Amount        *decimal.Decimal `json:"amount"`
	OccurredAt    *time.Time       `json:"occurred_at"`
	PaymentMethod *string          `json:"payment_method" binding:"omitempty,oneof=cash pix debit_card credit_card bank_transfer boleto other"`
	CategoryID    *uuid.UUID       `json:"category_id"`
	FiscalBookID  *uuid.UUID       `json:"fiscal_book_id"`
	Notes         *string          `json:"notes" binding:"omitempty,max=1000"`
}

// TransactionListFilter defines filtering options for transaction list queries
type TransactionListFilter struct {
	Search       string     `form:"search"`
	Type         string     `form:"type"`
	Status       string     `form:"status"`
	CategoryID   *uuid.UUID `form:"category_id"`
	FiscalBookID *uuid.UUID `form:"fiscal_book_id"`
	FromDate     *time.Time `form:"from_date"`
	ToDate       *time.Time `form:"to_date"`
	Page         int        `form:"page"`
	PageSize     int        `form:"page_size"`
}

// ToTransactionResponse converts a domain transaction to a response DTO
func ToTransactionResponse(transaction *ledger.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:                     transaction.ID,
		Description:            transaction.Description,
		Amount:                 transaction.Amount,
		Currency:               string(transaction.Currency),
		Type:                   transaction.Type.String(),
		Status:                 transaction.Status.String(),
		OccurredAt:             transaction.OccurredAt,
		PaymentMethod:          string(transaction.PaymentMethod),
		CategoryID:             transaction.CategoryID,
		FiscalBookID:           transaction.FiscalBookID,
		CounterpartyEntityID:   transaction.Counterparty.EntityID,
		CounterpartyTaxID:      transaction.Counterparty.TaxID,
		CounterpartyName:       transaction.Counterparty.Name,
		CounterpartySellerName: transaction.Counterparty.SellerName,
		Notes:                  transaction.Notes,
		CreatedAt:              transaction.CreatedAt,
		UpdatedAt:              transaction.UpdatedAt,
		Version:                transaction.Version,
	}
}

// ToTransactionListResponses converts a list of domain transactions to response DTOs
func ToTransactionListResponses(transactions []ledger.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(transactions))
	for i := range transactions {
		responses[i] = ToTransactionResponse(&transactions[i])
	}
	return responses
}

// ===================== Category DTOs =====================

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Version     int       `json:"version"`
}

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Type        string `json:"type" binding:"required,oneof=income expense"`
	Description string `json:"description" binding:"omitempty,max=500"`
	Color       string `json:"color" binding:"omitempty,hexcolor"`
}

// UpdateCategoryRequest represents a request to update a category.
// Only non-nil fields are applied.
type UpdateCategoryRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
	Color       *string `json:"color" binding:"omitempty,hexcolor"`
	Active      *bool   `json:"active"`
}

// CategoryListFilter defines filtering options for category list queries
type CategoryListFilter struct {
	Search   string `form:"search"`
	Type     string `form:"type"`
	Active   *bool  `form:"active"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// ToCategoryResponse converts a domain category to a response DTO
func ToCategoryResponse(category *ledger.Category) CategoryResponse {
	return CategoryResponse{
		ID:          category.ID,
		Name:        category.Name,
		Type:        category.Type.String(),
		Description: category.Description,
		Color:       category.Color,
		Active:      category.Active,
		CreatedAt:   category.CreatedAt,
		UpdatedAt:   category.UpdatedAt,
		Version:     category.Version,
	}
}

// ToCategoryListResponses converts a list of domain categories to response DTOs
func ToCategoryListResponses(categories []ledger.Category) []CategoryResponse {
	responses := make([]CategoryResponse, len(categories))
	for i := range categories {
		responses[i] = ToCategoryResponse(&categories[i])
	}
	return responses
}

// ===================== Fiscal Book DTOs =====================

// FiscalBookResponse represents a fiscal book in API responses
type FiscalBookResponse struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Year        int        `json:"year"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Version     int        `json:"version"`
}

// CreateFiscalBookRequest represents a request to create a fiscal book
type CreateFiscalBookRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Year        int    `json:"year" binding:"required,min=1900,max=2200"`
	Description string `json:"description" binding:"omitempty,max=500"`
}

// UpdateFiscalBookRequest represents a request to update a fiscal book.
// Only non-nil fields are applied.
type UpdateFiscalBookRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

// FiscalBookListFilter defines filtering options for fiscal book list queries
type FiscalBookListFilter struct {
	Search   string `form:"search"`
	Year     *int   `form:"year"`
	Status   string `form:"status"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// ToFiscalBookResponse converts a domain fiscal book to a response DTO
func ToFiscalBookResponse(book *ledger.FiscalBook) FiscalBookResponse {
	return FiscalBookResponse{
		ID:          book.ID,
		Name:        book.Name,
		Year:        book.Year,
		Description: book.Description,
		Status:      book.Status.String(),
		ClosedAt:    book.ClosedAt,
		CreatedAt:   book.CreatedAt,
		UpdatedAt:   book.UpdatedAt,
		Version:     book.Version,
	}
}

// ToFiscalBookListResponses converts a list of domain fiscal books to response DTOs
func ToFiscalBookListResponses(books []ledger.FiscalBook) []FiscalBookResponse {
	responses := make([]FiscalBookResponse, len(books))
	for i := range books {
		responses[i] = ToFiscalBookResponse(&books[i])
	}
	return responses
}
