package ledger

import (
	"context"
	"errors"

	"github.com/finbook/backend/internal/domain/ledger"
	"github.com/finbook/backend/internal/domain/shared"
	"github.com/finbook/backend/internal/domain/shared/valueobject"
	"github.com/finbook/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// TransactionService handles transaction-related business operations
type TransactionService struct {
	transactionRepo ledger.TransactionRepository
	categoryRepo    ledger.CategoryRepository
	bookRepo        ledger.FiscalBookRepository
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(
	transactionRepo ledger.TransactionRepository,
	categoryRepo ledger.CategoryRepository,
	bookRepo ledger.FiscalBookRepository,
) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		categoryRepo:    categoryRepo,
		bookRepo:        bookRepo,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *TransactionService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics recorder
func (s *TransactionService) SetBusinessMetrics(metrics *telemetry.BusinessMetrics) {
	s.businessMetrics = metrics
}

// Create creates a new transaction
func (s *TransactionService) Create(ctx context.Context, req CreateTransactionRequest) (*TransactionResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "transaction", "create")
	defer span.End()

	currency := valueobject.DefaultCurrency
	if req.Currency != "" {
		currency = valueobject.Currency(req.Currency)
	}
	telemetry.SetAttributes(span,
		"transaction.type", req.Type,
		"transaction.currency", string(currency),
	)

	amount, err := valueobject.NewMoney(req.Amount, currency)
	if err != nil {
		err = shared.NewDomainError("INVALID_AMOUNT", err.Error())
		telemetry.RecordError(span, err)
		return nil, err
	}

	transaction, err := ledger.NewTransaction(
		req.Description,
		amount,
		ledger.TransactionType(req.Type),
		req.OccurredAt,
	)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if req.PaymentMethod != "" {
		if err := transaction.SetPaymentMethod(ledger.PaymentMethod(req.PaymentMethod)); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	if req.CategoryID != nil {
		if err := s.assignCategory(ctx, transaction, *req.CategoryID); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	if req.FiscalBookID != nil {
		if err := s.assignFiscalBook(ctx, transaction, *req.FiscalBookID); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	if req.CounterpartyTaxID != "" || req.CounterpartyName != "" || req.CounterpartySellerName != "" {
		transaction.SetEmbeddedCounterparty(req.CounterpartyTaxID, req.CounterpartyName, req.CounterpartySellerName)
	}

	if req.Notes != "" {
		if err := transaction.SetNotes(req.Notes); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	if err := s.transactionRepo.Save(ctx, transaction); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if s.businessMetrics != nil {
		s.businessMetrics.RecordTransactionCreated(ctx, transaction.Type.String(), transaction.Amount)
	}

	s.publishEvents(ctx, transaction)
	telemetry.SetAttributes(span, "transaction.id", transaction.ID.String())
	telemetry.SetOK(span)

	response := ToTransactionResponse(transaction)
	return &response, nil
}

// GetByID gets a transaction by ID
func (s *TransactionService) GetByID(ctx context.Context, id uuid.UUID) (*TransactionResponse, error) {
	transaction, err := s.transactionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToTransactionResponse(transaction)
	return &response, nil
}

// List lists transactions with filtering and pagination
func (s *TransactionService) List(ctx context.Context, filter TransactionListFilter) ([]TransactionResponse, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  "occurred_at",
		OrderDir: "desc",
		Search:   filter.Search,
		Filters:  map[string]interface{}{},
	}
	if filter.Type != "" {
		domainFilter.Filters["type"] = filter.Type
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.CategoryID != nil {
		domainFilter.Filters["category_id"] = *filter.CategoryID
	}
	if filter.FiscalBookID != nil {
		domainFilter.Filters["fiscal_book_id"] = *filter.FiscalBookID
	}
	if filter.FromDate != nil {
		domainFilter.Filters["occurred_from"] = *filter.FromDate
	}
	if filter.ToDate != nil {
		domainFilter.Filters["occurred_to"] = *filter.ToDate
	}

	transactions, err := s.transactionRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.transactionRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToTransactionListResponses(transactions), total, nil
}

// Update updates a transaction's editable fields
func (s *TransactionService) Update(ctx context.Context, id uuid.UUID, req UpdateTransactionRequest) (*TransactionResponse, error) {
	transaction, err := s.transactionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Description != nil || req.Amount != nil || req.OccurredAt != nil {
		description := transaction.Description
		if req.Description != nil {
			description = *req.Description
		}
		amount := transaction.AmountMoney()
		if req.Amount != nil {
			amount, err = valueobject.NewMoney(*req.Amount, transaction.Currency)
			if err != nil {
				return nil, shared.NewDomainError("INVALID_AMOUNT", err.Error())
			}
		}
		occurredAt := transaction.OccurredAt
		if req.OccurredAt != nil {
			occurredAt = *req.OccurredAt
		}
		if err := transaction.Update(description, amount, occurredAt); err != nil {
			return nil, err
		}
	}

	if req.PaymentMethod != nil {
		if err := transaction.SetPaymentMethod(ledger.PaymentMethod(*req.PaymentMethod)); err != nil {
			return nil, err
		}
	}

	if req.CategoryID != nil {
		if err := s.assignCategory(ctx, transaction, *req.CategoryID); err != nil {
			return nil, err
		}
	}

	if req.FiscalBookID != nil {
		if err := s.assignFiscalBook(ctx, transaction, *req.FiscalBookID); err != nil {
			return nil, err
		}
	}

	if req.Notes != nil {
		if err := transaction.SetNotes(*req.Notes); err != nil {
			return nil, err
		}
	}

	if err := s.transactionRepo.Save(ctx, transaction); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, transaction)

	response := ToTransactionResponse(transaction)
	return &response, nil
}

// Clear marks a transaction as cleared against the account
func (s *TransactionService) Clear(ctx context.Context, id uuid.UUID) (*TransactionResponse, error) {
	return s.transition(ctx, id, (*ledger.Transaction).Clear)
}

// Reconcile marks a transaction as reconciled into its fiscal book period
func (s *TransactionService) Reconcile(ctx context.Context, id uuid.UUID) (*TransactionResponse, error) {
	return s.transition(ctx, id, (*ledger.Transaction).Reconcile)
}

// Cancel cancels a transaction
func (s *TransactionService) Cancel(ctx context.Context, id uuid.UUID) (*TransactionResponse, error) {
	return s.transition(ctx, id, (*ledger.Transaction).Cancel)
}

// Delete deletes a transaction
func (s *TransactionService) Delete(ctx context.Context, id uuid.UUID) error {
	transaction, err := s.transactionRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if transaction.Status == ledger.TransactionStatusReconciled {
		return shared.NewDomainError("INVALID_STATE", "Reconciled transactions cannot be deleted")
	}
	return s.transactionRepo.Delete(ctx, id)
}

// assignCategory validates the category and assigns it to the transaction
func (s *TransactionService) assignCategory(ctx context.Context, transaction *ledger.Transaction, categoryID uuid.UUID) error {
	category, err := s.categoryRepo.FindByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("CATEGORY_NOT_FOUND", "Category not found")
		}
		return err
	}
	if !category.Active {
		return shared.NewDomainError("CATEGORY_INACTIVE", "Category is not active")
	}
	if string(category.Type) != string(transaction.Type) {
		return shared.NewDomainError("CATEGORY_TYPE_MISMATCH", "Category type does not match the transaction type")
	}
	transaction.SetCategory(categoryID)
	return nil
}

// assignFiscalBook validates the fiscal book and attaches the transaction to it
func (s *TransactionService) assignFiscalBook(ctx context.Context, transaction *ledger.Transaction, bookID uuid.UUID) error {
	book, err := s.bookRepo.FindByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("BOOK_NOT_FOUND", "Fiscal book not found")
		}
		return err
	}
	if book.IsClosed() {
		return shared.ErrBookClosed
	}
	transaction.AttachToBook(bookID)
	return nil
}

// transition loads a transaction, applies a status transition and saves it
func (s *TransactionService) transition(ctx context.Context, id uuid.UUID, fn func(*ledger.Transaction) error) (*TransactionResponse, error) {
	transaction, err := s.transactionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(transaction); err != nil {
		return nil, err
	}
	if err := s.transactionRepo.Save(ctx, transaction); err != nil {
		return nil, err
	}
	response := ToTransactionResponse(transaction)
	return &response, nil
}

// publishEvents drains the aggregate's pending domain events onto the bus.
// Delivery failures never fail the ledger operation; the bus logs them.
func (s *TransactionService) publishEvents(ctx context.Context, transaction *ledger.Transaction) {
	if s.eventPublisher == nil {
		return
	}
	if events := transaction.GetDomainEvents(); len(events) > 0 {
		_ = s.eventPublisher.Publish(ctx, events...)
	}
	transaction.ClearDomainEvents()
}
