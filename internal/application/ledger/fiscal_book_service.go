package ledger

import (
	"context"

	"github.com/finbook/backend/internal/domain/ledger"
	"github.com/finbook/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// FiscalBookService handles fiscal book business operations
type FiscalBookService struct {
	bookRepo        ledger.FiscalBookRepository
	transactionRepo ledger.TransactionRepository
	eventPublisher  shared.EventPublisher
}

// NewFiscalBookService creates a new FiscalBookService
func NewFiscalBookService(bookRepo ledger.FiscalBookRepository, transactionRepo ledger.TransactionRepository) *FiscalBookService {
	return &FiscalBookService{
		bookRepo:        bookRepo,
		transactionRepo: transactionRepo,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *FiscalBookService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new fiscal book
func (s *FiscalBookService) Create(ctx context.Context, req CreateFiscalBookRequest) (*FiscalBookResponse, error) {
	existing, err := s.bookRepo.FindByYear(ctx, req.Year)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		if existing[i].Name == req.Name {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Fiscal book with this name already exists for the year")
		}
	}

	book, err := ledger.NewFiscalBook(req.Name, req.Year)
	if err != nil {
		return nil, err
	}

	if req.Description != "" {
		if err := book.Update(req.Name, req.Description); err != nil {
			return nil, err
		}
	}

	if err := s.bookRepo.Save(ctx, book); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, book)

	response := ToFiscalBookResponse(book)
	return &response, nil
}

// GetByID gets a fiscal book by ID
func (s *FiscalBookService) GetByID(ctx context.Context, id uuid.UUID) (*FiscalBookResponse, error) {
	book, err := s.bookRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToFiscalBookResponse(book)
	return &response, nil
}

// List lists fiscal books with filtering and pagination
func (s *FiscalBookService) List(ctx context.Context, filter FiscalBookListFilter) ([]FiscalBookResponse, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  "year",
		OrderDir: "desc",
		Search:   filter.Search,
		Filters:  map[string]interface{}{},
	}
	if filter.Year != nil {
		domainFilter.Filters["year"] = *filter.Year
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}

	books, err := s.bookRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.bookRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToFiscalBookListResponses(books), total, nil
}

// Update updates a fiscal book's editable fields
func (s *FiscalBookService) Update(ctx context.Context, id uuid.UUID, req UpdateFiscalBookRequest) (*FiscalBookResponse, error) {
	book, err := s.bookRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name := book.Name
	if req.Name != nil {
		name = *req.Name
	}
	description := book.Description
	if req.Description != nil {
		description = *req.Description
	}

	if err := book.Update(name, description); err != nil {
		return nil, err
	}

	if err := s.bookRepo.Save(ctx, book); err != nil {
		return nil, err
	}

	response := ToFiscalBookResponse(book)
	return &response, nil
}

// Close closes a fiscal book; closed books reject new transactions
func (s *FiscalBookService) Close(ctx context.Context, id uuid.UUID) (*FiscalBookResponse, error) {
	book, err := s.bookRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := book.Close(); err != nil {
		return nil, err
	}

	if err := s.bookRepo.Save(ctx, book); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, book)

	response := ToFiscalBookResponse(book)
	return &response, nil
}

// Reopen reopens a closed fiscal book
func (s *FiscalBookService) Reopen(ctx context.Context, id uuid.UUID) (*FiscalBookResponse, error) {
	book, err := s.bookRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := book.Reopen(); err != nil {
		return nil, err
	}

	if err := s.bookRepo.Save(ctx, book); err != nil {
		return nil, err
	}

	response := ToFiscalBookResponse(book)
	return &response, nil
}

// Delete deletes a fiscal book that has no transactions attached
func (s *FiscalBookService) Delete(ctx context.Context, id uuid.UUID) error {
	book, err := s.bookRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.transactionRepo.Count(ctx, shared.Filter{
		Filters: map[string]interface{}{"fiscal_book_id": book.ID},
	})
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainError("BOOK_IN_USE", "Fiscal book has transactions and cannot be deleted")
	}

	return s.bookRepo.Delete(ctx, id)
}

// publishEvents drains the aggregate's pending domain events onto the bus.
// Delivery failures never fail the ledger operation; the bus logs them.
func (s *FiscalBookService) publishEvents(ctx context.Context, book *ledger.FiscalBook) {
	if s.eventPublisher == nil {
		return
	}
	if events := book.GetDomainEvents(); len(events) > 0 {
		_ = s.eventPublisher.Publish(ctx, events...)
	}
	book.ClearDomainEvents()
}
