package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/finbook/backend/internal/domain/ledger"
	"github.com/finbook/backend/internal/domain/shared"
	"github.com/finbook/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Mocks
// ============================================================================

// MockTransactionRepository is a mock implementation of TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]ledger.Transaction, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindByPeriod(ctx context.Context, from, to time.Time, filter shared.Filter) ([]ledger.Transaction, error) {
	args := m.Called(ctx, from, to, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindByFiscalBook(ctx context.Context, bookID uuid.UUID, filter shared.Filter) ([]ledger.Transaction, error) {
	args := m.Called(ctx, bookID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindByCounterpartyEntity(ctx context.Context, entityID uuid.UUID, filter shared.Filter) ([]ledger.Transaction, error) {
	args := m.Called(ctx, entityID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindWithEmbeddedCounterparty(ctx context.Context) ([]ledger.Transaction, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) RelinkCounterparty(ctx context.Context, id, entityID uuid.UUID) error {
	args := m.Called(ctx, id, entityID)
	return args.Error(0)
}

func (m *MockTransactionRepository) Save(ctx context.Context, transaction *ledger.Transaction) error {
	args := m.Called(ctx, transaction)
	return args.Error(0)
}

func (m *MockTransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTransactionRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepository) SumByPeriod(ctx context.Context, from, to time.Time) (ledger.PeriodTotals, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(ledger.PeriodTotals), args.Error(1)
}

func (m *MockTransactionRepository) ExistsByFingerprint(ctx context.Context, occurredAt time.Time, amount decimal.Decimal, description string) (bool, error) {
	args := m.Called(ctx, occurredAt, amount, description)
	return args.Bool(0), args.Error(1)
}

var _ ledger.TransactionRepository = (*MockTransactionRepository)(nil)

// MockCategoryRepository is a mock implementation of CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindByNameAndType(ctx context.Context, name string, categoryType ledger.CategoryType) (*ledger.Category, error) {
	args := m.Called(ctx, name, categoryType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]ledger.Category, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindActive(ctx context.Context) ([]ledger.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Category), args.Error(1)
}

func (m *MockCategoryRepository) Save(ctx context.Context, category *ledger.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCategoryRepository) ExistsByNameAndType(ctx context.Context, name string, categoryType ledger.CategoryType) (bool, error) {
	args := m.Called(ctx, name, categoryType)
	return args.Bool(0), args.Error(1)
}

var _ ledger.CategoryRepository = (*MockCategoryRepository)(nil)

// MockFiscalBookRepository is a mock implementation of FiscalBookRepository
type MockFiscalBookRepository struct {
	mock.Mock
}

func (m *MockFiscalBookRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.FiscalBook, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.FiscalBook), args.Error(1)
}

func (m *MockFiscalBookRepository) FindByYear(ctx context.Context, year int) ([]ledger.FiscalBook, error) {
	args := m.Called(ctx, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.FiscalBook), args.Error(1)
}

func (m *MockFiscalBookRepository) FindAll(ctx context.Context, filter shared.Filter) ([]ledger.FiscalBook, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.FiscalBook), args.Error(1)
}

func (m *MockFiscalBookRepository) Save(ctx context.Context, book *ledger.FiscalBook) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}

func (m *MockFiscalBookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFiscalBookRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

var _ ledger.FiscalBookRepository = (*MockFiscalBookRepository)(nil)

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

var _ shared.EventPublisher = (*MockEventPublisher)(nil)

// ============================================================================
// Test Helpers
// ============================================================================

func createTestTransaction() *ledger.Transaction {
	amount, _ := valueobject.NewMoneyBRLFromString("152.90")
	transaction, _ := ledger.NewTransaction(
		"Compra supermercado",
		amount,
		ledger.TransactionTypeExpense,
		time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
	)
	transaction.ClearDomainEvents()
	return transaction
}

func newTestTransactionService() (*TransactionService, *MockTransactionRepository, *MockCategoryRepository, *MockFiscalBookRepository) {
	mockTransactionRepo := new(MockTransactionRepository)
	mockCategoryRepo := new(MockCategoryRepository)
	mockBookRepo := new(MockFiscalBookRepository)
	service := NewTransactionService(mockTransactionRepo, mockCategoryRepo, mockBookRepo)
	return service, mockTransactionRepo, mockCategoryRepo, mockBookRepo
}

// ============================================================================
// Create Tests
// ============================================================================

func TestTransactionService_Create_Success(t *testing.T) {
	service, mockTransactionRepo, mockCategoryRepo, mockBookRepo := newTestTransactionService()
	ctx := context.Background()

	category := createTestCategory("Alimentação", ledger.CategoryTypeExpense)
	book := createTestFiscalBook("Livro Caixa 2024", 2024)

	req := CreateTransactionRequest{
		Description:            "Compra supermercado",
		Amount:                 decimal.RequireFromString("152.90"),
		Type:                   "expense",
		OccurredAt:             time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		PaymentMethod:          "pix",
		CategoryID:             &category.ID,
		FiscalBookID:           &book.ID,
		CounterpartyTaxID:      "12.345.678/0001-95",
		CounterpartyName:       "Padaria Central Ltda",
		CounterpartySellerName: "José Carlos",
		Notes:                  "Nota fiscal 1234",
	}

	mockCategoryRepo.On("FindByID", ctx, category.ID).Return(category, nil)
	mockBookRepo.On("FindByID", ctx, book.ID).Return(book, nil)
	mockTransactionRepo.On("Save", ctx, mock.AnythingOfType("*ledger.Transaction")).Return(nil)

	result, err := service.Create(ctx, req)

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "Compra supermercado", result.Description)
	assert.True(t, decimal.RequireFromString("152.90").Equal(result.Amount))
	assert.Equal(t, "BRL", result.Currency)
	assert.Equal(t, "expense", result.Type)
	assert.Equal(t, "pending", result.Status)
	assert.Equal(t, "pix", result.PaymentMethod)
	require.NotNil(t, result.CategoryID)
	assert.Equal(t, category.ID, *result.CategoryID)
	require.NotNil(t, result.FiscalBookID)
	assert.Equal(t, book.ID, *result.FiscalBookID)
	assert.Equal(t, "12.345.678/0001-95", result.CounterpartyTaxID)
	assert.Equal(t, "Padaria Central Ltda", result.CounterpartyName)
	assert.Equal(t, "José Carlos", result.CounterpartySellerName)
	assert.Equal(t, "Nota fiscal 1234", result.Notes)
	mockTransactionRepo.AssertExpectations(t)
	mockCategoryRepo.AssertExpectations(t)
	mockBookRepo.AssertExpectations(t)
}

func TestTransactionService_Create_Defaults(t *testing.T) {
	service, mockTransactionRepo, _, _ := newTestTransactionService()
	ctx := context.Background()

	req := CreateTransactionRequest{
		Description: "Salário",
		Amount:      decimal.RequireFromString("5000.00"),
		Type:        "income",
		OccurredAt:  time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
	}

	mockTransactionRepo.On("Save", ctx, mock.AnythingOfType("*ledger.Transaction")).Return(nil)

	result, err := service.Create(ctx, req)

	require.NoError(t, err)
	assert.Equal(t, "BRL", result.Currency)
	assert.Equal(t, "other", result.PaymentMethod)
	assert.Nil(t, result.CategoryID)
	assert.Nil(t, result.FiscalBookID)
	assert.Empty(t, result.CounterpartyTaxID)
}

func TestTransactionService_Create_CategoryNotFound(t *testing.T) {
	service, _, mockCategoryRepo, _ := newTestTransactionService()
	ctx := context.Background()
	categoryID := uuid.New()

	req := CreateTransactionRequest{
		Description: "Compra supermercado",
		Amount:      decimal.RequireFromString("152.90"),
		Type:        "expense",
		OccurredAt:  time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		CategoryID:  &categoryID,
	}

	mockCategoryRepo.On("FindByID", ctx, categoryID).Return(nil, shared.ErrNotFound)

	result, err := service.Create(ctx, req)

	assert.Nil(t, result)
	domainErr, ok := err.(*shared.DomainError)
	require.True(t, ok)
	assert.Equal(t, "CATEGORY_NOT_FOUND", domainErr.Code)
}

func TestTransactionService_Create_CategoryTypeMismatch(t *testing.T) {
	service, _, mockCategoryRepo, _ := newTestTransactionService()
	ctx := context.Background()

	category := createTestCategory("Salário", ledger.CategoryTypeIncome)

	req := CreateTransactionRequest{
		Description: "Compra supermercado",
		Amount:      decimal.RequireFromString("152.90"),
		Type:        "expense",
		OccurredAt:  time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		CategoryID:  &category.ID,
	}

	mockCategoryRepo.On("FindByID", ctx, category.ID).Return(category, nil)

	_, err := service.Create(ctx, req)

	domainErr, ok := err.(*shared.DomainError)
	require.True(t, ok)
	assert.Equal(t, "CATEGORY_TYPE_MISMATCH", domainErr.Code)
}

func TestTransactionService_Create_InactiveCategory(t *testing.T) {
	service, _, mockCategoryRepo, _ := newTestTransactionService()
	ctx := context.Background()

	category := createTestCategory("Alimentação", ledger.CategoryTypeExpense)
	category.Deactivate()

	req := CreateTransactionRequest{
		Description: "Compra supermercado",
		Amount:      decimal.RequireFromString("152.90"),
		Type:        "expense",
		OccurredAt:  time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		CategoryID:  &category.ID,
	}

	mockCategoryRepo.On("FindByID", ctx, category.ID).Return(category, nil)

	_, err := service.Create(ctx, req)

	domainErr, ok := err.(*shared.DomainError)
	require.True(t, ok)
	assert.Equal(t, "CATEGORY_INACTIVE", domainErr.Code)
}

func TestTransactionService_Create_ClosedBook(t *testing.T) {
	service, _, _, mockBookRepo := newTestTransactionService()
	ctx := context.Background()

	book := createTestFiscalBook("Livro Caixa 2023", 2023)
	require.NoError(t, book.Close())

	req := CreateTransactionRequest{
		Description:  "Compra supermercado",
		Amount:       decimal.RequireFromString("152.90"),
		Type:         "expense",
		OccurredAt:   time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		FiscalBookID: &book.ID,
	}

	mockBookRepo.On("FindByID", ctx, book.ID).Return(book, nil)

	_, err := service.Create(ctx, req)

	assert.ErrorIs(t, err, shared.ErrBookClosed)
}

func TestTransactionService_Create_InvalidAmount(t *testing.T) {
	service, _, _, _ := newTestTransactionService()
	ctx := context.Background()

	req := CreateTransactionRequest{
		Description: "Compra supermercado",
		Amount:      decimal.RequireFromString("-10.00"),
		Type:        "expense",
		OccurredAt:  time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
	}

	_, err := service.Create(ctx, req)

	domainErr, ok := err.(*shared.DomainError)
	require.True(t, ok)
	assert.Equal(t, "INVALID_AMOUNT", domainErr.Code)
}

func TestTransactionService_Create_PublishesEvents(t *testing.T) {
	service, mockTransactionRepo, _, _ := newTestTransactionService()
	mockPublisher := new(MockEventPublisher)
	service.SetEventPublisher(mockPublisher)
	ctx := context.Background()

	req := CreateTransactionRequest{
		Description: "Salário",
		Amount:      decimal.RequireFromString("5000.00"),
		Type:        "income",
		OccurredAt:  time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
	}

	mockTransactionRepo.On("Save", ctx, mock.AnythingOfType("*ledger.Transaction")).Return(nil)
	mockPublisher.On("Publish", ctx, mock.Anything).Return(nil)

	_, err := service.Create(ctx, req)

	require.NoError(t, err)
	mockPublisher.AssertNumberOfCalls(t, "Publish", 1)
}

// ============================================================================
// GetByID / List Tests
// ============================================================================

func TestTransactionService_GetByID_NotFound(t *testing.T) {
	service, mockTransactionRepo, _, _ := newTestTransactionService()
	ctx := context.Background()
	id := uuid.New()

	mockTransactionRepo.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

	result, err := service.GetByID(ctx, id)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestTransactionService_List_AppliesFilters(t *testing.T) {
	service, mockTransactionRepo, _, _ := newTestTransactionService()
	ctx := context.Background()

	categoryID := uuid.New()
	fromDate := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	transactions := []ledger.Transaction{*createTestTransaction(), *createTestTransaction()}

	filterMatches := func(filter shared.Filter) bool {
		return filter.Page == 1 &&
			filter.PageSize == 20 &&
			filter.OrderBy == "occurred_at" &&
			filter.Filters["type"] == "expense" &&
			filter.Filters["category_id"] == categoryID &&
			filter.Filters["occurred_from"] == fromDate
	}
	mockTransactionRepo.On("FindAll", ctx, mock.MatchedBy(filterMatches)).Return(transactions, nil)
	mockTransactionRepo.On("Count", ctx, mock.MatchedBy(filterMatches)).Return(int64(2), nil)

	result, total, err := service.List(ctx, TransactionListFilter{
		Type:       "expense",
		CategoryID: &categoryID,
		FromDate:   &fromDate,
	})

	require.NoError(t, err)
	assert.Len(t, result, 2)
	assert.Equal(t, int64(2), total)
	mockTransactionRepo.AssertExpectations(t)
}

// ============================================================================
// Update Tests
// ============================================================================

func TestTransactionService_Update_PatchesOnlyProvidedFields(t *testing.T) {
	service, mockTransactionRepo, _, _ := newTestTransactionService()
	ctx := context.Background()

	transaction := createTestTransaction()
	originalAmount := transaction.Amount
	originalDate := transaction.OccurredAt
	newDescription := "Compra farmácia"

	mockTransactionRepo.On("FindByID", ctx, transaction.ID).Return(transaction, nil)
	mockTransactionRepo.On("Save", ctx, transaction).Return(nil)

	result, err := service.Update(ctx, transaction.ID, UpdateTransactionRequest{
		Description: &newDescription,
	})

	require.NoError(t, err)
	assert.Equal(t, "Compra farmácia", result.Description)
	assert.True(t, originalAmount.Equal(result.Amount))
	assert.Equal(t, originalDate, result.OccurredAt)
}

func TestTransactionService_Update_RejectsTerminalStatus(t *testing.T) {
	service, mockTransactionRepo, _, _ := newTestTransactionService()
	ctx := context.Background()

	transaction := createTestTransaction()
	require.NoError(t, transaction.Cancel())
	newDescription := "Compra farmácia"

	mockTransactionRepo.On("FindByID", ctx, transaction.ID).Return(transaction, nil)

	_, err := service.Update(ctx, transaction.ID, UpdateTransactionRequest{
		Description: &newDescription,
	})

	domainErr, ok := err.(*shared.DomainError)
	require.True(t, ok)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
}

// ============================================================================
// Status Transition Tests
// ============================================================================

func TestTransactionService_Clear_Success(t *testing.T) {
	service, mockTransactionRepo, _, _ := newTestTransactionService()
	ctx := context.Background()

	transaction := createTestTransaction()
	mockTransactionRepo.On("FindByID", ctx, transaction.ID).Return(transaction, nil)
	mockTransactionRepo.On("Save", ctx, transaction).Return(nil)

	result, err := service.Clear(ctx, transaction.ID)

	require.NoError(t, err)
	assert.Equal(t, "cleared", result.Status)
}

func TestTransactionService_Reconcile_RequiresCleared(t *testing.T) {
	service, mockTransactionRepo, _, _ := newTestTransactionService()
	ctx := context.Background()

	transaction := createTestTransaction()
	mockTransactionRepo.On("FindByID", ctx, transaction.ID).Return(transaction, nil)

	_, err := service.Reconcile(ctx, transaction.ID)

	domainErr, ok := err.(*shared.DomainError)
	require.True(t, ok)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
}

func TestTransactionService_Cancel_Success(t *testing.T) {
	service, mockTransactionRepo, _, _ := newTestTransactionService()
	ctx := context.Background()

	transaction := createTestTransaction()
	mockTransactionRepo.On("FindByID", ctx, transaction.ID).Return(transaction, nil)
	mockTransactionRepo.On("Save", ctx, transaction).Return(nil)

	result, err := service.Cancel(ctx, transaction.ID)

	require.NoError(t, err)
	assert.Equal(t, "cancelled", result.Status)
}

// ============================================================================
// Delete Tests
// ============================================================================

func TestTransactionService_Delete_Success(t *testing.T) {
	service, mockTransactionRepo, _, _ := newTestTransactionService()
	ctx := context.Background()

	transaction := createTestTransaction()
	mockTransactionRepo.On("FindByID", ctx, transaction.ID).Return(transaction, nil)
	mockTransactionRepo.On("Delete", ctx, transaction.ID).Return(nil)

	err := service.Delete(ctx, transaction.ID)

	assert.NoError(t, err)
	mockTransactionRepo.AssertExpectations(t)
}

func TestTransactionService_Delete_RejectsReconciled(t *testing.T) {
	service, mockTransactionRepo, _, _ := newTestTransactionService()
	ctx := context.Background()

	transaction := createTestTransaction()
	require.NoError(t, transaction.Clear())
	require.NoError(t, transaction.Reconcile())

	mockTransactionRepo.On("FindByID", ctx, transaction.ID).Return(transaction, nil)

	err := service.Delete(ctx, transaction.ID)

	domainErr, ok := err.(*shared.DomainError)
	require.True(t, ok)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
	mockTransactionRepo.AssertNotCalled(t, "Delete", ctx, transaction.ID)
}
