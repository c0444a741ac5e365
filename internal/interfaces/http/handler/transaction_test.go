package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	ledgerapp "github.com/finbook/backend/internal/application/ledger"
	"github.com/finbook/backend/internal/domain/ledger"
	"github.com/finbook/backend/internal/domain/shared"
	"github.com/finbook/backend/internal/domain/shared/valueobject"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockTransactionRepository implements ledger.TransactionRepository for testing
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
	return args.Get(0).([]ledger.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindByPeriod(ctx context.Context, from, to time.Time, filter shared.Filter) ([]ledger.Transaction, error) {
	args := m.Called(ctx, from, to, filter)
	return args.Get(0).([]ledger.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindByFiscalBook(ctx context.Context, bookID uuid.UUID, filter shared.Filter) ([]ledger.Transaction, error) {
	args := m.Called(ctx, bookID, filter)
	return args.Get(0).([]ledger.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindByCounterpartyEntity(ctx context.Context, entityID uuid.UUID, filter shared.Filter) ([]ledger.Transaction, error) {
	args := m.Called(ctx, entityID, filter)
	return args.Get(0).([]ledger.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindWithEmbeddedCounterparty(ctx context.Context) ([]ledger.Transaction, error) {
	args := m.Called(ctx)
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

// MockCategoryRepository implements ledger.CategoryRepository for testing
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
	return args.Get(0).([]ledger.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindActive(ctx context.Context) ([]ledger.Category, error) {
	args := m.Called(ctx)
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

// MockFiscalBookRepository implements ledger.FiscalBookRepository for testing
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

// MockAttachmentRepository implements ledger.AttachmentRepository for testing
type MockAttachmentRepository struct {
	mock.Mock
}

func (m *MockAttachmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.TransactionAttachment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.TransactionAttachment), args.Error(1)
}

func (m *MockAttachmentRepository) FindByTransaction(ctx context.Context, transactionID uuid.UUID) ([]ledger.TransactionAttachment, error) {
	args := m.Called(ctx, transactionID)
	return args.Get(0).([]ledger.TransactionAttachment), args.Error(1)
}

func (m *MockAttachmentRepository) Save(ctx context.Context, attachment *ledger.TransactionAttachment) error {
	args := m.Called(ctx, attachment)
	return args.Error(0)
}

func (m *MockAttachmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAttachmentRepository) CountByTransaction(ctx context.Context, transactionID uuid.UUID) (int64, error) {
	args := m.Called(ctx, transactionID)
	return args.Get(0).(int64), args.Error(1)
}

var _ ledger.AttachmentRepository = (*MockAttachmentRepository)(nil)

// MockObjectStorage implements ledgerapp.ObjectStorageService for testing
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) GenerateUploadURL(ctx context.Context, storageKey string, contentType string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, storageKey, contentType, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorage) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, storageKey, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorage) DeleteObject(ctx context.Context, storageKey string) error {
	args := m.Called(ctx, storageKey)
	return args.Error(0)
}

func (m *MockObjectStorage) ObjectExists(ctx context.Context, storageKey string) (bool, error) {
	args := m.Called(ctx, storageKey)
	return args.Bool(0), args.Error(1)
}

var _ ledgerapp.ObjectStorageService = (*MockObjectStorage)(nil)

// Test setup helpers

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func setupTransactionHandler(
	transactionRepo *MockTransactionRepository,
	categoryRepo *MockCategoryRepository,
	bookRepo *MockFiscalBookRepository,
) *TransactionHandler {
	transactionService := ledgerapp.NewTransactionService(transactionRepo, categoryRepo, bookRepo)
	attachmentService := ledgerapp.NewAttachmentService(
		new(MockAttachmentRepository), transactionRepo, new(MockObjectStorage), zap.NewNop())
	return NewTransactionHandler(transactionService, attachmentService)
}

func createTestTransaction() *ledger.Transaction {
	transaction, _ := ledger.NewTransaction(
		"Compra supermercado",
		valueobject.NewMoneyBRL(decimal.NewFromFloat(152.90)),
		ledger.TransactionTypeExpense,
		time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	)
	transaction.ClearDomainEvents()
	return transaction
}

// Tests

func TestTransactionHandler_Create_Success(t *testing.T) {
	transactionRepo := new(MockTransactionRepository)
	categoryRepo := new(MockCategoryRepository)
	bookRepo := new(MockFiscalBookRepository)
	handler := setupTransactionHandler(transactionRepo, categoryRepo, bookRepo)

	transactionRepo.On("Save", mock.Anything, mock.AnythingOfType("*ledger.Transaction")).Return(nil)

	router := setupTestRouter()
	router.POST("/transactions", handler.Create)

	reqBody := ledgerapp.CreateTransactionRequest{
		Description: "Compra supermercado",
		Amount:      decimal.NewFromFloat(152.90),
		Type:        "expense",
		OccurredAt:  time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPost, "/transactions", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	transactionRepo.AssertExpectations(t)
}

func TestTransactionHandler_Create_InvalidJSON(t *testing.T) {
	transactionRepo := new(MockTransactionRepository)
	categoryRepo := new(MockCategoryRepository)
	bookRepo := new(MockFiscalBookRepository)
	handler := setupTransactionHandler(transactionRepo, categoryRepo, bookRepo)

	router := setupTestRouter()
	router.POST("/transactions", handler.Create)

	req := httptest.NewRequest(http.MethodPost, "/transactions", bytes.NewBufferString("invalid json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTransactionHandler_Create_CategoryNotFound(t *testing.T) {
	transactionRepo := new(MockTransactionRepository)
	categoryRepo := new(MockCategoryRepository)
	bookRepo := new(MockFiscalBookRepository)
	handler := setupTransactionHandler(transactionRepo, categoryRepo, bookRepo)

	categoryID := uuid.New()
	categoryRepo.On("FindByID", mock.Anything, categoryID).Return(nil, shared.ErrNotFound)

	router := setupTestRouter()
	router.POST("/transactions", handler.Create)

	reqBody := ledgerapp.CreateTransactionRequest{
		Description: "Compra supermercado",
		Amount:      decimal.NewFromFloat(152.90),
		Type:        "expense",
		OccurredAt:  time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		CategoryID:  &categoryID,
	}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPost, "/transactions", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	categoryRepo.AssertExpectations(t)
}

func TestTransactionHandler_Create_ClosedBook(t *testing.T) {
	transactionRepo := new(MockTransactionRepository)
	categoryRepo := new(MockCategoryRepository)
	bookRepo := new(MockFiscalBookRepository)
	handler := setupTransactionHandler(transactionRepo, categoryRepo, bookRepo)

	book, _ := ledger.NewFiscalBook("Contas da Casa", 2025)
	book.ClearDomainEvents()
	_ = book.Close()
	bookID := book.ID

	bookRepo.On("FindByID", mock.Anything, bookID).Return(book, nil)

	router := setupTestRouter()
	router.POST("/transactions", handler.Create)

	reqBody := ledgerapp.CreateTransactionRequest{
		Description:  "Compra supermercado",
		Amount:       decimal.NewFromFloat(152.90),
		Type:         "expense",
		OccurredAt:   time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		FiscalBookID: &bookID,
	}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPost, "/transactions", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	bookRepo.AssertExpectations(t)
}

func TestTransactionHandler_GetByID_Success(t *testing.T) {
	transactionRepo := new(MockTransactionRepository)
	categoryRepo := new(MockCategoryRepository)
	bookRepo := new(MockFiscalBookRepository)
	handler := setupTransactionHandler(transactionRepo, categoryRepo, bookRepo)

	transaction := createTestTransaction()
	transactionRepo.On("FindByID", mock.Anything, transaction.ID).Return(transaction, nil)

	router := setupTestRouter()
	router.GET("/transactions/:id", handler.GetByID)

	req := httptest.NewRequest(http.MethodGet, "/transactions/"+transaction.ID.String(), nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	transactionRepo.AssertExpectations(t)
}

func TestTransactionHandler_GetByID_NotFound(t *testing.T) {
	transactionRepo := new(MockTransactionRepository)
	categoryRepo := new(MockCategoryRepository)
	bookRepo := new(MockFiscalBookRepository)
	handler := setupTransactionHandler(transactionRepo, categoryRepo, bookRepo)

	transactionID := uuid.New()
	transactionRepo.On("FindByID", mock.Anything, transactionID).Return(nil, shared.ErrNotFound)

	router := setupTestRouter()
	router.GET("/transactions/:id", handler.GetByID)

	req := httptest.NewRequest(http.MethodGet, "/transactions/"+transactionID.String(), nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	transactionRepo.AssertExpectations(t)
}

func TestTransactionHandler_GetByID_InvalidID(t *testing.T) {
	transactionRepo := new(MockTransactionRepository)
	categoryRepo := new(MockCategoryRepository)
	bookRepo := new(MockFiscalBookRepository)
	handler := setupTransactionHandler(transactionRepo, categoryRepo, bookRepo)

	router := setupTestRouter()
	router.GET("/transactions/:id", handler.GetByID)

	req := httptest.NewRequest(http.MethodGet, "/transactions/invalid-uuid", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTransactionHandler_List_Success(t *testing.T) {
	transactionRepo := new(MockTransactionRepository)
	categoryRepo := new(MockCategoryRepository)
	bookRepo := new(MockFiscalBookRepository)
	handler := setupTransactionHandler(transactionRepo, categoryRepo, bookRepo)

	transaction1 := createTestTransaction()
	transaction2 := createTestTransaction()
	transactions := []ledger.Transaction{*transaction1, *transaction2}

	transactionRepo.On("FindAll", mock.Anything, mock.AnythingOfType("shared.Filter")).Return(transactions, nil)
	transactionRepo.On("Count", mock.Anything, mock.AnythingOfType("shared.Filter")).Return(int64(2), nil)

	router := setupTestRouter()
	router.GET("/transactions", handler.List)

	req := httptest.NewRequest(http.MethodGet, "/transactions?page=1&page_size=20", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.True(t, response["success"].(bool))
	assert.NotNil(t, response["meta"])

	transactionRepo.AssertExpectations(t)
}

func TestTransactionHandler_Update_Success(t *testing.T) {
	transactionRepo := new(MockTransactionRepository)
	categoryRepo := new(MockCategoryRepository)
	bookRepo := new(MockFiscalBookRepository)
	handler := setupTransactionHandler(transactionRepo, categoryRepo, bookRepo)

	transaction := createTestTransaction()
	transactionRepo.On("FindByID", mock.Anything, transaction.ID).Return(transaction, nil)
	transactionRepo.On("Save", mock.Anything, mock.AnythingOfType("*ledger.Transaction")).Return(nil)

	router := setupTestRouter()
	router.PUT("/transactions/:id", handler.Update)

	newDescription := "Compra padaria"
	reqBody := ledgerapp.UpdateTransactionRequest{
		Description: &newDescription,
	}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPut, "/transactions/"+transaction.ID.String(), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	transactionRepo.AssertExpectations(t)
}

func TestTransactionHandler_Clear_Success(t *testing.T) {
	transactionRepo := new(MockTransactionRepository)
	categoryRepo := new(MockCategoryRepository)
	bookRepo := new(MockFiscalBookRepository)
	handler := setupTransactionHandler(transactionRepo, categoryRepo, bookRepo)

	transaction := createTestTransaction()
	transactionRepo.On("FindByID", mock.Anything, transaction.ID).Return(transaction, nil)
	transactionRepo.On("Save", mock.Anything, mock.AnythingOfType("*ledger.Transaction")).Return(nil)

	router := setupTestRouter()
	router.POST("/transactions/:id/clear", handler.Clear)

	req := httptest.NewRequest(http.MethodPost, "/transactions/"+transaction.ID.String()+"/clear", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "cleared", data["status"])

	transactionRepo.AssertExpectations(t)
}

func TestTransactionHandler_Reconcile_InvalidState(t *testing.T) {
	transactionRepo := new(MockTransactionRepository)
	categoryRepo := new(MockCategoryRepository)
	bookRepo := new(MockFiscalBookRepository)
	handler := setupTransactionHandler(transactionRepo, categoryRepo, bookRepo)

	// Pending transactions cannot be reconciled before being cleared
	transaction := createTestTransaction()
	transactionRepo.On("FindByID", mock.Anything, transaction.ID).Return(transaction, nil)

	router := setupTestRouter()
	router.POST("/transactions/:id/reconcile", handler.Reconcile)

	req := httptest.NewRequest(http.MethodPost, "/transactions/"+transaction.ID.String()+"/reconcile", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	transactionRepo.AssertExpectations(t)
}

func TestTransactionHandler_Cancel_Success(t *testing.T) {
	transactionRepo := new(MockTransactionRepository)
	categoryRepo := new(MockCategoryRepository)
	bookRepo := new(MockFiscalBookRepository)
	handler := setupTransactionHandler(transactionRepo, categoryRepo, bookRepo)

	transaction := createTestTransaction()
	transactionRepo.On("FindByID", mock.Anything, transaction.ID).Return(transaction, nil)
	transactionRepo.On("Save", mock.Anything, mock.AnythingOfType("*ledger.Transaction")).Return(nil)

	router := setupTestRouter()
	router.POST("/transactions/:id/cancel", handler.Cancel)

	req := httptest.NewRequest(http.MethodPost, "/transactions/"+transaction.ID.String()+"/cancel", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	transactionRepo.AssertExpectations(t)
}

func TestTransactionHandler_Delete_Success(t *testing.T) {
	transactionRepo := new(MockTransactionRepository)
	categoryRepo := new(MockCategoryRepository)
	bookRepo := new(MockFiscalBookRepository)
	handler := setupTransactionHandler(transactionRepo, categoryRepo, bookRepo)

	transaction := createTestTransaction()
	transactionRepo.On("FindByID", mock.Anything, transaction.ID).Return(transaction, nil)
	transactionRepo.On("Delete", mock.Anything, transaction.ID).Return(nil)

	router := setupTestRouter()
	router.DELETE("/transactions/:id", handler.Delete)

	req := httptest.NewRequest(http.MethodDelete, "/transactions/"+transaction.ID.String(), nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	transactionRepo.AssertExpectations(t)
}

func TestTransactionHandler_Delete_Reconciled(t *testing.T) {
	transactionRepo := new(MockTransactionRepository)
	categoryRepo := new(MockCategoryRepository)
	bookRepo := new(MockFiscalBookRepository)
	handler := setupTransactionHandler(transactionRepo, categoryRepo, bookRepo)

	transaction := createTestTransaction()
	transaction.Status = ledger.TransactionStatusReconciled
	transactionRepo.On("FindByID", mock.Anything, transaction.ID).Return(transaction, nil)

	router := setupTestRouter()
	router.DELETE("/transactions/:id", handler.Delete)

	req := httptest.NewRequest(http.MethodDelete, "/transactions/"+transaction.ID.String(), nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	transactionRepo.AssertExpectations(t)
}
