package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	snapshotapp "github.com/finbook/backend/internal/application/snapshot"
	"github.com/finbook/backend/internal/domain/ledger"
	"github.com/finbook/backend/internal/domain/shared"
	"github.com/finbook/backend/internal/domain/snapshot"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockSnapshotRepository implements snapshot.Repository for testing
type MockSnapshotRepository struct {
	mock.Mock
}

func (m *MockSnapshotRepository) FindByPeriod(ctx context.Context, period snapshot.Period) (*snapshot.BalanceSnapshot, error) {
	args := m.Called(ctx, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*snapshot.BalanceSnapshot), args.Error(1)
}

func (m *MockSnapshotRepository) FindRange(ctx context.Context, from, to snapshot.Period) ([]snapshot.BalanceSnapshot, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]snapshot.BalanceSnapshot), args.Error(1)
}

func (m *MockSnapshotRepository) Save(ctx context.Context, snap *snapshot.BalanceSnapshot) error {
	args := m.Called(ctx, snap)
	return args.Error(0)
}

func (m *MockSnapshotRepository) Delete(ctx context.Context, period snapshot.Period) error {
	args := m.Called(ctx, period)
	return args.Error(0)
}

func (m *MockSnapshotRepository) DeleteOlderThan(ctx context.Context, before snapshot.Period) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

var _ snapshot.Repository = (*MockSnapshotRepository)(nil)

func setupSnapshotHandler(snapshotRepo *MockSnapshotRepository, transactionRepo *MockTransactionRepository) *SnapshotHandler {
	snapshotService := snapshotapp.NewBalanceSnapshotService(snapshotRepo, transactionRepo, zap.NewNop(), snapshotapp.BalanceSnapshotServiceConfig{})
	return NewSnapshotHandler(snapshotService)
}

func createTestSnapshot(year int, month time.Month) *snapshot.BalanceSnapshot {
	period, _ := snapshot.NewPeriod(year, month)
	return snapshot.NewBalanceSnapshot(period, decimal.NewFromInt(5000), decimal.NewFromInt(3200), 42)
}

func TestSnapshotHandler_GetByPeriod_Success(t *testing.T) {
	snapshotRepo := new(MockSnapshotRepository)
	transactionRepo := new(MockTransactionRepository)
	handler := setupSnapshotHandler(snapshotRepo, transactionRepo)

	period, _ := snapshot.NewPeriod(2025, time.July)
	snapshotRepo.On("FindByPeriod", mock.Anything, period).Return(createTestSnapshot(2025, time.July), nil)

	router := setupTestRouter()
	router.GET("/snapshots/:year/:month", handler.GetByPeriod)

	req := httptest.NewRequest(http.MethodGet, "/snapshots/2025/7", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "2025-07", data["period"])
	assert.Equal(t, "1800", data["net_balance"])
	assert.Equal(t, float64(42), data["transaction_count"])

	snapshotRepo.AssertExpectations(t)
}

func TestSnapshotHandler_GetByPeriod_InvalidYear(t *testing.T) {
	snapshotRepo := new(MockSnapshotRepository)
	transactionRepo := new(MockTransactionRepository)
	handler := setupSnapshotHandler(snapshotRepo, transactionRepo)

	router := setupTestRouter()
	router.GET("/snapshots/:year/:month", handler.GetByPeriod)

	req := httptest.NewRequest(http.MethodGet, "/snapshots/abc/7", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSnapshotHandler_GetByPeriod_MonthOutOfRange(t *testing.T) {
	snapshotRepo := new(MockSnapshotRepository)
	transactionRepo := new(MockTransactionRepository)
	handler := setupSnapshotHandler(snapshotRepo, transactionRepo)

	router := setupTestRouter()
	router.GET("/snapshots/:year/:month", handler.GetByPeriod)

	req := httptest.NewRequest(http.MethodGet, "/snapshots/2025/13", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	snapshotRepo.AssertNotCalled(t, "FindByPeriod", mock.Anything, mock.Anything)
}

func TestSnapshotHandler_GetByPeriod_NotFound(t *testing.T) {
	snapshotRepo := new(MockSnapshotRepository)
	transactionRepo := new(MockTransactionRepository)
	handler := setupSnapshotHandler(snapshotRepo, transactionRepo)

	snapshotRepo.On("FindByPeriod", mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)

	router := setupTestRouter()
	router.GET("/snapshots/:year/:month", handler.GetByPeriod)

	req := httptest.NewRequest(http.MethodGet, "/snapshots/2025/7", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	snapshotRepo.AssertExpectations(t)
}

func TestSnapshotHandler_ListRange_Success(t *testing.T) {
	snapshotRepo := new(MockSnapshotRepository)
	transactionRepo := new(MockTransactionRepository)
	handler := setupSnapshotHandler(snapshotRepo, transactionRepo)

	from, _ := snapshot.NewPeriod(2025, time.January)
	to, _ := snapshot.NewPeriod(2025, time.June)
	snapshotRepo.On("FindRange", mock.Anything, from, to).Return([]snapshot.BalanceSnapshot{
		*createTestSnapshot(2025, time.January),
		*createTestSnapshot(2025, time.February),
	}, nil)

	router := setupTestRouter()
	router.GET("/snapshots", handler.ListRange)

	req := httptest.NewRequest(http.MethodGet, "/snapshots?from=2025-01&to=2025-06", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	data := response["data"].([]interface{})
	assert.Len(t, data, 2)
	first := data[0].(map[string]interface{})
	assert.Equal(t, "2025-01", first["period"])

	snapshotRepo.AssertExpectations(t)
}

func TestSnapshotHandler_ListRange_MissingParams(t *testing.T) {
	snapshotRepo := new(MockSnapshotRepository)
	transactionRepo := new(MockTransactionRepository)
	handler := setupSnapshotHandler(snapshotRepo, transactionRepo)

	router := setupTestRouter()
	router.GET("/snapshots", handler.ListRange)

	req := httptest.NewRequest(http.MethodGet, "/snapshots?from=2025-01", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSnapshotHandler_ListRange_BadPeriodFormat(t *testing.T) {
	snapshotRepo := new(MockSnapshotRepository)
	transactionRepo := new(MockTransactionRepository)
	handler := setupSnapshotHandler(snapshotRepo, transactionRepo)

	router := setupTestRouter()
	router.GET("/snapshots", handler.ListRange)

	req := httptest.NewRequest(http.MethodGet, "/snapshots?from=2025-13&to=2025-06", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	snapshotRepo.AssertNotCalled(t, "FindRange", mock.Anything, mock.Anything, mock.Anything)
}

func TestSnapshotHandler_ListRange_StartAfterEnd(t *testing.T) {
	snapshotRepo := new(MockSnapshotRepository)
	transactionRepo := new(MockTransactionRepository)
	handler := setupSnapshotHandler(snapshotRepo, transactionRepo)

	router := setupTestRouter()
	router.GET("/snapshots", handler.ListRange)

	req := httptest.NewRequest(http.MethodGet, "/snapshots?from=2025-06&to=2025-01", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	snapshotRepo.AssertNotCalled(t, "FindRange", mock.Anything, mock.Anything, mock.Anything)
}

func TestSnapshotHandler_Generate_Success(t *testing.T) {
	snapshotRepo := new(MockSnapshotRepository)
	transactionRepo := new(MockTransactionRepository)
	handler := setupSnapshotHandler(snapshotRepo, transactionRepo)

	period, _ := snapshot.NewPeriod(2025, time.July)
	transactionRepo.On("SumByPeriod", mock.Anything, period.Start(), period.End()).Return(ledger.PeriodTotals{
		Income:           decimal.RequireFromString("5000.00"),
		Expense:          decimal.RequireFromString("3200.00"),
		TransactionCount: 42,
	}, nil)
	snapshotRepo.On("FindByPeriod", mock.Anything, period).Return(nil, shared.ErrNotFound)
	snapshotRepo.On("Save", mock.Anything, mock.AnythingOfType("*snapshot.BalanceSnapshot")).Return(nil)

	router := setupTestRouter()
	router.POST("/snapshots/generate", handler.Generate)

	body, _ := json.Marshal(GeneratePeriodRequest{Year: 2025, Month: 7})

	req := httptest.NewRequest(http.MethodPost, "/snapshots/generate", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "2025-07", data["period"])
	assert.Equal(t, "1800", data["net_balance"])

	transactionRepo.AssertExpectations(t)
	snapshotRepo.AssertExpectations(t)
}

func TestSnapshotHandler_Generate_ReplacesExisting(t *testing.T) {
	snapshotRepo := new(MockSnapshotRepository)
	transactionRepo := new(MockTransactionRepository)
	handler := setupSnapshotHandler(snapshotRepo, transactionRepo)

	period, _ := snapshot.NewPeriod(2025, time.July)
	existing := createTestSnapshot(2025, time.July)
	transactionRepo.On("SumByPeriod", mock.Anything, period.Start(), period.End()).Return(ledger.PeriodTotals{
		Income:           decimal.RequireFromString("6100.00"),
		Expense:          decimal.RequireFromString("2100.00"),
		TransactionCount: 55,
	}, nil)
	snapshotRepo.On("FindByPeriod", mock.Anything, period).Return(existing, nil)
	snapshotRepo.On("Save", mock.Anything, existing).Return(nil)

	router := setupTestRouter()
	router.POST("/snapshots/generate", handler.Generate)

	body, _ := json.Marshal(GeneratePeriodRequest{Year: 2025, Month: 7})

	req := httptest.NewRequest(http.MethodPost, "/snapshots/generate", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "4000", data["net_balance"])
	assert.Equal(t, float64(55), data["transaction_count"])

	snapshotRepo.AssertExpectations(t)
}

func TestSnapshotHandler_Cleanup_Success(t *testing.T) {
	snapshotRepo := new(MockSnapshotRepository)
	transactionRepo := new(MockTransactionRepository)
	handler := setupSnapshotHandler(snapshotRepo, transactionRepo)

	snapshotRepo.On("DeleteOlderThan", mock.Anything, mock.Anything).Return(int64(3), nil)

	router := setupTestRouter()
	router.POST("/snapshots/cleanup", handler.Cleanup)

	req := httptest.NewRequest(http.MethodPost, "/snapshots/cleanup", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(3), data["count"])

	snapshotRepo.AssertExpectations(t)
}
