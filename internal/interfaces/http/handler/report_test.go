package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/finbook/backend/internal/application/report"
	"github.com/finbook/backend/internal/domain/ledger"
	"github.com/finbook/backend/internal/domain/snapshot"
	"github.com/finbook/backend/internal/infrastructure/reportpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func setupReportHandler(transactionRepo *MockTransactionRepository, renderer *MockPDFRenderer) *ReportHandler {
	reportService := report.NewFiscalBookReportService(
		new(MockFiscalBookRepository),
		transactionRepo,
		new(MockCategoryRepository),
		new(MockCompanyRepository),
		new(MockPersonRepository),
		reportpdf.NewTemplateEngine(),
		renderer,
		zap.NewNop(),
	)
	return NewReportHandler(reportService)
}

func TestReportHandler_MonthlyStatement_Success(t *testing.T) {
	transactionRepo := new(MockTransactionRepository)
	renderer := new(MockPDFRenderer)
	handler := setupReportHandler(transactionRepo, renderer)

	period, _ := snapshot.NewPeriod(2025, time.July)
	transaction := createTestTransaction()
	transactionRepo.On("FindByPeriod", mock.Anything, period.Start(), period.End(), mock.Anything).
		Return([]ledger.Transaction{*transaction}, nil)
	renderer.On("Render", mock.Anything, mock.AnythingOfType("*reportpdf.RenderRequest")).
		Return(&reportpdf.RenderResult{PDFData: []byte("%PDF-fake"), PageCount: 1}, nil)

	router := setupTestRouter()
	router.GET("/reports/statements/:year/:month", handler.MonthlyStatement)

	req := httptest.NewRequest(http.MethodGet, "/reports/statements/2025/7", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "extrato-2025-07.pdf")
	assert.Equal(t, "%PDF-fake", w.Body.String())

	transactionRepo.AssertExpectations(t)
	renderer.AssertExpectations(t)
}

func TestReportHandler_MonthlyStatement_InvalidYear(t *testing.T) {
	transactionRepo := new(MockTransactionRepository)
	renderer := new(MockPDFRenderer)
	handler := setupReportHandler(transactionRepo, renderer)

	router := setupTestRouter()
	router.GET("/reports/statements/:year/:month", handler.MonthlyStatement)

	req := httptest.NewRequest(http.MethodGet, "/reports/statements/abc/7", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportHandler_MonthlyStatement_MonthOutOfRange(t *testing.T) {
	transactionRepo := new(MockTransactionRepository)
	renderer := new(MockPDFRenderer)
	handler := setupReportHandler(transactionRepo, renderer)

	router := setupTestRouter()
	router.GET("/reports/statements/:year/:month", handler.MonthlyStatement)

	req := httptest.NewRequest(http.MethodGet, "/reports/statements/2025/0", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	transactionRepo.AssertNotCalled(t, "FindByPeriod", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReportHandler_MonthlyStatement_RenderFailure(t *testing.T) {
	transactionRepo := new(MockTransactionRepository)
	renderer := new(MockPDFRenderer)
	handler := setupReportHandler(transactionRepo, renderer)

	period, _ := snapshot.NewPeriod(2025, time.July)
	transactionRepo.On("FindByPeriod", mock.Anything, period.Start(), period.End(), mock.Anything).
		Return([]ledger.Transaction{}, nil)
	renderer.On("Render", mock.Anything, mock.AnythingOfType("*reportpdf.RenderRequest")).
		Return(nil, assert.AnError)

	router := setupTestRouter()
	router.GET("/reports/statements/:year/:month", handler.MonthlyStatement)

	req := httptest.NewRequest(http.MethodGet, "/reports/statements/2025/7", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	renderer.AssertExpectations(t)
}
