package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	backfillapp "github.com/finbook/backend/internal/application/backfill"
	importapp "github.com/finbook/backend/internal/application/import"
	ledgerapp "github.com/finbook/backend/internal/application/ledger"
	registryapp "github.com/finbook/backend/internal/application/registry"
	reportapp "github.com/finbook/backend/internal/application/report"
	snapshotapp "github.com/finbook/backend/internal/application/snapshot"
	"github.com/finbook/backend/internal/domain/shared"
	"github.com/finbook/backend/internal/domain/taxdoc"
	csvimport "github.com/finbook/backend/internal/infrastructure/import"
	"github.com/finbook/backend/internal/infrastructure/persistence"
	"github.com/finbook/backend/internal/infrastructure/reportpdf"
	"github.com/finbook/backend/internal/interfaces/http/handler"
	"github.com/finbook/backend/internal/interfaces/http/middleware"
	"github.com/finbook/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubPDFRenderer satisfies reportpdf.PDFRenderer without a browser.
// Statement endpoints return its fixed payload.
type stubPDFRenderer struct{}

func (stubPDFRenderer) Render(_ context.Context, _ *reportpdf.RenderRequest) (*reportpdf.RenderResult, error) {
	return &reportpdf.RenderResult{PDFData: []byte("%PDF-1.4 stub"), PageCount: 1}, nil
}

func (stubPDFRenderer) Close() error { return nil }

// APITestServer wraps the test database and HTTP server with the full
// FinBook API registered, wired the same way as the production server.
type APITestServer struct {
	DB     *TestDB
	Engine *gin.Engine
	Router *router.Router
}

// NewAPITestServer creates a test server with all API groups registered.
// Object storage is left unset, so attachment endpoints are not usable;
// PDF rendering is stubbed.
func NewAPITestServer(t *testing.T) *APITestServer {
	t.Helper()

	gin.SetMode(gin.TestMode)
	testDB := NewTestDB(t)
	log := zap.NewNop()

	// Repositories
	transactionRepo := persistence.NewGormTransactionRepository(testDB.DB)
	categoryRepo := persistence.NewGormCategoryRepository(testDB.DB)
	fiscalBookRepo := persistence.NewGormFiscalBookRepository(testDB.DB)
	attachmentRepo := persistence.NewGormAttachmentRepository(testDB.DB)
	companyRepo := persistence.NewGormCompanyRepository(testDB.DB)
	personRepo := persistence.NewGormPersonRepository(testDB.DB)
	snapshotRepo := persistence.NewGormBalanceSnapshotRepository(testDB.DB)

	// Application services
	transactionService := ledgerapp.NewTransactionService(transactionRepo, categoryRepo, fiscalBookRepo)
	categoryService := ledgerapp.NewCategoryService(categoryRepo, transactionRepo)
	fiscalBookService := ledgerapp.NewFiscalBookService(fiscalBookRepo, transactionRepo)
	attachmentService := ledgerapp.NewAttachmentService(attachmentRepo, transactionRepo, nil, log)
	companyService := registryapp.NewCompanyService(companyRepo, transactionRepo)
	personService := registryapp.NewPersonService(personRepo, transactionRepo)
	snapshotService := snapshotapp.NewBalanceSnapshotService(snapshotRepo, transactionRepo, log,
		snapshotapp.BalanceSnapshotServiceConfig{RetentionMonths: 36})

	importService := importapp.NewTransactionImportService(transactionRepo, log)
	importService.SetProcessor(csvimport.NewImportProcessor())

	backfillService := backfillapp.NewService(
		persistence.NewGormTransactionScope(testDB.DB),
		taxdoc.NewChecksumValidator(),
		nil,
		shared.RunLockConfig{},
		log,
	)

	reportService := reportapp.NewFiscalBookReportService(
		fiscalBookRepo,
		transactionRepo,
		categoryRepo,
		companyRepo,
		personRepo,
		reportpdf.NewTemplateEngine(),
		stubPDFRenderer{},
		log,
	)

	// Handlers
	transactionHandler := handler.NewTransactionHandler(transactionService, attachmentService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	fiscalBookHandler := handler.NewFiscalBookHandler(fiscalBookService, reportService)
	companyHandler := handler.NewCompanyHandler(companyService)
	personHandler := handler.NewPersonHandler(personService)
	snapshotHandler := handler.NewSnapshotHandler(snapshotService)
	importHandler := handler.NewImportHandler(importService)
	backfillHandler := handler.NewBackfillHandler(backfillService)
	reportHandler := handler.NewReportHandler(reportService)
	systemHandler := handler.NewSystemHandler("finbook-backend", "test")

	middleware.SetupValidator()

	engine := gin.New()
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Register routes matching main.go setup
	ledgerRoutes := router.NewDomainGroup("ledger", "/ledger")
	ledgerRoutes.POST("/transactions", transactionHandler.Create)
	ledgerRoutes.GET("/transactions", transactionHandler.List)
	ledgerRoutes.GET("/transactions/:id", transactionHandler.GetByID)
	ledgerRoutes.PUT("/transactions/:id", transactionHandler.Update)
	ledgerRoutes.DELETE("/transactions/:id", transactionHandler.Delete)
	ledgerRoutes.POST("/transactions/:id/clear", transactionHandler.Clear)
	ledgerRoutes.POST("/transactions/:id/reconcile", transactionHandler.Reconcile)
	ledgerRoutes.POST("/transactions/:id/cancel", transactionHandler.Cancel)
	ledgerRoutes.POST("/categories", categoryHandler.Create)
	ledgerRoutes.GET("/categories", categoryHandler.List)
	ledgerRoutes.GET("/categories/active", categoryHandler.ListActive)
	ledgerRoutes.GET("/categories/:id", categoryHandler.GetByID)
	ledgerRoutes.PUT("/categories/:id", categoryHandler.Update)
	ledgerRoutes.DELETE("/categories/:id", categoryHandler.Delete)
	ledgerRoutes.POST("/fiscal-books", fiscalBookHandler.Create)
	ledgerRoutes.GET("/fiscal-books", fiscalBookHandler.List)
	ledgerRoutes.GET("/fiscal-books/:id", fiscalBookHandler.GetByID)
	ledgerRoutes.PUT("/fiscal-books/:id", fiscalBookHandler.Update)
	ledgerRoutes.DELETE("/fiscal-books/:id", fiscalBookHandler.Delete)
	ledgerRoutes.POST("/fiscal-books/:id/close", fiscalBookHandler.Close)
	ledgerRoutes.POST("/fiscal-books/:id/reopen", fiscalBookHandler.Reopen)
	ledgerRoutes.GET("/fiscal-books/:id/export", fiscalBookHandler.Export)

	registryRoutes := router.NewDomainGroup("registry", "/registry")
	registryRoutes.POST("/companies", companyHandler.Create)
	registryRoutes.GET("/companies", companyHandler.List)
	registryRoutes.GET("/companies/by-cnpj/:cnpj", companyHandler.GetByCNPJ)
	registryRoutes.GET("/companies/:id", companyHandler.GetByID)
	registryRoutes.PUT("/companies/:id", companyHandler.Update)
	registryRoutes.DELETE("/companies/:id", companyHandler.Delete)
	registryRoutes.POST("/companies/:id/partners", companyHandler.AddPartner)
	registryRoutes.POST("/persons", personHandler.Create)
	registryRoutes.GET("/persons", personHandler.List)
	registryRoutes.GET("/persons/:id", personHandler.GetByID)
	registryRoutes.PUT("/persons/:id", personHandler.Update)
	registryRoutes.DELETE("/persons/:id", personHandler.Delete)

	snapshotRoutes := router.NewDomainGroup("snapshots", "/snapshots")
	snapshotRoutes.GET("", snapshotHandler.ListRange)
	snapshotRoutes.GET("/:year/:month", snapshotHandler.GetByPeriod)
	snapshotRoutes.POST("/generate", snapshotHandler.Generate)
	snapshotRoutes.POST("/refresh", snapshotHandler.Refresh)
	snapshotRoutes.POST("/cleanup", snapshotHandler.Cleanup)

	importRoutes := router.NewDomainGroup("import", "/import")
	importRoutes.POST("/transactions", importHandler.ImportTransactions)
	importRoutes.GET("/transactions/rules", importHandler.GetValidationRules)

	backfillRoutes := router.NewDomainGroup("backfill", "/backfill")
	backfillRoutes.POST("/runs", backfillHandler.Run)

	reportRoutes := router.NewDomainGroup("reports", "/reports")
	reportRoutes.GET("/statements/:year/:month", reportHandler.MonthlyStatement)

	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	r.Register(ledgerRoutes).
		Register(registryRoutes).
		Register(snapshotRoutes).
		Register(importRoutes).
		Register(backfillRoutes).
		Register(reportRoutes).
		Register(systemRoutes)
	r.Setup()

	return &APITestServer{
		DB:     testDB,
		Engine: engine,
		Router: r,
	}
}

// Request makes an HTTP request to the test server
func (ts *APITestServer) Request(method, path string, body any) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBody)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	ts.Engine.ServeHTTP(w, req)
	return w
}

// UploadCSV posts a CSV file as multipart form data to the import endpoint
func (ts *APITestServer) UploadCSV(t *testing.T, path, fileName, csvContent string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte(csvContent))
	require.NoError(t, err)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	w := httptest.NewRecorder()
	ts.Engine.ServeHTTP(w, req)
	return w
}

// APIResponse mirrors the standard response envelope for assertions
type APIResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta *struct {
		Total    int64 `json:"total"`
		Page     int   `json:"page"`
		PageSize int   `json:"page_size"`
	} `json:"meta"`
}

// decodeResponse unmarshals the response envelope, failing the test on
// malformed JSON
func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "Response body: %s", w.Body.String())
	return resp
}

// decodeData unmarshals the data field of a successful response into out
func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	resp := decodeResponse(t, w)
	require.True(t, resp.Success, "Response body: %s", w.Body.String())
	require.NoError(t, json.Unmarshal(resp.Data, out))
}

// requireErrorCode asserts a failed response carrying the given error code
func requireErrorCode(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedCode string) {
	t.Helper()
	require.Equal(t, expectedStatus, w.Code, "Response body: %s", w.Body.String())
	resp := decodeResponse(t, w)
	require.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	require.Equal(t, expectedCode, resp.Error.Code)
}
