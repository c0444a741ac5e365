package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	registryapp "github.com/finbook/backend/internal/application/registry"
	"github.com/finbook/backend/internal/domain/registry"
	"github.com/finbook/backend/internal/domain/shared"
	"github.com/finbook/backend/internal/interfaces/http/middleware"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockPersonRepository implements registry.PersonRepository for testing
type MockPersonRepository struct {
	mock.Mock
}

func (m *MockPersonRepository) FindByID(ctx context.Context, id uuid.UUID) (*registry.Person, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registry.Person), args.Error(1)
}

func (m *MockPersonRepository) FindByCPF(ctx context.Context, cpf string) (*registry.Person, error) {
	args := m.Called(ctx, cpf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registry.Person), args.Error(1)
}

func (m *MockPersonRepository) FindAll(ctx context.Context, filter shared.Filter) ([]registry.Person, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]registry.Person), args.Error(1)
}

func (m *MockPersonRepository) FindByStatus(ctx context.Context, status registry.PersonStatus, filter shared.Filter) ([]registry.Person, error) {
	args := m.Called(ctx, status, filter)
	return args.Get(0).([]registry.Person), args.Error(1)
}

func (m *MockPersonRepository) Save(ctx context.Context, person *registry.Person) error {
	args := m.Called(ctx, person)
	return args.Error(0)
}

func (m *MockPersonRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPersonRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPersonRepository) ExistsByCPF(ctx context.Context, cpf string) (bool, error) {
	args := m.Called(ctx, cpf)
	return args.Bool(0), args.Error(1)
}

var _ registry.PersonRepository = (*MockPersonRepository)(nil)

func setupPersonHandler(personRepo *MockPersonRepository, transactionRepo *MockTransactionRepository) *PersonHandler {
	// Registers the cnpj/cpf binding tags the request DTOs use
	middleware.SetupValidator()
	personService := registryapp.NewPersonService(personRepo, transactionRepo)
	return NewPersonHandler(personService)
}

func createTestPerson() *registry.Person {
	person, _ := registry.NewPerson("529.982.247-25", "João da Silva")
	person.ClearDomainEvents()
	return person
}

func TestPersonHandler_Create_Success(t *testing.T) {
	personRepo := new(MockPersonRepository)
	transactionRepo := new(MockTransactionRepository)
	handler := setupPersonHandler(personRepo, transactionRepo)

	// The service formats the CPF before the uniqueness check
	personRepo.On("ExistsByCPF", mock.Anything, "529.982.247-25").Return(false, nil)
	personRepo.On("Save", mock.Anything, mock.AnythingOfType("*registry.Person")).Return(nil)

	router := setupTestRouter()
	router.POST("/persons", handler.Create)

	reqBody := registryapp.CreatePersonRequest{
		CPF:      "52998224725",
		FullName: "João da Silva",
	}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPost, "/persons", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "529.982.247-25", data["cpf"])

	personRepo.AssertExpectations(t)
}

func TestPersonHandler_Create_BadCheckDigits(t *testing.T) {
	personRepo := new(MockPersonRepository)
	transactionRepo := new(MockTransactionRepository)
	handler := setupPersonHandler(personRepo, transactionRepo)

	router := setupTestRouter()
	router.POST("/persons", handler.Create)

	reqBody := registryapp.CreatePersonRequest{
		CPF:      "11111111111",
		FullName: "João da Silva",
	}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPost, "/persons", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	personRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestPersonHandler_Create_Duplicate(t *testing.T) {
	personRepo := new(MockPersonRepository)
	transactionRepo := new(MockTransactionRepository)
	handler := setupPersonHandler(personRepo, transactionRepo)

	personRepo.On("ExistsByCPF", mock.Anything, "529.982.247-25").Return(true, nil)

	router := setupTestRouter()
	router.POST("/persons", handler.Create)

	reqBody := registryapp.CreatePersonRequest{
		CPF:      "529.982.247-25",
		FullName: "João da Silva",
	}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPost, "/persons", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	personRepo.AssertExpectations(t)
}

func TestPersonHandler_GetByID_Success(t *testing.T) {
	personRepo := new(MockPersonRepository)
	transactionRepo := new(MockTransactionRepository)
	handler := setupPersonHandler(personRepo, transactionRepo)

	person := createTestPerson()
	personRepo.On("FindByID", mock.Anything, person.ID).Return(person, nil)

	router := setupTestRouter()
	router.GET("/persons/:id", handler.GetByID)

	req := httptest.NewRequest(http.MethodGet, "/persons/"+person.ID.String(), nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "João da Silva", data["full_name"])
	assert.Equal(t, "active", data["status"])

	personRepo.AssertExpectations(t)
}

func TestPersonHandler_GetByID_NotFound(t *testing.T) {
	personRepo := new(MockPersonRepository)
	transactionRepo := new(MockTransactionRepository)
	handler := setupPersonHandler(personRepo, transactionRepo)

	personRepo.On("FindByID", mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)

	router := setupTestRouter()
	router.GET("/persons/:id", handler.GetByID)

	req := httptest.NewRequest(http.MethodGet, "/persons/"+uuid.New().String(), nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	personRepo.AssertExpectations(t)
}

func TestPersonHandler_List_Success(t *testing.T) {
	personRepo := new(MockPersonRepository)
	transactionRepo := new(MockTransactionRepository)
	handler := setupPersonHandler(personRepo, transactionRepo)

	person := createTestPerson()
	personRepo.On("FindAll", mock.Anything, mock.Anything).Return([]registry.Person{*person}, nil)
	personRepo.On("Count", mock.Anything, mock.Anything).Return(int64(1), nil)

	router := setupTestRouter()
	router.GET("/persons", handler.List)

	req := httptest.NewRequest(http.MethodGet, "/persons?page=1&page_size=20", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.True(t, response["success"].(bool))
	assert.Len(t, response["data"], 1)

	meta := response["meta"].(map[string]interface{})
	assert.Equal(t, float64(1), meta["total"])

	personRepo.AssertExpectations(t)
}

func TestPersonHandler_List_AnonymousFilter(t *testing.T) {
	personRepo := new(MockPersonRepository)
	transactionRepo := new(MockTransactionRepository)
	handler := setupPersonHandler(personRepo, transactionRepo)

	anonymous, _ := registry.NewAnonymousPerson("***.456.789-**", "")
	anonymous.ClearDomainEvents()
	personRepo.On("FindByStatus", mock.Anything, registry.PersonStatusAnonymous, mock.Anything).
		Return([]registry.Person{*anonymous}, nil)
	personRepo.On("Count", mock.Anything, mock.Anything).Return(int64(1), nil)

	router := setupTestRouter()
	router.GET("/persons", handler.List)

	req := httptest.NewRequest(http.MethodGet, "/persons?status=anonymous", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	data := response["data"].([]interface{})
	assert.Len(t, data, 1)
	first := data[0].(map[string]interface{})
	assert.Equal(t, registry.AnonymousPersonName, first["full_name"])
	assert.Equal(t, "***.456.789-**", first["cpf"])

	personRepo.AssertExpectations(t)
}

func TestPersonHandler_List_InvalidStatus(t *testing.T) {
	personRepo := new(MockPersonRepository)
	transactionRepo := new(MockTransactionRepository)
	handler := setupPersonHandler(personRepo, transactionRepo)

	router := setupTestRouter()
	router.GET("/persons", handler.List)

	req := httptest.NewRequest(http.MethodGet, "/persons?status=deleted", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPersonHandler_Update_Success(t *testing.T) {
	personRepo := new(MockPersonRepository)
	transactionRepo := new(MockTransactionRepository)
	handler := setupPersonHandler(personRepo, transactionRepo)

	person := createTestPerson()
	personRepo.On("FindByID", mock.Anything, person.ID).Return(person, nil)
	personRepo.On("Save", mock.Anything, mock.AnythingOfType("*registry.Person")).Return(nil)

	router := setupTestRouter()
	router.PUT("/persons/:id", handler.Update)

	newName := "João S. Souza"
	reqBody := registryapp.UpdatePersonRequest{FullName: &newName}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPut, "/persons/"+person.ID.String(), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "João S. Souza", data["full_name"])

	personRepo.AssertExpectations(t)
}

func TestPersonHandler_Update_AnonymousRejected(t *testing.T) {
	personRepo := new(MockPersonRepository)
	transactionRepo := new(MockTransactionRepository)
	handler := setupPersonHandler(personRepo, transactionRepo)

	anonymous, _ := registry.NewAnonymousPerson("123.***.*89-12", "")
	anonymous.ClearDomainEvents()
	personRepo.On("FindByID", mock.Anything, anonymous.ID).Return(anonymous, nil)

	router := setupTestRouter()
	router.PUT("/persons/:id", handler.Update)

	newName := "Nome Qualquer"
	reqBody := registryapp.UpdatePersonRequest{FullName: &newName}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPut, "/persons/"+anonymous.ID.String(), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	personRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestPersonHandler_Delete_Success(t *testing.T) {
	personRepo := new(MockPersonRepository)
	transactionRepo := new(MockTransactionRepository)
	handler := setupPersonHandler(personRepo, transactionRepo)

	person := createTestPerson()
	personRepo.On("FindByID", mock.Anything, person.ID).Return(person, nil)
	transactionRepo.On("Count", mock.Anything, mock.Anything).Return(int64(0), nil)
	personRepo.On("Delete", mock.Anything, person.ID).Return(nil)

	router := setupTestRouter()
	router.DELETE("/persons/:id", handler.Delete)

	req := httptest.NewRequest(http.MethodDelete, "/persons/"+person.ID.String(), nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	personRepo.AssertExpectations(t)
	transactionRepo.AssertExpectations(t)
}

func TestPersonHandler_Delete_InUse(t *testing.T) {
	personRepo := new(MockPersonRepository)
	transactionRepo := new(MockTransactionRepository)
	handler := setupPersonHandler(personRepo, transactionRepo)

	person := createTestPerson()
	personRepo.On("FindByID", mock.Anything, person.ID).Return(person, nil)
	transactionRepo.On("Count", mock.Anything, mock.Anything).Return(int64(3), nil)

	router := setupTestRouter()
	router.DELETE("/persons/:id", handler.Delete)

	req := httptest.NewRequest(http.MethodDelete, "/persons/"+person.ID.String(), nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	personRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
