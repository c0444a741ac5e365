// Package testutil provides shared fixtures and helpers for FinBook tests:
// mocked GORM databases, gin test contexts, BRL money amounts and valid
// Brazilian tax documents generated from seeds.
package testutil

import (
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/finbook/backend/internal/domain/shared/valueobject"
	"github.com/finbook/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockDB is a GORM handle backed by sqlmock instead of a real server.
// Callers script expectations on Mock and must Close when done.
type MockDB struct {
	Gorm *gorm.DB
	Mock sqlmock.Sqlmock
	Conn *sql.DB
}

// NewMockDB opens a GORM connection over a fresh sqlmock
func NewMockDB(t *testing.T) *MockDB {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err, "create sqlmock")

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       conn,
		DriverName: "postgres",
	}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err, "open gorm over sqlmock")

	return &MockDB{Gorm: gormDB, Mock: mock, Conn: conn}
}

// Close releases the underlying mock connection
func (m *MockDB) Close() error {
	return m.Conn.Close()
}

// ExpectationsWereMet fails the test if scripted expectations are left over
func (m *MockDB) ExpectationsWereMet(t *testing.T) {
	t.Helper()
	require.NoError(t, m.Mock.ExpectationsWereMet(), "unmet database expectations")
}

// TestContext bundles a gin context with the recorder capturing its output
type TestContext struct {
	Context  *gin.Context
	Recorder *httptest.ResponseRecorder
	Engine   *gin.Engine
}

// NewTestContext creates a gin test context with an empty GET request attached
func NewTestContext(t *testing.T) *TestContext {
	t.Helper()
	return NewTestContextWithRequest(t, httptest.NewRequest(http.MethodGet, "/", nil))
}

// NewTestContextWithRequest creates a gin test context around the given request
func NewTestContextWithRequest(t *testing.T, req *http.Request) *TestContext {
	t.Helper()

	w := httptest.NewRecorder()
	c, engine := gin.CreateTestContext(w)
	c.Request = req

	return &TestContext{Context: c, Recorder: w, Engine: engine}
}

// SetRequestID stores a request ID under the key the middleware uses, so
// handlers resolve it the same way they do in production.
func (tc *TestContext) SetRequestID(id string) {
	tc.Context.Set(middleware.RequestIDKey, id)
}

// SetHeader sets a header on the request
func (tc *TestContext) SetHeader(key, value string) {
	tc.Context.Request.Header.Set(key, value)
}

// ResponseBody returns the recorded response body
func (tc *TestContext) ResponseBody() []byte {
	return tc.Recorder.Body.Bytes()
}

// ResponseCode returns the recorded HTTP status code
func (tc *TestContext) ResponseCode() int {
	return tc.Recorder.Code
}

// NewTestUUID derives a reproducible UUID from a seed string
func NewTestUUID(seed string) uuid.UUID {
	namespace := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	return uuid.NewSHA1(namespace, []byte(seed))
}

// BRL builds a BRL money amount from its decimal string, failing the test
// on a malformed value.
func BRL(t *testing.T, amount string) valueobject.Money {
	t.Helper()

	money, err := valueobject.NewMoneyFromString(amount, valueobject.BRL)
	require.NoError(t, err, "invalid BRL amount %q", amount)
	return money
}

// ValidCNPJ derives a valid 14-digit CNPJ from a seed. The seed fills the
// 8-digit registration number and the branch is fixed at 0001, the
// headquarters suffix real CNPJs carry.
func ValidCNPJ(seed uint64) string {
	base := fmt.Sprintf("%08d0001", seed%100_000_000)

	firstWeights := [12]int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	sum := 0
	for i := 0; i < 12; i++ {
		sum += int(base[i]-'0') * firstWeights[i]
	}
	d1 := mod11CheckDigit(sum)

	secondWeights := [12]int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3}
	sum = 0
	for i := 0; i < 12; i++ {
		sum += int(base[i]-'0') * secondWeights[i]
	}
	sum += d1 * 2
	d2 := mod11CheckDigit(sum)

	return fmt.Sprintf("%s%d%d", base, d1, d2)
}

// ValidCPF derives a valid 11-digit CPF from a seed
func ValidCPF(seed uint64) string {
	base := fmt.Sprintf("%09d", seed%1_000_000_000)
	if allSameDigit(base) {
		// Uniform sequences are rejected by the validator no matter the
		// check digits, so nudge the last position.
		base = base[:8] + string(byte('0'+(base[8]-'0'+1)%10))
	}

	sum := 0
	for i := 0; i < 9; i++ {
		sum += int(base[i]-'0') * (10 - i)
	}
	d1 := mod11CheckDigit(sum)

	sum = 0
	for i := 0; i < 9; i++ {
		sum += int(base[i]-'0') * (11 - i)
	}
	sum += d1 * 2
	d2 := mod11CheckDigit(sum)

	return fmt.Sprintf("%s%d%d", base, d1, d2)
}

func mod11CheckDigit(sum int) int {
	rem := sum % 11
	if rem < 2 {
		return 0
	}
	return 11 - rem
}

func allSameDigit(digits string) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return true
}
