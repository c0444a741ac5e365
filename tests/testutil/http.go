package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbook/backend/internal/interfaces/http/dto"
)

// Envelope mirrors the API response envelope with the data kept raw so
// callers can decode it into their own types.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

// HTTPTestCase drives one request against a handler and checks the envelope
type HTTPTestCase struct {
	Name    string
	Method  string
	Path    string
	Body    any
	Headers map[string]string

	ExpectedStatus  int
	ExpectedErrCode string

	Setup    func(t *testing.T, tc *TestContext)
	Validate func(t *testing.T, tc *TestContext)
}

// RunHTTPTestCases runs each case as a subtest against the handler
func RunHTTPTestCases(t *testing.T, handler gin.HandlerFunc, cases []HTTPTestCase) {
	t.Helper()

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			RunHTTPTestCase(t, handler, tc)
		})
	}
}

// RunHTTPTestCase executes a single case: build the request, run the
// handler, then check status and error code before the Validate hook.
func RunHTTPTestCase(t *testing.T, handler gin.HandlerFunc, tc HTTPTestCase) {
	t.Helper()

	method := tc.Method
	if method == "" {
		method = http.MethodGet
	}
	path := tc.Path
	if path == "" {
		path = "/"
	}

	req := httptest.NewRequest(method, path, jsonBody(t, tc.Body))
	if tc.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range tc.Headers {
		req.Header.Set(k, v)
	}

	testCtx := NewTestContextWithRequest(t, req)
	if tc.Setup != nil {
		tc.Setup(t, testCtx)
	}

	handler(testCtx.Context)

	if tc.ExpectedStatus != 0 {
		assert.Equal(t, tc.ExpectedStatus, testCtx.ResponseCode(),
			"unexpected status, body: %s", testCtx.ResponseBody())
	}
	if tc.ExpectedErrCode != "" {
		RequireErrorCode(t, testCtx.Recorder, tc.ExpectedErrCode)
	}

	if tc.Validate != nil {
		tc.Validate(t, testCtx)
	}
}

// PerformRequest runs a request through a full engine, middleware included
func PerformRequest(t *testing.T, engine *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, jsonBody(t, body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

// DecodeEnvelope unmarshals the recorded body as a response envelope
func DecodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) Envelope {
	t.Helper()

	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	return env
}

// DecodeData requires a successful envelope and decodes its data into out
func DecodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()

	env := DecodeEnvelope(t, w)
	require.True(t, env.Success, "expected success envelope, body: %s", w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, out))
}

// AssertSuccessEnvelope asserts the recorded response is a success envelope
func AssertSuccessEnvelope(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()

	env := DecodeEnvelope(t, w)
	assert.True(t, env.Success, "expected success, body: %s", w.Body.String())
	assert.Nil(t, env.Error)
}

// RequireErrorCode asserts a failure envelope carrying the given error code
func RequireErrorCode(t *testing.T, w *httptest.ResponseRecorder, code string) {
	t.Helper()

	env := DecodeEnvelope(t, w)
	require.False(t, env.Success, "expected error envelope, body: %s", w.Body.String())
	require.NotNil(t, env.Error, "expected error details")
	assert.Equal(t, code, env.Error.Code)
}

// jsonBody marshals a request body, or returns nil for a bodyless request
func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()

	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	require.NoError(t, err, "marshal request body")
	return bytes.NewReader(data)
}
