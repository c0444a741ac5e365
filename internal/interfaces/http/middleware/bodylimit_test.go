package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/finbook/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func bodyLimitRouter(limit int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(BodyLimit(limit))
	router.POST("/transactions", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.String(http.StatusBadRequest, "read failed")
			return
		}
		c.String(http.StatusOK, "ok")
	})
	return router
}

func postWithBody(router *gin.Engine, payload string, contentLength int64) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/transactions", strings.NewReader(payload))
	req.ContentLength = contentLength
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestBodyLimit(t *testing.T) {
	t.Run("body within the limit passes through", func(t *testing.T) {
		w := postWithBody(bodyLimitRouter(1024), `{"description":"Padaria"}`, 25)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("declared Content-Length above the limit is rejected up front", func(t *testing.T) {
		w := postWithBody(bodyLimitRouter(100), strings.Repeat("x", 200), 200)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeRequestTooLarge)
	})

	t.Run("streaming body hits MaxBytesReader when reading", func(t *testing.T) {
		// Without a declared Content-Length the up-front check cannot
		// fire; the wrapped reader still caps the stream
		w := postWithBody(bodyLimitRouter(50), strings.Repeat("x", 200), -1)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("zero limit disables the check", func(t *testing.T) {
		w := postWithBody(bodyLimitRouter(0), strings.Repeat("x", 5000), 5000)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("GET without a body is unaffected", func(t *testing.T) {
		router := bodyLimitRouter(10)
		router.GET("/transactions", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})

		req := httptest.NewRequest("GET", "/transactions", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
