package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func textHandler(status int, body string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(status, body)
	}
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())

	assert.NotNil(t, r)
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)
}

func TestWithAPIVersion(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)

	g := NewDomainGroup("system", "/system")
	g.GET("/ping", textHandler(http.StatusOK, "pong"))
	r.Register(g).Setup()

	assert.Equal(t, http.StatusOK, serve(engine, "GET", "/api/v2/system/ping").Code)
	assert.Equal(t, http.StatusNotFound, serve(engine, "GET", "/api/v1/system/ping").Code)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	g := NewDomainGroup("system", "/system")
	g.GET("/ping", textHandler(http.StatusOK, "pong"))
	r.Register(g)
	assert.Len(t, r.registrars, 1)

	// Nothing is mounted until Setup runs
	assert.Equal(t, http.StatusNotFound, serve(engine, "GET", "/api/v1/system/ping").Code)

	r.Setup()
	w := serve(engine, "GET", "/api/v1/system/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestDomainGroup_NameAndPrefix(t *testing.T) {
	g := NewDomainGroup("registry", "/registry")
	assert.Equal(t, "registry", g.Name())
	assert.Equal(t, "/registry", g.Prefix())
}

func TestDomainGroup_Methods(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("ledger", "/ledger")
	g.GET("/transactions", textHandler(http.StatusOK, "list")).
		POST("/transactions", textHandler(http.StatusCreated, "created")).
		PUT("/transactions/:id", textHandler(http.StatusOK, "updated")).
		DELETE("/transactions/:id", textHandler(http.StatusNoContent, ""))

	g.RegisterRoutes(engine.Group("/api/v1"))

	tests := []struct {
		method string
		path   string
		status int
	}{
		{"GET", "/api/v1/ledger/transactions", http.StatusOK},
		{"POST", "/api/v1/ledger/transactions", http.StatusCreated},
		{"PUT", "/api/v1/ledger/transactions/123", http.StatusOK},
		{"DELETE", "/api/v1/ledger/transactions/123", http.StatusNoContent},
		{"PATCH", "/api/v1/ledger/transactions/123", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			assert.Equal(t, tt.status, serve(engine, tt.method, tt.path).Code)
		})
	}
}

func TestDomainGroup_EmptyPath(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("snapshots", "/snapshots")
	g.GET("", textHandler(http.StatusOK, "list"))
	g.RegisterRoutes(engine.Group("/api/v1"))

	assert.Equal(t, http.StatusOK, serve(engine, "GET", "/api/v1/snapshots").Code)
}

func TestDomainGroup_Middleware(t *testing.T) {
	t.Run("wraps routes declared before Use", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("backfill", "/backfill")
		g.POST("/runs", textHandler(http.StatusOK, "run"))

		// Routes bind lazily, so middleware added afterwards still applies
		g.Use(func(c *gin.Context) {
			c.Header("X-Run-Guard", "on")
			c.Next()
		})

		g.RegisterRoutes(engine.Group("/api/v1"))

		w := serve(engine, "POST", "/api/v1/backfill/runs")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "on", w.Header().Get("X-Run-Guard"))
	})

	t.Run("does not leak to sibling groups", func(t *testing.T) {
		engine := gin.New()
		api := engine.Group("/api/v1")

		guarded := NewDomainGroup("backfill", "/backfill")
		guarded.Use(func(c *gin.Context) {
			c.Header("X-Guarded", "yes")
			c.Next()
		})
		guarded.POST("/runs", textHandler(http.StatusOK, "run"))
		guarded.RegisterRoutes(api)

		open := NewDomainGroup("system", "/system")
		open.GET("/ping", textHandler(http.StatusOK, "pong"))
		open.RegisterRoutes(api)

		w := serve(engine, "GET", "/api/v1/system/ping")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("X-Guarded"))
	})
}

func TestMultipleDomainGroups(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	ledger := NewDomainGroup("ledger", "/ledger")
	ledger.GET("/transactions", textHandler(http.StatusOK, "transactions"))

	registry := NewDomainGroup("registry", "/registry")
	registry.GET("/companies", textHandler(http.StatusOK, "companies"))

	r.Register(ledger).Register(registry).Setup()

	w := serve(engine, "GET", "/api/v1/ledger/transactions")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "transactions", w.Body.String())

	w = serve(engine, "GET", "/api/v1/registry/companies")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "companies", w.Body.String())
}
