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

func TestRouter_SetupRegistersGroups(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v1"))

	ledgerRoutes := NewDomainGroup("ledger", "/payables")
	ledgerRoutes.GET("", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	ledgerRoutes.POST("/:id/settle", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id")})
	})

	r.Register(ledgerRoutes)
	r.Setup()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/payables", nil)
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/payables/abc/settle", nil)
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "abc")
}

func TestRouter_GroupMiddleware(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	group := NewDomainGroup("reports", "/reports")
	group.Use(func(c *gin.Context) {
		c.Header("X-Group", "reports")
		c.Next()
	})
	group.GET("/summary", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	r.Register(group)
	r.Setup()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/summary", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "reports", w.Header().Get("X-Group"))
}

func TestRouter_APIMiddleware(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	called := false
	r.Use(func(c *gin.Context) {
		called = true
		c.Next()
	})

	group := NewDomainGroup("sales", "/sales")
	group.GET("", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.Register(group)
	r.Setup()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, called)
}

func TestDomainGroup_Subgroups(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	parent := NewDomainGroup("ledger", "/ledger")
	child := parent.Group("maintenance", "/maintenance")
	child.POST("/refresh", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	r.Register(parent)
	r.Setup()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ledger/maintenance/refresh", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "ledger", parent.Name())
	assert.Equal(t, "/maintenance", child.Prefix())
}
