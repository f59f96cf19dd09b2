package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	SetupValidator()
}

type settleBody struct {
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	PaymentMethod string          `json:"payment_method" binding:"required,payment_method"`
}

func settleTestRouter() *gin.Engine {
	router := gin.New()
	router.POST("/settle", func(c *gin.Context) {
		var body settleBody
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return router
}

func TestSetupValidator_PaymentMethodTag(t *testing.T) {
	router := settleTestRouter()

	t.Run("valid payment method passes", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/settle",
			strings.NewReader(`{"amount": "100.00", "payment_method": "PIX"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unknown payment method is rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/settle",
			strings.NewReader(`{"amount": "100.00", "payment_method": "BARTER"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "payment_method")
		assert.Contains(t, w.Body.String(), "Invalid payment method")
	})

	t.Run("field names come from json tags", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/settle",
			strings.NewReader(`{"payment_method": "PIX"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"amount"`)
		assert.Contains(t, w.Body.String(), "This field is required")
	})
}
