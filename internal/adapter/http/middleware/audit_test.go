package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestAuditLog_WriteSuccess(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)
	userID := uuid.New()

	r := gin.New()
	r.Use(AuditLog(log))
	r.POST("/api/v1/invest/deposit", func(c *gin.Context) {
		c.Set(CtxUserID, userID)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invest/deposit", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, buf.String(), `"action":"invest_deposit"`)
	assert.Contains(t, buf.String(), `"resource":"investment"`)
	assert.Contains(t, buf.String(), userID.String())
}

func TestAuditLog_SkipsGET(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	r := gin.New()
	r.Use(AuditLog(log))
	r.GET("/api/v1/wallets", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"balance": 100})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/wallets", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, buf.String())
}

func TestAuditLog_SkipsFailedRequests(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	r := gin.New()
	r.Use(AuditLog(log))
	r.POST("/api/v1/wallets/convert", func(c *gin.Context) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad"})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/wallets/convert", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, buf.String())
}

func TestMapPathToAction(t *testing.T) {
	tests := []struct {
		path     string
		method   string
		action   string
		resource string
	}{
		{"/api/v1/auth/register", "POST", "register", "user"},
		{"/api/v1/auth/login", "POST", "login", "session"},
		{"/api/v1/users/me/payout-preference", "PUT", "set_payout_preference", "user"},
		{"/api/v1/wallets/deposit", "POST", "wallet_deposit", "wallet"},
		{"/api/v1/wallets/convert", "POST", "convert", "wallet"},
		{"/api/v1/invest/reinvest", "POST", "reinvest", "investment"},
		{"/api/v1/invest/claim", "POST", "claim", "investment"},
		{"/api/v1/invest/auto-compound", "PUT", "set_auto_compound", "investment"},
		{"/api/v1/admin/fx/rates", "PUT", "set_fx_rate", "fx_rate"},
		{"/api/v1/admin/settlements", "POST", "settle", "payout"},
		{"/unknown", "POST", "", ""},
	}

	for _, tc := range tests {
		action, resource := mapPathToAction(tc.path, tc.method)
		assert.Equal(t, tc.action, action, "path=%s method=%s", tc.path, tc.method)
		assert.Equal(t, tc.resource, resource, "path=%s method=%s", tc.path, tc.method)
	}
}
