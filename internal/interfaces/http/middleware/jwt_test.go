package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/erp/bankfeed/internal/infrastructure/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret-key-at-least-32-chars"

func newAdminRouter(tokens *auth.TokenService) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), AdminAuth(tokens, nil))
	router.GET("/admin", func(c *gin.Context) {
		c.String(http.StatusOK, GetJWTSubject(c))
	})
	return router
}

func doAdminRequest(router *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	if authorization != "" {
		req.Header.Set(AuthHeaderKey, authorization)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAdminAuth_ValidToken(t *testing.T) {
	tokens := auth.NewTokenService(testJWTSecret, "bankfeed")
	token, _, err := tokens.Issue("ops", auth.RoleAdmin, time.Hour)
	require.NoError(t, err)

	w := doAdminRequest(newAdminRouter(tokens), BearerPrefix+token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ops", w.Body.String())
}

func TestAdminAuth_Rejections(t *testing.T) {
	tokens := auth.NewTokenService(testJWTSecret, "bankfeed")
	router := newAdminRouter(tokens)

	viewer, _, err := tokens.Issue("viewer", "viewer", time.Hour)
	require.NoError(t, err)
	foreign, _, err := auth.NewTokenService(testJWTSecret, "elsewhere").Issue("ops", auth.RoleAdmin, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name          string
		authorization string
		status        int
		code          string
	}{
		{"missing header", "", http.StatusUnauthorized, "ERR_TOKEN_INVALID"},
		{"basic scheme", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, "ERR_TOKEN_INVALID"},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, "ERR_TOKEN_INVALID"},
		{"garbage", "Bearer nope", http.StatusUnauthorized, "ERR_TOKEN_INVALID"},
		{"wrong issuer", BearerPrefix + foreign, http.StatusUnauthorized, "ERR_TOKEN_INVALID"},
		{"non-admin role", BearerPrefix + viewer, http.StatusForbidden, "ERR_FORBIDDEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doAdminRequest(router, tt.authorization)

			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.code)
		})
	}
}

func TestGetJWTClaims_NotFound(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, GetJWTClaims(c))
	assert.Empty(t, GetJWTSubject(c))
}
