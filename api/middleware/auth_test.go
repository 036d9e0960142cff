package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgauth "github.com/maisonaurelle/boutique-backend/pkg/auth"
	"github.com/maisonaurelle/boutique-backend/pkg/config"
	"github.com/maisonaurelle/boutique-backend/pkg/enums"
	"github.com/maisonaurelle/boutique-backend/pkg/logger"
)

func discardLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "maison-aurelle-test",
		ExpirationMinutes: 60,
	}
}

func mintToken(t *testing.T, cfg config.JWTConfig, role enums.ShopperRole) (string, uuid.UUID) {
	t.Helper()
	userID := uuid.New()
	token, err := pkgauth.MintAccessToken(cfg, time.Now(), pkgauth.AccessTokenPayload{
		UserID: userID,
		Email:  "staff@maisonaurelle.com",
		Role:   role,
		JTI:    uuid.NewString(),
	})
	require.NoError(t, err)
	return token, userID
}

func TestAuthRejectsMissingCredentials(t *testing.T) {
	handler := Auth(testJWTConfig(), discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without credentials")
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestAuthRejectsTamperedToken(t *testing.T) {
	token, _ := mintToken(t, config.JWTConfig{Secret: "other-secret", Issuer: "maison-aurelle-test", ExpirationMinutes: 60}, enums.ShopperRoleAdmin)

	handler := Auth(testJWTConfig(), discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run with a bad signature")
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestAuthSeedsIdentityContext(t *testing.T) {
	cfg := testJWTConfig()
	token, userID := mintToken(t, cfg, enums.ShopperRoleAdmin)

	var gotUserID, gotRole string
	handler := Auth(cfg, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = UserIDFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, userID.String(), gotUserID)
	assert.Equal(t, "admin", gotRole)
}

func TestShopperPrefersBearerIdentity(t *testing.T) {
	cfg := testJWTConfig()
	token, userID := mintToken(t, cfg, enums.ShopperRoleCustomer)

	var key string
	var persistent bool
	handler := Shopper(cfg, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, persistent = OwnerKeyFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(sessionHeader, "anon-session")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	assert.Equal(t, userID.String(), key)
	assert.True(t, persistent)
}

func TestShopperMalformedTokenFallsBackToSession(t *testing.T) {
	var key string
	var persistent bool
	handler := Shopper(testJWTConfig(), discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, persistent = OwnerKeyFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	req.Header.Set(sessionHeader, "anon-session")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code, "an expired login never blocks browsing")
	assert.Equal(t, "anon-session", key)
	assert.False(t, persistent)
}

func TestShopperAnonymousWithoutHeaders(t *testing.T) {
	var key string
	handler := Shopper(testJWTConfig(), discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, _ = OwnerKeyFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	assert.Empty(t, key)
}

func TestRequireRoleForbidsMismatch(t *testing.T) {
	handler := RequireRole("admin", discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run for non-admins")
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	req = req.WithContext(WithRole(req.Context(), "customer"))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestRequireRoleAllowsMatch(t *testing.T) {
	calls := 0
	handler := RequireRole("admin", discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	req = req.WithContext(WithRole(req.Context(), "admin"))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	assert.Equal(t, 1, calls)
}
