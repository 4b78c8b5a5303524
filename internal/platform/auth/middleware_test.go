package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

var testSigningKey = []byte("test-secret-key-for-unit-tests-only")

func createTestToken(t *testing.T, claims jwt.RegisteredClaims, key []byte) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenStr, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return tokenStr
}

func runMiddleware(t *testing.T, mw echo.MiddlewareFunc, header string) (string, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var uid string
	err := mw(func(c echo.Context) error {
		uid = UserIDFromContext(c.Request().Context())
		return c.String(http.StatusOK, "ok")
	})(c)
	return uid, err
}

func assertUnauthorized(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", httpErr.Code)
	}
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	_, err := runMiddleware(t, JWTMiddleware(JWTConfig{SigningKey: testSigningKey}), "")
	assertUnauthorized(t, err)
}

func TestJWTMiddleware_InvalidFormat(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"no bearer prefix", "Token abc123"},
		{"missing token", "Bearer"},
		{"empty value", "Bearer "},
		{"basic auth", "Basic dXNlcjpwYXNz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runMiddleware(t, JWTMiddleware(JWTConfig{SigningKey: testSigningKey}), tt.header)
			assertUnauthorized(t, err)
		})
	}
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	tokenStr := createTestToken(t, jwt.RegisteredClaims{
		Subject:   "user-123",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}, testSigningKey)

	uid, err := runMiddleware(t, JWTMiddleware(JWTConfig{SigningKey: testSigningKey}), "Bearer "+tokenStr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if uid != "user-123" {
		t.Errorf("expected user_id=user-123, got %s", uid)
	}
}

func TestJWTMiddleware_RejectedTokens(t *testing.T) {
	valid := jwt.RegisteredClaims{
		Subject:   "user-123",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
	}
	expired := valid
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-1 * time.Hour))
	noSubject := valid
	noSubject.Subject = ""
	wrongIssuer := valid
	wrongIssuer.Issuer = "https://other.example.com"

	tests := []struct {
		name   string
		claims jwt.RegisteredClaims
		key    []byte
	}{
		{"expired", expired, testSigningKey},
		{"wrong key", valid, []byte("another-key-entirely-for-testing")},
		{"no subject", noSubject, testSigningKey},
		{"wrong issuer", wrongIssuer, testSigningKey},
	}

	cfg := JWTConfig{SigningKey: testSigningKey, Issuer: "https://idp.example.com"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.name != "wrong issuer" {
				tt.claims.Issuer = cfg.Issuer
			}
			tokenStr := createTestToken(t, tt.claims, tt.key)
			_, err := runMiddleware(t, JWTMiddleware(cfg), "Bearer "+tokenStr)
			assertUnauthorized(t, err)
		})
	}
}

func TestJWTMiddleware_Audience(t *testing.T) {
	cfg := JWTConfig{SigningKey: testSigningKey, Audience: "healthrec"}

	good := createTestToken(t, jwt.RegisteredClaims{
		Subject:   "user-1",
		Audience:  jwt.ClaimStrings{"healthrec"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}, testSigningKey)
	if _, err := runMiddleware(t, JWTMiddleware(cfg), "Bearer "+good); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := createTestToken(t, jwt.RegisteredClaims{
		Subject:   "user-1",
		Audience:  jwt.ClaimStrings{"someone-else"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}, testSigningKey)
	_, err := runMiddleware(t, JWTMiddleware(cfg), "Bearer "+bad)
	assertUnauthorized(t, err)
}

func TestDevAuthMiddleware_DefaultUser(t *testing.T) {
	uid, err := runMiddleware(t, DevAuthMiddleware(nil), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if uid != "dev-user" {
		t.Errorf("expected user_id=dev-user, got %s", uid)
	}
}

func TestDevAuthMiddleware_HeaderSelectsUser(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(DevUserHeader, "alice")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var uid string
	err := DevAuthMiddleware(nil)(func(c echo.Context) error {
		uid = UserIDFromContext(c.Request().Context())
		return nil
	})(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if uid != "alice" {
		t.Errorf("expected user_id=alice, got %s", uid)
	}
}

func TestRequireUser(t *testing.T) {
	_, err := runMiddleware(t, RequireUser(), "")
	assertUnauthorized(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithUserID(req.Context(), "owner-1"))
	c := e.NewContext(req, httptest.NewRecorder())
	called := false
	if err := RequireUser()(func(c echo.Context) error { called = true; return nil })(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("handler was not called")
	}
}
