package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

const testSecret = "test-secret"

func TestIssueAndParseToken(t *testing.T) {
	token, err := IssueToken(testSecret, "acct-123", "doctor", time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := ParseToken(testSecret, token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.Subject != "acct-123" {
		t.Errorf("expected subject acct-123, got %s", claims.Subject)
	}
	if claims.Role != "doctor" {
		t.Errorf("expected role doctor, got %s", claims.Role)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, _ := IssueToken(testSecret, "acct-123", "patient", time.Hour)
	if _, err := ParseToken("other-secret", token); err == nil {
		t.Error("expected error for wrong secret")
	}
}

func TestParseToken_Expired(t *testing.T) {
	token, _ := IssueToken(testSecret, "acct-123", "patient", -time.Minute)
	if _, err := ParseToken(testSecret, token); err == nil {
		t.Error("expected error for expired token")
	}
}

func doRequest(t *testing.T, mw echo.MiddlewareFunc, authHeader string) error {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	handler := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	return mw(handler)(c)
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	token, _ := IssueToken(testSecret, "acct-123", "admin", time.Hour)
	if err := doRequest(t, JWTMiddleware(testSecret), "Bearer "+token); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	err := doRequest(t, JWTMiddleware(testSecret), "")
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestJWTMiddleware_MalformedHeader(t *testing.T) {
	err := doRequest(t, JWTMiddleware(testSecret), "Token abc")
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestJWTMiddleware_SetsContext(t *testing.T) {
	token, _ := IssueToken(testSecret, "acct-9", "doctor", time.Hour)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		ctx := c.Request().Context()
		if UserIDFromContext(ctx) != "acct-9" {
			t.Errorf("expected user id acct-9, got %s", UserIDFromContext(ctx))
		}
		if RoleFromContext(ctx) != "doctor" {
			t.Errorf("expected role doctor, got %s", RoleFromContext(ctx))
		}
		return c.String(http.StatusOK, "ok")
	}
	if err := JWTMiddleware(testSecret)(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func requestWithRole(t *testing.T, role string, mw echo.MiddlewareFunc) error {
	t.Helper()
	token, _ := IssueToken(testSecret, "acct-1", role, time.Hour)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	handler := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	return JWTMiddleware(testSecret)(mw(handler))(c)
}

func TestRequireRole_Allows(t *testing.T) {
	if err := requestWithRole(t, "doctor", RequireRole("doctor")); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRequireRole_AdminBypass(t *testing.T) {
	if err := requestWithRole(t, "admin", RequireRole("doctor")); err != nil {
		t.Errorf("expected admin to pass any gate, got %v", err)
	}
}

func TestRequireRole_Forbidden(t *testing.T) {
	err := requestWithRole(t, "patient", RequireRole("doctor"))
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %v", err)
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash == "secret123" {
		t.Error("hash should not equal plaintext")
	}
	if !CheckPassword(hash, "secret123") {
		t.Error("expected matching password to verify")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("expected mismatched password to fail")
	}
}
