package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-do-not-use-in-prod"

func signToken(t *testing.T, subject string, admin bool, audience string) string {
	t.Helper()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	c.AppMetadata.ClaimsAdmin = admin

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("unexpected sign error: %v", err)
	}
	return signed
}

func TestRequireAcceptsValidToken(t *testing.T) {
	v := NewVerifier(testSecret)
	token := signToken(t, "user-1", false, "authenticated")

	var gotUserID string
	h := v.Require()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = UserID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotUserID != "user-1" {
		t.Fatalf("expected user-1, got %s", gotUserID)
	}
}

func TestRequireRejectsMissingToken(t *testing.T) {
	v := NewVerifier(testSecret)
	h := v.Require()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run without a token")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireRejectsWrongAudience(t *testing.T) {
	v := NewVerifier(testSecret)
	token := signToken(t, "user-1", false, "service_role")

	h := v.Require()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run for wrong audience")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireRejectsTamperedToken(t *testing.T) {
	v := NewVerifier(testSecret)
	token := signToken(t, "user-1", false, "authenticated")

	h := v.Require()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token+"tampered")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for tampered token, got %d", rec.Code)
	}
}

func TestRequireAdminRejectsNonAdmin(t *testing.T) {
	v := NewVerifier(testSecret)
	token := signToken(t, "user-1", false, "authenticated")

	h := v.Require()(RequireAdmin()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run for non-admin")
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequireAdminAllowsAdmin(t *testing.T) {
	v := NewVerifier(testSecret)
	token := signToken(t, "user-1", true, "authenticated")

	h := v.Require()(RequireAdmin()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRateLimitKeyDegradesToAnon(t *testing.T) {
	v := NewVerifier(testSecret)
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	if key := v.RateLimitKey(req); key != "anon" {
		t.Fatalf("expected anon, got %s", key)
	}
}

func TestRateLimitKeyResolvesUser(t *testing.T) {
	v := NewVerifier(testSecret)
	token := signToken(t, "user-42", false, "authenticated")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	if key := v.RateLimitKey(req); key != "user-42" {
		t.Fatalf("expected user-42, got %s", key)
	}
}
