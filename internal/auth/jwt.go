// Package auth verifies HS256 bearer tokens issued by the upstream identity
// provider, grounded on brokle-ai-brokle's jwt service. Token issuance is
// out of scope; this package only authenticates inbound requests.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kiekoher/agentflow/pkg/mid"
)

type contextKey string

const (
	userIDKey contextKey = "user_id"
	adminKey  contextKey = "is_admin"
)

var (
	ErrMissingToken = errors.New("auth: missing bearer token")
	ErrInvalidToken = errors.New("auth: invalid token")
)

type claims struct {
	jwt.RegisteredClaims
	AppMetadata struct {
		ClaimsAdmin bool `json:"claims_admin"`
	} `json:"app_metadata"`
}

type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

func (v *Verifier) parse(tokenString string) (*claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	c, ok := token.Claims.(*claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	if !containsAudience(c.Audience, "authenticated") {
		return nil, ErrInvalidToken
	}
	return c, nil
}

func containsAudience(aud jwt.ClaimStrings, want string) bool {
	for _, a := range aud {
		if a == want {
			return true
		}
	}
	return false
}

// Require rejects requests lacking a valid bearer token and attaches the
// resolved user id (and admin flag) to the request context.
func (v *Verifier) Require() mid.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, isAdmin, err := v.authenticate(r)
			if err != nil {
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), userIDKey, userID)
			ctx = context.WithValue(ctx, adminKey, isAdmin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects requests whose token lacks app_metadata.claims_admin.
func RequireAdmin() mid.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsAdmin(r.Context()) {
				http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (v *Verifier) authenticate(r *http.Request) (string, bool, error) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false, ErrMissingToken
	}
	c, err := v.parse(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		return "", false, err
	}
	return c.Subject, c.AppMetadata.ClaimsAdmin, nil
}

// RateLimitKey resolves the caller's token to a user id for rate-limit
// bucketing, degrading to "anon" when the token is missing or invalid
// rather than rejecting the request outright.
func (v *Verifier) RateLimitKey(r *http.Request) string {
	userID, _, err := v.authenticate(r)
	if err != nil {
		return "anon"
	}
	return userID
}

func UserID(ctx context.Context) string {
	v, _ := ctx.Value(userIDKey).(string)
	return v
}

func IsAdmin(ctx context.Context) bool {
	v, _ := ctx.Value(adminKey).(bool)
	return v
}
