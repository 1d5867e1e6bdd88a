package auth

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"noticeboard/httpx"
)

type ctxKey string

const claimsCtxKey = ctxKey("claims")

// Claims is the bearer token payload: the registered claims (jti for
// revocation, iat, optional exp) plus the user identity.
type Claims struct {
	jwt.RegisteredClaims
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
}

// UserVerifier is an optional callback to validate that a token's user still exists.
// Set it during app bootstrap via SetUserVerifier. If nil, no extra verification is performed.
type UserVerifier func(ctx context.Context, uid uint) bool

var verifier UserVerifier

// SetUserVerifier configures the global verifier used by RequireAuth.
func SetUserVerifier(v UserVerifier) { verifier = v }

// revoked is the process-wide set of revoked token IDs, checked on every
// authenticated request. Logout adds the presented token's jti here.
var (
	revokedMu sync.RWMutex
	revoked   = map[string]struct{}{}
)

// Revoke blacklists a token ID.
func Revoke(jti string) {
	if jti == "" {
		return
	}
	revokedMu.Lock()
	revoked[jti] = struct{}{}
	revokedMu.Unlock()
}

// IsRevoked reports whether a token ID has been revoked.
func IsRevoked(jti string) bool {
	revokedMu.RLock()
	_, ok := revoked[jti]
	revokedMu.RUnlock()
	return ok
}

// IssueToken signs an HS256 bearer token for the user. A zero ttl produces a
// non-expiring token; that is the default contract clients rely on.
func IssueToken(secret string, userID uint, username string, ttl time.Duration) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
		UserID:   userID,
		Username: username,
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(ttl))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates signature and expiry and returns the claims.
func ParseToken(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}

// WithClaims stores token claims in context.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsCtxKey, c)
}

// ClaimsFromContext extracts token claims.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsCtxKey).(*Claims)
	return c, ok
}

// UserIDFromContext extracts the authenticated user id.
func UserIDFromContext(ctx context.Context) (uint, bool) {
	c, ok := ClaimsFromContext(ctx)
	if !ok {
		return 0, false
	}
	return c.UserID, true
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(h, "Bearer ")
	if !found {
		return ""
	}
	return token
}

// Middleware attaches token claims to the request context if a valid,
// non-revoked bearer token is present. It never rejects: public routes stay
// public, RequireAuth does the gating.
func Middleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := bearerToken(r); token != "" {
				if claims, err := ParseToken(secret, token); err == nil && !IsRevoked(claims.ID) {
					r = r.WithContext(WithClaims(r.Context(), claims))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth rejects requests without verified claims in context. The
// verifier additionally ensures the token refers to a user that still exists.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		if verifier != nil && !verifier(r.Context(), claims.UserID) {
			// Token refers to a non-existing user: treat as unauthorized.
			httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
