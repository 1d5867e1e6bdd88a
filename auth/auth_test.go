package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const testSecret = "test-secret"

func TestTokenRoundTrip(t *testing.T) {
	token, err := IssueToken(testSecret, 42, "alice", 0)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := ParseToken(testSecret, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "alice" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
	if claims.ID == "" {
		t.Fatalf("token must carry a jti")
	}
	// A zero ttl means a non-expiring token.
	if claims.ExpiresAt != nil {
		t.Fatalf("zero-ttl token must not expire, got exp %v", claims.ExpiresAt)
	}
}

func TestTokenExpiry(t *testing.T) {
	token, err := IssueToken(testSecret, 1, "alice", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := ParseToken(testSecret, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.ExpiresAt == nil {
		t.Fatalf("positive ttl must set exp")
	}

	expired, err := IssueToken(testSecret, 1, "alice", -time.Hour)
	if err != nil {
		t.Fatalf("issue expired: %v", err)
	}
	if _, err := ParseToken(testSecret, expired); err == nil {
		t.Fatalf("expired token must not parse")
	}
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := IssueToken(testSecret, 1, "alice", 0)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := ParseToken("other-secret", token); err == nil {
		t.Fatalf("wrong secret must not parse")
	}
	if _, err := ParseToken(testSecret, "not.a.token"); err == nil {
		t.Fatalf("garbage must not parse")
	}
}

func TestRevocation(t *testing.T) {
	token, err := IssueToken(testSecret, 1, "alice", 0)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := ParseToken(testSecret, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if IsRevoked(claims.ID) {
		t.Fatalf("fresh token must not be revoked")
	}
	Revoke(claims.ID)
	if !IsRevoked(claims.ID) {
		t.Fatalf("revoked token must be reported revoked")
	}
	// Revoking an empty jti is a no-op.
	Revoke("")
	if IsRevoked("") {
		t.Fatalf("empty jti must never be revoked")
	}
}

func claimsEcho() (http.Handler, *Claims) {
	captured := &Claims{}
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, ok := ClaimsFromContext(r.Context()); ok {
			*captured = *c
		}
		w.WriteHeader(http.StatusOK)
	})
	return h, captured
}

func TestMiddlewareAttachesClaims(t *testing.T) {
	inner, captured := claimsEcho()
	h := Middleware(testSecret)(inner)

	token, err := IssueToken(testSecret, 7, "bob", 0)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if captured.UserID != 7 || captured.Username != "bob" {
		t.Fatalf("claims not attached: %+v", captured)
	}
}

func TestMiddlewareNeverRejects(t *testing.T) {
	inner, captured := claimsEcho()
	h := Middleware(testSecret)(inner)

	// No token, bad token, revoked token: all still reach the handler,
	// just without claims.
	revokedToken, _ := IssueToken(testSecret, 1, "alice", 0)
	rc, _ := ParseToken(testSecret, revokedToken)
	Revoke(rc.ID)

	for _, header := range []string{"", "Bearer garbage", "Token abc", "Bearer " + revokedToken} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("header %q: status %d", header, rec.Code)
		}
		if captured.UserID != 0 {
			t.Fatalf("header %q: claims must not be attached", header)
		}
	}
}

func TestRequireAuth(t *testing.T) {
	SetUserVerifier(nil)
	inner, _ := claimsEcho()
	h := Middleware(testSecret)(RequireAuth(inner))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status %d", rec.Code)
	}

	token, _ := IssueToken(testSecret, 5, "carol", 0)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token: status %d", rec.Code)
	}
}

func TestRequireAuthVerifier(t *testing.T) {
	SetUserVerifier(func(_ context.Context, uid uint) bool { return uid == 5 })
	defer SetUserVerifier(nil)

	inner, _ := claimsEcho()
	h := Middleware(testSecret)(RequireAuth(inner))

	good, _ := IssueToken(testSecret, 5, "carol", 0)
	gone, _ := IssueToken(testSecret, 6, "deleted", 0)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+good)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("existing user: status %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+gone)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("deleted user: status %d", rec.Code)
	}
}
