package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"noticeboard/httpx"
)

// RateLimiter is a fixed-window per-client limiter. State is process-wide
// and mutex-guarded; windows expire lazily on access.
type RateLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	max     int
	clients map[string]*windowCount
}

type windowCount struct {
	start time.Time
	count int
}

// NewRateLimiter allows max requests per client per window.
func NewRateLimiter(window time.Duration, max int) *RateLimiter {
	return &RateLimiter{
		window:  window,
		max:     max,
		clients: make(map[string]*windowCount),
	}
}

// Allow records one request for the client and reports whether it fits in
// the current window.
func (l *RateLimiter) Allow(client string) bool {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()
	wc, ok := l.clients[client]
	if !ok || now.Sub(wc.start) >= l.window {
		l.clients[client] = &windowCount{start: now, count: 1}
		return true
	}
	wc.count++
	return wc.count <= l.max
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Limit wraps a handler with the rate limit, rejecting over-budget clients
// with 429 and the given error code.
func (l *RateLimiter) Limit(code string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(clientIP(r)) {
			httpx.JSONError(w, http.StatusTooManyRequests, code, nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
