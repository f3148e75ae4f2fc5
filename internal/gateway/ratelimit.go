package gateway

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// RateLimiter is a fixed-window per-client request counter. One window
// of MaxRequests is allowed per client IP; requests past the threshold
// are rejected until the window rolls over. State is in-process: the
// gateway is a single instance, so no shared store is needed.
type RateLimiter struct {
	window time.Duration
	max    int

	mu        sync.Mutex
	clients   map[string]*windowCounter
	nextSweep time.Time

	// now is replaceable for tests.
	now func() time.Time
}

type windowCounter struct {
	start time.Time
	count int
}

// NewRateLimiter creates a limiter allowing max requests per client per
// window. A max of zero disables limiting.
func NewRateLimiter(window time.Duration, max int) *RateLimiter {
	return &RateLimiter{
		window:  window,
		max:     max,
		clients: make(map[string]*windowCounter),
		now:     time.Now,
	}
}

// Allow records one request from the client and reports whether it is
// within the limit. The counter update is a single increment-and-compare
// under the lock, so concurrent requests never lose updates.
func (rl *RateLimiter) Allow(client string) bool {
	if rl.max <= 0 {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweep(now)

	c, ok := rl.clients[client]
	if !ok || now.Sub(c.start) >= rl.window {
		rl.clients[client] = &windowCounter{start: now, count: 1}
		return true
	}
	c.count++
	return c.count <= rl.max
}

// sweep drops counters whose window has lapsed, at most once per
// window, so the map does not grow with the number of distinct clients
// ever seen. Caller holds the lock.
func (rl *RateLimiter) sweep(now time.Time) {
	if now.Before(rl.nextSweep) {
		return
	}
	rl.nextSweep = now.Add(rl.window)
	for client, c := range rl.clients {
		if now.Sub(c.start) >= rl.window {
			delete(rl.clients, client)
		}
	}
}

// Middleware rejects over-limit requests with 429 before the handler
// runs. Clients are keyed by IP, ignoring the ephemeral port.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(clientIP(r)) {
			writeJSON(w, http.StatusTooManyRequests, ErrorResponse{Error: "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP extracts the remote IP, falling back to the whole RemoteAddr
// when it does not parse as host:port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
