package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/csrf"
)

// RateLimiter is a per-client token bucket.
type RateLimiter struct {
	mu       sync.Mutex
	clients  map[string]*bucket
	rate     int           // tokens per interval, also the burst size
	interval time.Duration // refill interval
	idle     time.Duration // buckets unused this long are dropped
	calls    int
	now      func() time.Time
}

type bucket struct {
	tokens   int
	refilled time.Time
	lastSeen time.Time
}

// sweepEvery is the number of Allow calls between idle-bucket sweeps.
const sweepEvery = 1024

// NewRateLimiter allows rate requests per interval for each client.
// PRE: rate > 0, interval > 0
func NewRateLimiter(rate int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		clients:  make(map[string]*bucket),
		rate:     rate,
		interval: interval,
		idle:     5 * time.Minute,
		now:      time.Now,
	}
}

// Allow takes a token for client.
// POST: Returns false once the client's bucket is empty until the next refill
func (rl *RateLimiter) Allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.calls++
	if rl.calls%sweepEvery == 0 {
		for key, b := range rl.clients {
			if now.Sub(b.lastSeen) > rl.idle {
				delete(rl.clients, key)
			}
		}
	}

	b, ok := rl.clients[client]
	if !ok {
		b = &bucket{tokens: rl.rate, refilled: now}
		rl.clients[client] = b
	}
	if periods := int(now.Sub(b.refilled) / rl.interval); periods > 0 {
		b.tokens = min(b.tokens+periods*rl.rate, rl.rate)
		b.refilled = b.refilled.Add(time.Duration(periods) * rl.interval)
	}
	b.lastSeen = now

	if b.tokens <= 0 {
		slog.Warn("rate_limit_exceeded", "client", client)
		return false
	}
	b.tokens--
	return true
}

// clientKey is the remote host without the port.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit rejects clients that exceed the limiter with 429.
func RateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(clientKey(r)) {
				w.Header().Set("Retry-After", "1")
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeaders sets the response headers for a JSON-only API.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "no-referrer")
		if strings.HasPrefix(r.URL.Path, "/api/") {
			h.Set("Cache-Control", "no-store")
		}
		next.ServeHTTP(w, r)
	})
}

// CSRF protects form posts with gorilla/csrf. Requests with a JSON content
// type cannot be sent cross-origin without a preflight and pass through.
// Mutations with neither a body nor a content type pass through when they
// come from the same origin, a trusted origin, or a non-browser client;
// cross-origin ones are refused with 403.
// PRE: authKey is 32 bytes
func CSRF(authKey []byte, secure bool, trustedOrigins []string) func(http.Handler) http.Handler {
	protect := csrf.Protect(
		authKey,
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.TrustedOrigins(trustedOrigins),
	)
	return func(next http.Handler) http.Handler {
		protected := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			contentType := r.Header.Get("Content-Type")
			switch {
			case strings.HasPrefix(contentType, "application/json"):
				next.ServeHTTP(w, r)
			case contentType == "" && r.ContentLength == 0 && !slices.Contains(safeMethods, r.Method):
				if !sameOrigin(r, trustedOrigins) {
					slog.Warn("csrf_event", "event", "cross_origin_refused", "method", r.Method, "path", r.URL.Path, "origin", r.Header.Get("Origin"))
					http.Error(w, "cross-origin request refused", http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r)
			default:
				protected.ServeHTTP(w, r)
			}
		})
	}
}

// safeMethods are left to gorilla/csrf, which lets them through.
var safeMethods = []string{http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace}

// sameOrigin reads the browser's fetch metadata. Requests without
// Sec-Fetch-Site or Origin come from non-browser clients and count as same origin.
func sameOrigin(r *http.Request, trustedOrigins []string) bool {
	switch r.Header.Get("Sec-Fetch-Site") {
	case "", "same-origin", "none":
	default:
		return false
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Host == r.Host || slices.Contains(trustedOrigins, u.Host)
}

// Chain wraps h so the last middleware listed runs first.
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for _, m := range middlewares {
		h = m(h)
	}
	return h
}
