package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func ok(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func TestRateLimiter_RefillsPerInterval(t *testing.T) {
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Second)
	rl.now = func() time.Time { return now }

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("burst of 2 should be allowed")
	}
	if rl.Allow("a") {
		t.Error("third request in the same second should be refused")
	}
	if !rl.Allow("b") {
		t.Error("other clients have their own bucket")
	}

	now = now.Add(1500 * time.Millisecond)
	if !rl.Allow("a") || !rl.Allow("a") {
		t.Error("bucket should refill after an interval")
	}
	if rl.Allow("a") {
		t.Error("refill must not exceed the burst size")
	}
}

func TestRateLimit_Returns429(t *testing.T) {
	handler := RateLimit(NewRateLimiter(1, time.Minute))(http.HandlerFunc(ok))

	send := func() int {
		req := httptest.NewRequest(http.MethodGet, "/api/reports/summary", nil)
		req.RemoteAddr = "10.0.0.7:5123"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}
	if code := send(); code != http.StatusOK {
		t.Fatalf("first = %d", code)
	}
	if code := send(); code != http.StatusTooManyRequests {
		t.Errorf("second = %d, want 429", code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	rr := httptest.NewRecorder()
	SecurityHeaders(http.HandlerFunc(ok)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/payments", nil))

	for header, want := range map[string]string{
		"X-Frame-Options":        "DENY",
		"X-Content-Type-Options": "nosniff",
		"Cache-Control":          "no-store",
	} {
		if got := rr.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
	if !strings.Contains(rr.Header().Get("Content-Security-Policy"), "default-src 'none'") {
		t.Errorf("CSP = %q", rr.Header().Get("Content-Security-Policy"))
	}
}

func TestCSRF_ExemptsJSON(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	handler := CSRF(key, false, nil)(http.HandlerFunc(ok))

	jsonReq := httptest.NewRequest(http.MethodPost, "/api/payments", strings.NewReader(`{}`))
	jsonReq.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, jsonReq)
	if rr.Code != http.StatusOK {
		t.Errorf("JSON post = %d, want 200", rr.Code)
	}

	formReq := httptest.NewRequest(http.MethodPost, "/api/payments", strings.NewReader("amount=1"))
	formReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, formReq)
	if rr.Code != http.StatusForbidden {
		t.Errorf("form post without token = %d, want 403", rr.Code)
	}
}

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	Chain(http.HandlerFunc(ok), mark("inner"), mark("outer")).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if strings.Join(order, ",") != "outer,inner" {
		t.Errorf("order = %v", order)
	}
}

func TestCSRF_BodylessMutations(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	handler := CSRF(key, false, []string{"admin.example.org"})(http.HandlerFunc(ok))

	tests := []struct {
		name    string
		headers map[string]string
		want    int
	}{
		{"non-browser client", nil, http.StatusOK},
		{"same origin", map[string]string{"Origin": "http://example.com", "Sec-Fetch-Site": "same-origin"}, http.StatusOK},
		{"trusted origin", map[string]string{"Origin": "https://admin.example.org"}, http.StatusOK},
		{"cross-site fetch", map[string]string{"Origin": "https://evil.test", "Sec-Fetch-Site": "cross-site"}, http.StatusForbidden},
		{"foreign origin", map[string]string{"Origin": "https://evil.test"}, http.StatusForbidden},
		{"same-site subdomain", map[string]string{"Sec-Fetch-Site": "same-site"}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodDelete, "/api/holidays/h1", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Errorf("DELETE = %d, want %d", rr.Code, tt.want)
			}
		})
	}

	formReq := httptest.NewRequest(http.MethodPost, "/api/holidays", nil)
	formReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, formReq)
	if rr.Code != http.StatusForbidden {
		t.Errorf("empty form post without token = %d, want 403", rr.Code)
	}
}

func TestCSRF_CrossSiteReadsPass(t *testing.T) {
	handler := CSRF([]byte("0123456789abcdef0123456789abcdef"), false, nil)(http.HandlerFunc(ok))
	req := httptest.NewRequest(http.MethodGet, "/api/services", nil)
	req.Header.Set("Origin", "https://elsewhere.test")
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("cross-site GET = %d, want 200", rr.Code)
	}
}
