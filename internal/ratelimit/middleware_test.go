package ratelimit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/redis/go-redis/v9"

	"github.com/kannou1/PFE/internal/auth"
	"github.com/kannou1/PFE/internal/config"
	"github.com/kannou1/PFE/internal/httputil"
	"github.com/kannou1/PFE/internal/telemetry"
)

func staticConfig(rl config.RateLimitConfig) func() config.RateLimitConfig {
	return func() config.RateLimitConfig { return rl }
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func withSubject(req *http.Request, subject string) *http.Request {
	c := &auth.Credential{Token: "tok-" + subject, Subject: subject}
	return req.WithContext(auth.ContextWithCredential(req.Context(), c))
}

func TestMiddleware_AllowsRequest(t *testing.T) {
	mw := Middleware(NewLimiter(nil), staticConfig(config.RateLimitConfig{Enabled: true, RequestsPerMinute: 100}), nil)
	handler := mw(okHandler())

	req := withSubject(httptest.NewRequest(http.MethodPost, "/chat", nil), "u1")
	rec := httptest.NewRecorder()
	rec.Header().Set("X-Request-ID", "req-1")

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	// Check rate limit headers
	if h := rec.Header().Get(headerRateLimitRequests); h != "100" {
		t.Errorf("expected X-RateLimit-Limit-Requests=100, got %s", h)
	}
	if h := rec.Header().Get(headerRateLimitRemainingRequests); h == "" {
		t.Error("expected X-RateLimit-Remaining-Requests header")
	}
	if h := rec.Header().Get(headerRateLimitReset); h == "" {
		t.Error("expected X-RateLimit-Reset-Requests header")
	}
}

func TestMiddleware_DefaultRPM(t *testing.T) {
	mw := Middleware(NewLimiter(nil), staticConfig(config.RateLimitConfig{Enabled: true}), nil)
	handler := mw(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chat", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if h := rec.Header().Get(headerRateLimitRequests); h != "30" {
		t.Errorf("expected default RPM=30, got %s", h)
	}
}

func TestMiddleware_Disabled_PassThrough(t *testing.T) {
	mw := Middleware(NewLimiter(nil), staticConfig(config.RateLimitConfig{Enabled: false}), nil)

	called := false
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chat", nil))

	if !called {
		t.Error("expected handler to be called when rate limiting is disabled")
	}
	if h := rec.Header().Get(headerRateLimitRequests); h != "" {
		t.Errorf("expected no rate limit headers, got %s", h)
	}
}

func TestMiddleware_Exceeded(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	metrics := telemetry.NewMetricsWith(prometheus.NewRegistry())
	mw := Middleware(NewLimiter(rdb), staticConfig(config.RateLimitConfig{Enabled: true, RequestsPerMinute: 2}), metrics)
	handler := mw(okHandler())

	var rec *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		rec = httptest.NewRecorder()
		rec.Header().Set("X-Request-ID", "req-3")
		handler.ServeHTTP(rec, withSubject(httptest.NewRequest(http.MethodPost, "/chat", nil), "u1"))
	}

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get(headerRetryAfter) != "30" {
		t.Errorf("expected Retry-After=30, got %s", rec.Header().Get(headerRetryAfter))
	}

	var apiErr httputil.APIError
	if err := json.NewDecoder(rec.Body).Decode(&apiErr); err != nil {
		t.Fatalf("failed to decode error: %v", err)
	}
	if apiErr.Error.Code != "rate_limit_exceeded" {
		t.Errorf("expected code 'rate_limit_exceeded', got %s", apiErr.Error.Code)
	}

	var metric dto.Metric
	if err := metrics.RateLimitHitsTotal.WithLabelValues("subject").Write(&metric); err != nil {
		t.Fatal(err)
	}
	if got := metric.GetCounter().GetValue(); got != 1 {
		t.Errorf("expected 1 rate limit hit, got %v", got)
	}

	// Another subject is unaffected.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, withSubject(httptest.NewRequest(http.MethodPost, "/chat", nil), "u2"))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for another subject, got %d", rec.Code)
	}
}

func TestCallerKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/chat", nil)
	req.RemoteAddr = "10.0.0.5:51234"
	if dim, caller := callerKey(req); dim != "ip" || caller != "10.0.0.5" {
		t.Errorf("expected ip 10.0.0.5, got %s %s", dim, caller)
	}

	if dim, caller := callerKey(withSubject(req, "u9")); dim != "subject" || caller != "u9" {
		t.Errorf("expected subject u9, got %s %s", dim, caller)
	}
}
