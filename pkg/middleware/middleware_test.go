package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"rentwheels/pkg/logger"
	"rentwheels/pkg/requestid"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	})
}

func TestRequestLogging_AssignsRequestID(t *testing.T) {
	var seen string
	handler := RequestLogging(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestid.FromContext(r.Context())
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cars", nil))

	if seen == "" {
		t.Fatal("expected request id in context")
	}
	if got := w.Header().Get(requestid.Header); got != seen {
		t.Errorf("expected response header %q, got %q", seen, got)
	}
}

func TestRequestLogging_ReusesClientRequestID(t *testing.T) {
	var seen string
	handler := RequestLogging(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestid.FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/cars", nil)
	req.Header.Set(requestid.Header, "client-trace-1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if seen != "client-trace-1" {
		t.Errorf("expected client request id, got %q", seen)
	}
}

func TestRecovery_ReturnsInternalError(t *testing.T) {
	handler := Recovery(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "boom") {
		t.Error("panic value must not leak into the response")
	}
}

func TestContentTypeValidation(t *testing.T) {
	handler := ContentTypeValidation(logger.Discard())(okHandler())

	tests := []struct {
		name        string
		method      string
		body        string
		contentType string
		want        int
	}{
		{"json post", http.MethodPost, `{}`, "application/json; charset=utf-8", http.StatusOK},
		{"form post", http.MethodPost, `a=b`, "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
		{"patch without header", http.MethodPatch, `{}`, "", http.StatusUnsupportedMediaType},
		{"empty post", http.MethodPost, ``, "", http.StatusOK},
		{"get ignores header", http.MethodGet, ``, "text/plain", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/cars", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestMaxRequestSize(t *testing.T) {
	handler := MaxRequestSize(8)(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/cars", strings.NewReader(`{"carName":"too long"}`)))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/cars", strings.NewReader(`{}`)))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestRequestTimeout(t *testing.T) {
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		time.Sleep(50 * time.Millisecond)
		_, _ = w.Write([]byte("late"))
	})

	w := httptest.NewRecorder()
	RequestTimeout(20*time.Millisecond)(slow).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "late") {
		t.Error("late write must not reach the client")
	}
}

func TestRequestTimeout_PassesThroughFastResponses(t *testing.T) {
	fast := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Test", "yes")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"created"}`))
	})

	w := httptest.NewRecorder()
	RequestTimeout(time.Second)(fast).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
	if w.Header().Get("X-Test") != "yes" {
		t.Error("expected handler headers to be copied")
	}
	if w.Body.String() != `{"message":"created"}` {
		t.Errorf("unexpected body %q", w.Body.String())
	}
}

func TestIdempotency_ReplaysSuccessfulResponse(t *testing.T) {
	store := NewCacheIdempotencyStore(time.Minute)
	defer store.Stop()

	calls := 0
	handler := Idempotency(store, "")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"Booking created successfully"}`))
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(`{}`))
		req.Header.Set(DefaultIdempotencyHeader, "key-1")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusCreated {
			t.Fatalf("request %d: expected 201, got %d", i, w.Code)
		}
	}

	if calls != 1 {
		t.Errorf("expected handler to run once, ran %d times", calls)
	}
}

func TestIdempotency_DoesNotCacheFailures(t *testing.T) {
	store := NewCacheIdempotencyStore(time.Minute)
	defer store.Stop()

	calls := 0
	handler := Idempotency(store, "")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/bookings", nil)
		req.Header.Set(DefaultIdempotencyHeader, "key-2")
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	if calls != 2 {
		t.Errorf("expected failures to be retried, handler ran %d times", calls)
	}
}

func TestMemoryRateLimiter_FixedWindow(t *testing.T) {
	limiter := NewMemoryRateLimiter(2, time.Minute)
	defer limiter.Stop()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }
	ctx := context.Background()

	if !limiter.Allow(ctx, "10.0.0.1") || !limiter.Allow(ctx, "10.0.0.1") {
		t.Fatal("first two requests should pass")
	}
	if limiter.Allow(ctx, "10.0.0.1") {
		t.Fatal("third request should be blocked")
	}
	if !limiter.Allow(ctx, "10.0.0.2") {
		t.Fatal("other clients have their own quota")
	}

	now = now.Add(time.Minute)
	if !limiter.Allow(ctx, "10.0.0.1") {
		t.Fatal("quota should reset in the next window")
	}
}

func TestRedisRateLimiter(t *testing.T) {
	redis := miniredis.RunT(t)
	limiter, err := NewRedisRateLimiter(redis.Addr(), "", "test:ratelimit", 2, time.Minute, logger.Discard())
	if err != nil {
		t.Fatalf("new redis limiter: %v", err)
	}
	defer limiter.Stop()

	ctx := context.Background()
	if !limiter.Allow(ctx, "ip-1") || !limiter.Allow(ctx, "ip-1") {
		t.Fatal("first two requests should pass")
	}
	if limiter.Allow(ctx, "ip-1") {
		t.Fatal("third request should be blocked")
	}
}

func TestRedisRateLimiter_FailsOpen(t *testing.T) {
	redis := miniredis.RunT(t)
	limiter, err := NewRedisRateLimiter(redis.Addr(), "", "test:ratelimit", 1, time.Minute, logger.Discard())
	if err != nil {
		t.Fatalf("new redis limiter: %v", err)
	}
	defer limiter.Stop()

	redis.Close()
	if !limiter.Allow(context.Background(), "ip-1") {
		t.Fatal("limiter should let requests through when redis is down")
	}
}

func TestNewRedisRateLimiter_RequiresAddr(t *testing.T) {
	if _, err := NewRedisRateLimiter("", "", "", 1, time.Second, logger.Discard()); err == nil {
		t.Fatal("expected error for empty redis addr")
	}
}

func TestRateLimit_Returns429(t *testing.T) {
	limiter := NewMemoryRateLimiter(1, time.Minute)
	defer limiter.Stop()
	handler := RateLimit(limiter, nil, logger.Discard())(okHandler())

	codes := []int{}
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/cars", nil)
		req.RemoteAddr = "192.0.2.1:5555"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Errorf("unexpected status codes %v", codes)
	}
}

func TestClientIP_IgnoresForwardedHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	if got := ClientIP(req); got != "192.0.2.1" {
		t.Errorf("expected remote host, got %q", got)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	if got := ClientIP(req); got != "192.0.2.1" {
		t.Errorf("spoofed header must not change the key, got %q", got)
	}
}

func TestClientIPExtractor(t *testing.T) {
	extract := NewClientIPExtractor([]string{"10.0.0.0/8", "192.0.2.10"})

	tests := []struct {
		name      string
		remote    string
		forwarded []string
		want      string
	}{
		{"untrusted peer spoofing header", "198.51.100.4:5000", []string{"203.0.113.7"}, "198.51.100.4"},
		{"trusted proxy without header", "10.1.2.3:5000", nil, "10.1.2.3"},
		{"trusted proxy forwards client", "10.1.2.3:5000", []string{"203.0.113.7"}, "203.0.113.7"},
		{"client prepends fake hop", "192.0.2.10:5000", []string{"1.1.1.1, 203.0.113.7"}, "203.0.113.7"},
		{"proxy chain skipped", "10.1.2.3:5000", []string{"203.0.113.7, 10.9.9.9"}, "203.0.113.7"},
		{"repeated headers joined", "10.1.2.3:5000", []string{"1.1.1.1", "203.0.113.8"}, "203.0.113.8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for _, value := range tt.forwarded {
				req.Header.Add("X-Forwarded-For", value)
			}
			if got := extract(req); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestClientIPExtractor_NoTrustedProxiesUsesRemoteAddr(t *testing.T) {
	extract := NewClientIPExtractor([]string{"", "not-an-ip"})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.1.2.3:5000"
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	if got := extract(req); got != "10.1.2.3" {
		t.Errorf("expected remote host, got %q", got)
	}
}

func TestCacheIdempotencyStore_StopDropsResponses(t *testing.T) {
	store := NewCacheIdempotencyStore(time.Minute)
	store.Set("key", &CachedResponse{StatusCode: http.StatusCreated})
	if _, ok := store.Get("key"); !ok {
		t.Fatal("expected cached response before Stop")
	}
	store.Stop()
	if _, ok := store.Get("key"); ok {
		t.Error("expected no cached response after Stop")
	}
}
