package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rentwheels/internal/events"
	"rentwheels/internal/health"
	"rentwheels/pkg/client"
	"rentwheels/pkg/config"
	"rentwheels/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type pingHandler struct{}

func (pingHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/cars", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"data":[]}`))
	})
	router.POST("/cars", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusCreated)
	})
}

func testConfig() *config.Config {
	return &config.Config{
		Port:              "0",
		RateLimitRequests: 2,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    time.Second,
		IdempotencyTTL:    time.Minute,
		MaxRequestSize:    1024,
		ShutdownTimeout:   time.Second,
		Log:               logger.Discard(),
		Client:            client.NewClient(),
	}
}

func newTestApplication(t *testing.T) *Application {
	t.Helper()
	a := NewApplication(testConfig(), events.NewNoopPublisher())
	a.SetApp(pingHandler{})
	t.Cleanup(a.releaseResources)
	return a
}

func serve(a *Application, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	return rec
}

func TestApplication_RootServesBanner(t *testing.T) {
	a := newTestApplication(t)

	rec := serve(a, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != health.Banner {
		t.Errorf("body = %q, want banner", rec.Body.String())
	}
}

func TestApplication_ReadyWithoutDatabase(t *testing.T) {
	a := newTestApplication(t)

	rec := serve(a, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestApplication_AppRoutesCarryRequestID(t *testing.T) {
	a := newTestApplication(t)

	rec := serve(a, httptest.NewRequest(http.MethodGet, "/cars", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID on application routes")
	}
}

func TestApplication_RejectsNonJSONBodies(t *testing.T) {
	a := newTestApplication(t)

	req := httptest.NewRequest(http.MethodPost, "/cars", strings.NewReader("carName=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := serve(a, req)
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want 415", rec.Code)
	}
}

func TestApplication_RateLimitsAppButNotHealth(t *testing.T) {
	a := newTestApplication(t)

	var last int
	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/cars", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		last = serve(a, req).Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("third request status = %d, want 429", last)
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	if rec := serve(a, req); rec.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", rec.Code)
	}
}
