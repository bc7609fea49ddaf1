package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"rentwheels/internal/events"
	"rentwheels/internal/health"
	"rentwheels/pkg/config"
	"rentwheels/pkg/contracts"
	"rentwheels/pkg/middleware"
	"syscall"

	"github.com/julienschmidt/httprouter"
)

type Application struct {
	cfg              *config.Config
	server           *http.Server
	idempotencyStore middleware.IdempotencyStore
	rateLimiter      middleware.RateLimiter
	publisher        events.Publisher
	healthHandler    http.Handler
	appHandler       http.Handler
}

func NewApplication(cfg *config.Config, publisher events.Publisher) *Application {
	return &Application{
		cfg:       cfg,
		publisher: publisher,
	}
}

func (a *Application) SetApp(handlers ...contracts.Handler) {
	a.setHealthHandler()
	a.setAppHandler(handlers)
	a.setAppServer()
}

// Handler exposes the composed HTTP handler, mainly for tests.
func (a *Application) Handler() http.Handler {
	return a.server.Handler
}

func (a *Application) setHealthHandler() {
	var pinger health.Pinger
	if a.cfg.Client != nil && a.cfg.Client.Mongo != nil {
		pinger = a.cfg.Client.Mongo
	}
	healthRouter := httprouter.New()
	health.NewHealthHandler(pinger, a.cfg.Log).RegisterRoutes(healthRouter)

	var healthHTTPHandler http.Handler = healthRouter
	healthHTTPHandler = middleware.RequestLogging(a.cfg.Log)(healthHTTPHandler)
	healthHTTPHandler = middleware.Recovery(a.cfg.Log)(healthHTTPHandler)
	a.healthHandler = healthHTTPHandler
	a.cfg.Log.Info("Health endpoints configured with minimal middleware (Recovery + Logging only)")
}

func (a *Application) setAppHandler(handlers []contracts.Handler) {
	appRouter := httprouter.New()
	for _, h := range handlers {
		h.RegisterRoutes(appRouter)
	}

	a.idempotencyStore = middleware.NewCacheIdempotencyStore(a.cfg.IdempotencyTTL)
	a.rateLimiter = a.newRateLimiter()

	var appHTTPHandler http.Handler = appRouter
	appHTTPHandler = middleware.Idempotency(a.idempotencyStore, middleware.DefaultIdempotencyHeader)(appHTTPHandler)
	appHTTPHandler = middleware.RequestTimeout(a.cfg.RequestTimeout)(appHTTPHandler)
	appHTTPHandler = middleware.RateLimit(a.rateLimiter, middleware.NewClientIPExtractor(a.cfg.TrustedProxies), a.cfg.Log)(appHTTPHandler)
	appHTTPHandler = middleware.ContentTypeValidation(a.cfg.Log)(appHTTPHandler)
	appHTTPHandler = middleware.MaxRequestSize(int64(a.cfg.MaxRequestSize))(appHTTPHandler)
	appHTTPHandler = middleware.RequestLogging(a.cfg.Log)(appHTTPHandler)
	appHTTPHandler = middleware.Recovery(a.cfg.Log)(appHTTPHandler)
	a.appHandler = appHTTPHandler
	a.cfg.Log.Info("Application endpoints configured with full middleware stack")
}

func (a *Application) newRateLimiter() middleware.RateLimiter {
	if a.cfg.RedisAddr != "" {
		limiter, err := middleware.NewRedisRateLimiter(
			a.cfg.RedisAddr,
			a.cfg.RedisPassword,
			a.cfg.RedisKeyPrefix,
			a.cfg.RateLimitRequests,
			a.cfg.RateLimitWindow,
			a.cfg.Log,
		)
		if err == nil {
			a.cfg.Log.Info("Using Redis rate limiter", "prefix", a.cfg.RedisKeyPrefix)
			return limiter
		}
		a.cfg.Log.Warn("Redis rate limiter unavailable, falling back to in-memory", "error", err)
	}
	return middleware.NewMemoryRateLimiter(a.cfg.RateLimitRequests, a.cfg.RateLimitWindow)
}

func (a *Application) setAppServer() {
	mux := http.NewServeMux()
	mux.Handle("/health", a.healthHandler)
	mux.Handle("/ready", a.healthHandler)
	mux.Handle("/{$}", a.healthHandler)
	mux.Handle("/", a.appHandler)

	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      mux,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port)
}

func (a *Application) Run() {
	serverErrors := make(chan error, 1)

	go func() {
		a.cfg.Log.Info("Starting HTTP server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			a.releaseResources()
			a.cfg.Log.Fatal("HTTP server failed", "error", err)
		}

	case sig := <-shutdown:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig)
		a.gracefulShutdown()
	}
}

func (a *Application) gracefulShutdown() {
	a.cfg.Log.Info("Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Error("Could not stop server gracefully", "error", err)
		}
	}

	a.releaseResources()
	a.cfg.Log.Info("Server stopped gracefully")
}

func (a *Application) releaseResources() {
	if a.idempotencyStore != nil {
		a.idempotencyStore.Stop()
	}
	if a.rateLimiter != nil {
		a.rateLimiter.Stop()
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	}
	a.cfg.GracefulShutdown()
}
