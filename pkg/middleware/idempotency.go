package middleware

import (
	"bytes"
	"net/http"
	"time"

	"zgo.at/zcache"
)

const DefaultIdempotencyHeader = "Idempotency-Key"

type IdempotencyStore interface {
	Get(key string) (*CachedResponse, bool)
	Set(key string, response *CachedResponse)
	Stop()
}

type CachedResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	CreatedAt  time.Time
}

// CacheIdempotencyStore keeps replayable responses in a zcache with a fixed TTL.
type CacheIdempotencyStore struct {
	cache *zcache.Cache
	ttl   time.Duration
}

func NewCacheIdempotencyStore(ttl time.Duration) *CacheIdempotencyStore {
	cleanup := ttl
	if cleanup < time.Minute {
		cleanup = time.Minute
	}
	return &CacheIdempotencyStore{
		cache: zcache.New(ttl, cleanup),
		ttl:   ttl,
	}
}

func (s *CacheIdempotencyStore) Get(key string) (*CachedResponse, bool) {
	value, found := s.cache.Get(key)
	if !found {
		return nil, false
	}
	response, ok := value.(*CachedResponse)
	return response, ok
}

func (s *CacheIdempotencyStore) Set(key string, response *CachedResponse) {
	response.CreatedAt = time.Now()
	s.cache.Set(key, response, s.ttl)
}

// Stop drops every cached response. zcache has no way to stop its janitor;
// the janitor goroutine exits once the cache is garbage collected.
func (s *CacheIdempotencyStore) Stop() {
	s.cache.Flush()
}

type responseCapture struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (rc *responseCapture) WriteHeader(statusCode int) {
	rc.statusCode = statusCode
	rc.ResponseWriter.WriteHeader(statusCode)
}

func (rc *responseCapture) Write(b []byte) (int, error) {
	rc.body.Write(b)
	return rc.ResponseWriter.Write(b)
}

// Idempotency replays the first successful response of a write request that
// carries the same idempotency key, method and path. Retried bookings with
// the same key therefore do not surface as "Car is already booked".
func Idempotency(store IdempotencyStore, headerName string) func(http.Handler) http.Handler {
	if headerName == "" {
		headerName = DefaultIdempotencyHeader
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(headerName)
			if key == "" || r.Method == http.MethodGet || r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}
			key = r.Method + " " + r.URL.Path + " " + key

			if cached, found := store.Get(key); found {
				replayCachedResponse(w, cached)
				return
			}

			capture := &responseCapture{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
				body:           &bytes.Buffer{},
			}
			next.ServeHTTP(capture, r)

			if capture.statusCode >= 200 && capture.statusCode < 300 {
				store.Set(key, &CachedResponse{
					StatusCode: capture.statusCode,
					Headers:    w.Header().Clone(),
					Body:       capture.body.Bytes(),
				})
			}
		})
	}
}

func replayCachedResponse(w http.ResponseWriter, cached *CachedResponse) {
	for key, values := range cached.Headers {
		w.Header()[key] = values
	}
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(cached.StatusCode)
	_, _ = w.Write(cached.Body)
}
