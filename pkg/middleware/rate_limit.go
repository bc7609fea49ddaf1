package middleware

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"rentwheels/pkg/logger"
	"rentwheels/pkg/requestid"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter decides whether a client key is still within its quota.
type RateLimiter interface {
	Allow(ctx context.Context, key string) bool
	Stop()
}

// KeyExtractor maps a request to the key it is counted under.
type KeyExtractor func(r *http.Request) string

type window struct {
	start time.Time
	count int
}

// MemoryRateLimiter is a per-process fixed-window limiter.
type MemoryRateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	period  time.Duration
	now     func() time.Time
	stopCh  chan struct{}
	once    sync.Once
}

func NewMemoryRateLimiter(limit int, period time.Duration) *MemoryRateLimiter {
	limiter := &MemoryRateLimiter{
		windows: make(map[string]*window),
		limit:   limit,
		period:  period,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}

	go limiter.cleanup()

	return limiter
}

func (rl *MemoryRateLimiter) cleanup() {
	ticker := time.NewTicker(rl.period)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			now := rl.now()
			for key, w := range rl.windows {
				if now.Sub(w.start) >= rl.period {
					delete(rl.windows, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *MemoryRateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stopCh) })
}

func (rl *MemoryRateLimiter) Allow(_ context.Context, key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.windows[key]
	if !ok || now.Sub(w.start) >= rl.period {
		rl.windows[key] = &window{start: now, count: 1}
		return true
	}
	if w.count >= rl.limit {
		return false
	}
	w.count++
	return true
}

var fixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// RedisRateLimiter shares fixed-window counters between instances.
// When Redis cannot be reached it lets requests through and logs.
type RedisRateLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	period time.Duration
	log    *logger.Logger
}

func NewRedisRateLimiter(addr, password, prefix string, limit int, period time.Duration, log *logger.Logger) (*RedisRateLimiter, error) {
	if limit <= 0 || period <= 0 {
		return nil, errors.New("rate limiter requires positive limit and window")
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("rate limiter redis addr is required")
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "rentwheels:ratelimit"
	}

	return &RedisRateLimiter{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
		prefix: prefix,
		limit:  limit,
		period: period,
		log:    log,
	}, nil
}

func (rl *RedisRateLimiter) Allow(ctx context.Context, key string) bool {
	periodMs := rl.period.Milliseconds()
	slot := time.Now().UTC().UnixMilli() / periodMs
	redisKey := fmt.Sprintf("%s:%s:%d", rl.prefix, key, slot)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	count, err := fixedWindowScript.Run(ctx, rl.client, []string{redisKey}, periodMs).Int64()
	if err != nil {
		rl.log.Warn("Rate limiter unavailable, allowing request", "key", key, "error", err)
		return true
	}
	return count <= int64(rl.limit)
}

func (rl *RedisRateLimiter) Stop() {
	if err := rl.client.Close(); err != nil {
		rl.log.Warn("Failed to close rate limiter client", "error", err)
	}
}

func RateLimit(limiter RateLimiter, extractor KeyExtractor, log *logger.Logger) func(http.Handler) http.Handler {
	if extractor == nil {
		extractor = ClientIP
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := extractor(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !limiter.Allow(r.Context(), key) {
				log.Warn("Rate limit exceeded",
					"request_id", requestid.FromContext(r.Context()),
					"client", key,
					"path", r.URL.Path,
				)
				writeJSONError(w, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP keys requests by the connection's remote address. Forwarded
// headers are ignored; use NewClientIPExtractor behind a reverse proxy.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// NewClientIPExtractor honors X-Forwarded-For only when the peer is one of
// trustedProxies (addresses or CIDR ranges). The header is walked right to
// left and the first hop outside the trusted set is the client.
func NewClientIPExtractor(trustedProxies []string) KeyExtractor {
	prefixes := make([]netip.Prefix, 0, len(trustedProxies))
	for _, entry := range trustedProxies {
		entry = strings.TrimSpace(entry)
		if prefix, err := netip.ParsePrefix(entry); err == nil {
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		if addr, err := netip.ParseAddr(entry); err == nil {
			addr = addr.Unmap()
			prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
		}
	}
	if len(prefixes) == 0 {
		return ClientIP
	}

	trusted := func(ip string) bool {
		addr, err := netip.ParseAddr(ip)
		if err != nil {
			return false
		}
		addr = addr.Unmap()
		for _, prefix := range prefixes {
			if prefix.Contains(addr) {
				return true
			}
		}
		return false
	}

	return func(r *http.Request) string {
		peer := ClientIP(r)
		if !trusted(peer) {
			return peer
		}
		hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if hop == "" {
				continue
			}
			if !trusted(hop) {
				return hop
			}
		}
		return peer
	}
}
