package httpx

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig defines a per-client request budget.
type RateLimitConfig struct {
	// RequestsPerWindow is the number of requests allowed per Window.
	RequestsPerWindow int
	// Window is the averaging window.
	Window time.Duration
	// Burst is the instantaneous allowance above the average rate.
	Burst int
}

func (c RateLimitConfig) limit() rate.Limit {
	if c.RequestsPerWindow <= 0 || c.Window <= 0 {
		return rate.Inf
	}
	return rate.Limit(float64(c.RequestsPerWindow) / c.Window.Seconds())
}

// RateLimiter tracks one token bucket per client IP. Idle clients are
// evicted so the map stays bounded under address churn.
type RateLimiter struct {
	cfg RateLimitConfig

	mu        sync.Mutex
	clients   map[string]*clientBucket
	lastSweep time.Time
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter with the given per-client config.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		cfg:       cfg,
		clients:   make(map[string]*clientBucket),
		lastSweep: time.Now(),
	}
}

// Middleware rejects over-budget requests with 429 and a Retry-After hint.
func (rl *RateLimiter) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.allow(clientIP(r)) {
				w.Header().Set("Retry-After", "60")
				WriteJSON(w, http.StatusTooManyRequests, map[string]string{
					"error":             "rate_limited",
					"error_description": "too many requests",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	rl.sweepLocked(now)

	bucket, ok := rl.clients[ip]
	if !ok {
		bucket = &clientBucket{
			limiter: rate.NewLimiter(rl.cfg.limit(), max(rl.cfg.Burst, 1)),
		}
		rl.clients[ip] = bucket
	}
	bucket.lastSeen = now

	return bucket.limiter.Allow()
}

// sweepLocked drops clients idle for more than three windows. Runs at most
// once per window.
func (rl *RateLimiter) sweepLocked(now time.Time) {
	if rl.cfg.Window <= 0 || now.Sub(rl.lastSweep) < rl.cfg.Window {
		return
	}
	rl.lastSweep = now

	idle := 3 * rl.cfg.Window
	for ip, bucket := range rl.clients {
		if now.Sub(bucket.lastSeen) > idle {
			delete(rl.clients, ip)
		}
	}
}

// clientIP extracts the remote host, falling back to the raw RemoteAddr
// when it carries no port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
