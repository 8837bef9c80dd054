package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/eldtechnologies/lostfound/internal/metrics"
)

// RateLimit defines a token bucket for an endpoint pattern.
type RateLimit struct {
	Method  string
	Pattern string // path with "*" matching one segment
	Rate    rate.Limit
	Burst   int
	KeyFunc func(r *http.Request) string
}

// RateLimiterConfig holds configuration for the rate limiter.
type RateLimiterConfig struct {
	PerMinute int      // chat read budget per caller
	Whitelist []string // IPs or CIDRs exempt from rate limiting
}

// RateLimiter keeps one token bucket per (rule, caller) pair in memory.
type RateLimiter struct {
	limits       []RateLimit
	logger       zerolog.Logger
	whitelist    []*net.IPNet
	whitelistIPs map[string]bool

	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a new rate limiter.
func NewRateLimiter(logger zerolog.Logger, cfg RateLimiterConfig) *RateLimiter {
	perMinute := cfg.PerMinute
	if perMinute <= 0 {
		perMinute = 120
	}
	rl := &RateLimiter{
		logger:       logger,
		whitelistIPs: make(map[string]bool),
		buckets:      make(map[string]*bucket),
		// First match wins.
		limits: []RateLimit{
			{http.MethodGet, "/api/claims/*/chat", perMinuteLimit(perMinute), perMinute / 4, userKey},
			{http.MethodPost, "/api/claims/*/chat", perMinuteLimit(30), 10, userKey},
			{http.MethodPost, "/api/claims", rate.Every(time.Hour / 20), 5, userKey},
			{http.MethodGet, "/api/claims/my", perMinuteLimit(60), 10, userKey},
			{http.MethodGet, "/api/admin/*", perMinuteLimit(60), 10, userKey},
			{http.MethodGet, "/api/admin/*/*", perMinuteLimit(60), 10, userKey},
			{http.MethodGet, "/api/users/profile", perMinuteLimit(60), 10, userKey},
		},
	}

	for _, entry := range cfg.Whitelist {
		if strings.Contains(entry, "/") {
			_, ipNet, err := net.ParseCIDR(entry)
			if err != nil {
				logger.Warn().Str("entry", entry).Err(err).Msg("invalid CIDR in whitelist")
				continue
			}
			rl.whitelist = append(rl.whitelist, ipNet)
		} else {
			rl.whitelistIPs[entry] = true
		}
	}

	if len(cfg.Whitelist) > 0 {
		logger.Info().
			Int("ips", len(rl.whitelistIPs)).
			Int("cidrs", len(rl.whitelist)).
			Msg("rate limit whitelist configured")
	}

	return rl
}

func perMinuteLimit(n int) rate.Limit {
	return rate.Every(time.Minute / time.Duration(n))
}

// isWhitelisted checks if an IP is in the whitelist.
func (rl *RateLimiter) isWhitelisted(ipStr string) bool {
	if rl.whitelistIPs[ipStr] {
		return true
	}

	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}
	for _, ipNet := range rl.whitelist {
		if ipNet.Contains(ip) {
			return true
		}
	}
	return false
}

// userKey keys on the authenticated user, or the client IP without one.
func userKey(r *http.Request) string {
	if user := GetUserFromContext(r.Context()); user != nil {
		return "user:" + user.ID
	}
	return "ip:" + RealIP(r)
}

// RealIP extracts the real client IP from headers or connection.
func RealIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return strings.TrimSpace(strings.Split(ip, ",")[0])
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// limiterFor returns the bucket for key, creating it on first use.
func (rl *RateLimiter) limiterFor(key string, limit RateLimit, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[key]
	if !ok {
		burst := limit.Burst
		if burst < 1 {
			burst = 1
		}
		b = &bucket{limiter: rate.NewLimiter(limit.Rate, burst)}
		rl.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter
}

// Sweep drops buckets idle for longer than maxIdle.
func (rl *RateLimiter) Sweep(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	n := 0
	for key, b := range rl.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(rl.buckets, key)
			n++
		}
	}
	return n
}

// Middleware returns the rate limiting middleware. It must run after
// RequireUser so callers are keyed by user id.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := RealIP(r)
		if rl.isWhitelisted(ip) {
			next.ServeHTTP(w, r)
			return
		}

		limit, ok := rl.findLimit(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		now := time.Now()
		key := limit.Method + " " + limit.Pattern + " " + limit.KeyFunc(r)
		lim := rl.limiterFor(key, limit, now)
		allowed := lim.AllowN(now, 1)
		remaining := int(math.Max(0, math.Floor(lim.TokensAt(now))))

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(lim.Burst()))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			retry := time.Duration(float64(time.Second) / float64(limit.Rate))
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retry.Seconds()))))

			metrics.RateLimitHits.WithLabelValues(limit.Pattern).Inc()
			rl.logger.Warn().
				Str("type", "security").
				Str("event", "rate_limit_exceeded").
				Str("ip", ip).
				Str("endpoint", r.URL.Path).
				Str("key", key).
				Msg("rate limit exceeded")

			jsonError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// findLimit finds the first rule matching a request.
func (rl *RateLimiter) findLimit(r *http.Request) (RateLimit, bool) {
	for _, limit := range rl.limits {
		if limit.Method == r.Method && matchPath(limit.Pattern, r.URL.Path) {
			return limit, true
		}
	}
	return RateLimit{}, false
}

// matchPath reports whether path matches pattern segment by segment, where a
// "*" segment matches any single non-empty segment.
func matchPath(pattern, path string) bool {
	ps := strings.Split(strings.Trim(pattern, "/"), "/")
	xs := strings.Split(strings.Trim(path, "/"), "/")
	if len(ps) != len(xs) {
		return false
	}
	for i := range ps {
		if ps[i] == "*" {
			if xs[i] == "" {
				return false
			}
			continue
		}
		if ps[i] != xs[i] {
			return false
		}
	}
	return true
}
