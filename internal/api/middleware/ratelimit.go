package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/warelabs/warelay/internal/metrics"
	"github.com/warelabs/warelay/internal/models"
)

const (
	// maxVisitors caps the limiter map; stale entries are evicted first.
	maxVisitors = 10000
	visitorTTL  = 10 * time.Minute
)

// SenderLimiter rate limits webhook callbacks per sender. The key is the
// normalized From form value, falling back to the client IP for payloads
// that lack one.
type SenderLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor

	limit  rate.Limit
	burst  int
	logger zerolog.Logger
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewSenderLimiter allows perMinute requests per sender with the given burst.
func NewSenderLimiter(perMinute, burst int, logger zerolog.Logger) *SenderLimiter {
	return &SenderLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    burst,
		logger:   logger,
	}
}

// allow reports whether the sender may proceed.
func (l *SenderLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[key]
	if !ok {
		if len(l.visitors) >= maxVisitors {
			l.evictStale()
		}
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = time.Now()

	return v.limiter.Allow()
}

// evictStale removes visitors idle past the TTL. Caller holds mu.
func (l *SenderLimiter) evictStale() {
	cutoff := time.Now().Add(-visitorTTL)
	for key, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, key)
		}
	}
}

// Middleware returns the rate limiting middleware.
func (l *SenderLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := senderKey(r)

		if !l.allow(key) {
			metrics.RateLimitHits.Inc()
			l.logger.Warn().
				Str("sender", key).
				Str("endpoint", r.URL.Path).
				Msg("rate limit exceeded")

			w.Header().Set("Retry-After", "60")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"rate limit exceeded"}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// senderKey keys the limiter by the webhook's From field. ParseForm
// caches its result, so the handler's own parse sees the same values.
func senderKey(r *http.Request) string {
	if err := r.ParseForm(); err == nil {
		if from := models.NormalizeAddress(r.PostForm.Get("From")); from != "" {
			return "sender:" + from
		}
	}
	return "ip:" + RealIP(r)
}

// RealIP extracts the real client IP from headers or connection.
func RealIP(r *http.Request) string {
	// X-Forwarded-For first
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return strings.TrimSpace(strings.Split(ip, ",")[0])
	}
	// Then X-Real-IP
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	// Fallback to RemoteAddr
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
