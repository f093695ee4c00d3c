package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/coopandes/accounts-ledger/src/internal/logger"
	"golang.org/x/time/rate"
)

// RateLimiter hands each client IP a token bucket holding perWindow tokens
// that refills evenly over window.
type RateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*client
	limit     rate.Limit
	burst     int
	window    time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(perWindow int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		clients:   make(map[string]*client),
		limit:     rate.Every(window / time.Duration(perWindow)),
		burst:     perWindow,
		window:    window,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (l *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !l.allow(ip) {
				logger.Warn("rate limit exceeded", logger.Fields{
					"clientIp": ip,
					"method":   r.Method,
					"path":     r.URL.Path,
				})
				w.Header().Set("Retry-After", strconv.Itoa(int(l.retryAfter().Seconds())+1))
				http.Error(w, "too many requests, please try again later", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (l *RateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	c, ok := l.clients[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

func (l *RateLimiter) retryAfter() time.Duration {
	return time.Duration(float64(time.Second) / float64(l.limit))
}

// sweep drops clients idle for a full window; their buckets are full again by then.
func (l *RateLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	for ip, c := range l.clients {
		if now.Sub(c.lastSeen) >= l.window {
			delete(l.clients, ip)
		}
	}
	l.lastSweep = now
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
