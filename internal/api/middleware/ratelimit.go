package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL  = 10 * time.Minute
	limiterGCAtSize = 1000
)

type clientLimiter struct {
	general  *rate.Limiter
	auth     *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps a token bucket per client IP. Requests under AuthPrefix
// draw from a separate, usually tighter, bucket. A non-positive RPM disables
// the corresponding bucket.
type RateLimiter struct {
	generalRPM int
	authRPM    int
	authPrefix string

	mu      sync.Mutex
	clients map[string]*clientLimiter
	now     func() time.Time
}

func NewRateLimiter(generalRPM, authRPM int, authPrefix string) *RateLimiter {
	return &RateLimiter{
		generalRPM: generalRPM,
		authRPM:    authRPM,
		authPrefix: authPrefix,
		clients:    map[string]*clientLimiter{},
		now:        time.Now,
	}
}

// Middleware returns the echo middleware enforcing the limits.
func (m *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			limiter := m.getLimiter(c.RealIP())

			target := limiter.general
			if m.authPrefix != "" && strings.HasPrefix(c.Request().URL.Path, m.authPrefix) {
				target = limiter.auth
			}

			if target != nil && !target.Allow() {
				c.Response().Header().Set("Retry-After", "60")
				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"error": "too many requests",
					"kind":  "rate_limited",
				})
			}
			return next(c)
		}
	}
}

func (m *RateLimiter) getLimiter(clientIP string) *clientLimiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if limiter, ok := m.clients[clientIP]; ok {
		limiter.lastSeen = now
		return limiter
	}

	m.gcLocked(now)
	created := &clientLimiter{
		general:  newLimiter(m.generalRPM),
		auth:     newLimiter(m.authRPM),
		lastSeen: now,
	}
	m.clients[clientIP] = created
	return created
}

func (m *RateLimiter) gcLocked(now time.Time) {
	if len(m.clients) < limiterGCAtSize {
		return
	}

	cutoff := now.Add(-limiterIdleTTL)
	for ip, limiter := range m.clients {
		if limiter.lastSeen.Before(cutoff) {
			delete(m.clients, ip)
		}
	}
}

func newLimiter(rpm int) *rate.Limiter {
	if rpm <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), rpm)
}
