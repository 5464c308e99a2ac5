package middleware

import (
	"sync"
	"sync/atomic"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

type rateLimiterStore struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
	counter  atomic.Int64
}

func newRateLimiterStore(rps float64, burst int) *rateLimiterStore {
	return &rateLimiterStore{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

func (s *rateLimiterStore) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	limiter, ok := s.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(s.rps, s.burst)
		s.limiters[key] = limiter
	}

	// every 1000 lookups evict idle keys
	if s.counter.Add(1)%1000 == 0 {
		for k, l := range s.limiters {
			if l.Tokens() >= float64(s.burst) {
				delete(s.limiters, k)
			}
		}
	}
	return limiter
}

// RateLimitMiddleware throttles per authenticated user, falling back to the
// client IP. rps <= 0 disables it.
func RateLimitMiddleware(rps float64, burst int) fiber.Handler {
	if rps <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	if burst <= 0 {
		burst = int(rps) + 1
	}
	store := newRateLimiterStore(rps, burst)

	return func(c *fiber.Ctx) error {
		key := CurrentUserID(c)
		if key == "" {
			key = c.IP()
		}
		if !store.get(key).Allow() {
			c.Set("Retry-After", "1")
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many report requests, try again shortly",
			})
		}
		return c.Next()
	}
}
