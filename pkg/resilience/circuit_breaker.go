// Package resilience holds the throttling primitives shared by the
// LLM provider clients.
package resilience

import (
	"errors"
	"sync"
	"time"
)

// RateLimitError marks a provider 429 or a locally tripped breaker.
type RateLimitError struct {
	Provider string
	Message  string
}

func (e RateLimitError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "rate limit"
}

func IsRateLimit(err error) bool {
	var rl RateLimitError
	return errors.As(err, &rl)
}

// CircuitBreaker opens after a run of consecutive rate-limit errors
// and stays open for the cooldown. Non-throttle errors never trip it.
type CircuitBreaker struct {
	threshold int
	cooldown  time.Duration

	mu       sync.Mutex
	strikes  int
	reopenAt time.Time
}

func NewCircuitBreaker(threshold int, cooldown time.Duration) *CircuitBreaker {
	if threshold <= 0 {
		threshold = 3
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &CircuitBreaker{threshold: threshold, cooldown: cooldown}
}

// Allow reports whether a call may proceed. The breaker half-opens
// automatically once the cooldown passes.
func (c *CircuitBreaker) Allow() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.reopenAt.IsZero() {
		return true
	}
	if time.Now().Before(c.reopenAt) {
		return false
	}
	// Cooldown elapsed. Let the next call probe the provider; a single
	// new rate limit re-opens immediately.
	c.reopenAt = time.Time{}
	c.strikes = c.threshold - 1
	return true
}

func (c *CircuitBreaker) OnSuccess() {
	c.mu.Lock()
	c.strikes = 0
	c.reopenAt = time.Time{}
	c.mu.Unlock()
}

func (c *CircuitBreaker) OnError(err error) {
	if !IsRateLimit(err) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.strikes++
	if c.strikes >= c.threshold {
		c.reopenAt = time.Now().Add(c.cooldown)
	}
}
