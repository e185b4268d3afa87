package resilience

import (
	"context"
	"sync"
	"time"
)

// RateLimiterConfig configures a RateLimiter.
type RateLimiterConfig struct {
	// Rate is the sustained number of requests per second. 0 disables limiting.
	Rate float64 `yaml:"rate" mapstructure:"rate" validate:"min=0"`
	// Burst is the number of requests allowed at once. Defaults to Rate
	// rounded up, at least 1.
	Burst int `yaml:"burst" mapstructure:"burst" validate:"min=0"`
}

// Enabled reports whether c describes a limit.
func (c RateLimiterConfig) Enabled() bool { return c.Rate > 0 }

// RateLimiter is a token bucket. It is safe for concurrent use.
type RateLimiter struct {
	rate  float64
	burst float64

	mu     sync.Mutex
	tokens float64
	last   time.Time
	now    func() time.Time
}

// NewRateLimiter creates a limiter with a full bucket, or nil when cfg is
// not enabled. A nil *RateLimiter never blocks.
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	if !cfg.Enabled() {
		return nil
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = int(cfg.Rate)
		if float64(burst) < cfg.Rate {
			burst++
		}
	}
	rl := &RateLimiter{rate: cfg.Rate, burst: float64(burst), now: time.Now}
	rl.tokens = rl.burst
	rl.last = rl.now()
	return rl
}

// Allow takes a token if one is available.
func (rl *RateLimiter) Allow() bool {
	if rl == nil {
		return true
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refill()
	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

// Wait blocks until a token is available or ctx is done. The token is
// reserved up front, so waiters are served in arrival order.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl == nil {
		return nil
	}
	delay := rl.reserve()
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		rl.cancel()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Tokens returns the number of tokens currently available; negative while
// waiters hold reservations.
func (rl *RateLimiter) Tokens() float64 {
	if rl == nil {
		return 0
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refill()
	return rl.tokens
}

func (rl *RateLimiter) reserve() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refill()
	rl.tokens--
	if rl.tokens >= 0 {
		return 0
	}
	return time.Duration(-rl.tokens / rl.rate * float64(time.Second))
}

func (rl *RateLimiter) cancel() {
	rl.mu.Lock()
	rl.tokens++
	rl.mu.Unlock()
}

func (rl *RateLimiter) refill() {
	now := rl.now()
	rl.tokens += now.Sub(rl.last).Seconds() * rl.rate
	rl.last = now
	if rl.tokens > rl.burst {
		rl.tokens = rl.burst
	}
}
