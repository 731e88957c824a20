package github

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"
)

// RateLimiter coordinates GitHub API usage across concurrent repository
// workers during multi-repository label sync
type RateLimiter interface {
	// Wait blocks until it's safe to make an API call
	Wait(ctx context.Context) error

	// UpdateLimits updates the limiter with current GitHub rate limit information
	UpdateLimits(remaining int, resetTime time.Time)

	// GetDelay returns the current delay before the next API call
	GetDelay() time.Duration

	// AcquireSlot acquires a slot for concurrent processing (blocks if limit reached)
	AcquireSlot(ctx context.Context) error

	// ReleaseSlot releases a slot for concurrent processing
	ReleaseSlot()

	// GetStats returns current limiter statistics
	GetStats() RateLimiterStats
}

// RateLimiterStats provides statistics about rate limiter usage
type RateLimiterStats struct {
	RemainingRequests  int           `json:"remaining_requests"`
	ResetTime          time.Time     `json:"reset_time"`
	CurrentDelay       time.Duration `json:"current_delay"`
	ConcurrentSlots    int           `json:"concurrent_slots"`
	MaxConcurrentSlots int           `json:"max_concurrent_slots"`
	TotalWaits         int64         `json:"total_waits"`
	TotalDelayTime     time.Duration `json:"total_delay_time"`
}

// RateLimiterConfig configures the rate limiter behavior
type RateLimiterConfig struct {
	// BaseDelay is the minimum delay between requests
	BaseDelay time.Duration

	// MaxDelay is the maximum delay between requests
	MaxDelay time.Duration

	// BackoffFactor is the exponential backoff multiplier
	BackoffFactor float64

	// Jitter adds randomness to delays to avoid thundering herd
	Jitter float64

	// ConcurrencyLimit is the maximum number of concurrent repository workers
	ConcurrencyLimit int

	// MinRemainingRequests is the threshold below which aggressive throttling starts
	MinRemainingRequests int

	// AggressiveThrottleDelay is the delay when remaining requests are low
	AggressiveThrottleDelay time.Duration
}

// DefaultRateLimiterConfig returns a default rate limiter configuration
func DefaultRateLimiterConfig() *RateLimiterConfig {
	return &RateLimiterConfig{
		BaseDelay:               100 * time.Millisecond,
		MaxDelay:                30 * time.Second,
		BackoffFactor:           2.0,
		Jitter:                  0.1,
		ConcurrencyLimit:        5,
		MinRemainingRequests:    100,
		AggressiveThrottleDelay: 2 * time.Second,
	}
}

// rateLimiter implements the RateLimiter interface
type rateLimiter struct {
	config *RateLimiterConfig
	mu     sync.RWMutex

	// Rate limit tracking
	remaining int
	resetTime time.Time
	lastCall  time.Time

	// Concurrency control
	semaphore chan struct{}

	// Statistics
	stats RateLimiterStats
}

// NewRateLimiter creates a new rate limiter for multi-repository operations
func NewRateLimiter(config *RateLimiterConfig) RateLimiter {
	if config == nil {
		config = DefaultRateLimiterConfig()
	}

	limiter := &rateLimiter{
		config:    config,
		remaining: 5000, // GitHub's default rate limit
		resetTime: time.Now().Add(time.Hour),
		semaphore: make(chan struct{}, config.ConcurrencyLimit),
	}

	limiter.stats.MaxConcurrentSlots = config.ConcurrencyLimit

	return limiter
}

// Wait blocks until it's safe to make an API call
func (rl *rateLimiter) Wait(ctx context.Context) error {
	rl.mu.Lock()

	delay := rl.calculateDelay()
	if delay > 0 {
		rl.stats.TotalWaits++
		rl.stats.TotalDelayTime += delay

		// Release the lock while waiting
		rl.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		rl.mu.Lock()
	}

	rl.lastCall = time.Now()
	rl.mu.Unlock()
	return nil
}

// UpdateLimits updates the limiter with current GitHub rate limit information
func (rl *rateLimiter) UpdateLimits(remaining int, resetTime time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.remaining = remaining
	rl.resetTime = resetTime
	rl.stats.RemainingRequests = remaining
	rl.stats.ResetTime = resetTime
}

// GetDelay returns the current delay before the next API call
func (rl *rateLimiter) GetDelay() time.Duration {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	return rl.calculateDelay()
}

// AcquireSlot acquires a slot for concurrent processing (blocks if limit reached)
func (rl *rateLimiter) AcquireSlot(ctx context.Context) error {
	select {
	case rl.semaphore <- struct{}{}:
		rl.mu.Lock()
		rl.stats.ConcurrentSlots++
		rl.mu.Unlock()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ReleaseSlot releases a slot for concurrent processing
func (rl *rateLimiter) ReleaseSlot() {
	select {
	case <-rl.semaphore:
		rl.mu.Lock()
		rl.stats.ConcurrentSlots--
		rl.mu.Unlock()
	default:
		// No slot to release
	}
}

// GetStats returns current limiter statistics
func (rl *rateLimiter) GetStats() RateLimiterStats {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	stats := rl.stats
	stats.CurrentDelay = rl.calculateDelay()
	return stats
}

// calculateDelay calculates the delay needed before the next API call
func (rl *rateLimiter) calculateDelay() time.Duration {
	now := time.Now()

	// If the rate limit window has reset, no delay needed
	if now.After(rl.resetTime) {
		return 0
	}

	var totalDelay time.Duration

	// Base delay since the last call
	if !rl.lastCall.IsZero() {
		sinceLastCall := now.Sub(rl.lastCall)
		if sinceLastCall < rl.config.BaseDelay {
			totalDelay = rl.config.BaseDelay - sinceLastCall
		}
	}

	// Aggressive throttling when remaining quota is low
	if rl.remaining < rl.config.MinRemainingRequests {
		if rl.config.AggressiveThrottleDelay > totalDelay {
			totalDelay = rl.config.AggressiveThrottleDelay
		}
	}

	// Exponential backoff below 10% of the default limit
	if rl.remaining < 500 {
		backoffMultiplier := math.Pow(rl.config.BackoffFactor, float64(5000-rl.remaining)/1000)
		backoffDelay := time.Duration(float64(rl.config.BaseDelay) * backoffMultiplier)
		if backoffDelay > totalDelay {
			totalDelay = backoffDelay
		}
	}

	// Jitter to avoid thundering herd. The package-level rand source is
	// safe for the concurrent readers that reach here under RLock.
	if rl.config.Jitter > 0 && totalDelay > 0 {
		jitterAmount := float64(totalDelay) * rl.config.Jitter
		totalDelay += time.Duration(rand.Float64() * jitterAmount)
	}

	if totalDelay > rl.config.MaxDelay {
		totalDelay = rl.config.MaxDelay
	}

	return totalDelay
}
