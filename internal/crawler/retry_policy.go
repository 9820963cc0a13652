package crawler

import (
	"crypto/rand"
	"math"
	"math/big"
	"time"
)

// Retry defaults.
const (
	DefaultMaxAttempts       = 4
	DefaultBackoffBase       = time.Second
	DefaultBackoffMultiplier = 2.0
	DefaultBackoffMax        = 30 * time.Second
)

// ExponentialRetryPolicy implements RetryPolicy with optional equal jitter.
type ExponentialRetryPolicy struct {
	maxAttempts int
	baseDelay   time.Duration
	multiplier  float64
	maxDelay    time.Duration
	jitter      bool
}

// RetryOption customizes an ExponentialRetryPolicy.
type RetryOption func(*ExponentialRetryPolicy)

// WithMaxAttempts sets the total attempt budget, first attempt included.
func WithMaxAttempts(n int) RetryOption {
	return func(p *ExponentialRetryPolicy) {
		if n > 0 {
			p.maxAttempts = n
		}
	}
}

// WithBaseDelay sets the wait after the first failed attempt.
func WithBaseDelay(d time.Duration) RetryOption {
	return func(p *ExponentialRetryPolicy) {
		if d > 0 {
			p.baseDelay = d
		}
	}
}

// WithMultiplier sets the growth factor between consecutive waits.
func WithMultiplier(m float64) RetryOption {
	return func(p *ExponentialRetryPolicy) {
		if m >= 1 {
			p.multiplier = m
		}
	}
}

// WithMaxDelay caps a single wait.
func WithMaxDelay(d time.Duration) RetryOption {
	return func(p *ExponentialRetryPolicy) {
		if d > 0 {
			p.maxDelay = d
		}
	}
}

// WithJitter toggles equal jitter.
func WithJitter(enabled bool) RetryOption {
	return func(p *ExponentialRetryPolicy) {
		p.jitter = enabled
	}
}

// NewExponentialRetryPolicy builds a policy with sane defaults.
func NewExponentialRetryPolicy(opts ...RetryOption) *ExponentialRetryPolicy {
	p := &ExponentialRetryPolicy{
		maxAttempts: DefaultMaxAttempts,
		baseDelay:   DefaultBackoffBase,
		multiplier:  DefaultBackoffMultiplier,
		maxDelay:    DefaultBackoffMax,
		jitter:      true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// MaxAttempts returns the attempt budget.
func (p *ExponentialRetryPolicy) MaxAttempts() int {
	return p.maxAttempts
}

// Backoff returns the wait after the given failed attempt (1-based):
// base * multiplier^(attempt-1), capped. With jitter the wait lands in
// [d/2, d).
func (p *ExponentialRetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := float64(p.baseDelay) * math.Pow(p.multiplier, float64(attempt-1))
	if delay > float64(p.maxDelay) {
		delay = float64(p.maxDelay)
	}
	if !p.jitter {
		return time.Duration(delay)
	}
	half := time.Duration(delay / 2)
	return half + p.randomJitter(half)
}

func (p *ExponentialRetryPolicy) randomJitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	bound := big.NewInt(int64(limit))
	n, err := rand.Int(rand.Reader, bound)
	if err != nil {
		return limit / 2
	}
	return time.Duration(n.Int64())
}
