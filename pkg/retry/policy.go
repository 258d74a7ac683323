// Package retry decides when a failed delivery attempt may run again.
package retry

import (
	"math/rand/v2"
	"time"

	"github.com/umputun/pushscope/pkg/domain"
)

// defaults for Policy
const (
	DefaultBaseDelay = 5 * time.Second
	DefaultMaxJitter = time.Second
)

// Policy computes exponential backoff with uniform jitter.
// Safe for concurrent use.
type Policy struct {
	baseDelay time.Duration
	maxJitter time.Duration
	jitter    func(limit time.Duration) time.Duration
}

// Option configures Policy
type Option func(p *Policy)

// WithJitterFunc replaces the random jitter source, used in tests
func WithJitterFunc(fn func(limit time.Duration) time.Duration) Option {
	return func(p *Policy) { p.jitter = fn }
}

// New makes a policy. baseDelay is used for attempts without their own base delay.
func New(baseDelay, maxJitter time.Duration, opts ...Option) *Policy {
	if baseDelay <= 0 {
		baseDelay = DefaultBaseDelay
	}
	if maxJitter <= 0 {
		maxJitter = DefaultMaxJitter
	}
	p := &Policy{baseDelay: baseDelay, maxJitter: maxJitter, jitter: uniformJitter}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NextRetryTime returns the earliest time the attempt may run again, false if it can't retry.
// The result is a hint, a scheduler may run the attempt later but never earlier.
func (p *Policy) NextRetryTime(a *domain.DeliveryAttempt, now time.Time) (time.Time, bool) {
	if !a.CanRetry() {
		return time.Time{}, false
	}
	cp := *a
	if cp.RetryBaseDelay <= 0 {
		cp.RetryBaseDelay = p.baseDelay
	}
	return cp.NextRetryTime(now, p.jitter(p.maxJitter))
}

// uniformJitter returns a random duration in [0, limit)
func uniformJitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	return time.Duration(rand.Int64N(int64(limit))) //nolint:gosec // jitter doesn't need crypto rand
}
