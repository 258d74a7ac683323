package retry

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/pushscope/pkg/domain"
)

func failedAttempt(t *testing.T, retries int, baseDelay time.Duration) *domain.DeliveryAttempt {
	t.Helper()
	a, err := domain.NewDeliveryAttempt(domain.AttemptParams{ItemID: 1, SubscriptionID: 1,
		Channel: domain.ChannelWebhook, MaxRetries: 5, RetryBaseDelay: baseDelay})
	require.NoError(t, err)
	now := time.Now()
	require.NoError(t, a.MarkStarted(now))
	require.NoError(t, a.MarkFailed(now, "503", "unavailable", ""))
	for range retries {
		a.AddRetryAttempt(now, "unavailable", time.Millisecond)
	}
	return a
}

func TestPolicy_NextRetryTime(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("range for retry count 2 and 5s base", func(t *testing.T) {
		p := New(time.Minute, time.Second)
		a := failedAttempt(t, 2, 5*time.Second)
		for range 200 {
			next, ok := p.NextRetryTime(a, now)
			require.True(t, ok)
			delay := next.Sub(now)
			assert.GreaterOrEqual(t, delay, 10*time.Second)
			assert.Less(t, delay, 11*time.Second)
		}
	})

	t.Run("policy base delay when attempt has none", func(t *testing.T) {
		p := New(2*time.Second, time.Second, WithJitterFunc(func(time.Duration) time.Duration { return 0 }))
		a := failedAttempt(t, 3, 0)
		next, ok := p.NextRetryTime(a, now)
		require.True(t, ok)
		assert.Equal(t, now.Add(8*time.Second), next)
		assert.Equal(t, time.Duration(0), a.RetryBaseDelay, "attempt must not be modified")
	})

	t.Run("exponential growth", func(t *testing.T) {
		p := New(time.Second, time.Second, WithJitterFunc(func(time.Duration) time.Duration { return 0 }))
		var prev time.Duration
		for retries := 1; retries <= 4; retries++ {
			next, ok := p.NextRetryTime(failedAttempt(t, retries, 0), now)
			require.True(t, ok)
			delay := next.Sub(now)
			if prev > 0 {
				assert.Equal(t, 2*prev, delay)
			}
			prev = delay
		}
	})

	t.Run("no retry when exhausted", func(t *testing.T) {
		p := New(0, 0)
		a := failedAttempt(t, 5, time.Second)
		_, ok := p.NextRetryTime(a, now)
		assert.False(t, ok)

		b := failedAttempt(t, 0, time.Second)
		b.ExhaustRetries()
		_, ok = p.NextRetryTime(b, now)
		assert.False(t, ok)
	})

	t.Run("concurrent use", func(t *testing.T) {
		p := New(time.Second, time.Second)
		a := failedAttempt(t, 1, 0)
		var wg sync.WaitGroup
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, ok := p.NextRetryTime(a, now)
				assert.True(t, ok)
			}()
		}
		wg.Wait()
	})
}

func TestUniformJitter(t *testing.T) {
	assert.Equal(t, time.Duration(0), uniformJitter(0))
	for range 100 {
		j := uniformJitter(time.Second)
		assert.GreaterOrEqual(t, j, time.Duration(0))
		assert.Less(t, j, time.Second)
	}
}
