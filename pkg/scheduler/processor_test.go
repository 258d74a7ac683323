package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/pushscope/pkg/domain"
	"github.com/umputun/pushscope/pkg/scheduler/mocks"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func testItem() *domain.Item {
	return &domain.Item{
		ID:         11,
		ExternalID: "tw-11",
		Text:       "Big AI announcement from the lab today",
		URL:        "https://example.com/11",
		Engagement: domain.Engagement{Likes: 100, Retweets: 50},
		Author:     domain.Author{Name: "lab", Followers: 50000, Verified: true},
		CreatedAt:  testNow.Add(-time.Hour),
	}
}

func testSubscriptions() []domain.Subscription {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []domain.Subscription{
		{ID: 1, OwnerID: "alice", Name: "ai", IsActive: true, Keywords: []string{"AI"},
			Channels:    []domain.Channel{domain.ChannelTelegram, domain.ChannelEmail},
			Frequency:   domain.Frequency{Kind: domain.FrequencyRealtime},
			ActiveHours: domain.ActiveHours{Start: 0, End: 23}, CreatedAt: created},
		{ID: 2, OwnerID: "bob", Name: "digest", IsActive: true, Keywords: []string{"announcement"},
			Channels:    []domain.Channel{domain.ChannelTelegram},
			Frequency:   domain.Frequency{Kind: domain.FrequencyDaily},
			ActiveHours: domain.ActiveHours{Start: 1, End: 2}, CreatedAt: created.Add(time.Hour)},
		{ID: 3, OwnerID: "carol", Name: "rust", IsActive: true, Keywords: []string{"rust"},
			Channels:    []domain.Channel{domain.ChannelTelegram},
			ActiveHours: domain.ActiveHours{Start: 0, End: 23}, CreatedAt: created},
	}
}

type processorStores struct {
	items    *mocks.ItemStoreMock
	subs     *mocks.SubscriptionStoreMock
	attempts *mocks.AttemptStoreMock

	mu      sync.Mutex
	created []*domain.DeliveryAttempt
}

func newProcessorStores(subs []domain.Subscription) *processorStores {
	s := &processorStores{}
	s.items = &mocks.ItemStoreMock{
		UpdateItemScoreFunc:  func(context.Context, int64, float64, time.Time) error { return nil },
		MarkProcessedFunc:    func(context.Context, int64, time.Time) error { return nil },
		UnprocessedItemsFunc: func(context.Context, int64, int) ([]domain.Item, error) { return nil, nil },
	}
	s.subs = &mocks.SubscriptionStoreMock{
		ActiveSubscriptionsFunc: func(context.Context) ([]domain.Subscription, error) { return subs, nil },
		IncrementMatchFunc:      func(context.Context, int64, time.Time) error { return nil },
		UpdateLastProcessedFunc: func(context.Context, int64, string) error { return nil },
	}
	s.attempts = &mocks.AttemptStoreMock{
		CreateAttemptsFunc: func(_ context.Context, attempts []*domain.DeliveryAttempt) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.created = append(s.created, attempts...)
			return nil
		},
	}
	return s
}

func (s *processorStores) processor(qualityGate bool) *Processor {
	return NewProcessor(ProcessorParams{
		ItemStore:         s.items,
		SubscriptionStore: s.subs,
		AttemptStore:      s.attempts,
		QualityGate:       qualityGate,
		MaxRetries:        4,
		RetryBaseDelay:    10 * time.Second,
		MaxWorkers:        2,
		Now:               func() time.Time { return testNow },
	})
}

func TestProcessor_ProcessItem(t *testing.T) {
	stores := newProcessorStores(testSubscriptions())
	item := testItem()

	n, err := stores.processor(false).ProcessItem(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// score persisted
	require.Len(t, stores.items.UpdateItemScoreCalls(), 1)
	assert.Equal(t, int64(11), stores.items.UpdateItemScoreCalls()[0].Id)
	assert.Positive(t, item.Score)
	require.NotNil(t, item.ScoredAt)

	// only matched subscriptions are counted
	require.Len(t, stores.subs.IncrementMatchCalls(), 2)
	assert.Equal(t, int64(1), stores.subs.IncrementMatchCalls()[0].Id)
	assert.Equal(t, int64(2), stores.subs.IncrementMatchCalls()[1].Id)
	for _, c := range stores.subs.UpdateLastProcessedCalls() {
		assert.Equal(t, "tw-11", c.ExternalID)
		assert.NotEqual(t, int64(3), c.Id)
	}

	// marked processed once attempts exist
	require.Len(t, stores.items.MarkProcessedCalls(), 1)
	assert.Equal(t, int64(11), stores.items.MarkProcessedCalls()[0].Id)
	require.NotNil(t, item.ProcessedAt)
	assert.Equal(t, testNow, *item.ProcessedAt)

	// one CreateAttempts call with the whole fan-out
	require.Len(t, stores.attempts.CreateAttemptsCalls(), 1)
	attempts := stores.created
	require.Len(t, attempts, 3)

	batchID := attempts[0].Batch.ID
	assert.NotEmpty(t, batchID)
	for i, a := range attempts {
		assert.Equal(t, batchID, a.Batch.ID)
		assert.Equal(t, 3, a.Batch.Size)
		assert.Equal(t, i, a.Batch.Index)
		assert.Equal(t, domain.StatusPending, a.Status)
		assert.Equal(t, int64(11), a.ItemID)
		assert.Equal(t, 4, a.MaxRetries)
		assert.NotEmpty(t, a.Content.Title)
	}

	// realtime subscription goes out now with high priority on both channels
	assert.Equal(t, int64(1), attempts[0].SubscriptionID)
	assert.Equal(t, domain.ChannelTelegram, attempts[0].Channel)
	assert.Equal(t, domain.ChannelEmail, attempts[1].Channel)
	assert.Equal(t, domain.PriorityHigh, attempts[0].Priority)
	assert.Equal(t, "alice", attempts[0].OwnerID)
	assert.True(t, testNow.Equal(*attempts[0].Timing.ScheduledAt))

	// daily subscription outside its window is deferred to the next opening
	assert.Equal(t, int64(2), attempts[2].SubscriptionID)
	assert.Equal(t, domain.PriorityLow, attempts[2].Priority)
	assert.True(t, time.Date(2024, 6, 2, 1, 0, 0, 0, time.UTC).Equal(*attempts[2].Timing.ScheduledAt))
}

func TestProcessor_ProcessItem_NoMatches(t *testing.T) {
	stores := newProcessorStores(testSubscriptions()[2:])
	n, err := stores.processor(false).ProcessItem(context.Background(), testItem())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, stores.attempts.CreateAttemptsCalls())
	assert.Empty(t, stores.subs.IncrementMatchCalls())
	require.Len(t, stores.items.MarkProcessedCalls(), 1)
}

func TestProcessor_ProcessItem_QualityGate(t *testing.T) {
	stores := newProcessorStores(testSubscriptions())
	weak := testItem()
	weak.Engagement = domain.Engagement{Likes: 1}

	n, err := stores.processor(true).ProcessItem(context.Background(), weak)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, stores.subs.ActiveSubscriptionsCalls())
	require.Len(t, stores.items.MarkProcessedCalls(), 1)

	t.Run("strong item passes the gate", func(t *testing.T) {
		n, err := stores.processor(true).ProcessItem(context.Background(), testItem())
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})

	t.Run("spam score rejects", func(t *testing.T) {
		p := stores.processor(true)
		p.spamScore = func(*domain.Item) float64 { return 0.9 }
		n, err := p.ProcessItem(context.Background(), testItem())
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestProcessor_ProcessItem_Errors(t *testing.T) {
	t.Run("subscriptions unavailable", func(t *testing.T) {
		stores := newProcessorStores(nil)
		stores.subs.ActiveSubscriptionsFunc = func(context.Context) ([]domain.Subscription, error) {
			return nil, errors.New("db down")
		}
		_, err := stores.processor(false).ProcessItem(context.Background(), testItem())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "get active subscriptions")
		assert.Empty(t, stores.items.MarkProcessedCalls())
	})

	t.Run("attempts not stored", func(t *testing.T) {
		stores := newProcessorStores(testSubscriptions())
		stores.attempts.CreateAttemptsFunc = func(context.Context, []*domain.DeliveryAttempt) error {
			return errors.New("disk full")
		}
		item := testItem()
		_, err := stores.processor(false).ProcessItem(context.Background(), item)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "create attempts")

		// nothing counted and the item stays unprocessed
		assert.Empty(t, stores.subs.IncrementMatchCalls())
		assert.Empty(t, stores.subs.UpdateLastProcessedCalls())
		assert.Empty(t, stores.items.MarkProcessedCalls())
		assert.Nil(t, item.ProcessedAt)
	})

	t.Run("processed marker failure is not fatal", func(t *testing.T) {
		stores := newProcessorStores(testSubscriptions())
		stores.items.MarkProcessedFunc = func(context.Context, int64, time.Time) error { return errors.New("locked") }
		item := testItem()
		n, err := stores.processor(false).ProcessItem(context.Background(), item)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		assert.Nil(t, item.ProcessedAt)
	})

	t.Run("stat update failures are not fatal", func(t *testing.T) {
		stores := newProcessorStores(testSubscriptions())
		stores.subs.IncrementMatchFunc = func(context.Context, int64, time.Time) error { return errors.New("locked") }
		stores.items.UpdateItemScoreFunc = func(context.Context, int64, float64, time.Time) error { return errors.New("locked") }
		n, err := stores.processor(false).ProcessItem(context.Background(), testItem())
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})

	t.Run("unsaved item is not rescored in store", func(t *testing.T) {
		stores := newProcessorStores(testSubscriptions())
		item := testItem()
		item.ID = 0
		_, err := stores.processor(false).ProcessItem(context.Background(), item)
		require.Error(t, err) // attempts need a stored item
		assert.Empty(t, stores.items.UpdateItemScoreCalls())
		assert.Empty(t, stores.items.MarkProcessedCalls())
	})
}

func TestProcessor_ProcessingWorker(t *testing.T) {
	stores := newProcessorStores(testSubscriptions())
	p := stores.processor(false)

	ch := make(chan domain.Item, 5)
	for i := range 5 {
		item := testItem()
		item.ID = int64(100 + i)
		ch <- *item
	}
	close(ch)

	p.ProcessingWorker(context.Background(), ch)
	assert.Len(t, stores.attempts.CreateAttemptsCalls(), 5)
	assert.Len(t, stores.created, 15)
	assert.Len(t, stores.items.MarkProcessedCalls(), 5)
}

func TestPriorityOf(t *testing.T) {
	realtime := &domain.Subscription{Frequency: domain.Frequency{Kind: domain.FrequencyRealtime}}
	hourly := &domain.Subscription{Frequency: domain.Frequency{Kind: domain.FrequencyHourly}}
	assert.Equal(t, domain.PriorityHigh, priorityOf(realtime, domain.Match{Deferred: true}))
	assert.Equal(t, domain.PriorityLow, priorityOf(hourly, domain.Match{Deferred: true}))
	assert.Equal(t, domain.PriorityNormal, priorityOf(hourly, domain.Match{}))
}
