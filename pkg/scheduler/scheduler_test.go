package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/pushscope/pkg/dispatch"
	"github.com/umputun/pushscope/pkg/domain"
	"github.com/umputun/pushscope/pkg/scheduler/mocks"
)

type schedulerDeps struct {
	*processorStores
	sources    *mocks.SourceStoreMock
	settings   *mocks.SettingStoreMock
	fetcher    *mocks.FetcherMock
	dispatcher *mocks.DispatcherMock
}

func newSchedulerDeps() *schedulerDeps {
	d := &schedulerDeps{processorStores: newProcessorStores(testSubscriptions())}
	d.items.CreateItemFunc = func(_ context.Context, item *domain.Item) (bool, error) {
		item.ID = 42
		return true, nil
	}
	d.attempts.ResetStaleFunc = func(context.Context, time.Time) (int64, error) { return 0, nil }
	d.attempts.DueAttemptsFunc = func(context.Context, time.Time, int) ([]*domain.DeliveryAttempt, error) { return nil, nil }
	d.sources = &mocks.SourceStoreMock{
		SourcesToFetchFunc:      func(context.Context, time.Time, int) ([]domain.Source, error) { return nil, nil },
		UpdateSourceFetchedFunc: func(context.Context, int64, string, time.Time, time.Time) error { return nil },
		UpdateSourceErrorFunc:   func(context.Context, int64, string, time.Time) error { return nil },
	}
	d.settings = &mocks.SettingStoreMock{SetSettingFunc: func(context.Context, string, string) error { return nil }}
	d.fetcher = &mocks.FetcherMock{}
	d.dispatcher = &mocks.DispatcherMock{
		DispatchFunc: func(_ context.Context, attempts []*domain.DeliveryAttempt) dispatch.Stats {
			return dispatch.Stats{Sent: len(attempts)}
		},
	}
	return d
}

func (d *schedulerDeps) scheduler() *Scheduler {
	return NewScheduler(Params{
		ItemStore:         d.items,
		SubscriptionStore: d.subs,
		AttemptStore:      d.attempts,
		SourceStore:       d.sources,
		SettingStore:      d.settings,
		Fetcher:           d.fetcher,
		Dispatcher:        d.dispatcher,
		Processor:         d.processor(false),
		IngestInterval:    time.Hour,
		DispatchInterval:  time.Hour,
		RescoreInterval:   time.Hour,
		BatchSize:         10,
		MaxWorkers:        2,
		Now:               func() time.Time { return testNow },
	})
}

func TestScheduler_Ingest(t *testing.T) {
	d := newSchedulerDeps()
	d.sources.SourcesToFetchFunc = func(context.Context, time.Time, int) ([]domain.Source, error) {
		return []domain.Source{{ID: 1, URL: "https://good.example.com/rss"}, {ID: 2, URL: "https://bad.example.com/rss"}}, nil
	}
	d.fetcher.FetchFunc = func(_ context.Context, url string) ([]domain.Item, error) {
		if url == "https://bad.example.com/rss" {
			return nil, errors.New("unexpected status code: 500")
		}
		return []domain.Item{*testItem(), {ExternalID: "known", Text: "already stored"}}, nil
	}
	d.items.CreateItemFunc = func(_ context.Context, item *domain.Item) (bool, error) {
		if item.ExternalID == "known" {
			return false, nil
		}
		item.ID = 42
		return true, nil
	}

	ch := make(chan domain.Item, 10)
	d.scheduler().Ingest(context.Background(), ch)
	close(ch)

	var got []domain.Item
	for item := range ch {
		got = append(got, item)
	}
	require.Len(t, got, 1)
	assert.Equal(t, "tw-11", got[0].ExternalID)
	assert.Equal(t, int64(42), got[0].ID)

	require.Len(t, d.sources.UpdateSourceFetchedCalls(), 1)
	assert.Equal(t, int64(1), d.sources.UpdateSourceFetchedCalls()[0].Id)
	assert.Equal(t, testNow.Add(time.Hour), d.sources.UpdateSourceFetchedCalls()[0].NextFetch)

	require.Len(t, d.sources.UpdateSourceErrorCalls(), 1)
	assert.Equal(t, int64(2), d.sources.UpdateSourceErrorCalls()[0].Id)
	assert.Contains(t, d.sources.UpdateSourceErrorCalls()[0].ErrMsg, "500")

	require.Len(t, d.settings.SetSettingCalls(), 1)
	assert.Equal(t, settingLastIngest, d.settings.SetSettingCalls()[0].Key)
	assert.Equal(t, "2024-06-01T12:00:00Z", d.settings.SetSettingCalls()[0].Value)
}

func TestScheduler_Ingest_NothingDue(t *testing.T) {
	d := newSchedulerDeps()
	d.scheduler().Ingest(context.Background(), make(chan domain.Item))
	assert.Empty(t, d.fetcher.FetchCalls())
	assert.Empty(t, d.settings.SetSettingCalls())
}

func TestScheduler_IngestItem(t *testing.T) {
	d := newSchedulerDeps()
	s := d.scheduler()

	item := testItem()
	item.ID = 0
	created, n, err := s.IngestItem(context.Background(), item)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 3, n)
	assert.Equal(t, testNow, item.IngestedAt)

	t.Run("processed duplicate is ignored", func(t *testing.T) {
		d.items.CreateItemFunc = func(_ context.Context, item *domain.Item) (bool, error) {
			processed := testNow.Add(-time.Minute)
			item.ID, item.ProcessedAt = 11, &processed
			return false, nil
		}
		calls := len(d.attempts.CreateAttemptsCalls())
		created, n, err := s.IngestItem(context.Background(), testItem())
		require.NoError(t, err)
		assert.False(t, created)
		assert.Zero(t, n)
		assert.Len(t, d.attempts.CreateAttemptsCalls(), calls)
	})

	t.Run("unprocessed duplicate is processed again", func(t *testing.T) {
		d.items.CreateItemFunc = func(_ context.Context, item *domain.Item) (bool, error) {
			item.ID = 11
			return false, nil
		}
		created, n, err := s.IngestItem(context.Background(), testItem())
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, 3, n)
		marks := d.items.MarkProcessedCalls()
		assert.Equal(t, int64(11), marks[len(marks)-1].Id)
	})

	t.Run("store error", func(t *testing.T) {
		d.items.CreateItemFunc = func(context.Context, *domain.Item) (bool, error) { return false, errors.New("locked") }
		_, _, err := s.IngestItem(context.Background(), testItem())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "store item")
	})
}

func TestScheduler_Recover(t *testing.T) {
	d := newSchedulerDeps()
	d.items.UnprocessedItemsFunc = func(_ context.Context, afterID int64, limit int) ([]domain.Item, error) {
		assert.Equal(t, 10, limit)
		var res []domain.Item
		// 13 unprocessed items with ids 1..13, served in pages
		for id := afterID + 1; id <= 13 && len(res) < limit; id++ {
			res = append(res, domain.Item{ID: id, ExternalID: fmt.Sprintf("tw-%d", id)})
		}
		return res, nil
	}

	ch := make(chan domain.Item, 20)
	d.scheduler().Recover(context.Background(), ch)
	close(ch)

	var ids []int64
	for item := range ch {
		ids = append(ids, item.ID)
	}
	require.Len(t, ids, 13)
	assert.Equal(t, int64(1), ids[0])
	assert.Equal(t, int64(13), ids[12])

	calls := d.items.UnprocessedItemsCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, int64(0), calls[0].AfterID)
	assert.Equal(t, int64(10), calls[1].AfterID)

	t.Run("store error stops recovery", func(t *testing.T) {
		d := newSchedulerDeps()
		d.items.UnprocessedItemsFunc = func(context.Context, int64, int) ([]domain.Item, error) {
			return nil, errors.New("db down")
		}
		ch := make(chan domain.Item, 1)
		d.scheduler().Recover(context.Background(), ch)
		assert.Empty(t, ch)
	})
}

func TestScheduler_InterruptedItemRecovered(t *testing.T) {
	d := newSchedulerDeps()
	var mu sync.Mutex
	processed := map[int64]bool{}
	d.items.MarkProcessedFunc = func(_ context.Context, id int64, _ time.Time) error {
		mu.Lock()
		defer mu.Unlock()
		processed[id] = true
		return nil
	}
	d.items.UnprocessedItemsFunc = func(_ context.Context, afterID int64, _ int) ([]domain.Item, error) {
		mu.Lock()
		defer mu.Unlock()
		item := testItem()
		if afterID >= item.ID || processed[item.ID] {
			return nil, nil
		}
		return []domain.Item{*item}, nil
	}
	d.subs.ActiveSubscriptionsFunc = func(ctx context.Context) ([]domain.Subscription, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return testSubscriptions(), nil
	}
	s := d.scheduler()

	// shutdown while the stored item waits in the queue
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.processor.ProcessItem(ctx, testItem())
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, d.items.MarkProcessedCalls())

	// next start picks it up again
	ch := make(chan domain.Item, 10)
	s.Recover(context.Background(), ch)
	require.Len(t, ch, 1)
	item := <-ch
	n, err := s.processor.ProcessItem(context.Background(), &item)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	s.Recover(context.Background(), ch)
	assert.Empty(t, ch)
}

func TestScheduler_DispatchDue(t *testing.T) {
	d := newSchedulerDeps()
	due := []*domain.DeliveryAttempt{{ID: "a"}, {ID: "b"}}
	d.attempts.DueAttemptsFunc = func(_ context.Context, now time.Time, limit int) ([]*domain.DeliveryAttempt, error) {
		assert.Equal(t, testNow, now)
		assert.Equal(t, 10, limit)
		return due, nil
	}

	stats := d.scheduler().DispatchDue(context.Background())
	assert.Equal(t, 2, stats.Sent)
	require.Len(t, d.dispatcher.DispatchCalls(), 1)
	assert.Equal(t, due, d.dispatcher.DispatchCalls()[0].Attempts)

	t.Run("nothing due skips dispatcher", func(t *testing.T) {
		d := newSchedulerDeps()
		assert.Equal(t, dispatch.Stats{}, d.scheduler().DispatchDue(context.Background()))
		assert.Empty(t, d.dispatcher.DispatchCalls())
	})

	t.Run("store error", func(t *testing.T) {
		d := newSchedulerDeps()
		d.attempts.DueAttemptsFunc = func(context.Context, time.Time, int) ([]*domain.DeliveryAttempt, error) {
			return nil, errors.New("db down")
		}
		assert.Equal(t, dispatch.Stats{}, d.scheduler().DispatchDue(context.Background()))
		assert.Empty(t, d.dispatcher.DispatchCalls())
	})
}

func TestScheduler_Rescore(t *testing.T) {
	d := newSchedulerDeps()
	scored := testNow.Add(-time.Hour)
	fresh := testItem()
	stale := testItem()
	stale.ID, stale.ExternalID, stale.Score, stale.ScoredAt = 12, "tw-12", 1, &scored
	d.items.RecentItemsFunc = func(_ context.Context, since time.Time, limit int) ([]domain.Item, error) {
		assert.Equal(t, testNow.Add(-48*time.Hour), since)
		assert.Equal(t, 100, limit)
		return []domain.Item{*fresh, *stale}, nil
	}

	d.scheduler().Rescore(context.Background())
	calls := d.items.UpdateItemScoreCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, int64(11), calls[0].Id)
	assert.Equal(t, int64(12), calls[1].Id)
	assert.Positive(t, calls[1].Score)
	assert.Equal(t, testNow, calls[1].ScoredAt)

	require.Len(t, d.settings.SetSettingCalls(), 1)
	assert.Equal(t, settingLastRescore, d.settings.SetSettingCalls()[0].Key)
}

func TestScheduler_DeactivateSubscription(t *testing.T) {
	d := newSchedulerDeps()
	d.subs.DeactivateSubscriptionFunc = func(_ context.Context, id int64, at time.Time, reason string) (int64, error) {
		assert.Equal(t, testNow, at)
		if id == 99 {
			return 0, errors.New("not found")
		}
		return 3, nil
	}
	s := d.scheduler()

	n, err := s.DeactivateSubscription(context.Background(), 1, "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, "subscription deactivated", d.subs.DeactivateSubscriptionCalls()[0].Reason)

	_, err = s.DeactivateSubscription(context.Background(), 99, "owner left")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deactivate subscription 99")
}

func TestScheduler_StartStop(t *testing.T) {
	d := newSchedulerDeps()
	d.attempts.ResetStaleFunc = func(_ context.Context, olderThan time.Time) (int64, error) {
		assert.Equal(t, testNow.Add(-10*time.Minute), olderThan)
		return 2, nil
	}

	var once sync.Once
	fetched := make(chan struct{})
	d.sources.SourcesToFetchFunc = func(context.Context, time.Time, int) ([]domain.Source, error) {
		return []domain.Source{{ID: 1, URL: "https://example.com/rss"}}, nil
	}
	d.fetcher.FetchFunc = func(context.Context, string) ([]domain.Item, error) {
		defer once.Do(func() { close(fetched) })
		return []domain.Item{*testItem()}, nil
	}
	d.items.RecentItemsFunc = func(context.Context, time.Time, int) ([]domain.Item, error) { return nil, nil }

	s := d.scheduler()
	s.Start(context.Background())

	select {
	case <-fetched:
	case <-time.After(5 * time.Second):
		t.Fatal("ingest loop did not run")
	}
	require.Eventually(t, func() bool { return len(d.attempts.CreateAttemptsCalls()) == 1 }, 5*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		return len(d.attempts.DueAttemptsCalls()) > 0 && len(d.items.RecentItemsCalls()) > 0
	}, 5*time.Second, 10*time.Millisecond)

	s.Stop()
	assert.Len(t, d.attempts.ResetStaleCalls(), 1)
	assert.Len(t, d.items.UnprocessedItemsCalls(), 1)
}
