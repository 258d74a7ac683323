// Package scheduler runs the pipeline loops: ingest feeds, process new items into
// delivery attempts, dispatch due attempts and rescore recent items.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/pushscope/pkg/dispatch"
	"github.com/umputun/pushscope/pkg/domain"
	"github.com/umputun/pushscope/pkg/scoring"
)

//go:generate moq -out mocks/item_store.go -pkg mocks -skip-ensure -fmt goimports . ItemStore
//go:generate moq -out mocks/subscription_store.go -pkg mocks -skip-ensure -fmt goimports . SubscriptionStore
//go:generate moq -out mocks/attempt_store.go -pkg mocks -skip-ensure -fmt goimports . AttemptStore
//go:generate moq -out mocks/source_store.go -pkg mocks -skip-ensure -fmt goimports . SourceStore
//go:generate moq -out mocks/setting_store.go -pkg mocks -skip-ensure -fmt goimports . SettingStore
//go:generate moq -out mocks/fetcher.go -pkg mocks -skip-ensure -fmt goimports . Fetcher
//go:generate moq -out mocks/dispatcher.go -pkg mocks -skip-ensure -fmt goimports . Dispatcher

const defaultProcessBuffer = 100

// setting keys written by the loops
const (
	settingLastIngest  = "last_ingest_at"
	settingLastRescore = "last_rescore_at"
)

// ItemStore persists items
type ItemStore interface {
	CreateItem(ctx context.Context, item *domain.Item) (bool, error)
	UpdateItemScore(ctx context.Context, id int64, score float64, scoredAt time.Time) error
	MarkProcessed(ctx context.Context, id int64, at time.Time) error
	UnprocessedItems(ctx context.Context, afterID int64, limit int) ([]domain.Item, error)
	RecentItems(ctx context.Context, since time.Time, limit int) ([]domain.Item, error)
}

// SubscriptionStore reads subscriptions and updates their statistics
type SubscriptionStore interface {
	ActiveSubscriptions(ctx context.Context) ([]domain.Subscription, error)
	IncrementMatch(ctx context.Context, id int64, at time.Time) error
	UpdateLastProcessed(ctx context.Context, id int64, externalID string) error
	DeactivateSubscription(ctx context.Context, id int64, at time.Time, reason string) (int64, error)
}

// AttemptStore persists delivery attempts
type AttemptStore interface {
	CreateAttempts(ctx context.Context, attempts []*domain.DeliveryAttempt) error
	DueAttempts(ctx context.Context, now time.Time, limit int) ([]*domain.DeliveryAttempt, error)
	ResetStale(ctx context.Context, olderThan time.Time) (int64, error)
}

// SourceStore tracks feed sources and their fetch state
type SourceStore interface {
	SourcesToFetch(ctx context.Context, now time.Time, limit int) ([]domain.Source, error)
	UpdateSourceFetched(ctx context.Context, id int64, title string, fetched, nextFetch time.Time) error
	UpdateSourceError(ctx context.Context, id int64, errMsg string, nextFetch time.Time) error
}

// SettingStore keeps loop bookkeeping
type SettingStore interface {
	SetSetting(ctx context.Context, key, value string) error
}

// Fetcher retrieves items of a feed
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]domain.Item, error)
}

// Dispatcher delivers due attempts
type Dispatcher interface {
	Dispatch(ctx context.Context, attempts []*domain.DeliveryAttempt) dispatch.Stats
}

// Params holds scheduler dependencies and settings
type Params struct {
	ItemStore         ItemStore
	SubscriptionStore SubscriptionStore
	AttemptStore      AttemptStore
	SourceStore       SourceStore
	SettingStore      SettingStore
	Fetcher           Fetcher
	Dispatcher        Dispatcher
	Processor         *Processor
	Scorer            *scoring.Engine

	IngestInterval   time.Duration
	DispatchInterval time.Duration
	RescoreInterval  time.Duration
	RescoreWindow    time.Duration // items younger than this are rescored
	StaleAfter       time.Duration // sending attempts older than this are reset on start
	BatchSize        int
	MaxWorkers       int
	Now              func() time.Time
}

// Scheduler manages the periodic loops of the pipeline
type Scheduler struct {
	items      ItemStore
	subs       SubscriptionStore
	attempts   AttemptStore
	sources    SourceStore
	settings   SettingStore
	fetcher    Fetcher
	dispatcher Dispatcher
	processor  *Processor
	scorer     *scoring.Engine

	ingestInterval   time.Duration
	dispatchInterval time.Duration
	rescoreInterval  time.Duration
	rescoreWindow    time.Duration
	staleAfter       time.Duration
	batchSize        int
	maxWorkers       int
	now              func() time.Time

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewScheduler creates a new scheduler instance
func NewScheduler(params Params) *Scheduler {
	if params.IngestInterval <= 0 {
		params.IngestInterval = 5 * time.Minute
	}
	if params.DispatchInterval <= 0 {
		params.DispatchInterval = 5 * time.Second
	}
	if params.RescoreInterval <= 0 {
		params.RescoreInterval = 15 * time.Minute
	}
	if params.RescoreWindow <= 0 {
		params.RescoreWindow = 48 * time.Hour
	}
	if params.StaleAfter <= 0 {
		params.StaleAfter = 10 * time.Minute
	}
	if params.BatchSize <= 0 {
		params.BatchSize = 100
	}
	if params.MaxWorkers <= 0 {
		params.MaxWorkers = 5
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	if params.Scorer == nil {
		params.Scorer = scoring.NewEngine(scoring.DefaultWeights)
	}

	return &Scheduler{
		items:            params.ItemStore,
		subs:             params.SubscriptionStore,
		attempts:         params.AttemptStore,
		sources:          params.SourceStore,
		settings:         params.SettingStore,
		fetcher:          params.Fetcher,
		dispatcher:       params.Dispatcher,
		processor:        params.Processor,
		scorer:           params.Scorer,
		ingestInterval:   params.IngestInterval,
		dispatchInterval: params.DispatchInterval,
		rescoreInterval:  params.RescoreInterval,
		rescoreWindow:    params.RescoreWindow,
		staleAfter:       params.StaleAfter,
		batchSize:        params.BatchSize,
		maxWorkers:       params.MaxWorkers,
		now:              params.Now,
	}
}

// Start recovers stale attempts and unprocessed items, then begins the loops
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	if n, err := s.attempts.ResetStale(ctx, s.now().Add(-s.staleAfter)); err != nil {
		lgr.Printf("[WARN] failed to reset stale attempts: %v", err)
	} else if n > 0 {
		lgr.Printf("[INFO] reset %d stale attempts to pending", n)
	}

	processCh := make(chan domain.Item, defaultProcessBuffer)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.processor.ProcessingWorker(ctx, processCh)
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(processCh)
		s.Recover(ctx, processCh)
		s.every(ctx, s.ingestInterval, func(ctx context.Context) { s.Ingest(ctx, processCh) })
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.every(ctx, s.dispatchInterval, func(ctx context.Context) { s.DispatchDue(ctx) })
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.every(ctx, s.rescoreInterval, func(ctx context.Context) { s.Rescore(ctx) })
	}()

	lgr.Printf("[INFO] scheduler started with ingest interval %v, dispatch interval %v, rescore interval %v",
		s.ingestInterval, s.dispatchInterval, s.rescoreInterval)
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	lgr.Printf("[INFO] stopping scheduler...")
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	lgr.Printf("[INFO] scheduler stopped")
}

// every runs fn immediately and then on each tick until ctx is done
func (s *Scheduler) every(ctx context.Context, interval time.Duration, fn func(ctx context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	fn(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}

// Recover sends items stored but never processed, e.g. left in the queue by a previous
// shutdown, to processCh. Runs before ingest starts, so no recovered item is in flight.
func (s *Scheduler) Recover(ctx context.Context, processCh chan<- domain.Item) {
	var afterID int64
	total := 0
	for {
		items, err := s.items.UnprocessedItems(ctx, afterID, s.batchSize)
		if err != nil {
			lgr.Printf("[WARN] failed to get unprocessed items: %v", err)
			break
		}
		for _, item := range items {
			select {
			case processCh <- item:
			case <-ctx.Done():
				return
			}
			afterID = item.ID
		}
		total += len(items)
		if len(items) < s.batchSize {
			break
		}
	}
	if total > 0 {
		lgr.Printf("[INFO] requeued %d unprocessed items", total)
	}
}

// Ingest fetches due sources concurrently and sends new items to processCh
func (s *Scheduler) Ingest(ctx context.Context, processCh chan<- domain.Item) {
	now := s.now()
	sources, err := s.sources.SourcesToFetch(ctx, now, s.batchSize)
	if err != nil {
		lgr.Printf("[ERROR] failed to get sources to fetch: %v", err)
		return
	}
	if len(sources) == 0 {
		return
	}
	lgr.Printf("[DEBUG] fetching %d sources", len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxWorkers)
	for _, src := range sources {
		g.Go(func() error {
			s.ingestSource(gctx, src, processCh)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		lgr.Printf("[ERROR] ingest error: %v", err)
	}

	if err := s.settings.SetSetting(ctx, settingLastIngest, now.UTC().Format(time.RFC3339)); err != nil {
		lgr.Printf("[WARN] failed to store last ingest time: %v", err)
	}
}

func (s *Scheduler) ingestSource(ctx context.Context, src domain.Source, processCh chan<- domain.Item) {
	next := s.now().Add(s.ingestInterval)
	items, err := s.fetcher.Fetch(ctx, src.URL)
	if err != nil {
		lgr.Printf("[WARN] failed to fetch source %s: %v", src.URL, err)
		if err := s.sources.UpdateSourceError(ctx, src.ID, err.Error(), next); err != nil {
			lgr.Printf("[WARN] failed to update error status for source %s: %v", src.URL, err)
		}
		return
	}

	newCount := 0
	for _, item := range items {
		created, err := s.items.CreateItem(ctx, &item)
		if err != nil {
			lgr.Printf("[WARN] failed to store item %s from %s: %v", item.ExternalID, src.URL, err)
			continue
		}
		if !created {
			continue
		}
		newCount++
		select {
		case processCh <- item:
		case <-ctx.Done():
			return
		}
	}

	if err := s.sources.UpdateSourceFetched(ctx, src.ID, "", s.now(), next); err != nil {
		lgr.Printf("[WARN] failed to update fetch status for source %s: %v", src.URL, err)
	}
	if newCount > 0 {
		lgr.Printf("[INFO] added %d new items from %s", newCount, src.URL)
	}
}

// IngestItem stores a single item pushed from outside the feed loop and processes it
// right away. Returns false if the item was already known. A known item whose processing
// never completed is processed again, so a retried call delivers it at least once.
func (s *Scheduler) IngestItem(ctx context.Context, item *domain.Item) (bool, int, error) {
	if item.IngestedAt.IsZero() {
		item.IngestedAt = s.now()
	}
	created, err := s.items.CreateItem(ctx, item)
	if err != nil {
		return false, 0, fmt.Errorf("store item: %w", err)
	}
	if !created && item.ProcessedAt != nil {
		return false, 0, nil
	}
	if !created {
		lgr.Printf("[INFO] item %s is known but not processed, processing again", item.ExternalID)
	}
	n, err := s.processor.ProcessItem(ctx, item)
	if err != nil {
		return created, 0, fmt.Errorf("process item: %w", err)
	}
	return created, n, nil
}

// DispatchDue delivers pending attempts whose scheduled time has come
func (s *Scheduler) DispatchDue(ctx context.Context) dispatch.Stats {
	due, err := s.attempts.DueAttempts(ctx, s.now(), s.batchSize)
	if err != nil {
		lgr.Printf("[ERROR] failed to get due attempts: %v", err)
		return dispatch.Stats{}
	}
	if len(due) == 0 {
		return dispatch.Stats{}
	}
	return s.dispatcher.Dispatch(ctx, due)
}

// Rescore recomputes scores of recent items, the score decays with age
func (s *Scheduler) Rescore(ctx context.Context) {
	now := s.now()
	items, err := s.items.RecentItems(ctx, now.Add(-s.rescoreWindow), s.batchSize*10)
	if err != nil {
		lgr.Printf("[ERROR] failed to get recent items: %v", err)
		return
	}

	updated := 0
	for i := range items {
		score := s.scorer.ComputeScore(&items[i], now)
		if items[i].ScoredAt != nil && score == items[i].Score {
			continue
		}
		if err := s.items.UpdateItemScore(ctx, items[i].ID, score, now); err != nil {
			lgr.Printf("[WARN] failed to update score of item %s: %v", items[i].ExternalID, err)
			continue
		}
		updated++
	}
	if updated > 0 {
		lgr.Printf("[DEBUG] rescored %d of %d recent items", updated, len(items))
	}

	if err := s.settings.SetSetting(ctx, settingLastRescore, now.UTC().Format(time.RFC3339)); err != nil {
		lgr.Printf("[WARN] failed to store last rescore time: %v", err)
	}
}

// DeactivateSubscription turns the subscription off and cancels its undelivered attempts
func (s *Scheduler) DeactivateSubscription(ctx context.Context, id int64, reason string) (int64, error) {
	if reason == "" {
		reason = "subscription deactivated"
	}
	n, err := s.subs.DeactivateSubscription(ctx, id, s.now(), reason)
	if err != nil {
		return 0, fmt.Errorf("deactivate subscription %d: %w", id, err)
	}
	lgr.Printf("[INFO] subscription %d deactivated, %d attempts cancelled", id, n)
	return n, nil
}
