package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/pushscope/pkg/domain"
	"github.com/umputun/pushscope/pkg/matcher"
	"github.com/umputun/pushscope/pkg/render"
	"github.com/umputun/pushscope/pkg/scoring"
)

// Processor turns an item into delivery attempts: it scores the item, matches it
// against active subscriptions and creates one pending attempt per matched channel.
// All attempts of one item share a batch id.
type Processor struct {
	items          ItemStore
	subs           SubscriptionStore
	attempts       AttemptStore
	scorer         *scoring.Engine
	matcher        *matcher.Engine
	renderer       *render.Renderer
	qualityGate    bool
	spamScore      func(item *domain.Item) float64
	maxRetries     int
	retryBaseDelay time.Duration
	maxWorkers     int
	now            func() time.Time
}

// ProcessorParams holds Processor dependencies and settings
type ProcessorParams struct {
	ItemStore         ItemStore
	SubscriptionStore SubscriptionStore
	AttemptStore      AttemptStore
	Scorer            *scoring.Engine
	Renderer          *render.Renderer
	QualityGate       bool                            // skip low-quality items before matching
	SpamScore         func(item *domain.Item) float64 // optional, zero spam score if nil
	MaxRetries        int
	RetryBaseDelay    time.Duration
	MaxWorkers        int
	Now               func() time.Time
}

// NewProcessor makes a processor
func NewProcessor(params ProcessorParams) *Processor {
	if params.Scorer == nil {
		params.Scorer = scoring.NewEngine(scoring.DefaultWeights)
	}
	if params.Renderer == nil {
		params.Renderer = render.New()
	}
	if params.SpamScore == nil {
		params.SpamScore = func(*domain.Item) float64 { return 0 }
	}
	if params.MaxWorkers <= 0 {
		params.MaxWorkers = 5
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &Processor{
		items:          params.ItemStore,
		subs:           params.SubscriptionStore,
		attempts:       params.AttemptStore,
		scorer:         params.Scorer,
		matcher:        matcher.New(params.Scorer),
		renderer:       params.Renderer,
		qualityGate:    params.QualityGate,
		spamScore:      params.SpamScore,
		maxRetries:     params.MaxRetries,
		retryBaseDelay: params.RetryBaseDelay,
		maxWorkers:     params.MaxWorkers,
		now:            params.Now,
	}
}

// ProcessingWorker processes items from the channel with concurrent workers until
// the channel is closed or the context is canceled
func (p *Processor) ProcessingWorker(ctx context.Context, items <-chan domain.Item) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.maxWorkers)

	for item := range items {
		g.Go(func() error {
			if _, err := p.ProcessItem(ctx, &item); err != nil {
				lgr.Printf("[WARN] failed to process item %s: %v", item.ExternalID, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		lgr.Printf("[ERROR] processing worker error: %v", err)
	}
}

// ProcessItem scores and matches a stored item and creates its delivery attempts.
// Returns the number of attempts created.
func (p *Processor) ProcessItem(ctx context.Context, item *domain.Item) (int, error) {
	now := p.now()
	item.Score = p.scorer.ComputeScore(item, now)
	item.ScoredAt = &now
	if item.ID != 0 {
		if err := p.items.UpdateItemScore(ctx, item.ID, item.Score, now); err != nil {
			lgr.Printf("[WARN] failed to store score of item %s: %v", item.ExternalID, err)
		}
	}

	if p.qualityGate && !scoring.IsHighQuality(item, p.spamScore(item)) {
		lgr.Printf("[DEBUG] item %s skipped by quality gate", item.ExternalID)
		p.markProcessed(ctx, item, now)
		return 0, nil
	}

	subs, err := p.subs.ActiveSubscriptions(ctx)
	if err != nil {
		return 0, fmt.Errorf("get active subscriptions: %w", err)
	}

	matches := p.matcher.Match(item, subs, now)
	if len(matches) == 0 {
		p.markProcessed(ctx, item, now)
		return 0, nil
	}

	subsByID := make(map[int64]*domain.Subscription, len(subs))
	for i := range subs {
		subsByID[subs[i].ID] = &subs[i]
	}

	size := 0
	for _, m := range matches {
		size += len(subsByID[m.SubscriptionID].Channels)
	}
	batch := domain.Batch{ID: uuid.NewString(), Size: size}

	attempts := make([]*domain.DeliveryAttempt, 0, size)
	for _, m := range matches {
		sub := subsByID[m.SubscriptionID]
		content := p.renderer.Content(item, sub, m)
		for _, ch := range sub.Channels {
			a, err := domain.NewDeliveryAttempt(domain.AttemptParams{
				ItemID:         item.ID,
				SubscriptionID: sub.ID,
				OwnerID:        sub.OwnerID,
				Channel:        ch,
				Content:        content,
				Priority:       priorityOf(sub, m),
				MaxRetries:     p.maxRetries,
				RetryBaseDelay: p.retryBaseDelay,
				ScheduledAt:    m.DeliverAt,
				Batch:          domain.Batch{ID: batch.ID, Size: batch.Size, Index: len(attempts)},
				CreatedAt:      now,
			})
			if err != nil {
				return 0, fmt.Errorf("make attempt for subscription %d via %s: %w", sub.ID, ch, err)
			}
			attempts = append(attempts, a)
		}
	}

	if err := p.attempts.CreateAttempts(ctx, attempts); err != nil {
		return 0, fmt.Errorf("create attempts: %w", err)
	}

	// statistics count only matches whose attempts exist
	for _, m := range matches {
		if err := p.subs.IncrementMatch(ctx, m.SubscriptionID, now); err != nil {
			lgr.Printf("[WARN] failed to count match of subscription %d: %v", m.SubscriptionID, err)
		}
		if err := p.subs.UpdateLastProcessed(ctx, m.SubscriptionID, item.ExternalID); err != nil {
			lgr.Printf("[WARN] failed to update last processed item of subscription %d: %v", m.SubscriptionID, err)
		}
	}
	p.markProcessed(ctx, item, now)
	lgr.Printf("[INFO] item %s (score %.0f) matched %d subscriptions, %d attempts in batch %s",
		item.ExternalID, item.Score, len(matches), len(attempts), batch.ID)
	return len(attempts), nil
}

// markProcessed stores the processed marker, a failure means the item is processed again
// on the next start
func (p *Processor) markProcessed(ctx context.Context, item *domain.Item, at time.Time) {
	if item.ID == 0 {
		return
	}
	if err := p.items.MarkProcessed(ctx, item.ID, at); err != nil {
		lgr.Printf("[WARN] failed to mark item %s processed: %v", item.ExternalID, err)
		return
	}
	item.ProcessedAt = &at
}

// priorityOf maps subscription cadence to attempt priority
func priorityOf(sub *domain.Subscription, m domain.Match) domain.Priority {
	switch {
	case sub.Frequency.Kind == domain.FrequencyRealtime:
		return domain.PriorityHigh
	case m.Deferred:
		return domain.PriorityLow
	default:
		return domain.PriorityNormal
	}
}
