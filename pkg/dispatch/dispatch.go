// Package dispatch delivers pending attempts through channel adapters.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/umputun/pushscope/pkg/channel"
	"github.com/umputun/pushscope/pkg/domain"
	"github.com/umputun/pushscope/pkg/repository"
	"github.com/umputun/pushscope/pkg/retry"
)

//go:generate moq -out mocks/store.go -pkg mocks -skip-ensure -fmt goimports . Store

// ErrNoAdapter is the failure of an attempt whose channel has no registered sender
var ErrNoAdapter = channel.NewPermanentError("no_adapter", "no sender registered for channel")

// Store persists attempt state changes
type Store interface {
	ClaimAttempt(ctx context.Context, a *domain.DeliveryAttempt, at time.Time) error
	SaveAttempt(ctx context.Context, a *domain.DeliveryAttempt, from domain.AttemptStatus) error
	IncrementPush(ctx context.Context, subscriptionID int64, at time.Time) error
}

// Outcome of a single delivery
type Outcome string

const (
	OutcomeSent     Outcome = "sent"
	OutcomeRequeued Outcome = "requeued"
	OutcomeFailed   Outcome = "failed"
	OutcomeSkipped  Outcome = "skipped" // claimed by another worker or cancelled meanwhile
)

// Stats summarizes one Dispatch call
type Stats struct {
	Sent     int
	Requeued int
	Failed   int
	Skipped  int
	Errors   int
}

// Config for Dispatcher
type Config struct {
	Store       Store
	Senders     *channel.Registry
	Policy      *retry.Policy
	RateLimits  map[domain.Channel]float64 // messages per second, zero or missing is unlimited
	MaxWorkers  int
	SendTimeout time.Duration
	Now         func() time.Time
}

// Dispatcher claims attempts, sends them and records the outcome
type Dispatcher struct {
	store       Store
	senders     *channel.Registry
	policy      *retry.Policy
	limiters    map[domain.Channel]*rate.Limiter
	maxWorkers  int
	sendTimeout time.Duration
	now         func() time.Time
}

// New makes a dispatcher
func New(cfg Config) *Dispatcher {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 5
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 30 * time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Policy == nil {
		cfg.Policy = retry.New(retry.DefaultBaseDelay, retry.DefaultMaxJitter)
	}
	if cfg.Senders == nil {
		cfg.Senders = channel.NewRegistry()
	}

	limiters := make(map[domain.Channel]*rate.Limiter, len(cfg.RateLimits))
	for ch, perSec := range cfg.RateLimits {
		if perSec <= 0 {
			continue
		}
		limiters[ch] = rate.NewLimiter(rate.Limit(perSec), max(1, int(perSec)))
	}

	return &Dispatcher{
		store:       cfg.Store,
		senders:     cfg.Senders,
		policy:      cfg.Policy,
		limiters:    limiters,
		maxWorkers:  cfg.MaxWorkers,
		sendTimeout: cfg.SendTimeout,
		now:         cfg.Now,
	}
}

// Dispatch delivers attempts concurrently and blocks until all of them are handled
func (d *Dispatcher) Dispatch(ctx context.Context, attempts []*domain.DeliveryAttempt) Stats {
	var mu sync.Mutex
	var stats Stats

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.maxWorkers)
	for _, a := range attempts {
		g.Go(func() error {
			outcome, err := d.Deliver(ctx, a)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				lgr.Printf("[WARN] attempt %s: %v", a.ID, err)
				stats.Errors++
				return nil
			}
			switch outcome {
			case OutcomeSent:
				stats.Sent++
			case OutcomeRequeued:
				stats.Requeued++
			case OutcomeFailed:
				stats.Failed++
			case OutcomeSkipped:
				stats.Skipped++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		lgr.Printf("[ERROR] dispatch error: %v", err)
	}

	if len(attempts) > 0 {
		lgr.Printf("[INFO] dispatched %d attempts: sent %d, requeued %d, failed %d, skipped %d, errors %d",
			len(attempts), stats.Sent, stats.Requeued, stats.Failed, stats.Skipped, stats.Errors)
	}
	return stats
}

// Deliver runs one pending attempt through its channel. The returned error is set only
// when the outcome could not be stored.
func (d *Dispatcher) Deliver(ctx context.Context, a *domain.DeliveryAttempt) (Outcome, error) {
	if l, ok := d.limiters[a.Channel]; ok {
		if err := l.Wait(ctx); err != nil {
			return "", fmt.Errorf("wait for %s rate limit: %w", a.Channel, err)
		}
	}

	if err := d.store.ClaimAttempt(ctx, a, d.now()); err != nil {
		if errors.Is(err, repository.ErrStateConflict) || errors.Is(err, domain.ErrInvalidTransition) {
			lgr.Printf("[DEBUG] attempt %s not claimed: %v", a.ID, err)
			return OutcomeSkipped, nil
		}
		return "", fmt.Errorf("claim: %w", err)
	}

	started := d.now()
	receipt, sendErr := d.send(ctx, a)
	// the outcome is stored even if shutdown started while sending
	ctx = context.WithoutCancel(ctx)
	if sendErr == nil {
		return d.succeed(ctx, a, receipt)
	}
	return d.fail(ctx, a, sendErr, d.now().Sub(started))
}

func (d *Dispatcher) send(ctx context.Context, a *domain.DeliveryAttempt) (channel.Receipt, error) {
	sender, ok := d.senders.Get(a.Channel)
	if !ok {
		return channel.Receipt{}, ErrNoAdapter
	}
	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()
	return sender.Send(sendCtx, channel.Message{
		AttemptID: a.ID,
		OwnerID:   a.OwnerID,
		Channel:   a.Channel,
		Priority:  a.Priority,
		Content:   a.Content,
	})
}

func (d *Dispatcher) succeed(ctx context.Context, a *domain.DeliveryAttempt, r channel.Receipt) (Outcome, error) {
	now := d.now()
	if err := a.MarkSuccess(now, r.MessageID, r.ResponseTime, r.RawResponse); err != nil {
		return "", err
	}
	if err := d.store.SaveAttempt(ctx, a, domain.StatusSending); err != nil {
		if errors.Is(err, repository.ErrStateConflict) {
			// cancelled while the message was in flight, cancellation wins
			lgr.Printf("[INFO] attempt %s delivered after cancellation, result dropped", a.ID)
			return OutcomeSkipped, nil
		}
		return "", fmt.Errorf("save success: %w", err)
	}
	if err := d.store.IncrementPush(ctx, a.SubscriptionID, now); err != nil {
		return "", fmt.Errorf("increment push: %w", err)
	}
	lgr.Printf("[DEBUG] attempt %s sent via %s, message %s", a.ID, a.Channel, r.MessageID)
	return OutcomeSent, nil
}

func (d *Dispatcher) fail(ctx context.Context, a *domain.DeliveryAttempt, sendErr error, elapsed time.Duration) (Outcome, error) {
	now := d.now()
	if err := a.MarkFailed(now, channel.ErrorCode(sendErr), sendErr.Error(), channel.RawResponse(sendErr)); err != nil {
		return "", err
	}
	a.AddRetryAttempt(now, sendErr.Error(), elapsed)
	if channel.IsPermanent(sendErr) {
		a.ExhaustRetries()
	}

	outcome := OutcomeFailed
	if next, ok := d.policy.NextRetryTime(a, now); ok {
		if err := a.Requeue(next); err != nil {
			return "", err
		}
		outcome = OutcomeRequeued
	}

	if err := d.store.SaveAttempt(ctx, a, domain.StatusSending); err != nil {
		if errors.Is(err, repository.ErrStateConflict) {
			lgr.Printf("[INFO] attempt %s failed after cancellation, result dropped", a.ID)
			return OutcomeSkipped, nil
		}
		return "", fmt.Errorf("save failure: %w", err)
	}

	if outcome == OutcomeRequeued {
		lgr.Printf("[INFO] attempt %s via %s failed (%v), retry %d/%d at %s", a.ID, a.Channel, sendErr,
			a.RetryCount(), a.MaxRetries, a.Timing.ScheduledAt.Format(time.RFC3339))
		return outcome, nil
	}
	lgr.Printf("[WARN] attempt %s via %s failed permanently after %d tries: %v", a.ID, a.Channel, a.RetryCount(), sendErr)
	return outcome, nil
}
