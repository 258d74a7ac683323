// Package matcher matches one item against the full subscription set.
package matcher

import (
	"cmp"
	"slices"
	"time"

	"github.com/umputun/pushscope/pkg/domain"
	"github.com/umputun/pushscope/pkg/filter"
)

// Scorer computes item score
type Scorer interface {
	ComputeScore(item *domain.Item, now time.Time) float64
}

// Engine orchestrates keyword, filter and window checks. It holds no mutable state
// and is safe for concurrent use against a shared, read-only subscription set.
type Engine struct {
	scorer Scorer
}

// New makes a matching engine with the given scorer
func New(scorer Scorer) *Engine {
	return &Engine{scorer: scorer}
}

// Match evaluates item against subscriptions and returns matches ordered by
// descending score, ties broken by subscription creation order.
// Realtime subscriptions bypass the active window; other matches may be deferred
// to a later DeliverAt by the frequency policy or the window, and are still returned.
func (e *Engine) Match(item *domain.Item, subs []domain.Subscription, now time.Time) []domain.Match {
	score := e.scorer.ComputeScore(item, now)

	type ranked struct {
		match     domain.Match
		createdAt time.Time
	}
	var res []ranked
	for i := range subs {
		sub := &subs[i]
		if !sub.IsActive {
			continue
		}
		keywords := filter.MatchedKeywords(item, sub)
		if len(keywords) == 0 {
			continue
		}
		if !filter.MatchesFilters(item, sub) {
			continue
		}
		deliverAt, deferred := DeliverAt(sub, now)
		res = append(res, ranked{
			match: domain.Match{
				SubscriptionID:  sub.ID,
				MatchedKeywords: keywords,
				Score:           score,
				Deferred:        deferred,
				DeliverAt:       deliverAt,
			},
			createdAt: sub.CreatedAt,
		})
	}

	slices.SortStableFunc(res, func(a, b ranked) int {
		if c := cmp.Compare(b.match.Score, a.match.Score); c != 0 {
			return c
		}
		if c := a.createdAt.Compare(b.createdAt); c != 0 {
			return c
		}
		return cmp.Compare(a.match.SubscriptionID, b.match.SubscriptionID)
	})

	matches := make([]domain.Match, len(res))
	for i, r := range res {
		matches[i] = r.match
	}
	return matches
}

// DeliverAt returns when a match for sub may be delivered and whether that is later than now.
// Realtime delivers immediately. Other policies wait at least one period after the last
// push and then for the active window to open. All matches of one period get the same
// time and go out together in one delivery round. The frequency spaces the rounds,
// it does not cap the number of items in a round.
func DeliverAt(sub *domain.Subscription, now time.Time) (time.Time, bool) {
	if sub.Frequency.Kind == domain.FrequencyRealtime {
		return now, false
	}
	eligible := now
	if period := sub.Frequency.Period(); period > 0 && sub.Stats.LastPushAt != nil {
		if next := sub.Stats.LastPushAt.Add(period); next.After(eligible) {
			eligible = next
		}
	}
	eligible = filter.NextWindowOpen(sub, eligible)
	return eligible, eligible.After(now)
}
