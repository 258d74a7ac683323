package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/umputun/pushscope/pkg/domain"
)

// SubscriptionRepository handles subscription storage. Statistics are changed only
// through atomic increments, never by read-modify-write.
type SubscriptionRepository struct {
	db *sqlx.DB
}

// subscriptionSQL represents a subscription for SQL operations
type subscriptionSQL struct {
	ID                  int64      `db:"id"`
	OwnerID             string     `db:"owner_id"`
	Name                string     `db:"name"`
	Keywords            stringsSQL `db:"keywords"`
	ExcludeKeywords     stringsSQL `db:"exclude_keywords"`
	MinLikes            int64      `db:"min_likes"`
	MinRetweets         int64      `db:"min_retweets"`
	MinReplies          int64      `db:"min_replies"`
	MediaMode           string     `db:"media_mode"`
	LinkMode            string     `db:"link_mode"`
	Languages           stringsSQL `db:"languages"`
	Channels            stringsSQL `db:"channels"`
	FrequencyKind       string     `db:"frequency_kind"`
	FrequencyIntervalMS int64      `db:"frequency_interval_ms"`
	ActiveStart         int        `db:"active_start"`
	ActiveEnd           int        `db:"active_end"`
	Timezone            string     `db:"timezone"`
	IsActive            bool       `db:"is_active"`
	MatchCount          int64      `db:"match_count"`
	PushCount           int64      `db:"push_count"`
	LastMatchAt         *time.Time `db:"last_match_at"`
	LastPushAt          *time.Time `db:"last_push_at"`
	LastProcessedItemID string     `db:"last_processed_item_id"`
	CreatedAt           time.Time  `db:"created_at"`
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *sqlx.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// SaveSubscription validates and stores the subscription. A zero ID inserts a new record
// and sets the ID, otherwise the rule fields are updated and statistics are kept.
// Saving an existing subscription as inactive cancels its in-flight attempts the same
// way DeactivateSubscription does.
func (r *SubscriptionRepository) SaveSubscription(ctx context.Context, sub *domain.Subscription) error {
	if err := sub.Validate(); err != nil {
		return err
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now()
	}
	row := toSubscriptionSQL(sub)

	if sub.ID == 0 {
		query := `
			INSERT INTO subscriptions (
				owner_id, name, keywords, exclude_keywords, min_likes, min_retweets, min_replies,
				media_mode, link_mode, languages, channels, frequency_kind, frequency_interval_ms,
				active_start, active_end, timezone, is_active, created_at
			) VALUES (
				:owner_id, :name, :keywords, :exclude_keywords, :min_likes, :min_retweets, :min_replies,
				:media_mode, :link_mode, :languages, :channels, :frequency_kind, :frequency_interval_ms,
				:active_start, :active_end, :timezone, :is_active, :created_at
			)
		`
		return withLockRetry(ctx, "create subscription", func() error {
			res, err := r.db.NamedExecContext(ctx, query, row)
			if err != nil {
				return err
			}
			id, err := res.LastInsertId()
			if err != nil {
				return err
			}
			sub.ID = id
			return nil
		})
	}

	query := `
		UPDATE subscriptions SET
			owner_id = :owner_id, name = :name, keywords = :keywords, exclude_keywords = :exclude_keywords,
			min_likes = :min_likes, min_retweets = :min_retweets, min_replies = :min_replies,
			media_mode = :media_mode, link_mode = :link_mode, languages = :languages, channels = :channels,
			frequency_kind = :frequency_kind, frequency_interval_ms = :frequency_interval_ms,
			active_start = :active_start, active_end = :active_end, timezone = :timezone, is_active = :is_active
		WHERE id = :id
	`
	return withLockRetry(ctx, "update subscription", func() error {
		tx, err := r.db.BeginTxx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		res, err := tx.NamedExecContext(ctx, query, row)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("subscription %d: %w", sub.ID, ErrNotFound)
		}
		if !sub.IsActive {
			if _, err := cancelAttemptsTx(ctx, tx, sub.ID, time.Now(), "subscription deactivated"); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
}

// GetSubscription retrieves a subscription by ID
func (r *SubscriptionRepository) GetSubscription(ctx context.Context, id int64) (*domain.Subscription, error) {
	var row subscriptionSQL
	err := r.db.GetContext(ctx, &row, "SELECT * FROM subscriptions WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get subscription %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	return row.toDomain(), nil
}

// ActiveSubscriptions returns all active subscriptions ordered by creation time
func (r *SubscriptionRepository) ActiveSubscriptions(ctx context.Context) ([]domain.Subscription, error) {
	var rows []subscriptionSQL
	err := r.db.SelectContext(ctx, &rows, "SELECT * FROM subscriptions WHERE is_active = 1 ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("get active subscriptions: %w", err)
	}
	res := make([]domain.Subscription, len(rows))
	for i := range rows {
		res[i] = *rows[i].toDomain()
	}
	return res, nil
}

// IncrementMatch atomically bumps the match counter and last match time
func (r *SubscriptionRepository) IncrementMatch(ctx context.Context, id int64, at time.Time) error {
	return withLockRetry(ctx, "increment match", func() error {
		query := "UPDATE subscriptions SET match_count = match_count + 1, last_match_at = ? WHERE id = ?"
		_, err := r.db.ExecContext(ctx, query, utc(at), id)
		return err
	})
}

// IncrementPush atomically bumps the push counter and last push time
func (r *SubscriptionRepository) IncrementPush(ctx context.Context, id int64, at time.Time) error {
	return withLockRetry(ctx, "increment push", func() error {
		query := "UPDATE subscriptions SET push_count = push_count + 1, last_push_at = ? WHERE id = ?"
		_, err := r.db.ExecContext(ctx, query, utc(at), id)
		return err
	})
}

// UpdateLastProcessed records the external id of the last item evaluated for the subscription
func (r *SubscriptionRepository) UpdateLastProcessed(ctx context.Context, id int64, externalID string) error {
	return withLockRetry(ctx, "update last processed", func() error {
		_, err := r.db.ExecContext(ctx, "UPDATE subscriptions SET last_processed_item_id = ? WHERE id = ?", externalID, id)
		return err
	})
}

// DeactivateSubscription flips the subscription to inactive and, in the same transaction,
// cancels its pending and sending attempts and forbids retries of its failed ones.
// Returns the number of cancelled attempts.
func (r *SubscriptionRepository) DeactivateSubscription(ctx context.Context, id int64, at time.Time, reason string) (int64, error) {
	var cancelled int64
	err := withLockRetry(ctx, "deactivate subscription", func() error {
		tx, err := r.db.BeginTxx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		res, err := tx.ExecContext(ctx, "UPDATE subscriptions SET is_active = 0 WHERE id = ?", id)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("subscription %d: %w", id, ErrNotFound)
		}

		if cancelled, err = cancelAttemptsTx(ctx, tx, id, at, reason); err != nil {
			return err
		}
		return tx.Commit()
	})
	return cancelled, err
}

// cancelAttemptsTx cancels pending and sending attempts of the subscription and forbids
// retries of its failed ones
func cancelAttemptsTx(ctx context.Context, tx *sqlx.Tx, subscriptionID int64, at time.Time, reason string) (int64, error) {
	query := `
		UPDATE attempts
		SET status = ?, cancel_reason = ?, completed_at = ?
		WHERE subscription_id = ? AND status IN (?, ?)
	`
	res, err := tx.ExecContext(ctx, query, domain.StatusCancelled, reason, utc(at), subscriptionID,
		domain.StatusPending, domain.StatusSending)
	if err != nil {
		return 0, err
	}
	cancelled, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	query = "UPDATE attempts SET retries_exhausted = 1 WHERE subscription_id = ? AND status = ?"
	if _, err = tx.ExecContext(ctx, query, subscriptionID, domain.StatusFailed); err != nil {
		return 0, err
	}
	return cancelled, nil
}

// CountSubscriptions returns total and active subscription counts
func (r *SubscriptionRepository) CountSubscriptions(ctx context.Context) (total, active int64, err error) {
	var res struct {
		Total  int64         `db:"total"`
		Active sql.NullInt64 `db:"active"`
	}
	err = r.db.GetContext(ctx, &res, "SELECT COUNT(*) AS total, SUM(is_active) AS active FROM subscriptions")
	if err != nil {
		return 0, 0, fmt.Errorf("count subscriptions: %w", err)
	}
	return res.Total, res.Active.Int64, nil
}

func toSubscriptionSQL(s *domain.Subscription) *subscriptionSQL {
	channels := make(stringsSQL, len(s.Channels))
	for i, ch := range s.Channels {
		channels[i] = string(ch)
	}
	return &subscriptionSQL{
		ID:                  s.ID,
		OwnerID:             s.OwnerID,
		Name:                s.Name,
		Keywords:            s.Keywords,
		ExcludeKeywords:     s.ExcludeKeywords,
		MinLikes:            s.MinLikes,
		MinRetweets:         s.MinRetweets,
		MinReplies:          s.MinReplies,
		MediaMode:           string(s.MediaMode),
		LinkMode:            string(s.LinkMode),
		Languages:           s.Languages,
		Channels:            channels,
		FrequencyKind:       string(s.Frequency.Kind),
		FrequencyIntervalMS: s.Frequency.Interval.Milliseconds(),
		ActiveStart:         s.ActiveHours.Start,
		ActiveEnd:           s.ActiveHours.End,
		Timezone:            s.Timezone,
		IsActive:            s.IsActive,
		CreatedAt:           utc(s.CreatedAt),
	}
}

func (s *subscriptionSQL) toDomain() *domain.Subscription {
	channels := make([]domain.Channel, len(s.Channels))
	for i, ch := range s.Channels {
		channels[i] = domain.Channel(ch)
	}
	sub := &domain.Subscription{
		ID:              s.ID,
		OwnerID:         s.OwnerID,
		Name:            s.Name,
		Keywords:        s.Keywords,
		ExcludeKeywords: s.ExcludeKeywords,
		MinLikes:        s.MinLikes,
		MinRetweets:     s.MinRetweets,
		MinReplies:      s.MinReplies,
		MediaMode:       domain.AttachmentMode(s.MediaMode),
		LinkMode:        domain.AttachmentMode(s.LinkMode),
		Languages:       s.Languages,
		Channels:        channels,
		Frequency: domain.Frequency{
			Kind:     domain.FrequencyKind(s.FrequencyKind),
			Interval: time.Duration(s.FrequencyIntervalMS) * time.Millisecond,
		},
		ActiveHours: domain.ActiveHours{Start: s.ActiveStart, End: s.ActiveEnd},
		Timezone:    s.Timezone,
		IsActive:    s.IsActive,
		Stats: domain.SubscriptionStats{
			MatchCount:  s.MatchCount,
			PushCount:   s.PushCount,
			LastMatchAt: s.LastMatchAt,
			LastPushAt:  s.LastPushAt,
		},
		LastProcessedItemID: s.LastProcessedItemID,
		CreatedAt:           s.CreatedAt,
	}
	sub.ResolveLocation()
	return sub
}
