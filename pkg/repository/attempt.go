package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/umputun/pushscope/pkg/domain"
)

// AttemptRepository handles delivery attempt storage. Status changes go through
// SaveAttempt, conditioned on the status the caller read, so two workers can't both
// move the same attempt.
type AttemptRepository struct {
	db *sqlx.DB
}

// attemptSQL represents a delivery attempt for SQL operations, durations are stored in milliseconds
type attemptSQL struct {
	ID               string          `db:"id"`
	ItemID           int64           `db:"item_id"`
	SubscriptionID   int64           `db:"subscription_id"`
	OwnerID          string          `db:"owner_id"`
	Channel          string          `db:"channel"`
	Status           string          `db:"status"`
	Title            string          `db:"title"`
	Body             string          `db:"body"`
	Summary          string          `db:"summary"`
	URL              string          `db:"url"`
	Priority         string          `db:"priority"`
	MaxRetries       int             `db:"max_retries"`
	RetryBaseDelayMS int64           `db:"retry_base_delay_ms"`
	RetryHistory     retryHistorySQL `db:"retry_history"`
	RetriesExhausted bool            `db:"retries_exhausted"`
	ScheduledAt      *time.Time      `db:"scheduled_at"`
	StartedAt        *time.Time      `db:"started_at"`
	CompletedAt      *time.Time      `db:"completed_at"`
	DurationMS       int64           `db:"duration_ms"`
	QueueTimeMS      int64           `db:"queue_time_ms"`
	MessageID        string          `db:"message_id"`
	ErrorCode        string          `db:"error_code"`
	ErrorMessage     string          `db:"error_message"`
	ResponseTimeMS   int64           `db:"response_time_ms"`
	RawResponse      string          `db:"raw_response"`
	Read             bool            `db:"is_read"`
	ReadAt           *time.Time      `db:"read_at"`
	Clicked          bool            `db:"clicked"`
	ClickedAt        *time.Time      `db:"clicked_at"`
	Feedback         string          `db:"feedback"`
	FeedbackAt       *time.Time      `db:"feedback_at"`
	BatchID          string          `db:"batch_id"`
	BatchSize        int             `db:"batch_size"`
	BatchIndex       int             `db:"batch_index"`
	CancelReason     string          `db:"cancel_reason"`
	CreatedAt        time.Time       `db:"created_at"`

	// only used as the condition of SaveAttempt
	FromStatus string `db:"from_status"`
}

// retryHistorySQL is the JSON encoded retry log
type retryHistorySQL []domain.RetryEntry

// Value implements driver.Valuer for database storage
func (h retryHistorySQL) Value() (driver.Value, error) {
	if h == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]domain.RetryEntry(h))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for database retrieval
func (h *retryHistorySQL) Scan(value any) error {
	return scanJSON(value, h)
}

// NewAttemptRepository creates a new attempt repository
func NewAttemptRepository(db *sqlx.DB) *AttemptRepository {
	return &AttemptRepository{db: db}
}

const attemptColumns = `
	id, item_id, subscription_id, owner_id, channel, status, title, body, summary, url,
	priority, max_retries, retry_base_delay_ms, retry_history, retries_exhausted,
	scheduled_at, started_at, completed_at, duration_ms, queue_time_ms,
	message_id, error_code, error_message, response_time_ms, raw_response,
	is_read, read_at, clicked, clicked_at, feedback, feedback_at,
	batch_id, batch_size, batch_index, cancel_reason, created_at`

// CreateAttempts inserts all attempts of one fan-out in a single transaction
func (r *AttemptRepository) CreateAttempts(ctx context.Context, attempts []*domain.DeliveryAttempt) error {
	if len(attempts) == 0 {
		return nil
	}
	query := `
		INSERT INTO attempts (` + attemptColumns + `) VALUES (
			:id, :item_id, :subscription_id, :owner_id, :channel, :status, :title, :body, :summary, :url,
			:priority, :max_retries, :retry_base_delay_ms, :retry_history, :retries_exhausted,
			:scheduled_at, :started_at, :completed_at, :duration_ms, :queue_time_ms,
			:message_id, :error_code, :error_message, :response_time_ms, :raw_response,
			:is_read, :read_at, :clicked, :clicked_at, :feedback, :feedback_at,
			:batch_id, :batch_size, :batch_index, :cancel_reason, :created_at
		)
	`
	return withLockRetry(ctx, "create attempts", func() error {
		tx, err := r.db.BeginTxx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()
		for _, a := range attempts {
			if _, err := tx.NamedExecContext(ctx, query, toAttemptSQL(a, "")); err != nil {
				return fmt.Errorf("attempt %s: %w", a.ID, err)
			}
		}
		return tx.Commit()
	})
}

// GetAttempt retrieves an attempt by ID
func (r *AttemptRepository) GetAttempt(ctx context.Context, id string) (*domain.DeliveryAttempt, error) {
	var row attemptSQL
	err := r.db.GetContext(ctx, &row, "SELECT "+attemptColumns+" FROM attempts WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get attempt %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	return row.toDomain(), nil
}

// SaveAttempt writes the attempt's lifecycle fields if its stored status is still from.
// Returns ErrStateConflict when the stored status differs, e.g. it was cancelled meanwhile.
// Interaction fields are not written, see SaveInteraction.
func (r *AttemptRepository) SaveAttempt(ctx context.Context, a *domain.DeliveryAttempt, from domain.AttemptStatus) error {
	query := `
		UPDATE attempts SET
			status = :status, retry_history = :retry_history, retries_exhausted = :retries_exhausted,
			scheduled_at = :scheduled_at, started_at = :started_at, completed_at = :completed_at,
			duration_ms = :duration_ms, queue_time_ms = :queue_time_ms,
			message_id = :message_id, error_code = :error_code, error_message = :error_message,
			response_time_ms = :response_time_ms, raw_response = :raw_response, cancel_reason = :cancel_reason
		WHERE id = :id AND status = :from_status
	`
	return withLockRetry(ctx, "save attempt", func() error {
		res, err := r.db.NamedExecContext(ctx, query, toAttemptSQL(a, from))
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("attempt %s is not %s: %w", a.ID, from, ErrStateConflict)
		}
		return nil
	})
}

// ClaimAttempt moves a pending attempt to sending. Only one of concurrent claimers succeeds,
// the others get ErrStateConflict.
func (r *AttemptRepository) ClaimAttempt(ctx context.Context, a *domain.DeliveryAttempt, at time.Time) error {
	if err := a.MarkStarted(at); err != nil {
		return err
	}
	return r.SaveAttempt(ctx, a, domain.StatusPending)
}

// SaveInteraction writes recipient interaction fields regardless of delivery status
func (r *AttemptRepository) SaveInteraction(ctx context.Context, a *domain.DeliveryAttempt) error {
	query := `
		UPDATE attempts SET
			is_read = :is_read, read_at = :read_at, clicked = :clicked, clicked_at = :clicked_at,
			feedback = :feedback, feedback_at = :feedback_at
		WHERE id = :id
	`
	return withLockRetry(ctx, "save interaction", func() error {
		res, err := r.db.NamedExecContext(ctx, query, toAttemptSQL(a, ""))
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("attempt %s: %w", a.ID, ErrNotFound)
		}
		return nil
	})
}

// DueAttempts returns pending attempts of active subscriptions scheduled at or before now,
// high priority first
func (r *AttemptRepository) DueAttempts(ctx context.Context, now time.Time, limit int) ([]*domain.DeliveryAttempt, error) {
	query := `
		SELECT ` + attemptColumns + ` FROM attempts
		WHERE status = ? AND scheduled_at <= ?
			AND subscription_id IN (SELECT id FROM subscriptions WHERE is_active = 1)
		ORDER BY CASE priority WHEN 'high' THEN 0 WHEN 'normal' THEN 1 ELSE 2 END, scheduled_at, created_at
		LIMIT ?
	`
	var rows []attemptSQL
	if err := r.db.SelectContext(ctx, &rows, query, domain.StatusPending, utc(now), limit); err != nil {
		return nil, fmt.Errorf("get due attempts: %w", err)
	}
	res := make([]*domain.DeliveryAttempt, len(rows))
	for i := range rows {
		res[i] = rows[i].toDomain()
	}
	return res, nil
}

// SubscriptionAttempts returns attempts of a subscription, newest first
func (r *AttemptRepository) SubscriptionAttempts(ctx context.Context, subscriptionID int64, limit int) ([]*domain.DeliveryAttempt, error) {
	query := `
		SELECT ` + attemptColumns + ` FROM attempts
		WHERE subscription_id = ?
		ORDER BY created_at DESC, id
		LIMIT ?
	`
	var rows []attemptSQL
	if err := r.db.SelectContext(ctx, &rows, query, subscriptionID, limit); err != nil {
		return nil, fmt.Errorf("get subscription attempts: %w", err)
	}
	res := make([]*domain.DeliveryAttempt, len(rows))
	for i := range rows {
		res[i] = rows[i].toDomain()
	}
	return res, nil
}

// ResetStale returns attempts stuck in sending since before olderThan back to pending,
// used on startup to recover attempts claimed by a crashed process
func (r *AttemptRepository) ResetStale(ctx context.Context, olderThan time.Time) (int64, error) {
	var n int64
	err := withLockRetry(ctx, "reset stale attempts", func() error {
		query := `
			UPDATE attempts SET status = ?, started_at = NULL, queue_time_ms = 0
			WHERE status = ? AND started_at < ?
		`
		res, err := r.db.ExecContext(ctx, query, domain.StatusPending, domain.StatusSending, utc(olderThan))
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	return n, err
}

// CountByStatus returns the number of attempts per status
func (r *AttemptRepository) CountByStatus(ctx context.Context) (map[domain.AttemptStatus]int64, error) {
	var rows []struct {
		Status string `db:"status"`
		Count  int64  `db:"cnt"`
	}
	if err := r.db.SelectContext(ctx, &rows, "SELECT status, COUNT(*) AS cnt FROM attempts GROUP BY status"); err != nil {
		return nil, fmt.Errorf("count attempts: %w", err)
	}
	res := make(map[domain.AttemptStatus]int64, len(rows))
	for _, row := range rows {
		res[domain.AttemptStatus(row.Status)] = row.Count
	}
	return res, nil
}

func toAttemptSQL(a *domain.DeliveryAttempt, from domain.AttemptStatus) *attemptSQL {
	return &attemptSQL{
		ID:               a.ID,
		ItemID:           a.ItemID,
		SubscriptionID:   a.SubscriptionID,
		OwnerID:          a.OwnerID,
		Channel:          string(a.Channel),
		Status:           string(a.Status),
		Title:            a.Content.Title,
		Body:             a.Content.Body,
		Summary:          a.Content.Summary,
		URL:              a.Content.URL,
		Priority:         string(a.Priority),
		MaxRetries:       a.MaxRetries,
		RetryBaseDelayMS: a.RetryBaseDelay.Milliseconds(),
		RetryHistory:     a.RetryHistory,
		RetriesExhausted: a.RetriesExhausted,
		ScheduledAt:      utcPtr(a.Timing.ScheduledAt),
		StartedAt:        utcPtr(a.Timing.StartedAt),
		CompletedAt:      utcPtr(a.Timing.CompletedAt),
		DurationMS:       a.Timing.Duration.Milliseconds(),
		QueueTimeMS:      a.Timing.QueueTime.Milliseconds(),
		MessageID:        a.Result.MessageID,
		ErrorCode:        a.Result.ErrorCode,
		ErrorMessage:     a.Result.ErrorMessage,
		ResponseTimeMS:   a.Result.ResponseTime.Milliseconds(),
		RawResponse:      a.Result.RawResponse,
		Read:             a.Interaction.Read,
		ReadAt:           utcPtr(a.Interaction.ReadAt),
		Clicked:          a.Interaction.Clicked,
		ClickedAt:        utcPtr(a.Interaction.ClickedAt),
		Feedback:         a.Interaction.Feedback,
		FeedbackAt:       utcPtr(a.Interaction.FeedbackAt),
		BatchID:          a.Batch.ID,
		BatchSize:        a.Batch.Size,
		BatchIndex:       a.Batch.Index,
		CancelReason:     a.CancelReason,
		CreatedAt:        utc(a.CreatedAt),
		FromStatus:       string(from),
	}
}

func (s *attemptSQL) toDomain() *domain.DeliveryAttempt {
	ms := func(v int64) time.Duration { return time.Duration(v) * time.Millisecond }
	return &domain.DeliveryAttempt{
		ID:               s.ID,
		ItemID:           s.ItemID,
		SubscriptionID:   s.SubscriptionID,
		OwnerID:          s.OwnerID,
		Channel:          domain.Channel(s.Channel),
		Status:           domain.AttemptStatus(s.Status),
		Content:          domain.Content{Title: s.Title, Body: s.Body, Summary: s.Summary, URL: s.URL},
		Priority:         domain.Priority(s.Priority),
		MaxRetries:       s.MaxRetries,
		RetryBaseDelay:   ms(s.RetryBaseDelayMS),
		RetryHistory:     s.RetryHistory,
		RetriesExhausted: s.RetriesExhausted,
		Timing: domain.Timing{
			ScheduledAt: s.ScheduledAt,
			StartedAt:   s.StartedAt,
			CompletedAt: s.CompletedAt,
			Duration:    ms(s.DurationMS),
			QueueTime:   ms(s.QueueTimeMS),
		},
		Result: domain.Result{
			MessageID:    s.MessageID,
			ErrorCode:    s.ErrorCode,
			ErrorMessage: s.ErrorMessage,
			ResponseTime: ms(s.ResponseTimeMS),
			RawResponse:  s.RawResponse,
		},
		Interaction: domain.Interaction{
			Read:       s.Read,
			ReadAt:     s.ReadAt,
			Clicked:    s.Clicked,
			ClickedAt:  s.ClickedAt,
			Feedback:   s.Feedback,
			FeedbackAt: s.FeedbackAt,
		},
		Batch:        domain.Batch{ID: s.BatchID, Size: s.BatchSize, Index: s.BatchIndex},
		CancelReason: s.CancelReason,
		CreatedAt:    s.CreatedAt,
	}
}
