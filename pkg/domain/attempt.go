package domain

import (
	"fmt"
	"math"
	"time"
	"unicode/utf8"

	"github.com/go-pkgz/lgr"
	"github.com/google/uuid"
)

// AttemptStatus is the state of a delivery attempt
type AttemptStatus string

const (
	StatusPending   AttemptStatus = "pending"
	StatusSending   AttemptStatus = "sending"
	StatusSuccess   AttemptStatus = "success"
	StatusFailed    AttemptStatus = "failed"
	StatusCancelled AttemptStatus = "cancelled"
)

// Priority of a delivery attempt
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// InteractionKind is a kind of recipient interaction with a delivered message
type InteractionKind string

const (
	InteractionRead     InteractionKind = "read"
	InteractionClick    InteractionKind = "click"
	InteractionFeedback InteractionKind = "feedback"
)

// limits for rendered content, in runes
const (
	MaxTitleLen   = 200
	MaxBodyLen    = 2000
	MaxSummaryLen = 500
	MaxURLLen     = 2048
)

// DefaultMaxRetries is used when AttemptParams.MaxRetries is not set
const DefaultMaxRetries = 3

// MaxRetryDelay caps the backoff delay before jitter is added
const MaxRetryDelay = 24 * time.Hour

// Content is the rendered message delivered by a channel adapter
type Content struct {
	Title   string
	Body    string
	Summary string
	URL     string
}

// RetryEntry is one record of the append-only retry log
type RetryEntry struct {
	Attempt  int           `json:"attempt"`
	At       time.Time     `json:"at"`
	Error    string        `json:"error"`
	Duration time.Duration `json:"duration"`
}

// Timing holds lifecycle timestamps of an attempt
type Timing struct {
	ScheduledAt *time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
	Duration    time.Duration // CompletedAt - StartedAt
	QueueTime   time.Duration // StartedAt - ScheduledAt, may be negative on clock errors
}

// Result holds what the channel provider reported
type Result struct {
	MessageID    string
	ErrorCode    string
	ErrorMessage string
	ResponseTime time.Duration
	RawResponse  string
}

// Interaction holds recipient feedback, orthogonal to delivery status
type Interaction struct {
	Read       bool
	ReadAt     *time.Time
	Clicked    bool
	ClickedAt  *time.Time
	Feedback   string
	FeedbackAt *time.Time
}

// Batch describes membership of an attempt in one fan-out
type Batch struct {
	ID    string
	Size  int
	Index int
}

// DeliveryAttempt tracks delivery of one item to one subscription via one channel.
// It is mutated only through its transition methods and must be owned by a single
// worker at a time.
type DeliveryAttempt struct {
	ID             string
	ItemID         int64
	SubscriptionID int64
	OwnerID        string
	Channel        Channel
	Status         AttemptStatus
	Content        Content
	Priority       Priority

	MaxRetries       int
	RetryBaseDelay   time.Duration
	RetryHistory     []RetryEntry
	RetriesExhausted bool

	Timing       Timing
	Result       Result
	Interaction  Interaction
	Batch        Batch
	CancelReason string
	CreatedAt    time.Time
}

// AttemptParams are the inputs for NewDeliveryAttempt
type AttemptParams struct {
	ItemID         int64
	SubscriptionID int64
	OwnerID        string
	Channel        Channel
	Content        Content
	Priority       Priority
	MaxRetries     int
	RetryBaseDelay time.Duration
	ScheduledAt    time.Time
	Batch          Batch
	CreatedAt      time.Time
}

// NewDeliveryAttempt validates params and makes a pending attempt
func NewDeliveryAttempt(p AttemptParams) (*DeliveryAttempt, error) {
	if p.ItemID == 0 {
		return nil, &ValidationError{Field: "item", Reason: "is required"}
	}
	if p.SubscriptionID == 0 {
		return nil, &ValidationError{Field: "subscription", Reason: "is required"}
	}
	if p.Channel == "" {
		return nil, &ValidationError{Field: "channel", Reason: "is required"}
	}
	if !p.Channel.Valid() {
		return nil, &ValidationError{Field: "channel", Reason: fmt.Sprintf("unknown channel %q", p.Channel)}
	}
	if p.MaxRetries < 0 {
		return nil, &ValidationError{Field: "max_retries", Reason: "must be non-negative"}
	}
	if p.RetryBaseDelay < 0 {
		return nil, &ValidationError{Field: "retry_base_delay", Reason: "must be non-negative"}
	}
	if err := p.Content.validate(); err != nil {
		return nil, err
	}
	if p.Batch.Size < 0 || (p.Batch.Size > 0 && (p.Batch.Index < 0 || p.Batch.Index >= p.Batch.Size)) {
		return nil, &ValidationError{Field: "batch", Reason: fmt.Sprintf("index %d out of size %d", p.Batch.Index, p.Batch.Size)}
	}

	if p.Priority == "" {
		p.Priority = PriorityNormal
	}
	if p.MaxRetries == 0 {
		p.MaxRetries = DefaultMaxRetries
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	scheduled := p.ScheduledAt
	if scheduled.IsZero() {
		scheduled = p.CreatedAt
	}

	return &DeliveryAttempt{
		ID:             uuid.NewString(),
		ItemID:         p.ItemID,
		SubscriptionID: p.SubscriptionID,
		OwnerID:        p.OwnerID,
		Channel:        p.Channel,
		Status:         StatusPending,
		Content:        p.Content,
		Priority:       p.Priority,
		MaxRetries:     p.MaxRetries,
		RetryBaseDelay: p.RetryBaseDelay,
		Timing:         Timing{ScheduledAt: &scheduled},
		Batch:          p.Batch,
		CreatedAt:      p.CreatedAt,
	}, nil
}

func (c Content) validate() error {
	checks := []struct {
		field string
		val   string
		max   int
	}{
		{"content.title", c.Title, MaxTitleLen},
		{"content.body", c.Body, MaxBodyLen},
		{"content.summary", c.Summary, MaxSummaryLen},
		{"content.url", c.URL, MaxURLLen},
	}
	for _, ch := range checks {
		if n := utf8.RuneCountInString(ch.val); n > ch.max {
			return &ValidationError{Field: ch.field, Reason: fmt.Sprintf("length %d exceeds %d", n, ch.max)}
		}
	}
	return nil
}

// Terminal reports whether no further status transition is possible
func (a *DeliveryAttempt) Terminal() bool {
	switch a.Status {
	case StatusSuccess, StatusCancelled:
		return true
	case StatusFailed:
		return !a.CanRetry()
	}
	return false
}

// MarkStarted moves pending attempt to sending
func (a *DeliveryAttempt) MarkStarted(at time.Time) error {
	if a.Status != StatusPending {
		return a.transitionErr(StatusSending)
	}
	a.Status = StatusSending
	a.Timing.StartedAt = &at
	if a.Timing.ScheduledAt != nil {
		a.Timing.QueueTime = at.Sub(*a.Timing.ScheduledAt)
		if a.Timing.QueueTime < 0 {
			lgr.Printf("[WARN] attempt %s started %v before its schedule, clock or scheduling error", a.ID, -a.Timing.QueueTime)
		}
	}
	return nil
}

// MarkSuccess records provider's acceptance of the message. Terminal.
func (a *DeliveryAttempt) MarkSuccess(at time.Time, messageID string, responseTime time.Duration, rawResponse string) error {
	if a.Status != StatusSending {
		return a.transitionErr(StatusSuccess)
	}
	a.Status = StatusSuccess
	a.complete(at)
	a.Result = Result{MessageID: messageID, ResponseTime: responseTime, RawResponse: rawResponse}
	return nil
}

// MarkFailed records provider or network failure. Terminal unless CanRetry.
func (a *DeliveryAttempt) MarkFailed(at time.Time, errorCode, errorMessage, rawResponse string) error {
	if a.Status != StatusSending {
		return a.transitionErr(StatusFailed)
	}
	a.Status = StatusFailed
	a.complete(at)
	a.Result = Result{ErrorCode: errorCode, ErrorMessage: errorMessage, RawResponse: rawResponse}
	return nil
}

func (a *DeliveryAttempt) complete(at time.Time) {
	a.Timing.CompletedAt = &at
	if a.Timing.StartedAt != nil {
		a.Timing.Duration = at.Sub(*a.Timing.StartedAt)
	}
}

// AddRetryAttempt appends a retry log entry. Status is not changed.
func (a *DeliveryAttempt) AddRetryAttempt(at time.Time, errMsg string, duration time.Duration) {
	a.RetryHistory = append(a.RetryHistory, RetryEntry{
		Attempt:  len(a.RetryHistory) + 1,
		At:       at,
		Error:    errMsg,
		Duration: duration,
	})
}

// RetryCount is derived from the retry log
func (a *DeliveryAttempt) RetryCount() int {
	return len(a.RetryHistory)
}

// ExhaustRetries forbids further retries, used for permanent provider errors
func (a *DeliveryAttempt) ExhaustRetries() {
	a.RetriesExhausted = true
}

// CanRetry reports whether a failed attempt may be re-enqueued
func (a *DeliveryAttempt) CanRetry() bool {
	return a.Status == StatusFailed && !a.RetriesExhausted && a.RetryCount() < a.MaxRetries
}

// NextRetryTime returns now + min(base*2^(retryCount-1), MaxRetryDelay) + jitter,
// false if retry is not allowed. The exponent is floored at zero, so the first retry waits one base delay.
func (a *DeliveryAttempt) NextRetryTime(now time.Time, jitter time.Duration) (time.Time, bool) {
	if !a.CanRetry() {
		return time.Time{}, false
	}
	exp := a.RetryCount() - 1
	if exp < 0 {
		exp = 0
	}
	// compare in float, the product can be beyond int64 range
	delay := MaxRetryDelay
	if d := float64(a.RetryBaseDelay) * math.Pow(2, float64(exp)); d < float64(MaxRetryDelay) {
		delay = time.Duration(d)
	}
	return now.Add(delay + jitter), true
}

// Requeue moves failed attempt back to pending, scheduled at the given time
func (a *DeliveryAttempt) Requeue(at time.Time) error {
	if !a.CanRetry() {
		return a.transitionErr(StatusPending)
	}
	a.Status = StatusPending
	a.Timing.ScheduledAt = &at
	a.Timing.StartedAt = nil
	a.Timing.CompletedAt = nil
	a.Timing.Duration = 0
	a.Timing.QueueTime = 0
	return nil
}

// Cancel moves pending or sending attempt to cancelled. Terminal.
func (a *DeliveryAttempt) Cancel(at time.Time, reason string) error {
	if a.Status != StatusPending && a.Status != StatusSending {
		return a.transitionErr(StatusCancelled)
	}
	a.Status = StatusCancelled
	a.Timing.CompletedAt = &at
	a.CancelReason = reason
	return nil
}

// UpdateInteraction records read, click or feedback regardless of delivery status
func (a *DeliveryAttempt) UpdateInteraction(kind InteractionKind, data string, at time.Time) error {
	switch kind {
	case InteractionRead:
		if !a.Interaction.Read {
			a.Interaction.Read = true
			a.Interaction.ReadAt = &at
		}
	case InteractionClick:
		if !a.Interaction.Clicked {
			a.Interaction.Clicked = true
			a.Interaction.ClickedAt = &at
		}
		// a click implies the message was read
		if !a.Interaction.Read {
			a.Interaction.Read = true
			a.Interaction.ReadAt = &at
		}
	case InteractionFeedback:
		if data == "" {
			return &ValidationError{Field: "feedback", Reason: "tag is required"}
		}
		a.Interaction.Feedback = data
		a.Interaction.FeedbackAt = &at
	default:
		return &ValidationError{Field: "interaction", Reason: fmt.Sprintf("unknown kind %q", kind)}
	}
	return nil
}

func (a *DeliveryAttempt) transitionErr(to AttemptStatus) error {
	return fmt.Errorf("attempt %s %s -> %s: %w", a.ID, a.Status, to, ErrInvalidTransition)
}
