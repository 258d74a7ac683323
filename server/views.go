package server

import (
	"fmt"
	"time"

	"github.com/umputun/pushscope/pkg/domain"
)

// itemRequest is a social post pushed by an external producer
type itemRequest struct {
	ExternalID string    `json:"external_id"`
	Text       string    `json:"text"`
	URL        string    `json:"url"`
	Lang       string    `json:"lang"`
	HasMedia   bool      `json:"has_media"`
	HasLinks   bool      `json:"has_links"`
	CreatedAt  time.Time `json:"created_at"`

	Author struct {
		Name      string `json:"name"`
		Followers int64  `json:"followers"`
		Verified  bool   `json:"verified"`
	} `json:"author"`

	Engagement struct {
		Likes    int64 `json:"likes"`
		Retweets int64 `json:"retweets"`
		Replies  int64 `json:"replies"`
		Quotes   int64 `json:"quotes"`
	} `json:"engagement"`
}

func (r itemRequest) toDomain() *domain.Item {
	return &domain.Item{
		ExternalID: r.ExternalID,
		Text:       r.Text,
		URL:        r.URL,
		Lang:       r.Lang,
		HasMedia:   r.HasMedia,
		HasLinks:   r.HasLinks,
		CreatedAt:  r.CreatedAt,
		Author:     domain.Author{Name: r.Author.Name, Followers: r.Author.Followers, Verified: r.Author.Verified},
		Engagement: domain.Engagement{
			Likes:    r.Engagement.Likes,
			Retweets: r.Engagement.Retweets,
			Replies:  r.Engagement.Replies,
			Quotes:   r.Engagement.Quotes,
		},
	}
}

// subscriptionRequest carries the rule fields of a subscription, statistics are not writable
type subscriptionRequest struct {
	ID              int64            `json:"id"`
	OwnerID         string           `json:"owner_id"`
	Name            string           `json:"name"`
	Keywords        []string         `json:"keywords"`
	ExcludeKeywords []string         `json:"exclude_keywords"`
	MinLikes        int64            `json:"min_likes"`
	MinRetweets     int64            `json:"min_retweets"`
	MinReplies      int64            `json:"min_replies"`
	MediaMode       string           `json:"media_mode"`
	LinkMode        string           `json:"link_mode"`
	Languages       []string         `json:"languages"`
	Channels        []domain.Channel `json:"channels"`
	Frequency       string           `json:"frequency"`
	Interval        string           `json:"interval"` // go duration, used with "interval" frequency
	ActiveHours     *[2]int          `json:"active_hours"` // [start, end], all day when omitted
	Timezone        string           `json:"timezone"`
	Active          *bool            `json:"active"`
}

func (r subscriptionRequest) toDomain() (*domain.Subscription, error) {
	sub := &domain.Subscription{
		ID:              r.ID,
		OwnerID:         r.OwnerID,
		Name:            r.Name,
		Keywords:        r.Keywords,
		ExcludeKeywords: r.ExcludeKeywords,
		MinLikes:        r.MinLikes,
		MinRetweets:     r.MinRetweets,
		MinReplies:      r.MinReplies,
		MediaMode:       domain.AttachmentMode(r.MediaMode),
		LinkMode:        domain.AttachmentMode(r.LinkMode),
		Languages:       r.Languages,
		Channels:        r.Channels,
		Frequency:       domain.Frequency{Kind: domain.FrequencyKind(r.Frequency)},
		ActiveHours:     domain.ActiveHours{Start: 0, End: 23},
		Timezone:        r.Timezone,
		IsActive:        r.Active == nil || *r.Active,
	}
	if sub.Frequency.Kind == "" {
		sub.Frequency.Kind = domain.FrequencyRealtime
	}
	if r.ActiveHours != nil {
		sub.ActiveHours = domain.ActiveHours{Start: r.ActiveHours[0], End: r.ActiveHours[1]}
	}
	if r.Interval != "" {
		d, err := time.ParseDuration(r.Interval)
		if err != nil {
			return nil, fmt.Errorf("invalid interval %q: %w", r.Interval, err)
		}
		sub.Frequency.Interval = d
	}
	if err := sub.Validate(); err != nil {
		return nil, err
	}
	return sub, nil
}

type subscriptionView struct {
	ID                  int64            `json:"id"`
	OwnerID             string           `json:"owner_id"`
	Name                string           `json:"name"`
	Keywords            []string         `json:"keywords"`
	ExcludeKeywords     []string         `json:"exclude_keywords,omitempty"`
	MinLikes            int64            `json:"min_likes"`
	MinRetweets         int64            `json:"min_retweets"`
	MinReplies          int64            `json:"min_replies"`
	MediaMode           string           `json:"media_mode,omitempty"`
	LinkMode            string           `json:"link_mode,omitempty"`
	Languages           []string         `json:"languages,omitempty"`
	Channels            []domain.Channel `json:"channels"`
	Frequency           string           `json:"frequency"`
	Interval            string           `json:"interval,omitempty"`
	ActiveHours         [2]int           `json:"active_hours"`
	Timezone            string           `json:"timezone,omitempty"`
	Active              bool             `json:"active"`
	MatchCount          int64            `json:"match_count"`
	PushCount           int64            `json:"push_count"`
	LastMatchAt         *time.Time       `json:"last_match_at,omitempty"`
	LastPushAt          *time.Time       `json:"last_push_at,omitempty"`
	LastProcessedItemID string           `json:"last_processed_item_id,omitempty"`
	CreatedAt           time.Time        `json:"created_at"`
}

func newSubscriptionView(s *domain.Subscription) subscriptionView {
	v := subscriptionView{
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
		Channels:            s.Channels,
		Frequency:           string(s.Frequency.Kind),
		ActiveHours:         [2]int{s.ActiveHours.Start, s.ActiveHours.End},
		Timezone:            s.Timezone,
		Active:              s.IsActive,
		MatchCount:          s.Stats.MatchCount,
		PushCount:           s.Stats.PushCount,
		LastMatchAt:         s.Stats.LastMatchAt,
		LastPushAt:          s.Stats.LastPushAt,
		LastProcessedItemID: s.LastProcessedItemID,
		CreatedAt:           s.CreatedAt,
	}
	if s.Frequency.Kind == domain.FrequencyInterval {
		v.Interval = s.Frequency.Interval.String()
	}
	return v
}

type attemptView struct {
	ID               string               `json:"id"`
	ItemID           int64                `json:"item_id"`
	SubscriptionID   int64                `json:"subscription_id"`
	OwnerID          string               `json:"owner_id"`
	Channel          domain.Channel       `json:"channel"`
	Status           domain.AttemptStatus `json:"status"`
	Priority         domain.Priority      `json:"priority"`
	Title            string               `json:"title"`
	Body             string               `json:"body"`
	Summary          string               `json:"summary,omitempty"`
	URL              string               `json:"url,omitempty"`
	MaxRetries       int                  `json:"max_retries"`
	RetryCount       int                  `json:"retry_count"`
	RetriesExhausted bool                 `json:"retries_exhausted"`
	RetryHistory     []domain.RetryEntry  `json:"retry_history,omitempty"`
	ScheduledAt      *time.Time           `json:"scheduled_at,omitempty"`
	StartedAt        *time.Time           `json:"started_at,omitempty"`
	CompletedAt      *time.Time           `json:"completed_at,omitempty"`
	DurationMs       int64                `json:"duration_ms"`
	QueueTimeMs      int64                `json:"queue_time_ms"`
	MessageID        string               `json:"message_id,omitempty"`
	ErrorCode        string               `json:"error_code,omitempty"`
	ErrorMessage     string               `json:"error_message,omitempty"`
	Read             bool                 `json:"read"`
	ReadAt           *time.Time           `json:"read_at,omitempty"`
	Clicked          bool                 `json:"clicked"`
	ClickedAt        *time.Time           `json:"clicked_at,omitempty"`
	Feedback         string               `json:"feedback,omitempty"`
	BatchID          string               `json:"batch_id,omitempty"`
	BatchSize        int                  `json:"batch_size,omitempty"`
	BatchIndex       int                  `json:"batch_index"`
	CancelReason     string               `json:"cancel_reason,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
}

func newAttemptView(a *domain.DeliveryAttempt) attemptView {
	return attemptView{
		ID:               a.ID,
		ItemID:           a.ItemID,
		SubscriptionID:   a.SubscriptionID,
		OwnerID:          a.OwnerID,
		Channel:          a.Channel,
		Status:           a.Status,
		Priority:         a.Priority,
		Title:            a.Content.Title,
		Body:             a.Content.Body,
		Summary:          a.Content.Summary,
		URL:              a.Content.URL,
		MaxRetries:       a.MaxRetries,
		RetryCount:       a.RetryCount(),
		RetriesExhausted: a.RetriesExhausted,
		RetryHistory:     a.RetryHistory,
		ScheduledAt:      a.Timing.ScheduledAt,
		StartedAt:        a.Timing.StartedAt,
		CompletedAt:      a.Timing.CompletedAt,
		DurationMs:       durationMs(a.Timing.Duration),
		QueueTimeMs:      durationMs(a.Timing.QueueTime),
		MessageID:        a.Result.MessageID,
		ErrorCode:        a.Result.ErrorCode,
		ErrorMessage:     a.Result.ErrorMessage,
		Read:             a.Interaction.Read,
		ReadAt:           a.Interaction.ReadAt,
		Clicked:          a.Interaction.Clicked,
		ClickedAt:        a.Interaction.ClickedAt,
		Feedback:         a.Interaction.Feedback,
		BatchID:          a.Batch.ID,
		BatchSize:        a.Batch.Size,
		BatchIndex:       a.Batch.Index,
		CancelReason:     a.CancelReason,
		CreatedAt:        a.CreatedAt,
	}
}
