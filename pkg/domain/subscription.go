package domain

import (
	"fmt"
	"strings"
	"time"
)

// MaxKeywords is the maximum number of required keywords per subscription
const MaxKeywords = 20

// AttachmentMode says how a subscription treats media or links in an item
type AttachmentMode string

const (
	AttachmentAny      AttachmentMode = "any"
	AttachmentRequired AttachmentMode = "required"
	AttachmentExcluded AttachmentMode = "excluded"
)

// FrequencyKind is the delivery cadence of a subscription
type FrequencyKind string

const (
	FrequencyRealtime FrequencyKind = "realtime"
	FrequencyInterval FrequencyKind = "interval"
	FrequencyHourly   FrequencyKind = "hourly"
	FrequencyDaily    FrequencyKind = "daily"
)

// Frequency is a subscription's delivery policy. Interval is used only with FrequencyInterval.
type Frequency struct {
	Kind     FrequencyKind
	Interval time.Duration
}

// Period returns the minimal spacing between two pushes, zero for realtime
func (f Frequency) Period() time.Duration {
	switch f.Kind {
	case FrequencyInterval:
		return f.Interval
	case FrequencyHourly:
		return time.Hour
	case FrequencyDaily:
		return 24 * time.Hour
	default:
		return 0
	}
}

// ActiveHours is an hour-of-day window, both ends inclusive.
// Start > End means the window wraps over midnight.
type ActiveHours struct {
	Start int
	End   int
}

// Overnight reports whether the window wraps over midnight
func (h ActiveHours) Overnight() bool {
	return h.Start > h.End
}

// SubscriptionStats holds running counters, updated only through atomic increments in storage
type SubscriptionStats struct {
	MatchCount  int64
	PushCount   int64
	LastMatchAt *time.Time
	LastPushAt  *time.Time
}

// Subscription is a named, user-owned matching rule
type Subscription struct {
	ID              int64
	OwnerID         string
	Name            string
	Keywords        []string
	ExcludeKeywords []string
	MinLikes        int64
	MinRetweets     int64
	MinReplies      int64
	MediaMode       AttachmentMode
	LinkMode        AttachmentMode
	Languages       []string
	Channels        []Channel
	Frequency       Frequency
	ActiveHours     ActiveHours
	Timezone        string
	IsActive        bool

	loc *time.Location // resolved Timezone, set by ResolveLocation or Validate

	Stats               SubscriptionStats
	LastProcessedItemID string
	CreatedAt           time.Time
}

// Location returns subscription's time zone, UTC if not set or unknown.
// It does no lookup once the zone is resolved.
func (s *Subscription) Location() *time.Location {
	if s.loc != nil {
		return s.loc
	}
	return loadLocation(s.Timezone)
}

// ResolveLocation loads the subscription's time zone once and keeps it for Location.
// Called when a subscription is loaded, before it is shared between goroutines.
func (s *Subscription) ResolveLocation() *time.Location {
	s.loc = loadLocation(s.Timezone)
	return s.loc
}

func loadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Validate checks the subscription and returns *ValidationError on the first problem.
// Empty keyword and channel sets are allowed only for inactive subscriptions.
func (s *Subscription) Validate() error {
	if s.OwnerID == "" {
		return &ValidationError{Field: "owner", Reason: "is required"}
	}
	if s.IsActive && len(s.Keywords) == 0 {
		return &ValidationError{Field: "keywords", Reason: "must not be empty for active subscription"}
	}
	if len(s.Keywords) > MaxKeywords {
		return &ValidationError{Field: "keywords", Reason: fmt.Sprintf("at most %d allowed, got %d", MaxKeywords, len(s.Keywords))}
	}
	for _, k := range s.Keywords {
		if strings.TrimSpace(k) == "" {
			return &ValidationError{Field: "keywords", Reason: "blank keyword"}
		}
	}
	for _, k := range s.ExcludeKeywords {
		if strings.TrimSpace(k) == "" {
			return &ValidationError{Field: "exclude_keywords", Reason: "blank keyword"}
		}
	}

	if s.IsActive && len(s.Channels) == 0 {
		return &ValidationError{Field: "channels", Reason: "must not be empty for active subscription"}
	}
	seen := make(map[Channel]bool, len(s.Channels))
	for _, ch := range s.Channels {
		if !ch.Valid() {
			return &ValidationError{Field: "channels", Reason: fmt.Sprintf("unknown channel %q", ch)}
		}
		if seen[ch] {
			return &ValidationError{Field: "channels", Reason: fmt.Sprintf("duplicate channel %q", ch)}
		}
		seen[ch] = true
	}

	if s.MinLikes < 0 || s.MinRetweets < 0 || s.MinReplies < 0 {
		return &ValidationError{Field: "thresholds", Reason: "must be non-negative"}
	}
	if !validMode(s.MediaMode) {
		return &ValidationError{Field: "media_mode", Reason: fmt.Sprintf("unknown mode %q", s.MediaMode)}
	}
	if !validMode(s.LinkMode) {
		return &ValidationError{Field: "link_mode", Reason: fmt.Sprintf("unknown mode %q", s.LinkMode)}
	}

	switch s.Frequency.Kind {
	case FrequencyRealtime, FrequencyHourly, FrequencyDaily:
	case FrequencyInterval:
		if s.Frequency.Interval <= 0 {
			return &ValidationError{Field: "frequency", Reason: "interval must be positive"}
		}
	default:
		return &ValidationError{Field: "frequency", Reason: fmt.Sprintf("unknown kind %q", s.Frequency.Kind)}
	}

	if s.ActiveHours.Start < 0 || s.ActiveHours.Start > 23 || s.ActiveHours.End < 0 || s.ActiveHours.End > 23 {
		return &ValidationError{Field: "active_hours", Reason: "hours must be within 0-23"}
	}
	s.loc = time.UTC
	if s.Timezone != "" {
		loc, err := time.LoadLocation(s.Timezone)
		if err != nil {
			s.loc = nil
			return &ValidationError{Field: "timezone", Reason: err.Error()}
		}
		s.loc = loc
	}
	return nil
}

// empty mode is treated as "any"
func validMode(m AttachmentMode) bool {
	switch m {
	case "", AttachmentAny, AttachmentRequired, AttachmentExcluded:
		return true
	}
	return false
}
