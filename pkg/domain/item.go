package domain

import (
	"time"
	"unicode/utf8"
)

// Item represents one ingested content unit, e.g. a short social post.
// Everything except Score, ScoredAt and ProcessedAt is immutable after ingestion.
type Item struct {
	ID         int64
	ExternalID string
	Text       string
	URL        string
	Author     Author
	Engagement Engagement
	Lang       string
	HasMedia   bool
	HasLinks   bool
	CreatedAt  time.Time
	IngestedAt time.Time

	// recomputable from the fields above plus current time
	Score    float64
	ScoredAt *time.Time

	// set once the item has been matched and its attempts created, nil until then
	ProcessedAt *time.Time
}

// Author describes the influence of an item's author
type Author struct {
	Name      string
	Followers int64
	Verified  bool
}

// Engagement holds raw engagement counters of an item
type Engagement struct {
	Likes    int64
	Retweets int64
	Replies  int64
	Quotes   int64
}

// Total returns the sum of all raw engagement counters
func (e Engagement) Total() int64 {
	return e.Likes + e.Retweets + e.Replies + e.Quotes
}

// TextLength returns item text length in runes
func (i *Item) TextLength() int {
	return utf8.RuneCountInString(i.Text)
}

// Validate checks structural validity of an item
func (i *Item) Validate() error {
	if i.ExternalID == "" {
		return &ValidationError{Field: "external_id", Reason: "is required"}
	}
	if i.CreatedAt.IsZero() {
		return &ValidationError{Field: "created_at", Reason: "is required"}
	}
	return nil
}
