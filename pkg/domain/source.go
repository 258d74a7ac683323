package domain

import "time"

// Source is a feed polled for new items
type Source struct {
	ID          int64
	URL         string
	Title       string
	LastFetched *time.Time
	NextFetch   *time.Time
	ErrorCount  int
	LastError   string
	Enabled     bool
	CreatedAt   time.Time
}
