package domain

import "time"

// Match is one subscription matched by an item
type Match struct {
	SubscriptionID  int64
	MatchedKeywords []string
	Score           float64
	// Deferred is set when the subscription's frequency policy or active window
	// postpones delivery to DeliverAt. Deferred matches still count as matches.
	Deferred  bool
	DeliverAt time.Time
}
