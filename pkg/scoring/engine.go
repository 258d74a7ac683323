// Package scoring computes time-decayed popularity scores of items.
package scoring

import (
	"math"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/pushscope/pkg/domain"
)

// Weights holds engagement weights and scoring constants
type Weights struct {
	Like    float64 `yaml:"like" json:"like" jsonschema:"description=weight of a like"`
	Retweet float64 `yaml:"retweet" json:"retweet" jsonschema:"description=weight of a retweet"`
	Reply   float64 `yaml:"reply" json:"reply" jsonschema:"description=weight of a reply"`
	Quote   float64 `yaml:"quote" json:"quote" jsonschema:"description=weight of a quote"`

	// influence multiplier is 1 + InfluenceStep*min(followers/FollowersUnit, MaxInfluenceStep)
	FollowersUnit    float64 `yaml:"followers_unit" json:"followers_unit" jsonschema:"description=followers per influence step"`
	InfluenceStep    float64 `yaml:"influence_step" json:"influence_step" jsonschema:"description=multiplier added per influence step"`
	MaxInfluenceStep float64 `yaml:"max_influence_step" json:"max_influence_step" jsonschema:"description=maximum number of influence steps"`
	VerifiedBoost    float64 `yaml:"verified_boost" json:"verified_boost" jsonschema:"description=multiplier for verified authors"`
	DecayHours       float64 `yaml:"decay_hours" json:"decay_hours" jsonschema:"description=age decay time constant in hours"`
}

// DefaultWeights are the standard scoring constants
var DefaultWeights = Weights{
	Like:             1,
	Retweet:          2,
	Reply:            1.5,
	Quote:            1.8,
	FollowersUnit:    10000,
	InfluenceStep:    0.1,
	MaxInfluenceStep: 5,
	VerifiedBoost:    1.2,
	DecayHours:       24,
}

// quality gate thresholds
const (
	minQualityEngagement = 5
	minQualityTextLen    = 20
	maxSpamScore         = 0.7
)

// Breakdown shows how each component contributed to the final score
type Breakdown struct {
	Base      float64
	Influence float64
	Verified  float64
	Decay     float64
	AgeHours  float64
	Raw       float64
	Final     float64
}

// Engine computes item scores. It is stateless and safe for concurrent use.
type Engine struct {
	w Weights
}

// NewEngine makes an engine with weights used as given. Start from DefaultWeights for partial overrides.
// Zero FollowersUnit disables the influence multiplier, zero DecayHours disables age decay.
func NewEngine(w Weights) *Engine {
	return &Engine{w: w}
}

// ComputeScore returns the rounded, non-negative score of the item at the given time
func (e *Engine) ComputeScore(item *domain.Item, now time.Time) float64 {
	return e.Breakdown(item, now).Final
}

// Breakdown computes the score with component details
func (e *Engine) Breakdown(item *domain.Item, now time.Time) Breakdown {
	eng := item.Engagement
	b := Breakdown{
		Base: e.w.Like*float64(max(eng.Likes, 0)) +
			e.w.Retweet*float64(max(eng.Retweets, 0)) +
			e.w.Reply*float64(max(eng.Replies, 0)) +
			e.w.Quote*float64(max(eng.Quotes, 0)),
		Verified: 1,
	}

	b.Influence = 1
	if e.w.FollowersUnit > 0 {
		steps := math.Min(float64(max(item.Author.Followers, 0))/e.w.FollowersUnit, e.w.MaxInfluenceStep)
		b.Influence += e.w.InfluenceStep * steps
	}
	if item.Author.Verified {
		b.Verified = e.w.VerifiedBoost
	}

	b.AgeHours = now.Sub(item.CreatedAt).Hours()
	if b.AgeHours < 0 {
		lgr.Printf("[WARN] item %s created %.2fh in the future, age clamped to 0", item.ExternalID, -b.AgeHours)
		b.AgeHours = 0
	}
	b.Decay = 1
	if e.w.DecayHours > 0 {
		b.Decay = math.Exp(-b.AgeHours / e.w.DecayHours)
	}

	b.Raw = b.Base * b.Influence * b.Verified * b.Decay
	b.Final = math.Round(b.Raw)
	return b
}

// IsHighQuality reports whether item is worth matching. spamScore is supplied by
// an external classifier, pass 0 if unknown.
func IsHighQuality(item *domain.Item, spamScore float64) bool {
	if item.Engagement.Total() < minQualityEngagement {
		return false
	}
	if item.TextLength() < minQualityTextLen {
		return false
	}
	return spamScore <= maxSpamScore
}
