// Package filter evaluates a single subscription's criteria against a single item.
// All functions are pure predicates, safe for concurrent use.
package filter

import (
	"strings"

	"github.com/umputun/pushscope/pkg/domain"
)

// MatchesKeywords reports whether item text contains at least one required keyword and
// none of the exclude keywords. Matching is case-insensitive substring, not token based,
// so "ai" also hits "#AIart" and "said".
func MatchesKeywords(item *domain.Item, sub *domain.Subscription) bool {
	text := strings.ToLower(item.Text)
	if containsAny(text, sub.ExcludeKeywords) {
		return false
	}
	return containsAny(text, sub.Keywords)
}

// MatchedKeywords returns required keywords found in item text, in subscription order.
// Empty result if any exclude keyword is present.
func MatchedKeywords(item *domain.Item, sub *domain.Subscription) []string {
	text := strings.ToLower(item.Text)
	if containsAny(text, sub.ExcludeKeywords) {
		return nil
	}
	var res []string
	for _, k := range sub.Keywords {
		if kw := strings.ToLower(strings.TrimSpace(k)); kw != "" && strings.Contains(text, kw) {
			res = append(res, k)
		}
	}
	return res
}

// MatchesFilters checks engagement minimums, language and media/link modes.
// Numeric thresholds go first as the cheapest clauses.
func MatchesFilters(item *domain.Item, sub *domain.Subscription) bool {
	eng := item.Engagement
	if eng.Likes < sub.MinLikes || eng.Retweets < sub.MinRetweets || eng.Replies < sub.MinReplies {
		return false
	}
	if len(sub.Languages) > 0 && !languageAllowed(item.Lang, sub.Languages) {
		return false
	}
	if !attachmentAllowed(item.HasMedia, sub.MediaMode) {
		return false
	}
	return attachmentAllowed(item.HasLinks, sub.LinkMode)
}

func containsAny(lowerText string, keywords []string) bool {
	for _, k := range keywords {
		kw := strings.ToLower(strings.TrimSpace(k))
		if kw == "" {
			continue
		}
		if strings.Contains(lowerText, kw) {
			return true
		}
	}
	return false
}

func languageAllowed(lang string, allowed []string) bool {
	for _, l := range allowed {
		if strings.EqualFold(l, lang) {
			return true
		}
	}
	return false
}

func attachmentAllowed(has bool, mode domain.AttachmentMode) bool {
	switch mode {
	case domain.AttachmentRequired:
		return has
	case domain.AttachmentExcluded:
		return !has
	default:
		return true
	}
}
