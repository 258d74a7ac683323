// Package render builds bounded delivery content from items.
package render

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"github.com/umputun/pushscope/pkg/domain"
)

// Renderer strips markup from item text and fits it into content limits.
// Safe for concurrent use.
type Renderer struct {
	policy *bluemonday.Policy
}

// New makes a renderer with a strict (text only) sanitizer
func New() *Renderer {
	return &Renderer{policy: bluemonday.StrictPolicy()}
}

// Content renders item for a matched subscription
func (r *Renderer) Content(item *domain.Item, sub *domain.Subscription, match domain.Match) domain.Content {
	text := r.Text(item.Text)

	title := sub.Name
	if item.Author.Name != "" {
		title = fmt.Sprintf("%s: %s", sub.Name, item.Author.Name)
	}

	summary := text
	if len(match.MatchedKeywords) > 0 {
		summary = fmt.Sprintf("[%s] %s", strings.Join(match.MatchedKeywords, ", "), text)
	}

	url := item.URL
	if utf8.RuneCountInString(url) > domain.MaxURLLen {
		url = "" // a cut url is useless
	}

	return domain.Content{
		Title:   Truncate(title, domain.MaxTitleLen),
		Body:    Truncate(text, domain.MaxBodyLen),
		Summary: Truncate(summary, domain.MaxSummaryLen),
		URL:     url,
	}
}

// Text removes html tags and normalizes whitespace
func (r *Renderer) Text(s string) string {
	clean := html.UnescapeString(r.policy.Sanitize(s))
	return strings.Join(strings.Fields(clean), " ")
}

// Truncate cuts s to at most limit runes, marking the cut with an ellipsis
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-1]) + "…"
}
