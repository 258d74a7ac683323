// Package source turns RSS/Atom feeds into items for the pipeline.
package source

import (
	"context"
	"crypto/sha1" //nolint:gosec // used only to derive a stable id
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/umputun/pushscope/pkg/domain"
	"github.com/umputun/pushscope/pkg/render"
)

// FeedSource fetches a feed and maps its entries to items
type FeedSource struct {
	client    *http.Client
	userAgent string
	renderer  *render.Renderer
}

// NewFeedSource creates a feed source
func NewFeedSource(timeout time.Duration, userAgent string) *FeedSource {
	return &FeedSource{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgent: userAgent,
		renderer:  render.New(),
	}
}

// Fetch retrieves the feed from url and returns its items, newest first as in the feed
func (s *FeedSource) Fetch(ctx context.Context, url string) ([]domain.Item, error) {
	body, err := s.fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer body.Close()

	feed, err := gofeed.NewParser().Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return s.Items(feed, time.Now()), nil
}

// Items converts parsed feed entries, now is used for entries without dates
func (s *FeedSource) Items(feed *gofeed.Feed, now time.Time) []domain.Item {
	res := make([]domain.Item, 0, len(feed.Items))
	for _, fi := range feed.Items {
		text := s.renderer.Text(strings.TrimSpace(fi.Title + " " + fi.Description))
		if text == "" {
			text = s.renderer.Text(fi.Content)
		}

		item := domain.Item{
			ExternalID: externalID(feed, fi),
			Text:       text,
			URL:        fi.Link,
			Lang:       feed.Language,
			HasMedia:   len(fi.Enclosures) > 0 || fi.Image != nil,
			HasLinks:   strings.Contains(fi.Description+fi.Content, "http://") || strings.Contains(fi.Description+fi.Content, "https://"),
			CreatedAt:  now,
			IngestedAt: now,
		}
		if fi.Author != nil {
			item.Author.Name = fi.Author.Name
		}
		switch {
		case fi.PublishedParsed != nil:
			item.CreatedAt = *fi.PublishedParsed
		case fi.UpdatedParsed != nil:
			item.CreatedAt = *fi.UpdatedParsed
		}
		res = append(res, item)
	}
	return res
}

// externalID prefers guid, then link, then a hash of feed and entry titles
func externalID(feed *gofeed.Feed, fi *gofeed.Item) string {
	if fi.GUID != "" {
		return fi.GUID
	}
	if fi.Link != "" {
		return fi.Link
	}
	h := sha1.Sum([]byte(feed.Title + "\x00" + fi.Title)) //nolint:gosec // not a security hash
	return hex.EncodeToString(h[:])
}

func (s *FeedSource) fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch URL: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return resp.Body, nil
}
