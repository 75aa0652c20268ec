// Package feed fetches raw items for one upstream feed, preferring an
// rss2json-style aggregation proxy and falling back to parsing the feed
// directly when the proxy is unusable.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/hsboy89/NewStep/internal/domain"
	"github.com/hsboy89/NewStep/internal/ports"
)

const defaultTimeout = 10 * time.Second

// Client implements ports.FeedFetcher against the aggregation proxy.
type Client struct {
	endpoint string
	client   *http.Client
	parser   *gofeed.Parser
	logger   *slog.Logger
}

var _ ports.FeedFetcher = (*Client)(nil)

// NewClient wires the proxy endpoint and the per-request timeout. A zero
// timeout falls back to 10 seconds.
func NewClient(endpoint string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}

	return &Client{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		parser:   parser,
		logger:   logger,
	}
}

type proxyResponse struct {
	Status string            `json:"status"`
	Items  []domain.FeedItem `json:"items"`
}

// Fetch requests the feed through the aggregation proxy. When the proxy
// call fails or answers with anything but status "ok" plus items, the raw
// feed URL is parsed directly before the feed is declared failed.
func (c *Client) Fetch(ctx context.Context, feedURL string) ([]domain.FeedItem, error) {
	items, proxyErr := c.fetchProxy(ctx, feedURL)
	if proxyErr == nil {
		return items, nil
	}

	c.warn("aggregation proxy failed, parsing feed directly", "feed", feedURL, "error", proxyErr)

	items, directErr := c.fetchDirect(ctx, feedURL)
	if directErr != nil {
		return nil, errors.Join(proxyErr, directErr)
	}
	return items, nil
}

func (c *Client) fetchProxy(ctx context.Context, feedURL string) ([]domain.FeedItem, error) {
	requestURL := c.endpoint + "?rss_url=" + url.QueryEscape(feedURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request aggregator: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("aggregator returned %s", resp.Status)
	}

	var payload proxyResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode aggregator response: %w", err)
	}

	if payload.Status != "ok" || payload.Items == nil {
		return nil, fmt.Errorf("aggregator status %q", payload.Status)
	}
	return payload.Items, nil
}

func (c *Client) fetchDirect(ctx context.Context, feedURL string) ([]domain.FeedItem, error) {
	parsed, err := c.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	items := make([]domain.FeedItem, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		item := domain.FeedItem{
			Title:       entry.Title,
			Description: entry.Description,
			Content:     entry.Content,
			Link:        entry.Link,
			PubDate:     entry.Published,
		}
		if item.PubDate == "" && entry.PublishedParsed != nil {
			item.PubDate = entry.PublishedParsed.UTC().Format(time.RFC3339)
		}
		if entry.Image != nil {
			item.Thumbnail = entry.Image.URL
		}
		for _, enc := range entry.Enclosures {
			if enc != nil && enc.URL != "" {
				item.Enclosure.Link = enc.URL
				break
			}
		}
		items = append(items, item)
	}
	return items, nil
}

func (c *Client) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
