package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hsboy89/NewStep/internal/domain"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <item>
      <title>Direct story</title>
      <link>https://example.com/direct</link>
      <description>From the raw feed.</description>
      <pubDate>Mon, 22 Dec 2025 15:00:00 GMT</pubDate>
      <enclosure url="https://img.example.com/direct.jpg" type="image/jpeg" length="1"/>
    </item>
  </channel>
</rss>`

func TestFetchViaProxy(t *testing.T) {
	t.Parallel()

	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "https://example.com/feed", r.URL.Query().Get("rss_url"))
		json.NewEncoder(w).Encode(map[string]any{
			"status": "ok",
			"items": []domain.FeedItem{
				{Title: "Proxied story", PubDate: "2025-12-22 15:00:00"},
			},
		})
	}))
	defer proxy.Close()

	c := NewClient(proxy.URL, time.Second, nil)

	items, err := c.Fetch(context.Background(), "https://example.com/feed")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Proxied story", items[0].Title)
}

func TestFetchFallsBackToDirect(t *testing.T) {
	t.Parallel()

	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer proxy.Close()

	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleRSS))
	}))
	defer origin.Close()

	c := NewClient(proxy.URL, time.Second, nil)

	items, err := c.Fetch(context.Background(), origin.URL)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Direct story", items[0].Title)
	assert.Equal(t, "https://img.example.com/direct.jpg", items[0].Enclosure.Link)
	assert.NotEmpty(t, items[0].PubDate)
}

func TestFetchProxyBadStatusFallsBack(t *testing.T) {
	t.Parallel()

	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": "error"})
	}))
	defer proxy.Close()

	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(sampleRSS))
	}))
	defer origin.Close()

	c := NewClient(proxy.URL, time.Second, nil)

	items, err := c.Fetch(context.Background(), origin.URL)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestFetchBothPathsFail(t *testing.T) {
	t.Parallel()

	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer proxy.Close()

	// The feed URL refuses connections once its server is closed.
	origin := httptest.NewServer(http.NotFoundHandler())
	feedURL := origin.URL
	origin.Close()

	c := NewClient(proxy.URL, time.Second, nil)

	_, err := c.Fetch(context.Background(), feedURL)
	require.Error(t, err)
}
