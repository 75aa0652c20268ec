// Package usecase orchestrates the article workflows: the ingestion
// pipeline that turns upstream feeds into normalized articles, and the
// refresh loop that keeps the store current under the cache TTL.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/hsboy89/NewStep/internal/config"
	"github.com/hsboy89/NewStep/internal/domain"
	"github.com/hsboy89/NewStep/internal/normalize"
	"github.com/hsboy89/NewStep/internal/ports"
)

// PipelineDeps wires the driven adapters into the ingestion pipeline.
type PipelineDeps struct {
	Fetcher ports.FeedFetcher
	Feeds   config.FeedsConfig
	Logger  *slog.Logger
}

// Pipeline implements the feed-to-article ingestion workflow.
type Pipeline struct {
	fetcher ports.FeedFetcher
	feeds   config.FeedsConfig
	logger  *slog.Logger
}

var _ ArticleFetcher = (*Pipeline)(nil)

// NewPipeline constructs the ingestion component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		fetcher: deps.Fetcher,
		feeds:   deps.Feeds,
		logger:  deps.Logger,
	}
}

// FetchArticles pulls every feed selected by the level filter, normalizes
// the returned items, and sorts them newest first. A failing feed is logged
// and skipped; its items are simply absent from the result. The error path
// is reserved for faults before per-feed isolation (a malformed filter).
func (p *Pipeline) FetchArticles(ctx context.Context, level string) ([]domain.Article, error) {
	feedURLs, err := p.resolveFeeds(level)
	if err != nil {
		return nil, err
	}

	// Feeds are fetched concurrently and joined before normalization;
	// completion order does not affect the sorted result.
	batches := make([][]domain.Article, len(feedURLs))
	var wg sync.WaitGroup
	for i, feedURL := range feedURLs {
		wg.Add(1)
		go func(slot int, feedURL string) {
			defer wg.Done()

			items, err := p.fetcher.Fetch(ctx, feedURL)
			if err != nil {
				p.warn("feed skipped", "feed", feedURL, "error", err)
				return
			}
			p.debug("feed loaded", "feed", feedURL, "items", len(items))

			articles := make([]domain.Article, 0, len(items))
			for idx, item := range items {
				articles = append(articles, normalize.Item(item, feedURL, idx))
			}
			batches[slot] = articles
		}(i, feedURL)
	}
	wg.Wait()

	var all []domain.Article
	for _, batch := range batches {
		all = append(all, batch...)
	}

	sortByRecency(all)
	p.debug("ingestion done", "total_articles", len(all))
	return all, nil
}

func (p *Pipeline) resolveFeeds(level string) ([]string, error) {
	switch level {
	case domain.LevelAll, "":
		return []string{p.feeds.Level1, p.feeds.Level2, p.feeds.Level3}, nil
	case domain.Level1:
		return []string{p.feeds.Level1}, nil
	case domain.Level2:
		return []string{p.feeds.Level2}, nil
	case domain.Level3:
		return []string{p.feeds.Level3}, nil
	}
	return nil, fmt.Errorf("unknown level filter %q", level)
}

// sortByRecency orders articles descending by best-effort parsed pubDate.
// Unparseable dates sort last; ties keep their relative order.
func sortByRecency(articles []domain.Article) {
	type keyed struct {
		article domain.Article
		ts      time.Time
	}

	keys := make([]keyed, len(articles))
	for i, a := range articles {
		ts, _ := normalize.ParseDate(a.PubDate)
		keys[i] = keyed{article: a, ts: ts}
	}

	sort.SliceStable(keys, func(i, j int) bool {
		return keys[i].ts.After(keys[j].ts)
	})

	for i, k := range keys {
		articles[i] = k.article
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
