package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/hsboy89/NewStep/internal/domain"
	"github.com/hsboy89/NewStep/internal/ports"
	"github.com/hsboy89/NewStep/internal/store"
)

// loadErrorMessage is the generic retry-able message surfaced to readers
// when a full fetch fails.
const loadErrorMessage = "failed to load news, please try again"

// ArticleFetcher is the ingestion contract the refresher drives; satisfied
// by Pipeline.
type ArticleFetcher interface {
	FetchArticles(ctx context.Context, level string) ([]domain.Article, error)
}

// RefresherDeps wires the refresh control loop.
type RefresherDeps struct {
	Pipeline ArticleFetcher
	Store    *store.NewsStore
	Notifier ports.Notifier
	Logger   *slog.Logger
}

// Refresher drives the article store through its three transitions: initial
// load, TTL-gated periodic check, and user-triggered refresh. An in-flight
// latch keeps overlapping invocations from double-fetching.
type Refresher struct {
	pipeline ArticleFetcher
	store    *store.NewsStore
	notifier ports.Notifier
	logger   *slog.Logger
	inFlight atomic.Bool
	now      func() time.Time
}

// NewRefresher constructs the refresh component.
func NewRefresher(deps RefresherDeps) *Refresher {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Refresher{
		pipeline: deps.Pipeline,
		store:    deps.Store,
		notifier: deps.Notifier,
		logger:   deps.Logger,
		now:      time.Now,
	}
}

// LoadInitial runs the application-start transition: fetch everything and
// replace the store contents. A failure records the store error and leaves
// previously persisted articles visible.
func (r *Refresher) LoadInitial(ctx context.Context) {
	r.load(ctx)
}

// Refresh is the user-triggered transition. It bypasses the cache TTL and
// replaces the store contents wholesale.
func (r *Refresher) Refresh(ctx context.Context) {
	r.load(ctx)
}

func (r *Refresher) load(ctx context.Context) {
	if !r.inFlight.CompareAndSwap(false, true) {
		r.logger.Debug("refresh already in flight, skipping")
		return
	}
	defer r.inFlight.Store(false)

	r.store.SetLoading(true)
	r.store.SetError("")
	defer r.store.SetLoading(false)

	articles, err := r.pipeline.FetchArticles(ctx, domain.LevelAll)
	if err != nil {
		r.logger.Error("load failed", "error", err)
		r.store.SetError(loadErrorMessage)
		return
	}

	r.store.SetArticles(ctx, articles)
	r.store.SetLastCheckedTime(ctx, r.now())
	r.logger.Info("articles loaded", "count", len(articles))
}

// CheckForNew runs on the periodic tick. Inside the cache TTL it performs no
// network call at all. Otherwise newly discovered articles are prepended
// ahead of the known list and the check time advances either way. Failures
// are logged only; this path never surfaces errors to the reader.
func (r *Refresher) CheckForNew(ctx context.Context) {
	if r.store.IsCacheValid() {
		r.logger.Debug("cache still valid, skipping check")
		return
	}

	if !r.inFlight.CompareAndSwap(false, true) {
		r.logger.Debug("refresh already in flight, skipping check")
		return
	}
	defer r.inFlight.Store(false)

	fetched, err := r.pipeline.FetchArticles(ctx, domain.LevelAll)
	if err != nil {
		r.logger.Warn("periodic check failed", "error", err)
		return
	}

	current := r.store.Articles()
	known := make(map[string]struct{}, len(current))
	for _, a := range current {
		known[a.ID] = struct{}{}
	}

	var fresh []domain.Article
	for _, a := range fetched {
		if _, ok := known[a.ID]; ok {
			continue
		}
		known[a.ID] = struct{}{}
		fresh = append(fresh, a)
	}

	if len(fresh) > 0 {
		// Newest-discovered-first: fresh articles go ahead of the
		// existing list without a global re-sort.
		r.store.SetArticles(ctx, append(fresh, current...))
		r.notify(ctx, len(fresh))
	}
	r.store.SetLastCheckedTime(ctx, r.now())
	r.logger.Info("periodic check done", "new_articles", len(fresh))
}

func (r *Refresher) notify(ctx context.Context, count int) {
	if r.notifier == nil {
		return
	}
	message := fmt.Sprintf("%d new articles available", count)
	if err := r.notifier.Notify(ctx, message); err != nil {
		r.logger.Warn("notify failed", "error", err)
	}
}
