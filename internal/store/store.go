// Package store holds the application's shared mutable state: the known
// article set with reader filters, and the saved vocabulary. All mutation
// goes through named methods; persisted fields are written through the
// snapshot store on every change.
package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hsboy89/NewStep/internal/domain"
	"github.com/hsboy89/NewStep/internal/ports"
)

const newsSnapshot = "news"

// DefaultCacheTTL is the window during which a prior fetch is fresh enough
// to skip re-fetching.
const DefaultCacheTTL = time.Hour

// NewsStore is the process-wide article state container. Articles and the
// last successful fetch time survive restarts; filter state and request
// status are session-only.
type NewsStore struct {
	mu               sync.RWMutex
	articles         []domain.Article
	selectedLevel    string
	selectedCategory string
	lastCheckedTime  time.Time
	loading          bool
	errMsg           string

	ttl       time.Duration
	snapshots ports.SnapshotStore
	logger    *slog.Logger
	now       func() time.Time
}

type newsSnapshotData struct {
	Articles        []domain.Article `json:"articles"`
	LastCheckedTime string           `json:"lastCheckedTime"`
}

// NewNewsStore builds an empty store with both filters set to "all". A zero
// ttl falls back to DefaultCacheTTL.
func NewNewsStore(snapshots ports.SnapshotStore, ttl time.Duration, logger *slog.Logger) *NewsStore {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &NewsStore{
		selectedLevel:    domain.LevelAll,
		selectedCategory: "all",
		ttl:              ttl,
		snapshots:        snapshots,
		logger:           logger,
		now:              time.Now,
	}
}

// Restore loads the persisted snapshot written by a previous session.
func (s *NewsStore) Restore(ctx context.Context) error {
	if s.snapshots == nil {
		return nil
	}

	var data newsSnapshotData
	ok, err := s.snapshots.Load(ctx, newsSnapshot, &data)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.articles = data.Articles
	if data.LastCheckedTime != "" {
		if ts, err := time.Parse(time.RFC3339, data.LastCheckedTime); err == nil {
			s.lastCheckedTime = ts
		}
	}
	return nil
}

// Articles returns a copy of the full known article list, store order.
func (s *NewsStore) Articles() []domain.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Article, len(s.articles))
	copy(out, s.articles)
	return out
}

// FilteredArticles projects the article list through the active level and
// category filters without mutating anything.
func (s *NewsStore) FilteredArticles() []domain.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Article, 0, len(s.articles))
	for _, a := range s.articles {
		levelMatch := s.selectedLevel == domain.LevelAll || a.Level == s.selectedLevel
		categoryMatch := s.selectedCategory == "all" || a.Category == s.selectedCategory
		if levelMatch && categoryMatch {
			out = append(out, a)
		}
	}
	return out
}

// ArticleByID finds one article in the known set.
func (s *NewsStore) ArticleByID(id string) (domain.Article, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.articles {
		if a.ID == id {
			return a, true
		}
	}
	return domain.Article{}, false
}

// IsCacheValid reports whether the last successful fetch is still within the
// cache TTL.
func (s *NewsStore) IsCacheValid() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastCheckedTime.IsZero() {
		return false
	}
	return s.now().Sub(s.lastCheckedTime) < s.ttl
}

// LastCheckedTime returns the last successful full-fetch time; ok=false
// before the first fetch of any session.
func (s *NewsStore) LastCheckedTime() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastCheckedTime, !s.lastCheckedTime.IsZero()
}

// Loading reports whether a user-visible fetch is running.
func (s *NewsStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the current store-level error message, empty when healthy.
func (s *NewsStore) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// SelectedLevel returns the active level filter.
func (s *NewsStore) SelectedLevel() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedLevel
}

// SelectedCategory returns the active category filter.
func (s *NewsStore) SelectedCategory() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedCategory
}

// SetArticles replaces the article list wholesale and persists it.
func (s *NewsStore) SetArticles(ctx context.Context, articles []domain.Article) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.articles = articles
	s.persistLocked(ctx)
}

// SetLastCheckedTime records the completion of a successful full fetch or
// periodic check and persists it.
func (s *NewsStore) SetLastCheckedTime(ctx context.Context, ts time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastCheckedTime = ts
	s.persistLocked(ctx)
}

// SetLoading flags a user-visible fetch in progress. Session-only.
func (s *NewsStore) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
}

// SetError records the store-level error message; empty clears it.
// Session-only.
func (s *NewsStore) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = msg
}

// SetSelectedLevel updates the level filter. Presentation-triggered.
func (s *NewsStore) SetSelectedLevel(level string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedLevel = level
}

// SetSelectedCategory updates the category filter. Presentation-triggered.
func (s *NewsStore) SetSelectedCategory(category string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedCategory = category
}

// persistLocked writes the durable fields through the snapshot store. A
// write failure is logged and does not undo the in-memory mutation.
func (s *NewsStore) persistLocked(ctx context.Context) {
	if s.snapshots == nil {
		return
	}

	data := newsSnapshotData{Articles: s.articles}
	if !s.lastCheckedTime.IsZero() {
		data.LastCheckedTime = s.lastCheckedTime.UTC().Format(time.RFC3339)
	}

	if err := s.snapshots.Save(ctx, newsSnapshot, data); err != nil && s.logger != nil {
		s.logger.Error("persist news snapshot", "error", err)
	}
}
