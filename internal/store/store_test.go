package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hsboy89/NewStep/internal/domain"
	"github.com/hsboy89/NewStep/internal/infrastructure/storage"
)

func sampleArticles() []domain.Article {
	return []domain.Article{
		{ID: "1-a-0", Title: "Match report", Level: domain.Level1, Category: domain.CategorySport},
		{ID: "2-b-0", Title: "Lab result", Level: domain.Level2, Category: domain.CategoryScience},
		{ID: "3-c-0", Title: "Derby preview", Level: domain.Level3, Category: domain.CategorySport},
	}
}

func TestFilteredArticlesDefaults(t *testing.T) {
	t.Parallel()

	s := NewNewsStore(nil, 0, nil)
	s.SetArticles(context.Background(), sampleArticles())

	assert.Len(t, s.FilteredArticles(), 3, "all/all passes everything")
}

func TestFilteredArticlesByLevel(t *testing.T) {
	t.Parallel()

	s := NewNewsStore(nil, 0, nil)
	s.SetArticles(context.Background(), sampleArticles())
	s.SetSelectedLevel(domain.Level2)

	got := s.FilteredArticles()
	require.Len(t, got, 1)
	assert.Equal(t, "2-b-0", got[0].ID)
}

func TestFilteredArticlesByLevelAndCategory(t *testing.T) {
	t.Parallel()

	s := NewNewsStore(nil, 0, nil)
	s.SetArticles(context.Background(), sampleArticles())
	s.SetSelectedLevel(domain.Level3)
	s.SetSelectedCategory(domain.CategorySport)

	got := s.FilteredArticles()
	require.Len(t, got, 1)
	assert.Equal(t, "3-c-0", got[0].ID)
}

func TestArticlesReturnsCopy(t *testing.T) {
	t.Parallel()

	s := NewNewsStore(nil, 0, nil)
	s.SetArticles(context.Background(), sampleArticles())

	got := s.Articles()
	got[0].Title = "mutated"

	fresh := s.Articles()
	assert.Equal(t, "Match report", fresh[0].Title)
}

func TestArticleByID(t *testing.T) {
	t.Parallel()

	s := NewNewsStore(nil, 0, nil)
	s.SetArticles(context.Background(), sampleArticles())

	a, ok := s.ArticleByID("2-b-0")
	require.True(t, ok)
	assert.Equal(t, "Lab result", a.Title)

	_, ok = s.ArticleByID("missing")
	assert.False(t, ok)
}

func TestIsCacheValidBoundary(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	s := NewNewsStore(nil, time.Hour, nil)
	s.SetLastCheckedTime(context.Background(), base)

	s.now = func() time.Time { return base.Add(59*time.Minute + 59*time.Second) }
	assert.True(t, s.IsCacheValid(), "just inside the window")

	s.now = func() time.Time { return base.Add(60*time.Minute + 1*time.Second) }
	assert.False(t, s.IsCacheValid(), "just past the window")
}

func TestIsCacheValidBeforeFirstFetch(t *testing.T) {
	t.Parallel()

	s := NewNewsStore(nil, time.Hour, nil)
	assert.False(t, s.IsCacheValid())

	_, ok := s.LastCheckedTime()
	assert.False(t, ok)
}

func TestSessionStateNotPersisted(t *testing.T) {
	t.Parallel()

	s := NewNewsStore(nil, 0, nil)

	s.SetLoading(true)
	assert.True(t, s.Loading())
	s.SetLoading(false)
	assert.False(t, s.Loading())

	s.SetError("boom")
	assert.Equal(t, "boom", s.Err())
	s.SetError("")
	assert.Empty(t, s.Err())
}

func TestNewsStorePersistRoundtrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "snapshots.db")
	snapshots, err := storage.New(path)
	require.NoError(t, err)
	defer snapshots.Close()

	checked := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	first := NewNewsStore(snapshots, 0, nil)
	first.SetArticles(ctx, sampleArticles())
	first.SetLastCheckedTime(ctx, checked)

	second := NewNewsStore(snapshots, 0, nil)
	require.NoError(t, second.Restore(ctx))

	assert.Len(t, second.Articles(), 3)
	ts, ok := second.LastCheckedTime()
	require.True(t, ok)
	assert.True(t, ts.Equal(checked))

	// Filters are session-only and come back at their defaults.
	assert.Equal(t, domain.LevelAll, second.SelectedLevel())
	assert.Equal(t, "all", second.SelectedCategory())
}

func TestNewsStoreRestoreEmpty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "snapshots.db")
	snapshots, err := storage.New(path)
	require.NoError(t, err)
	defer snapshots.Close()

	s := NewNewsStore(snapshots, 0, nil)
	require.NoError(t, s.Restore(context.Background()))
	assert.Empty(t, s.Articles())
}
