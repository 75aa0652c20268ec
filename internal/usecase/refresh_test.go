package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hsboy89/NewStep/internal/domain"
	"github.com/hsboy89/NewStep/internal/store"
)

// fakeSource scripts FetchArticles results and counts invocations.
type fakeSource struct {
	mu      sync.Mutex
	batches [][]domain.Article
	err     error
	calls   int32
	started chan struct{}
	proceed chan struct{}
}

func (f *fakeSource) FetchArticles(_ context.Context, _ string) ([]domain.Article, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.proceed != nil {
		<-f.proceed
	}
	if f.err != nil {
		return nil, f.err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.batches) == 0 {
		return nil, nil
	}
	batch := f.batches[0]
	if len(f.batches) > 1 {
		f.batches = f.batches[1:]
	}
	return batch, nil
}

func (f *fakeSource) callCount() int32 {
	return atomic.LoadInt32(&f.calls)
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakeNotifier) Notify(_ context.Context, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
	return nil
}

func article(id, title string) domain.Article {
	return domain.Article{ID: id, Title: title, Level: domain.Level1, Category: domain.CategoryGeneral}
}

func TestLoadInitialSuccess(t *testing.T) {
	t.Parallel()

	news := store.NewNewsStore(nil, 0, nil)
	source := &fakeSource{batches: [][]domain.Article{{article("a", "A"), article("b", "B")}}}
	r := NewRefresher(RefresherDeps{Pipeline: source, Store: news})

	r.LoadInitial(context.Background())

	assert.Len(t, news.Articles(), 2)
	assert.Empty(t, news.Err())
	assert.False(t, news.Loading())
	_, ok := news.LastCheckedTime()
	assert.True(t, ok)
}

func TestLoadFailureKeepsExistingArticles(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	news := store.NewNewsStore(nil, 0, nil)
	news.SetArticles(ctx, []domain.Article{article("old", "Old")})

	source := &fakeSource{err: errors.New("all feeds down")}
	r := NewRefresher(RefresherDeps{Pipeline: source, Store: news})

	r.LoadInitial(ctx)

	assert.Equal(t, loadErrorMessage, news.Err())
	assert.Len(t, news.Articles(), 1, "previous articles stay visible")
	assert.False(t, news.Loading())
	_, ok := news.LastCheckedTime()
	assert.False(t, ok, "failed load must not advance the check time")
}

func TestRefreshClearsPreviousError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	news := store.NewNewsStore(nil, 0, nil)
	news.SetError("stale failure")

	source := &fakeSource{batches: [][]domain.Article{{article("a", "A")}}}
	r := NewRefresher(RefresherDeps{Pipeline: source, Store: news})

	r.Refresh(ctx)

	assert.Empty(t, news.Err())
	assert.Len(t, news.Articles(), 1)
}

func TestCheckForNewSkipsInsideTTL(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	news := store.NewNewsStore(nil, time.Hour, nil)
	news.SetLastCheckedTime(ctx, time.Now())

	source := &fakeSource{}
	r := NewRefresher(RefresherDeps{Pipeline: source, Store: news})

	r.CheckForNew(ctx)

	assert.Zero(t, source.callCount(), "valid cache means no network call")
}

func TestCheckForNewPrependsAndDeduplicates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	news := store.NewNewsStore(nil, time.Hour, nil)
	news.SetArticles(ctx, []domain.Article{article("known-1", "Known"), article("known-2", "Also known")})
	news.SetLastCheckedTime(ctx, time.Now().Add(-2*time.Hour))

	source := &fakeSource{batches: [][]domain.Article{{
		article("fresh-1", "Fresh"),
		article("known-1", "Known"),
		article("fresh-2", "Also fresh"),
	}}}
	notifier := &fakeNotifier{}
	r := NewRefresher(RefresherDeps{Pipeline: source, Store: news, Notifier: notifier})

	r.CheckForNew(ctx)

	got := news.Articles()
	require.Len(t, got, 4)
	assert.Equal(t, "fresh-1", got[0].ID)
	assert.Equal(t, "fresh-2", got[1].ID)
	assert.Equal(t, "known-1", got[2].ID)
	assert.Equal(t, "known-2", got[3].ID)

	require.Len(t, notifier.messages, 1)
	assert.Equal(t, "2 new articles available", notifier.messages[0])
}

func TestCheckForNewAdvancesTimeWithoutNewArticles(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	stale := time.Now().Add(-2 * time.Hour)
	news := store.NewNewsStore(nil, time.Hour, nil)
	news.SetArticles(ctx, []domain.Article{article("known-1", "Known")})
	news.SetLastCheckedTime(ctx, stale)

	source := &fakeSource{batches: [][]domain.Article{{article("known-1", "Known")}}}
	notifier := &fakeNotifier{}
	r := NewRefresher(RefresherDeps{Pipeline: source, Store: news, Notifier: notifier})

	r.CheckForNew(ctx)

	assert.Len(t, news.Articles(), 1)
	ts, ok := news.LastCheckedTime()
	require.True(t, ok)
	assert.True(t, ts.After(stale), "check time advances even with nothing new")
	assert.Empty(t, notifier.messages, "no notification without new articles")
}

func TestCheckForNewFailureIsSilent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	stale := time.Now().Add(-2 * time.Hour)
	news := store.NewNewsStore(nil, time.Hour, nil)
	news.SetArticles(ctx, []domain.Article{article("known-1", "Known")})
	news.SetLastCheckedTime(ctx, stale)

	source := &fakeSource{err: errors.New("all feeds down")}
	r := NewRefresher(RefresherDeps{Pipeline: source, Store: news})

	r.CheckForNew(ctx)

	assert.Empty(t, news.Err(), "periodic failures never surface to readers")
	assert.Len(t, news.Articles(), 1)
	ts, _ := news.LastCheckedTime()
	assert.True(t, ts.Equal(stale), "failed check must not advance the check time")
}

func TestLoadInFlightLatch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	news := store.NewNewsStore(nil, 0, nil)
	source := &fakeSource{
		batches: [][]domain.Article{{article("a", "A")}},
		started: make(chan struct{}, 1),
		proceed: make(chan struct{}),
	}
	r := NewRefresher(RefresherDeps{Pipeline: source, Store: news})

	done := make(chan struct{})
	go func() {
		r.Refresh(ctx)
		close(done)
	}()

	<-source.started

	// A second trigger while the first fetch is blocked must be dropped.
	r.Refresh(ctx)
	assert.Equal(t, int32(1), source.callCount())

	close(source.proceed)
	<-done

	assert.Len(t, news.Articles(), 1)
}

func TestRefreshScenarioEndToEnd(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	news := store.NewNewsStore(nil, time.Hour, nil)
	source := &fakeSource{batches: [][]domain.Article{
		{article("day-1", "Day one")},
		{article("day-2", "Day two"), article("day-1", "Day one")},
	}}
	r := NewRefresher(RefresherDeps{Pipeline: source, Store: news})

	// Startup load.
	r.LoadInitial(ctx)
	require.Len(t, news.Articles(), 1)

	// A tick inside the TTL does nothing.
	r.CheckForNew(ctx)
	assert.Equal(t, int32(1), source.callCount())

	// Past the TTL the check runs and prepends the new article.
	news.SetLastCheckedTime(ctx, time.Now().Add(-2*time.Hour))
	r.CheckForNew(ctx)

	got := news.Articles()
	require.Len(t, got, 2)
	assert.Equal(t, "day-2", got[0].ID)
	assert.Equal(t, "day-1", got[1].ID)
	assert.True(t, news.IsCacheValid())
}
