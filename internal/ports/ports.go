package ports

import (
	"context"
	"time"

	"github.com/hsboy89/NewStep/internal/domain"
)

// FeedFetcher pulls raw items for a single upstream feed URL.
type FeedFetcher interface {
	Fetch(ctx context.Context, feedURL string) ([]domain.FeedItem, error)
}

// SnapshotStore persists named JSON snapshots across restarts. Load reports
// whether a snapshot with that name existed.
type SnapshotStore interface {
	Load(ctx context.Context, name string, v any) (bool, error)
	Save(ctx context.Context, name string, v any) error
	Close() error
}

// Dictionary resolves a word to its definition; nil without error means the
// word was not found.
type Dictionary interface {
	Lookup(ctx context.Context, word string) (*domain.Definition, error)
}

// Translator forwards a translation request to the upstream API with the
// server-held credential and returns the raw JSON body.
type Translator interface {
	Translate(ctx context.Context, query, srcLang, targetLang string) ([]byte, error)
}

// Notifier announces newly discovered articles to an outbound channel.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// Scheduler controls when the periodic check executes.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
