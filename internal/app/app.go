package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hsboy89/NewStep/internal/config"
	"github.com/hsboy89/NewStep/internal/infrastructure/dictionary"
	"github.com/hsboy89/NewStep/internal/infrastructure/feed"
	"github.com/hsboy89/NewStep/internal/infrastructure/scheduler"
	"github.com/hsboy89/NewStep/internal/infrastructure/storage"
	"github.com/hsboy89/NewStep/internal/infrastructure/telegram"
	"github.com/hsboy89/NewStep/internal/infrastructure/translate"
	"github.com/hsboy89/NewStep/internal/logging"
	"github.com/hsboy89/NewStep/internal/ports"
	"github.com/hsboy89/NewStep/internal/server"
	"github.com/hsboy89/NewStep/internal/store"
	"github.com/hsboy89/NewStep/internal/usecase"
)

const shutdownTimeout = 5 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	snapshots *storage.SnapshotStore
	news      *store.NewsStore
	voca      *store.VocaStore
	refresher *usecase.Refresher
	scheduler ports.Scheduler
	server    *http.Server
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	snapshots, err := storage.New(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}

	news := store.NewNewsStore(snapshots, cfg.Cache.TTL(), baseLogger.With("component", "store.news"))
	voca := store.NewVocaStore(snapshots, baseLogger.With("component", "store.voca"))

	fetcher := feed.NewClient(cfg.Aggregator.Endpoint, cfg.Aggregator.Timeout(), baseLogger.With("component", "feed"))
	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Fetcher: fetcher,
		Feeds:   cfg.Feeds,
		Logger:  baseLogger.With("component", "pipeline"),
	})

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	}

	refresher := usecase.NewRefresher(usecase.RefresherDeps{
		Pipeline: pipeline,
		Store:    news,
		Notifier: notifier,
		Logger:   baseLogger.With("component", "refresher"),
	})

	api := server.New(server.Deps{
		News:       news,
		Voca:       voca,
		Refresher:  refresher,
		Dictionary: dictionary.NewClient(cfg.Dictionary.Endpoint, baseLogger.With("component", "dictionary")),
		Translator: translate.NewClient(cfg.Translate.Endpoint, cfg.Translate.AuthScheme, cfg.Translate.APIKey),
		Logger:     baseLogger.With("component", "server"),
	})

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		snapshots: snapshots,
		news:      news,
		voca:      voca,
		refresher: refresher,
		scheduler: scheduler.NewIntervalScheduler(cfg.Scheduler.CheckInterval()),
		server: &http.Server{
			Addr:    cfg.Server.Addr,
			Handler: api.Router(),
		},
	}, nil
}

// Run restores persisted state, performs the initial load, starts the
// periodic check, and serves the API until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if err := a.news.Restore(ctx); err != nil {
		a.logger.Warn("restore news snapshot", "error", err)
	}
	if err := a.voca.Restore(ctx); err != nil {
		a.logger.Warn("restore voca snapshot", "error", err)
	}

	a.refresher.LoadInitial(ctx)

	if err := a.scheduler.Start(ctx, func(time.Time) {
		a.refresher.CheckForNew(ctx)
	}); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("api listening", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return a.shutdown(nil)
	case err := <-errCh:
		return a.shutdown(err)
	}
}

func (a *Application) shutdown(cause error) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.scheduler.Stop(ctx); err != nil {
		a.logger.Warn("stop scheduler", "error", err)
	}
	if err := a.server.Shutdown(ctx); err != nil && cause == nil {
		cause = err
	}
	if err := a.snapshots.Close(); err != nil {
		a.logger.Warn("close snapshot store", "error", err)
	}
	return cause
}
