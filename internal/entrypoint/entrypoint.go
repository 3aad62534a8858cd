package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mrlokans/superbook/internal/audit"
	"github.com/mrlokans/superbook/internal/catalog"
	"github.com/mrlokans/superbook/internal/config"
	"github.com/mrlokans/superbook/internal/content"
	"github.com/mrlokans/superbook/internal/database"
	"github.com/mrlokans/superbook/internal/database/mongostore"
	"github.com/mrlokans/superbook/internal/importers"
	"github.com/mrlokans/superbook/internal/logging"
	"github.com/mrlokans/superbook/internal/scheduler"
	"github.com/mrlokans/superbook/internal/services"
	"github.com/mrlokans/superbook/internal/storage"
	"github.com/mrlokans/superbook/internal/storage/memory"
)

const closeTimeout = 10 * time.Second

// App is a configured publisher: an open store, the catalog and the pipeline
// that writes it.
type App struct {
	cfg      *config.Config
	store    storage.Store
	catalog  *catalog.Catalog
	pipeline *importers.Pipeline
	auditor  *audit.Auditor
}

// OpenStore connects the storage backend selected by cfg.Driver.
func OpenStore(ctx context.Context, cfg config.Database) (storage.Store, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		store, err := mongostore.Connect(ctx, cfg.URI, cfg.Name, cfg.ConnectTimeout)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = store.Close(ctx)
			return nil, err
		}
		return store, nil
	case config.DriverSQLite:
		return database.NewDatabase(cfg.Path)
	case config.DriverMemory:
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// New validates the configuration, loads the catalog and opens the store.
// The caller must Close the returned App.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}

	store, err := OpenStore(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Database.Driver, err)
	}

	app := &App{
		cfg:     cfg,
		store:   store,
		catalog: cat,
		pipeline: importers.NewPipeline(
			services.NewBookService(store),
			services.NewChapterService(store, store),
			content.NewFileReader(cfg.Catalog.ContentRoot),
			cfg.Publish.ImageBaseURL,
			importers.WithConcurrency(cfg.Publish.Concurrency),
		),
	}
	if cfg.Report.Dir != "" {
		app.auditor = audit.NewAuditor(cfg.Report.Dir)
	}

	logging.Info().
		Str("driver", cfg.Database.Driver).
		Int("books", len(cat.Books)).
		Int("chapters", cat.ChapterTotal()).
		Msg("publisher ready")

	return app, nil
}

// Store returns the open storage handle.
func (a *App) Store() storage.Store {
	return a.store
}

// Publish runs the pipeline once over the whole catalog and saves the report
// when a report directory is configured. Per-book failures are in the report.
func (a *App) Publish(ctx context.Context) *importers.Report {
	report := a.pipeline.Run(ctx, a.catalog)

	if a.auditor != nil {
		name, err := a.auditor.SaveReport(report)
		if err != nil {
			logging.Warn().Err(err).Msg("failed to save run report")
		} else {
			logging.Info().Str("file", name).Str("dir", a.cfg.Report.Dir).Msg("run report saved")
		}
	}
	return report
}

// Close releases the store. Call it only after every Publish has returned.
func (a *App) Close(ctx context.Context) error {
	return a.store.Close(ctx)
}

// Run publishes once, or on cfg.Publish.Schedule until SIGINT/SIGTERM.
// Only initialization failures are returned; failed books are logged.
func Run(cfg *config.Config, version string) error {
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	logging.Info().Str("version", version).Msg("starting superbook")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if err := app.Close(closeCtx); err != nil {
			logging.Error().Err(err).Msg("failed to close store")
		}
	}()

	if cfg.Publish.Schedule == "" {
		app.Publish(ctx)
		return nil
	}

	return runScheduled(ctx, app, cfg.Publish.Schedule)
}

func runScheduled(ctx context.Context, app *App, schedule string) error {
	s := scheduler.NewPublishScheduler(func(ctx context.Context) error {
		return app.Publish(ctx).Err()
	})
	if err := s.Start(ctx, schedule); err != nil {
		return err
	}
	s.RunNow()

	<-ctx.Done()
	s.Stop()

	if err := context.Cause(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
