// Package app provides application-level orchestration and dependency injection.
// This package wires together all components and manages the application lifecycle.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"github.com/tejashwikalptaru/encore/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/encore/internal/adapter/repository/keyvalue"
	"github.com/tejashwikalptaru/encore/internal/adapter/sink/beepsink"
	"github.com/tejashwikalptaru/encore/internal/adapter/sink/mock"
	"github.com/tejashwikalptaru/encore/internal/adapter/store/preferences"
	"github.com/tejashwikalptaru/encore/internal/adapter/store/sqlite"
	"github.com/tejashwikalptaru/encore/internal/adapter/ui/console"
	"github.com/tejashwikalptaru/encore/internal/catalog"
	"github.com/tejashwikalptaru/encore/internal/domain"
	"github.com/tejashwikalptaru/encore/internal/logger"
	"github.com/tejashwikalptaru/encore/internal/ports"
	"github.com/tejashwikalptaru/encore/internal/service"
)

// mockClockInterval is how often the mock sink advances while playing.
const mockClockInterval = 250 * time.Millisecond

// Application is the root application structure that holds all dependencies.
// It follows the Dependency Injection pattern with constructor-based injection.
//
// The Application struct is responsible for:
// - Creating and wiring all dependencies
// - Managing the application lifecycle (startup, shutdown)
// - Providing a clean entry point for main.go
type Application struct {
	// Core dependencies
	logger  *slog.Logger
	config  Config
	fyneApp fyne.App

	// Infrastructure
	eventBus   *eventbus.SyncEventBus
	sink       ports.MediaSink
	store      ports.KeyValueStore
	closeStore func() error
	catalog    *domain.Catalog

	// Services
	session *service.SessionService

	// UI
	presenter *console.Presenter

	shutdownOnce sync.Once
	shutdownErr  error
}

// NewApplication creates a new application with all dependencies wired.
// This is the main dependency injection function.
func NewApplication(ctx context.Context, config Config) (*Application, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{config: config}

	// Step 1: Create logger
	app.logger = logger.NewLogger(config.loggerConfig())
	app.logger.Info("initializing application",
		slog.String("app_id", config.AppID),
		slog.String("version", GetVersionInfo().FullString()))

	// Step 2: Build the catalog
	c, mediaRoot, err := loadCatalog(ctx, config, app.logger.With(slog.String("component", "catalog")))
	if err != nil {
		return nil, err
	}
	app.catalog = c

	// Step 3: Open the key-value store
	if err := app.openStore(); err != nil {
		return nil, err
	}

	// Step 4: Create an event bus
	app.eventBus = eventbus.NewSyncEventBus(app.logger.With(slog.String("component", "eventbus")))
	if app.logger.Enabled(ctx, slog.LevelDebug) {
		trace := app.logger.With(slog.String("component", "events"))
		app.eventBus.SubscribeAll(func(event domain.Event) {
			trace.Debug("event", slog.String("type", string(event.Type())))
		})
	}

	// Step 5: Create the media sink
	app.sink = app.newSink(mediaRoot)

	// Step 6: Create the session; this restores the saved state
	repo := keyvalue.NewSessionRepository(app.store, app.logger.With(slog.String("component", "repository")))
	app.session = service.NewSessionService(
		app.logger,
		app.catalog,
		app.sink,
		repo,
		app.eventBus,
		service.SessionConfig{StartDelay: config.StartDelay},
	)

	// Step 7: Create the console presenter
	out := config.Output
	if out == nil {
		out = os.Stdout
	}
	app.presenter = console.NewPresenter(app.logger, app.session, app.eventBus, out)

	app.logger.Info("application initialized",
		slog.Int("songs", app.catalog.Len()),
		slog.String("store", config.Store),
		slog.String("sink", config.Sink))

	return app, nil
}

// loadCatalog builds the catalog selected by config and returns it with the
// media root its sources resolve against.
func loadCatalog(ctx context.Context, config Config, log *slog.Logger) (*domain.Catalog, string, error) {
	mediaRoot := config.MediaRoot

	var songs []domain.Song
	switch {
	case config.ScanDir != "":
		scanned, err := catalog.Scan(ctx, config.ScanDir, log)
		if err != nil {
			return nil, "", fmt.Errorf("failed to scan %s: %w", config.ScanDir, err)
		}
		songs = scanned
		if mediaRoot == "" {
			mediaRoot = config.ScanDir
		}
	case config.CatalogPath != "":
		loaded, err := catalog.LoadFile(config.CatalogPath)
		if err != nil {
			return nil, "", err
		}
		songs = catalog.Enrich(loaded, mediaRoot, log)
	default:
		songs = catalog.Default()
	}

	c, err := catalog.Build(songs)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build catalog: %w", err)
	}
	return c, mediaRoot, nil
}

// openStore opens the configured key-value backend.
func (a *Application) openStore() error {
	log := a.logger.With(slog.String("store", a.config.Store))

	switch a.config.Store {
	case StorePreferences:
		if a.config.TestFyneApp != nil {
			a.fyneApp = a.config.TestFyneApp
		} else {
			a.fyneApp = fyneapp.NewWithID(a.config.AppID)
		}
		a.store = preferences.New(a.fyneApp.Preferences())
		a.closeStore = func() error { return nil }
		return nil

	case StoreMemory:
		return a.openSQLite(":memory:", log)

	default:
		path := a.config.StorePath
		if path == "" {
			defaultPath, err := sqlite.DefaultPath()
			if err != nil {
				return fmt.Errorf("failed to resolve store path: %w", err)
			}
			path = defaultPath
		}
		return a.openSQLite(path, log)
	}
}

func (a *Application) openSQLite(path string, log *slog.Logger) error {
	store, err := sqlite.Open(path, log)
	if err != nil {
		return err
	}
	a.store = store
	a.closeStore = store.Close
	return nil
}

// newSink creates the configured media sink.
func (a *Application) newSink(mediaRoot string) ports.MediaSink {
	if a.config.Sink == SinkMock {
		sink := mock.NewSink(a.logger)
		sink.StartClock(mockClockInterval)
		return sink
	}

	if !beepsink.AudioAvailable {
		a.logger.Warn("this build has no audio output; play requests will be rejected")
	}
	cfg := beepsink.DefaultConfig()
	cfg.MediaRoot = mediaRoot
	cfg.SampleRate = a.config.SampleRate
	return beepsink.New(cfg, a.logger)
}

// Session returns the session service.
func (a *Application) Session() *service.SessionService {
	return a.session
}

// EventBus returns the event bus.
func (a *Application) EventBus() ports.EventBus {
	return a.eventBus
}

// Run runs the console on in until quit, EOF, or ctx is done.
func (a *Application) Run(ctx context.Context, in io.Reader) error {
	a.logger.Info("Encore started")

	err := a.presenter.Run(ctx, in)
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the application. Calling it again returns
// the first result.
func (a *Application) Shutdown() error {
	a.shutdownOnce.Do(func() {
		a.logger.Info("shutting down application")

		// Shutdown UI first so no more intents arrive
		if a.presenter != nil {
			a.presenter.Shutdown()
		}

		// The session closes the sink
		if a.session != nil {
			if err := a.session.Shutdown(); err != nil {
				a.logger.Warn("failed to shutdown session", slog.Any("error", err))
				a.shutdownErr = err
			}
		}

		if a.eventBus != nil {
			if err := a.eventBus.Close(); err != nil {
				a.logger.Warn("failed to close event bus", slog.Any("error", err))
			}
		}

		if a.closeStore != nil {
			if err := a.closeStore(); err != nil {
				a.logger.Warn("failed to close store", slog.Any("error", err))
				if a.shutdownErr == nil {
					a.shutdownErr = err
				}
			}
		}

		a.logger.Info("application shutdown complete")
	})
	return a.shutdownErr
}
