// Package app wires the overlay engine into a running application: it
// owns the settings store and its file watcher, the logger, the renderer
// stack, and the user-facing commands.
package app

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dshills/hoverlay/internal/config"
	"github.com/dshills/hoverlay/internal/host"
	"github.com/dshills/hoverlay/internal/logging"
	"github.com/dshills/hoverlay/internal/overlay"
	"github.com/dshills/hoverlay/internal/render"
)

// Config configures the application.
type Config struct {
	// ConfigPath is the TOML settings file. Empty disables file loading
	// and live reload.
	ConfigPath string

	// LogLevel is the minimum level ("debug", "info", "warn", "error").
	LogLevel string

	// Geometry binds overlay measurement; nil disables parameter
	// highlights.
	Geometry overlay.GeometryFunc

	// RenderCacheSize bounds the rendered-markup cache. Zero disables
	// caching.
	RenderCacheSize int
}

// DefaultConfig returns the default application configuration.
func DefaultConfig() Config {
	return Config{
		LogLevel:        "info",
		RenderCacheSize: 64,
	}
}

// App is the assembled application.
type App struct {
	sessionID string
	log       *logging.Logger
	store     *config.Store
	watcher   *config.Watcher
	engine    *overlay.Engine
	commands  map[string]func() error
}

// New assembles an application over the given host. Call Start to attach
// it, Close to tear it down.
func New(h host.Host, cfg Config) (*App, error) {
	log := logging.New(logging.Config{Level: logging.ParseLevel(cfg.LogLevel)})

	settings := config.Defaults()
	if cfg.ConfigPath != "" {
		loaded, err := config.Load(cfg.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("loading settings: %w", err)
		}
		settings = loaded
	}
	store := config.NewStore(settings)

	var renderer render.MarkupRenderer = render.NewTreeRenderer(render.NewRegexHighlighter())
	if cfg.RenderCacheSize > 0 {
		cached, err := render.NewCachedRenderer(renderer, cfg.RenderCacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating render cache: %w", err)
		}
		renderer = cached
	}

	opts := []overlay.Option{
		overlay.WithSettings(store),
		overlay.WithRenderer(renderer),
		overlay.WithLogger(log),
	}
	if cfg.Geometry != nil {
		opts = append(opts, overlay.WithGeometry(cfg.Geometry))
	}

	a := &App{
		sessionID: uuid.NewString(),
		log:       log,
		store:     store,
		engine:    overlay.NewEngine(h, opts...),
	}
	a.commands = map[string]func() error{
		"toggle-hover":          a.engine.ToggleHover,
		"toggle-signature-help": a.engine.ToggleSignature,
		"dismiss-overlay": func() error {
			a.engine.Dismiss()
			return nil
		},
	}

	if cfg.ConfigPath != "" {
		w, err := config.NewWatcher(cfg.ConfigPath, store, config.WithErrorHandler(func(err error) {
			log.Warn("settings reload failed: %v", err)
		}))
		if err != nil {
			return nil, fmt.Errorf("watching settings: %w", err)
		}
		a.watcher = w
	}

	return a, nil
}

// SessionID identifies this application instance in logs.
func (a *App) SessionID() string { return a.sessionID }

// Engine returns the overlay engine, e.g. for provider registration.
func (a *App) Engine() *overlay.Engine { return a.engine }

// Settings returns the live settings store.
func (a *App) Settings() *config.Store { return a.store }

// Logger returns the application logger.
func (a *App) Logger() *logging.Logger { return a.log }

// Start attaches the engine to the host's active editor.
func (a *App) Start() {
	a.log.Info("session %s starting", a.sessionID)
	a.engine.Start()
}

// Close tears down the engine and the settings watcher.
func (a *App) Close() error {
	a.engine.Close()
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			return err
		}
	}
	a.log.Info("session %s closed", a.sessionID)
	return nil
}

// Commands returns the registered command names.
func (a *App) Commands() []string {
	names := make([]string, 0, len(a.commands))
	for name := range a.commands {
		names = append(names, name)
	}
	return names
}

// Execute runs a named command.
func (a *App) Execute(name string) error {
	cmd, ok := a.commands[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	return cmd()
}
