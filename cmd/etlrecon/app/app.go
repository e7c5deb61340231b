// Package app provides the application context and dependency management
// for the etlrecon CLI. It centralizes configuration, logging and the
// lazily loaded projects file.
package app

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/etlrecon/internal/appcontext"
	"github.com/agentstation/etlrecon/pkg/errors"
	"github.com/agentstation/etlrecon/pkg/project"
)

// App represents the etlrecon application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// Projects file (lazy-initialized)
	mu       sync.RWMutex
	projects *project.Config
}

// Ensure App implements appcontext.Interface at compile time.
var _ appcontext.Interface = (*App)(nil)

// New creates a new App instance with the given version information.
// The app is initialized with the configuration found in the standard
// locations; options may replace it.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the --format value.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Workers returns the configured number of concurrent file comparisons.
func (a *App) Workers() int {
	return a.config.Workers
}

// Workbook reports whether the XLSX report is enabled.
func (a *App) Workbook() bool {
	return a.config.Workbook
}

// Projects returns the projects file, loading it on first use.
// This is thread-safe and ensures the file is parsed only once.
func (a *App) Projects() (*project.Config, error) {
	a.mu.RLock()
	if a.projects != nil {
		cfg := a.projects
		a.mu.RUnlock()
		return cfg, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	// Double-check after acquiring write lock
	if a.projects != nil {
		return a.projects, nil
	}

	cfg, err := project.Load(a.config.ProjectsFile)
	if err != nil {
		return nil, err
	}
	a.logger.Debug().
		Str("file", a.config.ProjectsFile).
		Int("projects", len(cfg.Projects)).
		Msg("Loaded projects file")

	a.projects = cfg
	return cfg, nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithProjects sets a parsed projects file (useful for testing).
func WithProjects(cfg *project.Config) Option {
	return func(a *App) error {
		a.projects = cfg
		return nil
	}
}
