// Package host provides a minimal web application shell: a chi router, a
// per-app viper configuration store with set-default-if-absent semantics,
// a named extension registry, and template context processors with
// optional blueprint scoping.
package host

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/viper"
)

// ProcessorFunc is a template context processor: a zero-argument callable
// returning variables merged into every render's context.
type ProcessorFunc func() map[string]any

// App is a host web application. It implements http.Handler.
type App struct {
	name           string
	router         *chi.Mux
	config         *viper.Viper
	logger         *slog.Logger
	templateFolder string

	mu         sync.RWMutex
	extensions map[string]any
	processors []ProcessorFunc
	blueprints map[string]*Blueprint
}

// Option configures an App.
type Option func(*App)

// WithTemplateFolder sets the directory template loaders default to
// (default "templates").
func WithTemplateFolder(dir string) Option {
	return func(a *App) {
		a.templateFolder = dir
	}
}

// WithLogger sets the app's structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// WithConfig replaces the app's configuration store. Useful when the
// caller already loaded settings from a file or the environment.
func WithConfig(v *viper.Viper) Option {
	return func(a *App) {
		a.config = v
	}
}

// New creates an App with its own router and configuration store.
func New(name string, opts ...Option) *App {
	a := &App{
		name:           name,
		router:         chi.NewRouter(),
		config:         viper.New(),
		logger:         slog.New(slog.NewJSONHandler(io.Discard, nil)),
		templateFolder: "templates",
		extensions:     make(map[string]any),
		blueprints:     make(map[string]*Blueprint),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name returns the application name.
func (a *App) Name() string {
	return a.name
}

// Logger returns the app's structured logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// TemplateFolder returns the configured template directory.
func (a *App) TemplateFolder() string {
	return a.templateFolder
}

// Config exposes the app's configuration store. Values set explicitly
// (operator overrides) always win over defaults registered later.
func (a *App) Config() *viper.Viper {
	return a.config
}

// SetDefault registers a configuration default without overwriting any
// explicitly-set value.
func (a *App) SetDefault(key string, value any) {
	a.config.SetDefault(key, value)
}

// RegisterExtension records an extension instance under a well-known key.
func (a *App) RegisterExtension(name string, ext any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.extensions[name] = ext
}

// Extension looks up a previously registered extension.
func (a *App) Extension(name string) (any, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	ext, ok := a.extensions[name]
	return ext, ok
}

// ContextProcessor registers an app-wide template context processor.
// Processors run in registration order.
func (a *App) ContextProcessor(fn ProcessorFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.processors = append(a.processors, fn)
}

// ContextProcessorsFor collects the processors that apply to the request
// carried by ctx: app-wide processors first, then the processors of the
// blueprint owning the in-flight request, each group in registration
// order.
func (a *App) ContextProcessorsFor(ctx context.Context) []ProcessorFunc {
	a.mu.RLock()
	defer a.mu.RUnlock()

	funcs := make([]ProcessorFunc, 0, len(a.processors))
	funcs = append(funcs, a.processors...)

	if name, ok := BlueprintName(ctx); ok {
		if bp, exists := a.blueprints[name]; exists {
			funcs = append(funcs, bp.processors...)
		}
	}
	return funcs
}

// ServeHTTP makes the App an http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Get registers a GET route on the app router.
func (a *App) Get(pattern string, handler http.HandlerFunc) {
	a.router.Get(pattern, handler)
}

// Post registers a POST route on the app router.
func (a *App) Post(pattern string, handler http.HandlerFunc) {
	a.router.Post(pattern, handler)
}

// Mount attaches a handler subtree at the given prefix.
func (a *App) Mount(prefix string, handler http.Handler) {
	a.router.Mount(prefix, handler)
}
