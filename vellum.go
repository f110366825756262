package vellum

import (
	"errors"
	"io"
	"log/slog"

	"github.com/tmalden/vellum/pkg/engine"
	"github.com/tmalden/vellum/pkg/host"
	"github.com/tmalden/vellum/pkg/loaders"
)

// Version is the library version, reported by the CLI and the MCP server.
const Version = "0.2.0"

// ExtensionKey is the name the adapter registers itself under in the
// host's extension registry.
const ExtensionKey = "vellum"

// ErrNotConfigured is returned by the package-level render functions when
// no adapter was ever attached to the given application.
var ErrNotConfigured = errors.New("vellum: no renderer attached to application")

// Renderer binds a template engine to a host application: it registers
// configuration defaults, resolves a template loader, merges context
// processor output into render contexts, and invokes lifecycle hooks
// around each render.
type Renderer struct {
	app    *host.App
	env    *engine.Environment
	loader loaders.Loader
	logger *slog.Logger

	contextProcessors bool
	renderEvents      bool
	hooks             []RenderHooks

	engineOpts []engine.Option
	pendingApp *host.App
}

// New creates a Renderer and its owned engine environment. If WithApp was
// given, the renderer is attached before New returns.
func New(opts ...Option) (*Renderer, error) {
	r := &Renderer{
		contextProcessors: false,
		renderEvents:      true,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	engineOpts := append([]engine.Option{engine.WithLogger(r.logger)}, r.engineOpts...)
	if r.loader != nil {
		engineOpts = append(engineOpts, engine.WithLoader(r.loader))
	}
	r.env = engine.New(engineOpts...)
	r.engineOpts = nil

	if r.pendingApp != nil {
		app := r.pendingApp
		r.pendingApp = nil
		if err := r.Attach(app); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// App returns the attached host application, or nil before Attach.
func (r *Renderer) App() *host.App {
	return r.app
}

// Environment exposes the owned engine environment. Mutating it after
// traffic has started is the caller's responsibility to synchronize.
func (r *Renderer) Environment() *engine.Environment {
	return r.env
}

// Loader returns the loader the renderer resolved at attach time, or the
// explicitly configured one.
func (r *Renderer) Loader() loaders.Loader {
	return r.loader
}
