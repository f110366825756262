package vellum

import (
	"log/slog"

	"github.com/tmalden/vellum/pkg/engine"
	"github.com/tmalden/vellum/pkg/host"
	"github.com/tmalden/vellum/pkg/loaders"
)

// Option is a functional option for New.
type Option func(*Renderer)

// WithApp attaches the renderer to app as part of New.
func WithApp(app *host.App) Option {
	return func(r *Renderer) {
		r.pendingApp = app
	}
}

// WithLoader sets an explicit template loader. When given, it wins over
// the attach-time filesystem fallback.
func WithLoader(l loaders.Loader) Option {
	return func(r *Renderer) {
		r.loader = l
	}
}

// WithContextProcessors controls whether the host's context processors
// contribute to render contexts (default false).
func WithContextProcessors(enabled bool) Option {
	return func(r *Renderer) {
		r.contextProcessors = enabled
	}
}

// WithRenderEvents controls whether lifecycle hooks fire around renders
// (default true).
func WithRenderEvents(enabled bool) Option {
	return func(r *Renderer) {
		r.renderEvents = enabled
	}
}

// WithRenderHooks registers lifecycle hooks invoked around each render.
func WithRenderHooks(hooks RenderHooks) Option {
	return func(r *Renderer) {
		r.hooks = append(r.hooks, hooks)
	}
}

// WithLogger sets a structured logger for the renderer and its engine.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// WithGlobals sets variables available to every render.
func WithGlobals(globals map[string]any) Option {
	return engineOption(engine.WithGlobals(globals))
}

// WithBlockDelimiters sets the statement tag delimiters (default "{%", "%}").
func WithBlockDelimiters(start, end string) Option {
	return engineOption(engine.WithBlockDelimiters(start, end))
}

// WithVariableDelimiters sets the output delimiters (default "{{", "}}").
func WithVariableDelimiters(start, end string) Option {
	return engineOption(engine.WithVariableDelimiters(start, end))
}

// WithCommentDelimiters sets the comment delimiters (default "{#", "#}").
func WithCommentDelimiters(start, end string) Option {
	return engineOption(engine.WithCommentDelimiters(start, end))
}

// WithComments enables template comments (default disabled).
func WithComments(enabled bool) Option {
	return engineOption(engine.WithComments(enabled))
}

// WithTolerance sets the compile error tolerance (default strict).
func WithTolerance(mode engine.Tolerance) Option {
	return engineOption(engine.WithTolerance(mode))
}

// WithUndefined sets the missing-variable policy (default silent).
func WithUndefined(policy engine.Undefined) Option {
	return engineOption(engine.WithUndefined(policy))
}

// WithStrictFilters controls whether unknown filters fail compilation
// (default true).
func WithStrictFilters(strict bool) Option {
	return engineOption(engine.WithStrictFilters(strict))
}

// WithAutoEscape controls HTML-escaping of rendered values (default true).
func WithAutoEscape(enabled bool) Option {
	return engineOption(engine.WithAutoEscape(enabled))
}

// WithAutoReload controls revalidation of cached templates (default true).
func WithAutoReload(enabled bool) Option {
	return engineOption(engine.WithAutoReload(enabled))
}

// WithCacheSize sets the named-template cache capacity.
func WithCacheSize(size int) Option {
	return engineOption(engine.WithCacheSize(size))
}

// WithSourceCacheSize sets the inline-source cache capacity (default 0).
func WithSourceCacheSize(size int) Option {
	return engineOption(engine.WithSourceCacheSize(size))
}

// WithFilter registers a custom filter on the owned engine.
func WithFilter(name string, fn engine.FilterFunc) Option {
	return engineOption(engine.WithFilter(name, fn))
}

func engineOption(opt engine.Option) Option {
	return func(r *Renderer) {
		r.engineOpts = append(r.engineOpts, opt)
	}
}
