package vellum

import (
	"context"
	"time"

	"github.com/tmalden/vellum/pkg/engine"
	"github.com/tmalden/vellum/pkg/host"
)

// RenderTemplate renders a named template from the configured loader.
func (r *Renderer) RenderTemplate(name string, vars map[string]any) (string, error) {
	return r.RenderTemplateContext(context.Background(), name, vars)
}

// RenderTemplateContext is RenderTemplate with cancellation support and
// request-scoped context-processor resolution.
func (r *Renderer) RenderTemplateContext(ctx context.Context, name string, vars map[string]any) (string, error) {
	return r.render(ctx, vars, func(ctx context.Context) (*engine.Template, error) {
		return r.env.GetTemplateContext(ctx, name)
	})
}

// RenderSource renders inline template source text.
func (r *Renderer) RenderSource(source string, vars map[string]any) (string, error) {
	return r.RenderSourceContext(context.Background(), source, vars)
}

// RenderSourceContext is RenderSource with cancellation support and
// request-scoped context-processor resolution.
func (r *Renderer) RenderSourceContext(ctx context.Context, source string, vars map[string]any) (string, error) {
	return r.render(ctx, vars, func(ctx context.Context) (*engine.Template, error) {
		return r.env.FromStringContext(ctx, source)
	})
}

// render is the shared algorithm behind all four render operations.
// Engine errors propagate unwrapped so callers keep the engine's own
// error taxonomy. The before hook strictly precedes the render, the
// render strictly precedes the after hook, and the after hook fires only
// on success.
func (r *Renderer) render(ctx context.Context, vars map[string]any, compile func(context.Context) (*engine.Template, error)) (string, error) {
	merged := r.BuildContext(ctx, vars)

	tpl, err := compile(ctx)
	if err != nil {
		return "", err
	}

	var event *RenderEvent
	if r.renderEvents {
		event = &RenderEvent{
			Time:     time.Now(),
			App:      r.app,
			Template: tpl,
			Context:  merged,
		}
		for _, h := range r.hooks {
			if h.BeforeRender != nil {
				h.BeforeRender(ctx, event)
			}
		}
	}

	out, err := tpl.RenderContext(ctx, merged)
	if err != nil {
		return "", err
	}

	if r.renderEvents {
		for _, h := range r.hooks {
			if h.TemplateRendered != nil {
				h.TemplateRendered(ctx, event)
			}
		}
	}

	return out, nil
}

// lookup finds the renderer registered on app, if any.
func lookup(app *host.App) (*Renderer, error) {
	if app == nil {
		return nil, ErrNotConfigured
	}
	ext, ok := app.Extension(ExtensionKey)
	if !ok {
		return nil, ErrNotConfigured
	}
	r, ok := ext.(*Renderer)
	if !ok {
		return nil, ErrNotConfigured
	}
	return r, nil
}

// RenderTemplate renders a named template through the renderer attached
// to app. It fails with ErrNotConfigured when no renderer was attached.
func RenderTemplate(app *host.App, name string, vars map[string]any) (string, error) {
	r, err := lookup(app)
	if err != nil {
		return "", err
	}
	return r.RenderTemplate(name, vars)
}

// RenderTemplateContext is the context-aware package-level variant of
// RenderTemplate.
func RenderTemplateContext(ctx context.Context, app *host.App, name string, vars map[string]any) (string, error) {
	r, err := lookup(app)
	if err != nil {
		return "", err
	}
	return r.RenderTemplateContext(ctx, name, vars)
}

// RenderSource renders inline source through the renderer attached to
// app. It fails with ErrNotConfigured when no renderer was attached.
func RenderSource(app *host.App, source string, vars map[string]any) (string, error) {
	r, err := lookup(app)
	if err != nil {
		return "", err
	}
	return r.RenderSource(source, vars)
}

// RenderSourceContext is the context-aware package-level variant of
// RenderSource.
func RenderSourceContext(ctx context.Context, app *host.App, source string, vars map[string]any) (string, error) {
	r, err := lookup(app)
	if err != nil {
		return "", err
	}
	return r.RenderSourceContext(ctx, source, vars)
}
