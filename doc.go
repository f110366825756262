/*
Package vellum wires a Jinja-style template engine into a host web
application's configuration and request-lifecycle conventions.

The package is deliberately thin: parsing, compiling, caching and
rendering belong to the engine (pkg/engine), template storage belongs to
the loader (pkg/loaders), and routing and configuration belong to the
host application (pkg/host). Vellum translates between them: it registers
configuration defaults at attach time, resolves a template loader,
enriches render contexts with the host's context processors, and invokes
lifecycle hooks around each render.

# Usage

Create a host application, then attach a Renderer:

	app := host.New("myapp", host.WithTemplateFolder("templates"))

	renderer, err := vellum.New(vellum.WithApp(app))
	if err != nil {
		log.Fatal(err)
	}

	app.Get("/", func(w http.ResponseWriter, r *http.Request) {
		out, err := renderer.RenderTemplateContext(r.Context(), "index.html", map[string]any{
			"you": "World",
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		io.WriteString(w, out)
	})

Configuration precedence is: value pre-set on the app's configuration
store > constructor option > engine default. Every setting the renderer
consumes is registered with set-default-if-absent semantics, so an
operator can override any constructor argument before Attach runs.

# Hooks

Lifecycle hooks bracket each render. The before hook fires after the
template compiled and before it renders; the after hook fires only when
the render succeeded. Both receive the same event value, carrying the
compiled template handle and the final render context.
*/
package vellum
