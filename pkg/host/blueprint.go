package host

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type blueprintKey struct{}

// BlueprintName returns the name of the blueprint owning the in-flight
// request, if ctx belongs to one.
func BlueprintName(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(blueprintKey{}).(string)
	return name, ok
}

// Blueprint is a named sub-router. Requests routed through it carry the
// blueprint name in their context, which scopes blueprint-level template
// context processors to its routes.
type Blueprint struct {
	name   string
	router *chi.Mux
	app    *App

	// guarded by app.mu
	processors []ProcessorFunc
}

// Blueprint creates (or returns) a named blueprint mounted at prefix.
func (a *App) Blueprint(name, prefix string) *Blueprint {
	a.mu.Lock()
	defer a.mu.Unlock()

	if bp, ok := a.blueprints[name]; ok {
		return bp
	}

	bp := &Blueprint{
		name:   name,
		router: chi.NewRouter(),
		app:    a,
	}
	bp.router.Use(stampBlueprint(name))
	a.blueprints[name] = bp
	a.router.Mount(prefix, bp.router)
	return bp
}

func stampBlueprint(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), blueprintKey{}, name)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Name returns the blueprint name.
func (b *Blueprint) Name() string {
	return b.name
}

// ContextProcessor registers a processor that only applies to renders
// triggered from this blueprint's routes.
func (b *Blueprint) ContextProcessor(fn ProcessorFunc) {
	b.app.mu.Lock()
	defer b.app.mu.Unlock()
	b.processors = append(b.processors, fn)
}

// Get registers a GET route on the blueprint router.
func (b *Blueprint) Get(pattern string, handler http.HandlerFunc) {
	b.router.Get(pattern, handler)
}

// Post registers a POST route on the blueprint router.
func (b *Blueprint) Post(pattern string, handler http.HandlerFunc) {
	b.router.Post(pattern, handler)
}
