package host_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmalden/vellum/pkg/host"
)

func TestApp_ConfigDefaults(t *testing.T) {
	app := host.New("test")

	// Operator pre-sets a value; a later default must not overwrite it.
	app.Config().Set("vellum.autoescape", false)
	app.SetDefault("vellum.autoescape", true)
	app.SetDefault("vellum.auto_reload", true)

	assert.False(t, app.Config().GetBool("vellum.autoescape"))
	assert.True(t, app.Config().GetBool("vellum.auto_reload"))
}

func TestApp_Extensions(t *testing.T) {
	app := host.New("test")

	_, ok := app.Extension("vellum")
	assert.False(t, ok)

	type marker struct{ id int }
	app.RegisterExtension("vellum", &marker{id: 7})

	ext, ok := app.Extension("vellum")
	require.True(t, ok)
	assert.Equal(t, 7, ext.(*marker).id)
}

func TestApp_Routing(t *testing.T) {
	app := host.New("test")
	app.Get("/hello", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "hello")
	})

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/hello", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello", rec.Body.String())
}

func TestApp_ContextProcessorsFor(t *testing.T) {
	app := host.New("test")
	app.ContextProcessor(func() map[string]any {
		return map[string]any{"scope": "global"}
	})

	admin := app.Blueprint("admin", "/admin")
	admin.ContextProcessor(func() map[string]any {
		return map[string]any{"scope": "admin"}
	})

	t.Run("no blueprint in context", func(t *testing.T) {
		funcs := app.ContextProcessorsFor(context.Background())
		require.Len(t, funcs, 1)
		assert.Equal(t, "global", funcs[0]()["scope"])
	})

	t.Run("blueprint route appends its processors after globals", func(t *testing.T) {
		var captured []host.ProcessorFunc
		admin.Get("/page", func(w http.ResponseWriter, r *http.Request) {
			captured = app.ContextProcessorsFor(r.Context())

			name, ok := host.BlueprintName(r.Context())
			assert.True(t, ok)
			assert.Equal(t, "admin", name)
		})

		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/page", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		require.Len(t, captured, 2)
		assert.Equal(t, "global", captured[0]()["scope"])
		assert.Equal(t, "admin", captured[1]()["scope"])
	})

	t.Run("routes outside the blueprint see only globals", func(t *testing.T) {
		var captured []host.ProcessorFunc
		app.Get("/plain", func(w http.ResponseWriter, r *http.Request) {
			captured = app.ContextProcessorsFor(r.Context())
		})

		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plain", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, captured, 1)
	})
}

func TestBlueprint_Idempotent(t *testing.T) {
	app := host.New("test")

	first := app.Blueprint("admin", "/admin")
	second := app.Blueprint("admin", "/admin")
	assert.Same(t, first, second)
}
