package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/tmalden/vellum"
	"github.com/tmalden/vellum/pkg/host"
	"github.com/tmalden/vellum/pkg/loaders"
)

func newMeteredApp(t *testing.T) (*host.App, *RenderMetrics) {
	t.Helper()

	reg := prometheus.NewRegistry()
	metrics := NewRenderMetrics(reg)

	app := host.New("metrics-test")
	_, err := vellum.New(
		vellum.WithApp(app),
		vellum.WithLoader(loaders.NewMapLoader(map[string]string{
			"greeting": "Hello {{ you }}",
			"broken":   "{% if %}",
		})),
		vellum.WithRenderHooks(metrics.Hooks()),
	)
	require.NoError(t, err)
	return app, metrics
}

func TestRenderMetrics_CountsPerTemplate(t *testing.T) {
	app, metrics := newMeteredApp(t)

	out, err := vellum.RenderTemplate(app, "greeting", map[string]any{"you": "World"})
	require.NoError(t, err)
	require.Equal(t, "Hello World", out)

	_, err = vellum.RenderTemplate(app, "greeting", map[string]any{"you": "again"})
	require.NoError(t, err)

	started := testutil.ToFloat64(metrics.started.WithLabelValues("greeting"))
	completed := testutil.ToFloat64(metrics.completed.WithLabelValues("greeting"))
	require.Equal(t, 2.0, started)
	require.Equal(t, 2.0, completed)
}

func TestRenderMetrics_FailedRenderNotCompleted(t *testing.T) {
	app, metrics := newMeteredApp(t)

	_, err := vellum.RenderTemplate(app, "greeting", map[string]any{"you": "World"})
	require.NoError(t, err)

	_, err = vellum.RenderTemplate(app, "missing", nil)
	require.Error(t, err)

	// Render of a missing template fails before a template exists, so
	// neither counter moves for it.
	started := testutil.ToFloat64(metrics.started.WithLabelValues("greeting"))
	completed := testutil.ToFloat64(metrics.completed.WithLabelValues("greeting"))
	require.Equal(t, 1.0, started)
	require.Equal(t, 1.0, completed)
}
