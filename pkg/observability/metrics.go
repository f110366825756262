// Package observability exposes render activity as Prometheus metrics,
// driven by the renderer's lifecycle hooks. Failed renders are visible as
// the difference between started and completed counts, since the
// after-render hook fires only on success.
package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tmalden/vellum"
)

// RenderMetrics counts render activity by template name.
type RenderMetrics struct {
	started   *prometheus.CounterVec
	completed *prometheus.CounterVec
}

// NewRenderMetrics creates the metric vectors and registers them on the
// given registerer. Pass prometheus.DefaultRegisterer for the common case.
func NewRenderMetrics(reg prometheus.Registerer) *RenderMetrics {
	m := &RenderMetrics{
		started: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vellum_renders_started_total",
				Help: "Total number of render calls that reached the engine",
			},
			[]string{"template"},
		),
		completed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vellum_renders_completed_total",
				Help: "Total number of render calls that produced output",
			},
			[]string{"template"},
		),
	}
	reg.MustRegister(m.started, m.completed)
	return m
}

// Hooks returns the lifecycle hooks that drive the counters. Register
// the result with vellum.WithRenderHooks.
func (m *RenderMetrics) Hooks() vellum.RenderHooks {
	return vellum.RenderHooks{
		BeforeRender: func(_ context.Context, e *vellum.RenderEvent) {
			m.started.WithLabelValues(e.Template.Name()).Inc()
		},
		TemplateRendered: func(_ context.Context, e *vellum.RenderEvent) {
			m.completed.WithLabelValues(e.Template.Name()).Inc()
		},
	}
}
