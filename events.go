package vellum

import (
	"context"
	"time"

	"github.com/tmalden/vellum/pkg/engine"
	"github.com/tmalden/vellum/pkg/host"
)

// RenderEvent describes one render call. The same event value is passed
// to the before and after hook of a call, so receivers can correlate the
// pair by identity. Receivers must treat it as read-only.
type RenderEvent struct {
	Time     time.Time
	App      *host.App
	Template *engine.Template
	Context  map[string]any
}

// RenderHooks are optional callbacks bracketing a render call.
// BeforeRender fires after the template compiled, before it renders.
// TemplateRendered fires only when the render succeeded; a failed render
// leaves the bracket open.
type RenderHooks struct {
	BeforeRender     func(context.Context, *RenderEvent)
	TemplateRendered func(context.Context, *RenderEvent)
}
