package vellum

import "context"

// BuildContext merges context-processor output into a caller-supplied
// variable mapping. It is a pure merge with no engine interaction.
//
// When context processors are disabled or no application is attached,
// vars is returned unchanged. Otherwise the app's processors run in
// collection order (app-wide first, then the blueprint owning the
// in-flight request), later processors overwriting earlier ones, and the
// caller's own keys are re-applied last so they always win.
//
// Framework-injected ambient state (request, session) is deliberately
// excluded; only user-registered processors participate.
func (r *Renderer) BuildContext(ctx context.Context, vars map[string]any) map[string]any {
	if !r.contextProcessors || r.app == nil {
		return vars
	}

	funcs := r.app.ContextProcessorsFor(ctx)
	if len(funcs) == 0 {
		return vars
	}

	merged := make(map[string]any, len(vars))
	for _, fn := range funcs {
		for k, v := range fn() {
			merged[k] = v
		}
	}
	for k, v := range vars {
		merged[k] = v
	}
	return merged
}
