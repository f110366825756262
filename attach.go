package vellum

import (
	"errors"

	"github.com/tmalden/vellum/pkg/engine"
	"github.com/tmalden/vellum/pkg/host"
	"github.com/tmalden/vellum/pkg/loaders"
)

// Configuration keys the adapter registers defaults for at attach time.
// An operator pre-setting any of these on the app's configuration store
// before Attach overrides the corresponding constructor argument.
const (
	KeyBlockStartString    = "vellum.block_start_string"
	KeyBlockEndString      = "vellum.block_end_string"
	KeyVariableStartString = "vellum.variable_start_string"
	KeyVariableEndString   = "vellum.variable_end_string"
	KeyCommentStartString  = "vellum.comment_start_string"
	KeyCommentEndString    = "vellum.comment_end_string"
	KeyTemplateComments    = "vellum.template_comments"
	KeyTolerance           = "vellum.tolerance"
	KeyUndefined           = "vellum.undefined"
	KeyStrictFilters       = "vellum.strict_filters"
	KeyTemplateFolder      = "vellum.template_folder"
	KeyAutoEscape          = "vellum.autoescape"
	KeyAutoReload          = "vellum.auto_reload"
	KeySourceCacheSize     = "vellum.source_cache_size"
	KeyContextProcessors   = "vellum.context_processors"
	KeyRenderEvents        = "vellum.render_events"
)

// Attach binds the renderer to app. It registers configuration defaults
// (never overwriting pre-set values, so re-attaching is idempotent),
// resolves the feature flags and loader from the post-default registry,
// copies every effective setting onto the engine, and registers the
// renderer in the app's extension registry under ExtensionKey.
//
// The step order matters: later steps read values earlier steps may have
// just defaulted. Attach is expected to run once, at startup, before
// concurrent traffic begins.
func (r *Renderer) Attach(app *host.App) error {
	if app == nil {
		return errors.New("vellum: cannot attach to a nil application")
	}

	env := r.env
	cfg := app.Config()

	// 1. Register a default for every engine option, sourced from the
	// engine's current field values.
	app.SetDefault(KeyBlockStartString, env.BlockStartString)
	app.SetDefault(KeyBlockEndString, env.BlockEndString)
	app.SetDefault(KeyVariableStartString, env.VariableStartString)
	app.SetDefault(KeyVariableEndString, env.VariableEndString)
	app.SetDefault(KeyCommentStartString, orDefault(env.CommentStartString, "{#"))
	app.SetDefault(KeyCommentEndString, orDefault(env.CommentEndString, "#}"))
	app.SetDefault(KeyTemplateComments, env.Comments)
	app.SetDefault(KeyTolerance, string(env.Tolerance))
	app.SetDefault(KeyUndefined, string(env.Undefined))
	app.SetDefault(KeyStrictFilters, env.StrictFilters)
	app.SetDefault(KeyTemplateFolder, app.TemplateFolder())
	app.SetDefault(KeyAutoEscape, env.AutoEscape)
	app.SetDefault(KeyAutoReload, env.AutoReload)
	app.SetDefault(KeySourceCacheSize, env.SourceCacheSize())
	app.SetDefault(KeyContextProcessors, r.contextProcessors)
	app.SetDefault(KeyRenderEvents, r.renderEvents)

	// 2. Resolve the feature flags from the post-default registry, so a
	// pre-existing entry overrides the constructor argument.
	r.renderEvents = cfg.GetBool(KeyRenderEvents)
	r.contextProcessors = cfg.GetBool(KeyContextProcessors)

	// 3. Fall back to a filesystem loader rooted at the configured
	// template folder. The directory is not validated here; a missing
	// folder surfaces from the loader on first load.
	if r.loader == nil {
		r.loader = loaders.NewFileSystemLoader(cfg.GetString(KeyTemplateFolder))
	}

	// 4. Copy every effective registry value back onto the engine,
	// loader included.
	env.BlockStartString = cfg.GetString(KeyBlockStartString)
	env.BlockEndString = cfg.GetString(KeyBlockEndString)
	env.VariableStartString = cfg.GetString(KeyVariableStartString)
	env.VariableEndString = cfg.GetString(KeyVariableEndString)
	env.CommentStartString = cfg.GetString(KeyCommentStartString)
	env.CommentEndString = cfg.GetString(KeyCommentEndString)
	env.Comments = cfg.GetBool(KeyTemplateComments)
	env.Tolerance = engine.Tolerance(cfg.GetString(KeyTolerance))
	env.Undefined = engine.Undefined(cfg.GetString(KeyUndefined))
	env.StrictFilters = cfg.GetBool(KeyStrictFilters)
	env.AutoEscape = cfg.GetBool(KeyAutoEscape)
	env.AutoReload = cfg.GetBool(KeyAutoReload)
	env.Loader = r.loader

	// 5. Disabled comments force empty comment delimiters. The engine
	// constructor does not normalize this.
	if !env.Comments {
		env.CommentStartString = ""
		env.CommentEndString = ""
	}

	// 6. The source cache size goes through its dedicated mutator, which
	// rebuilds the cache structure.
	env.SetSourceCacheSize(cfg.GetInt(KeySourceCacheSize))

	// 7. Drop templates compiled before Attach under different settings.
	env.ClearCache()

	// 8. Register and record.
	app.RegisterExtension(ExtensionKey, r)
	r.app = app

	return nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
