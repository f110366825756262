// Package cli wires command-line flags into a configured host app and
// renderer, shared by the render, preview, serve and mcp commands.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/tmalden/vellum"
	"github.com/tmalden/vellum/pkg/engine"
	"github.com/tmalden/vellum/pkg/host"
	"github.com/tmalden/vellum/pkg/loaders"
)

// Options collects the flag values that shape the renderer.
type Options struct {
	AppName      string
	TemplatesDir string
	RedisAddr    string
	LoamRepo     string

	Tolerance     string
	Undefined     string
	StrictFilters bool
	AutoEscape    bool
	AutoReload    bool
	CacheSize     int

	Hooks []vellum.RenderHooks
}

// BuildApp initializes a host application with a vellum renderer attached,
// following standard CLI conventions.
func BuildApp(opts Options, logger *slog.Logger) (*host.App, *vellum.Renderer, error) {
	loader, err := buildLoader(opts)
	if err != nil {
		return nil, nil, err
	}

	app := host.New(opts.AppName, host.WithLogger(logger))

	rendererOpts := []vellum.Option{
		vellum.WithApp(app),
		vellum.WithLoader(loader),
		vellum.WithLogger(logger),
		vellum.WithTolerance(engine.Tolerance(opts.Tolerance)),
		vellum.WithUndefined(engine.Undefined(opts.Undefined)),
		vellum.WithStrictFilters(opts.StrictFilters),
		vellum.WithAutoEscape(opts.AutoEscape),
		vellum.WithAutoReload(opts.AutoReload),
		vellum.WithCacheSize(opts.CacheSize),
	}
	for _, hooks := range opts.Hooks {
		rendererOpts = append(rendererOpts, vellum.WithRenderHooks(hooks))
	}

	renderer, err := vellum.New(rendererOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("error initializing renderer: %w", err)
	}

	return app, renderer, nil
}

// buildLoader picks the template source. Redis and loam backends take
// precedence over the filesystem when configured.
func buildLoader(opts Options) (loaders.Loader, error) {
	if opts.RedisAddr != "" {
		return loaders.NewRedisLoader(opts.RedisAddr, "", 0), nil
	}
	if opts.LoamRepo != "" {
		return loaders.OpenLoamLoader(opts.LoamRepo)
	}

	if _, err := os.Stat(opts.TemplatesDir); err != nil {
		return nil, fmt.Errorf("templates directory %q: %w", opts.TemplatesDir, err)
	}
	return loaders.NewFileSystemLoader(opts.TemplatesDir), nil
}
