// Package mcp exposes a vellum renderer as an MCP server, so agent
// tooling can render templates over stdio or SSE.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"

	"github.com/tmalden/vellum"
	"github.com/tmalden/vellum/pkg/host"
)

// RenderResponse aligns with the OpenAPI schema and provides a unified
// structure across adapters.
type RenderResponse struct {
	Output string `json:"output" jsonschema_description:"The rendered template output"`
}

type renderTemplateArgs struct {
	Template  string         `mapstructure:"template"`
	Variables map[string]any `mapstructure:"variables"`
}

type renderSourceArgs struct {
	Source    string         `mapstructure:"source"`
	Variables map[string]any `mapstructure:"variables"`
}

// Server wraps an attached host application and exposes it as an MCP server.
type Server struct {
	app       *host.App
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance. The app must already have
// a renderer attached.
func NewServer(app *host.App) *Server {
	s := &Server{
		app:       app,
		mcpServer: server.NewMCPServer("vellum-mcp", vellum.Version),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)

	go func() {
		slog.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: render_template
	renderTemplate := mcp.NewTool("render_template",
		mcp.WithDescription("Render a named template known to the configured loader."),
		mcp.WithString("template", mcp.Required(), mcp.Description("Name of the template to render")),
		mcp.WithObject("variables", mcp.Description("Variables passed to the template")),
		mcp.WithOutputSchema[RenderResponse](),
	)
	s.mcpServer.AddTool(renderTemplate, mcp.NewStructuredToolHandler(s.handleRenderTemplate))

	// TOOL: render_source
	renderSource := mcp.NewTool("render_source",
		mcp.WithDescription("Render an inline template source string."),
		mcp.WithString("source", mcp.Required(), mcp.Description("Template source text")),
		mcp.WithObject("variables", mcp.Description("Variables passed to the template")),
		mcp.WithOutputSchema[RenderResponse](),
	)
	s.mcpServer.AddTool(renderSource, mcp.NewStructuredToolHandler(s.handleRenderSource))

	// TOOL: engine_config
	s.mcpServer.AddTool(mcp.NewTool("engine_config",
		mcp.WithDescription("Get the active template engine configuration."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, err := json.Marshal(s.engineConfig())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode config: %v", err)), nil
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

func (s *Server) handleRenderTemplate(ctx context.Context, request mcp.CallToolRequest, rawArgs map[string]any) (RenderResponse, error) {
	var args renderTemplateArgs
	if err := mapstructure.Decode(rawArgs, &args); err != nil {
		return RenderResponse{}, fmt.Errorf("invalid arguments: %w", err)
	}
	if args.Template == "" {
		return RenderResponse{}, fmt.Errorf("template is required")
	}

	out, err := vellum.RenderTemplateContext(ctx, s.app, args.Template, normalizeVariables(args.Variables))
	if err != nil {
		return RenderResponse{}, fmt.Errorf("render failed: %w", err)
	}
	return RenderResponse{Output: out}, nil
}

func (s *Server) handleRenderSource(ctx context.Context, request mcp.CallToolRequest, rawArgs map[string]any) (RenderResponse, error) {
	var args renderSourceArgs
	if err := mapstructure.Decode(rawArgs, &args); err != nil {
		return RenderResponse{}, fmt.Errorf("invalid arguments: %w", err)
	}
	if args.Source == "" {
		return RenderResponse{}, fmt.Errorf("source is required")
	}

	out, err := vellum.RenderSourceContext(ctx, s.app, args.Source, normalizeVariables(args.Variables))
	if err != nil {
		return RenderResponse{}, fmt.Errorf("render failed: %w", err)
	}
	return RenderResponse{Output: out}, nil
}

// normalizeVariables converts whole-valued float64s back to integers.
// MCP arguments arrive as decoded JSON, where every number is a float64
// and would otherwise render "99" as "99.0".
func normalizeVariables(vars map[string]any) map[string]any {
	for k, v := range vars {
		vars[k] = normalizeValue(v)
	}
	return vars
}

func normalizeValue(v any) any {
	switch x := v.(type) {
	case float64:
		if x == math.Trunc(x) && x >= -1<<53 && x <= 1<<53 {
			return int64(x)
		}
	case map[string]any:
		return normalizeVariables(x)
	case []any:
		for i, item := range x {
			x[i] = normalizeValue(item)
		}
	}
	return v
}

func (s *Server) engineConfig() map[string]any {
	raw, ok := s.app.Extension(vellum.ExtensionKey)
	if !ok {
		return map[string]any{"configured": false}
	}
	ext, ok := raw.(*vellum.Renderer)
	if !ok {
		return map[string]any{"configured": false}
	}
	env := ext.Environment()
	return map[string]any{
		"configured":            true,
		"block_start_string":    env.BlockStartString,
		"block_end_string":      env.BlockEndString,
		"variable_start_string": env.VariableStartString,
		"variable_end_string":   env.VariableEndString,
		"comments":              env.Comments,
		"tolerance":             string(env.Tolerance),
		"undefined":             string(env.Undefined),
		"strict_filters":        env.StrictFilters,
		"autoescape":            env.AutoEscape,
		"auto_reload":           env.AutoReload,
	}
}

func (s *Server) registerResources() {
	// EXPOSE: vellum://config
	s.mcpServer.AddResource(mcp.NewResource("vellum://config", "Engine Configuration",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.engineConfig())
		if err != nil {
			return nil, fmt.Errorf("failed to encode config: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "vellum://config",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
