// Package http exposes a vellum renderer over a JSON API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tmalden/vellum"
	"github.com/tmalden/vellum/api"
	"github.com/tmalden/vellum/pkg/engine"
	"github.com/tmalden/vellum/pkg/host"
)

// RenderRequest is the body of POST /api/render. Exactly one of Template
// or Source must be set.
type RenderRequest struct {
	Template  string         `json:"template,omitempty"`
	Source    string         `json:"source,omitempty"`
	Variables map[string]any `json:"variables,omitempty"`
}

// RenderResponse carries the rendered output.
type RenderResponse struct {
	Output string `json:"output"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server serves render requests against an attached host application.
type Server struct {
	app    *host.App
	logger *slog.Logger
}

// NewHandler validates the embedded OpenAPI document and builds the HTTP
// handler. A renderer must already be attached to the app.
func NewHandler(ctx context.Context, app *host.App, logger *slog.Logger) (http.Handler, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(api.OpenAPISpec())
	if err != nil {
		return nil, fmt.Errorf("load openapi spec: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate openapi spec: %w", err)
	}

	s := &Server{app: app, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Post("/api/render", s.render)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(api.OpenAPISpec())
	})
	r.Get("/docs", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(docsHTML))
	})

	return r, nil
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": vellum.Version,
	})
}

func (s *Server) render(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if (req.Template == "") == (req.Source == "") {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "exactly one of template or source must be set"})
		return
	}
	req.Variables = normalizeVariables(req.Variables)

	var (
		out string
		err error
	)
	if req.Template != "" {
		out, err = vellum.RenderTemplateContext(r.Context(), s.app, req.Template, req.Variables)
	} else {
		out, err = vellum.RenderSourceContext(r.Context(), s.app, req.Source, req.Variables)
	}
	if err != nil {
		s.logger.Warn("render failed", "template", req.Template, "error", err)
		writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, RenderResponse{Output: out})
}

// normalizeVariables undoes encoding/json's number handling for template
// variables: every JSON number decodes as float64, which renders "99" as
// "99.0". Whole-valued floats within float64's exact integer range are
// converted back to integers, recursively through objects and arrays.
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

func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrTemplateNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrTemplateSyntax),
		errors.Is(err, engine.ErrUnknownFilter),
		errors.Is(err, engine.ErrUndefinedVariable),
		errors.Is(err, engine.ErrRender):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

const docsHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Vellum API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`
