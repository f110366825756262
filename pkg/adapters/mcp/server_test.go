package mcp

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmalden/vellum"
	"github.com/tmalden/vellum/pkg/host"
	"github.com/tmalden/vellum/pkg/loaders"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	app := host.New("mcp-test")
	_, err := vellum.New(
		vellum.WithApp(app),
		vellum.WithLoader(loaders.NewMapLoader(map[string]string{
			"greeting": "Hello {{ you }}",
		})),
	)
	require.NoError(t, err)
	return NewServer(app)
}

func TestHandleRenderTemplate(t *testing.T) {
	s := newTestServer(t)

	resp, err := s.handleRenderTemplate(context.Background(), mcp.CallToolRequest{}, map[string]any{
		"template":  "greeting",
		"variables": map[string]any{"you": "World"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello World", resp.Output)
}

func TestHandleRenderTemplate_MissingName(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleRenderTemplate(context.Background(), mcp.CallToolRequest{}, map[string]any{})
	assert.Error(t, err)
}

func TestHandleRenderSource(t *testing.T) {
	s := newTestServer(t)

	resp, err := s.handleRenderSource(context.Background(), mcp.CallToolRequest{}, map[string]any{
		"source":    "{{ n }} bottles",
		"variables": map[string]any{"n": 99},
	})
	require.NoError(t, err)
	assert.Equal(t, "99 bottles", resp.Output)
}

func TestHandleRenderSource_JSONNumbers(t *testing.T) {
	s := newTestServer(t)

	// Arguments from the wire are decoded JSON, so numbers are float64.
	resp, err := s.handleRenderSource(context.Background(), mcp.CallToolRequest{}, map[string]any{
		"source":    "{{ n }} bottles at {{ ratio }}",
		"variables": map[string]any{"n": float64(99), "ratio": 0.5},
	})
	require.NoError(t, err)
	assert.Equal(t, "99 bottles at 0.5", resp.Output)
}

func TestEngineConfig(t *testing.T) {
	s := newTestServer(t)

	cfg := s.engineConfig()
	assert.Equal(t, true, cfg["configured"])
	assert.Equal(t, "{%", cfg["block_start_string"])
	assert.Equal(t, "strict", cfg["tolerance"])
}
