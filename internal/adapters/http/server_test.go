package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmalden/vellum"
	"github.com/tmalden/vellum/pkg/host"
	"github.com/tmalden/vellum/pkg/loaders"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	app := host.New("api-test")
	_, err := vellum.New(
		vellum.WithApp(app),
		vellum.WithLoader(loaders.NewMapLoader(map[string]string{
			"greeting": "Hello {{ you }}",
		})),
	)
	require.NoError(t, err)

	handler, err := NewHandler(context.Background(), app, nil)
	require.NoError(t, err)
	return handler
}

func postRender(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/render", strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestGetHealth(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest("GET", "/healthz", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, vellum.Version, resp["version"])
}

func TestRenderNamedTemplate(t *testing.T) {
	handler := newTestHandler(t)

	rr := postRender(t, handler, `{"template":"greeting","variables":{"you":"World"}}`)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp RenderResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Hello World", resp.Output)
}

func TestRenderInlineSource(t *testing.T) {
	handler := newTestHandler(t)

	rr := postRender(t, handler, `{"source":"{{ n }} bottles","variables":{"n":99}}`)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp RenderResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "99 bottles", resp.Output)
}

func TestRenderJSONNumbers(t *testing.T) {
	handler := newTestHandler(t)

	t.Run("whole numbers render without a decimal point", func(t *testing.T) {
		rr := postRender(t, handler,
			`{"source":"{{ count }} of {{ batch.size }}, {{ weights[0] }}","variables":{"count":3,"batch":{"size":10},"weights":[7]}}`)
		assert.Equal(t, http.StatusOK, rr.Code)

		var resp RenderResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "3 of 10, 7", resp.Output)
	})

	t.Run("fractional numbers keep their fraction", func(t *testing.T) {
		rr := postRender(t, handler, `{"source":"{{ ratio }}","variables":{"ratio":0.5}}`)
		assert.Equal(t, http.StatusOK, rr.Code)

		var resp RenderResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "0.5", resp.Output)
	})
}

func TestRenderUnknownTemplate(t *testing.T) {
	handler := newTestHandler(t)

	rr := postRender(t, handler, `{"template":"nope"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRenderSyntaxError(t *testing.T) {
	handler := newTestHandler(t)

	rr := postRender(t, handler, `{"source":"{% if %}"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestRenderBadRequests(t *testing.T) {
	handler := newTestHandler(t)

	assert.Equal(t, http.StatusBadRequest, postRender(t, handler, `{not json`).Code)
	assert.Equal(t, http.StatusBadRequest, postRender(t, handler, `{}`).Code)
	assert.Equal(t, http.StatusBadRequest,
		postRender(t, handler, `{"template":"a","source":"b"}`).Code)
}

func TestServesOpenAPIDocument(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest("GET", "/openapi.yaml", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Vellum Render API")
}
