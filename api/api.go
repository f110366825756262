// Package api carries the OpenAPI description of the render service.
package api

import _ "embed"

//go:embed openapi.yaml
var openAPISpec []byte

// OpenAPISpec returns the raw OpenAPI document in YAML form.
func OpenAPISpec() []byte {
	return openAPISpec
}
