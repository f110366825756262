package engine

import (
	"context"
	"fmt"
	"io"
	"strings"

	gonjaloaders "github.com/nikolalohinski/gonja/v2/loaders"

	"github.com/tmalden/vellum/pkg/loaders"
)

// bridge adapts a loaders.Loader to the gonja loader interface so that
// include and extends tags resolve through the environment's loader. The
// template being compiled is pre-seeded so its own source is not loaded
// twice.
type bridge struct {
	backend loaders.Loader
	seeded  map[string]string
}

func newBridge(backend loaders.Loader, identifier, source string) *bridge {
	return &bridge{
		backend: backend,
		seeded:  map[string]string{identifier: source},
	}
}

// Read returns the source text for the given template name.
func (b *bridge) Read(name string) (io.Reader, error) {
	if source, ok := b.seeded[name]; ok {
		return strings.NewReader(source), nil
	}
	if b.backend == nil {
		return nil, fmt.Errorf("no loader configured: %s", name)
	}

	// Includes are resolved while gonja walks the template, outside any
	// caller-supplied context.
	source, err := b.backend.Load(context.Background(), name)
	if err != nil {
		return nil, err
	}
	return strings.NewReader(source.Contents), nil
}

// Resolve returns the canonical identifier for a template name. Loader
// names are already canonical, so this is the identity.
func (b *bridge) Resolve(name string) (string, error) {
	return name, nil
}

// Inherit returns the loader seen by templates included from this one.
func (b *bridge) Inherit(from string) (gonjaloaders.Loader, error) {
	return b, nil
}
