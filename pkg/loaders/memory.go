package loaders

import (
	"context"
	"fmt"
)

// MapLoader serves templates from an in-memory map. Useful for tests,
// embedded snippets, or applications that manage template text themselves.
type MapLoader struct {
	templates map[string]string
}

// NewMapLoader creates a loader over the given name -> source mapping.
// The map is copied; later mutation of the argument has no effect.
func NewMapLoader(templates map[string]string) *MapLoader {
	copied := make(map[string]string, len(templates))
	for name, source := range templates {
		copied[name] = source
	}
	return &MapLoader{templates: copied}
}

// Load returns the source registered under name.
func (l *MapLoader) Load(ctx context.Context, name string) (Source, error) {
	if err := ctx.Err(); err != nil {
		return Source{}, err
	}

	source, ok := l.templates[name]
	if !ok {
		return Source{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return Source{Name: name, Contents: source}, nil
}
