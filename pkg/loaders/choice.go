package loaders

import (
	"context"
	"errors"
	"fmt"
)

// ChoiceLoader tries a list of loaders in order and returns the first hit.
// It lets an application layer in-memory overrides on top of a filesystem
// directory, or fall back from Redis to disk.
type ChoiceLoader struct {
	loaders []Loader
}

// NewChoiceLoader creates a loader that consults the given loaders in order.
func NewChoiceLoader(loaders ...Loader) *ChoiceLoader {
	return &ChoiceLoader{loaders: loaders}
}

// Load returns the source from the first loader that knows the name.
// Errors other than ErrNotFound stop the search and propagate.
func (l *ChoiceLoader) Load(ctx context.Context, name string) (Source, error) {
	for _, candidate := range l.loaders {
		source, err := candidate.Load(ctx, name)
		if err == nil {
			return source, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return Source{}, err
		}
	}
	return Source{}, fmt.Errorf("%w: %s", ErrNotFound, name)
}
