package loaders

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a loader cannot resolve a template name.
var ErrNotFound = errors.New("template not found")

// Source is the raw template text resolved by a Loader, plus an optional
// freshness check used by auto-reloading environments.
type Source struct {
	// Name is the canonical name the source was resolved under.
	Name string

	// Contents is the template source text.
	Contents string

	// Uptodate reports whether the source is still current. A nil Uptodate
	// means the source never goes stale.
	Uptodate func() bool
}

// Loader resolves a template name to its source text.
// This allows the storage layer (filesystem, memory, Redis, Loam) to be
// decoupled from the template engine.
type Loader interface {
	// Load retrieves the template source for the given name.
	// It returns ErrNotFound (possibly wrapped) when no such template exists.
	Load(ctx context.Context, name string) (Source, error)
}
