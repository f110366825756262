package loaders

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/loam"
)

// TemplateMeta is the frontmatter of a template document in a Loam
// workspace. Uses "mapstructure" tags to match standard frontmatter keys.
type TemplateMeta struct {
	// Name overrides the filename-derived template name.
	Name string `json:"name" mapstructure:"name"`

	// Description is free-form documentation, surfaced by listing tools.
	Description string `json:"description" mapstructure:"description"`

	// Draft templates are hidden from Load.
	Draft bool `json:"draft" mapstructure:"draft"`
}

// LoamLoader serves templates from a Loam workspace: each markdown document
// is a template, the body is the template source and the frontmatter is
// decoded into TemplateMeta.
type LoamLoader struct {
	Repo *loam.TypedRepository[TemplateMeta]
}

// NewLoamLoader creates a loader over an existing typed repository.
func NewLoamLoader(repo *loam.TypedRepository[TemplateMeta]) *LoamLoader {
	return &LoamLoader{Repo: repo}
}

// OpenLoamLoader initializes a read-only Loam workspace at path and wraps
// it in a LoamLoader.
func OpenLoamLoader(path string) (*LoamLoader, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	// ReadOnly avoids Loam's sandbox behavior in dev mode; the loader
	// never writes to the workspace.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}

	return NewLoamLoader(loam.NewTypedRepository[TemplateMeta](repo)), nil
}

// Load retrieves the template document for name. Documents marked as
// drafts are treated as absent.
func (l *LoamLoader) Load(ctx context.Context, name string) (Source, error) {
	if err := ctx.Err(); err != nil {
		return Source{}, err
	}

	doc, err := l.Repo.Get(ctx, name)
	if err != nil {
		return Source{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	if doc.Data.Draft {
		return Source{}, fmt.Errorf("%w: %s is a draft", ErrNotFound, name)
	}

	resolved := doc.Data.Name
	if resolved == "" {
		resolved = trimExtension(doc.ID)
	}

	return Source{
		Name:     resolved,
		Contents: doc.Content,
	}, nil
}

// List returns the names of all non-draft templates in the workspace.
func (l *LoamLoader) List(ctx context.Context) ([]string, error) {
	stubs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	names := make([]string, 0, len(stubs))

	for _, stub := range stubs {
		// List returns documents without decoded frontmatter; fetch each
		// one so Draft and Name are populated.
		doc, err := l.Repo.Get(ctx, stub.ID)
		if err != nil {
			return nil, fmt.Errorf("loam get %s: %w", stub.ID, err)
		}
		if doc.Data.Draft {
			continue
		}
		name := doc.Data.Name
		if name == "" {
			name = trimExtension(doc.ID)
		}
		if existing, ok := seen[name]; ok {
			return nil, fmt.Errorf("collision: template %q is defined in both %q and %q", name, existing, doc.ID)
		}
		seen[name] = doc.ID
		names = append(names, name)
	}
	return names, nil
}

// Watch forwards workspace change notifications. Each received value is
// the ID of a changed document.
func (l *LoamLoader) Watch(ctx context.Context) (<-chan string, error) {
	events, err := l.Repo.Watch(ctx, "**/*.md")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- evt.ID:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}

// IsNotFound reports whether err indicates a missing template.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
