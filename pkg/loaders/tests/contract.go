package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/tmalden/vellum/pkg/loaders"
)

// LoaderContractTest is a reusable test suite that verifies an adapter
// complies with the loaders.Loader contract. setupData maps template
// names to the source text the loader is expected to serve.
func LoaderContractTest(t *testing.T, loader loaders.Loader, setupData map[string]string) {
	t.Helper()
	ctx := context.Background()

	t.Run("Load_Success", func(t *testing.T) {
		for name, expected := range setupData {
			source, err := loader.Load(ctx, name)
			if err != nil {
				t.Fatalf("unexpected error loading %s: %v", name, err)
			}
			if source.Contents != expected {
				t.Errorf("contents mismatch for %s. got %q, want %q", name, source.Contents, expected)
			}
		}
	})

	t.Run("Load_NotFound", func(t *testing.T) {
		_, err := loader.Load(ctx, "no-such-template")
		if err == nil {
			t.Fatal("expected error for missing template, got nil")
		}
		if !errors.Is(err, loaders.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Load_CanceledContext", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		for name := range setupData {
			if _, err := loader.Load(canceled, name); err == nil {
				t.Errorf("expected error loading %s with canceled context", name)
			}
			break
		}
	})
}
