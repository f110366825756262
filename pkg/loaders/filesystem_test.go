package loaders_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tmalden/vellum/pkg/loaders"
	"github.com/tmalden/vellum/pkg/loaders/tests"
)

func writeTemplate(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileSystemLoader_Contract(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "index.html", "Hello {{ you }}")
	writeTemplate(t, dir, "plain", "no extension")

	loader := loaders.NewFileSystemLoader(dir)
	tests.LoaderContractTest(t, loader, map[string]string{
		"index.html": "Hello {{ you }}",
		"plain":      "no extension",
	})
}

func TestFileSystemLoader_ExtensionFallback(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "index.html", "Hello")

	loader := loaders.NewFileSystemLoader(dir)
	source, err := loader.Load(context.Background(), "index")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if source.Contents != "Hello" {
		t.Errorf("got %q, want %q", source.Contents, "Hello")
	}
}

func TestFileSystemLoader_RejectsEscape(t *testing.T) {
	dir := t.TempDir()
	loader := loaders.NewFileSystemLoader(filepath.Join(dir, "templates"))

	for _, name := range []string{"../secret", "/etc/passwd"} {
		_, err := loader.Load(context.Background(), name)
		if !errors.Is(err, loaders.ErrNotFound) {
			t.Errorf("Load(%q): expected ErrNotFound, got %v", name, err)
		}
	}
}

func TestFileSystemLoader_MissingRootSurfacesLazily(t *testing.T) {
	loader := loaders.NewFileSystemLoader(filepath.Join(t.TempDir(), "does-not-exist"))

	_, err := loader.Load(context.Background(), "index")
	if !errors.Is(err, loaders.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFileSystemLoader_Uptodate(t *testing.T) {
	dir := t.TempDir()
	path := writeTemplate(t, dir, "index.html", "v1")

	loader := loaders.NewFileSystemLoader(dir)
	source, err := loader.Load(context.Background(), "index.html")
	if err != nil {
		t.Fatal(err)
	}
	if source.Uptodate == nil {
		t.Fatal("expected an Uptodate callback")
	}
	if !source.Uptodate() {
		t.Error("fresh source reported stale")
	}

	// Push the mtime forward explicitly so the test does not depend on
	// filesystem timestamp resolution.
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}
	if source.Uptodate() {
		t.Error("modified source reported fresh")
	}
}
