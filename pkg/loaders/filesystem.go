package loaders

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileSystemLoader resolves template names against a directory on disk.
type FileSystemLoader struct {
	root       string
	extensions []string
}

// FileSystemOption configures a FileSystemLoader.
type FileSystemOption func(*FileSystemLoader)

// WithExtensions sets the candidate file extensions tried when a name has
// none of its own (e.g. "index" -> "index.html").
func WithExtensions(exts ...string) FileSystemOption {
	return func(l *FileSystemLoader) {
		l.extensions = exts
	}
}

// NewFileSystemLoader creates a loader rooted at the given directory.
// The directory is not validated here; a missing root surfaces as
// ErrNotFound on the first Load.
func NewFileSystemLoader(root string, opts ...FileSystemOption) *FileSystemLoader {
	l := &FileSystemLoader{
		root:       root,
		extensions: []string{"", ".html", ".liquid", ".tpl"},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Root returns the directory the loader resolves names against.
func (l *FileSystemLoader) Root() string {
	return l.root
}

// Load resolves name to a file under the loader's root.
func (l *FileSystemLoader) Load(ctx context.Context, name string) (Source, error) {
	if err := ctx.Err(); err != nil {
		return Source{}, err
	}

	path, err := l.resolve(name)
	if err != nil {
		return Source{}, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Source{}, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return Source{}, fmt.Errorf("read template %s: %w", name, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return Source{}, fmt.Errorf("stat template %s: %w", name, err)
	}
	mtime := info.ModTime()

	return Source{
		Name:     name,
		Contents: string(content),
		Uptodate: func() bool {
			current, err := os.Stat(path)
			if err != nil {
				return false
			}
			return current.ModTime().Equal(mtime)
		},
	}, nil
}

// resolve maps a template name to an existing file path, rejecting names
// that escape the root directory.
func (l *FileSystemLoader) resolve(name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("%w: %s escapes template root", ErrNotFound, name)
	}

	for _, ext := range l.extensions {
		path := filepath.Join(l.root, cleaned+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}
