package watcher

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatcherCoalescesWrites(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(file, []byte("v1"), 0o644))

	var (
		mu      sync.Mutex
		batches [][]string
	)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	w, err := New(dir, func(paths []string) {
		mu.Lock()
		batches = append(batches, paths)
		mu.Unlock()
	}, logger)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	// Burst of writes inside the debounce window.
	require.NoError(t, os.WriteFile(file, []byte("v2"), 0o644))
	require.NoError(t, os.WriteFile(file, []byte("v3"), 0o644))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(batches) == 1
	}, 3*time.Second, 20*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Contains(t, batches[0], file)
}

func TestWatcherReportsNewFiles(t *testing.T) {
	dir := t.TempDir()

	var (
		mu   sync.Mutex
		seen []string
	)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	w, err := New(dir, func(paths []string) {
		mu.Lock()
		seen = append(seen, paths...)
		mu.Unlock()
	}, logger)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	file := filepath.Join(dir, "new.liquid")
	require.NoError(t, os.WriteFile(file, []byte("{{ x }}"), 0o644))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, p := range seen {
			if p == file {
				return true
			}
		}
		return false
	}, 3*time.Second, 20*time.Millisecond)
}
