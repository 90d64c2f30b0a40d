package manifest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tandemview/tandem/internal/logging"
)

func TestWatcherReloadsOnRewrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "client-manifest.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"main.js":"main.v1.js"}`), 0o644))

	store, err := NewStore(DomainClient, path)
	require.NoError(t, err)

	reloaded := make(chan Domain, 1)
	watcher, err := NewWatcher([]*Store{store}, func(d Domain) {
		select {
		case reloaded <- d:
		default:
		}
	}, logging.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	watcher.Start(ctx)

	// Give the watch loop a moment before rewriting the document.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(`{"main.js":"main.v2.js"}`), 0o644))

	select {
	case d := <-reloaded:
		assert.Equal(t, DomainClient, d)
		assert.Equal(t, "main.v2.js", store.Current().Resolve("main.js", "/static"))
	case <-time.After(5 * time.Second):
		t.Fatal("watcher never reloaded the manifest")
	}
}

func TestWatcherIgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "client-manifest.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"main.js":"main.v1.js"}`), 0o644))

	store, err := NewStore(DomainClient, path)
	require.NoError(t, err)

	reloaded := make(chan Domain, 1)
	watcher, err := NewWatcher([]*Store{store}, func(d Domain) {
		reloaded <- d
	}, logging.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	watcher.Start(ctx)

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{}`), 0o644))

	select {
	case <-reloaded:
		t.Fatal("unrelated file triggered a reload")
	case <-time.After(500 * time.Millisecond):
	}
}

func TestWatcherSkipsFixedStores(t *testing.T) {
	store := FixedStore(Empty(DomainServer))

	watcher, err := NewWatcher([]*Store{store}, nil, logging.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	watcher.Start(ctx)
}
