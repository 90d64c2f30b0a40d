package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tandemview/tandem/internal/logging"
)

func TestResolveHit(t *testing.T) {
	m := New(DomainClient, map[string]string{"main.js": "main.abc123.js"})
	assert.Equal(t, "main.abc123.js", m.Resolve("main.js", "/static"))
}

func TestResolveMissFallsBack(t *testing.T) {
	m := Empty(DomainClient)
	assert.Equal(t, "/static/main.js", m.Resolve("main.js", "/static"))
}

func TestResolveDefaultFallbackPrefix(t *testing.T) {
	m := Empty(DomainServer)
	assert.Equal(t, "/static/app.css", m.Resolve("app.css", ""))
}

func TestManifestIsImmutable(t *testing.T) {
	entries := map[string]string{"main.js": "main.abc123.js"}
	m := New(DomainClient, entries)

	entries["main.js"] = "tampered.js"
	assert.Equal(t, "main.abc123.js", m.Resolve("main.js", "/static"))
}

func TestDomainsAreIndependent(t *testing.T) {
	server := New(DomainServer, map[string]string{"app.css": "app.beef01.css"})
	client := New(DomainClient, map[string]string{"main.js": "main.abc123.js"})

	// A server-domain key looked up in the client manifest degrades to the
	// fallback; the mapping never crosses domains.
	assert.Equal(t, "app.beef01.css", server.Resolve("app.css", "/static"))
	assert.Equal(t, "/static/app.css", client.Resolve("app.css", "/static"))
	assert.Equal(t, DomainServer, server.Domain())
	assert.Equal(t, DomainClient, client.Domain())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"main.js":"main.abc123.js","vendor.js":"vendor.def456.js"}`), 0o644))

	m, err := LoadFile(DomainClient, path)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, "main.abc123.js", m.Resolve("main.js", "/static"))
}

func TestLoadFileInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, os.WriteFile(path, []byte(`not json`), 0o644))

	_, err := LoadFile(DomainClient, path)
	assert.Error(t, err)
}

func TestNewStoreMissingDocumentStartsEmpty(t *testing.T) {
	store, err := NewStore(DomainClient, filepath.Join(t.TempDir(), "does-not-exist.json"))
	require.NoError(t, err)
	assert.Equal(t, 0, store.Current().Len())
}

func TestStoreReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"main.js":"main.v1.js"}`), 0o644))

	store, err := NewStore(DomainClient, path)
	require.NoError(t, err)
	assert.Equal(t, "main.v1.js", store.Current().Resolve("main.js", "/static"))

	require.NoError(t, os.WriteFile(path, []byte(`{"main.js":"main.v2.js"}`), 0o644))
	require.NoError(t, store.Reload())
	assert.Equal(t, "main.v2.js", store.Current().Resolve("main.js", "/static"))
}

func TestFixedStore(t *testing.T) {
	store := FixedStore(New(DomainServer, map[string]string{"app.css": "app.1.css"}))
	assert.Equal(t, DomainServer, store.Domain())
	assert.NoError(t, store.Reload(), "fixed stores have nothing to reload")
	assert.Equal(t, "app.1.css", store.Current().Resolve("app.css", "/static"))
}

func TestResolverFallsBack(t *testing.T) {
	store := FixedStore(Empty(DomainClient))
	resolver := NewResolver(store, "/assets", false, logging.Nop())

	assert.Equal(t, "/assets/main.js", resolver.Resolve("main.js"))
	assert.Equal(t, DomainClient, resolver.Domain())
}

func TestResolverHit(t *testing.T) {
	store := FixedStore(New(DomainClient, map[string]string{"main.js": "main.abc123.js"}))
	resolver := NewResolver(store, "/assets", true, logging.Nop())

	assert.Equal(t, "main.abc123.js", resolver.Resolve("main.js"))
}
