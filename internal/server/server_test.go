package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tandemview/tandem/internal/config"
	"github.com/tandemview/tandem/internal/logging"
	"github.com/tandemview/tandem/internal/manifest"
	"github.com/tandemview/tandem/internal/orchestrator"
	"github.com/tandemview/tandem/internal/registry"
	"github.com/tandemview/tandem/internal/routes"
	"github.com/tandemview/tandem/internal/shell"
)

func textUnit(text string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, text)
		return err
	})
}

func layoutUnit(tag string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<"+tag+">"); err != nil {
			return err
		}
		if err := templ.GetChildren(ctx).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</"+tag+">")
		return err
	})
}

func newTestServer(t *testing.T, opts ...Option) *AppServer {
	t.Helper()

	reg := registry.NewUnitRegistry()
	reg.RegisterEager("Layout", layoutUnit("main"))
	reg.RegisterEager("Home", textUnit("<h1>home</h1>"))

	tree, err := routes.Build(&routes.Source{Routes: []routes.Descriptor{
		{Pattern: "/", Unit: "Layout", Children: []routes.Descriptor{
			{Pattern: "/", Exact: true, Unit: "Home"},
			{},
		}},
	}})
	require.NoError(t, err)

	logger := logging.Nop()
	orch := orchestrator.New(reg, tree, logger)

	assets := manifest.NewResolver(
		manifest.FixedStore(manifest.New(manifest.DomainServer, map[string]string{"app.css": "/static/app.1234.css"})),
		"/static", false, logger)
	clientAssets := manifest.NewResolver(
		manifest.FixedStore(manifest.New(manifest.DomainClient, map[string]string{"main.js": "/static/main.5678.js"})),
		"/static", false, logger)

	staticDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "app.1234.css"), []byte("body{}"), 0o644))

	cfg := &config.Config{
		Server: config.ServerConfig{Host: "localhost", Port: 0, Environment: config.EnvDevelopment},
		Assets: config.AssetsConfig{StaticDir: staticDir},
	}

	return New(cfg, orch, shell.New(assets, clientAssets, shell.WithTitle("test app")), logger, opts...)
}

func TestRenderDocument(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "<div id=\"app\"><main><h1>home</h1></main></div>")
	assert.Contains(t, string(body), "/static/app.1234.css")
	assert.Contains(t, string(body), "/static/main.5678.js")
	assert.Contains(t, string(body), shell.StateElementID)
}

func TestRenderRedirectsCatchAll(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}

	resp, err := client.Get(ts.URL + "/no/such/page")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestRenderRejectsNonGet(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/", "text/plain", strings.NewReader("x"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var payload map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "ok", payload["status"])
	assert.NotEmpty(t, payload["version"])
}

func TestStaticFiles(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/static/app.1234.css")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "body{}", string(body))
}

func TestReloadHubBroadcast(t *testing.T) {
	hub := NewReloadHub(logging.Nop())
	srv := newTestServer(t, WithReloadHub(hub))
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	// No clients connected; broadcasting must be a no-op, not a panic.
	hub.Broadcast(context.Background())
	assert.Equal(t, 0, hub.ClientCount())
}
