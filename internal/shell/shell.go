// Package shell builds the HTML document around one render pass: the markup
// the orchestrator produced, the bootstrap state the client preloader reads
// back, and asset references resolved through the manifest resolvers.
//
// The stylesheet reference resolves through the server-asset manifest and
// script references through the client-asset manifest; the two domains are
// never conflated.
package shell

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"github.com/tandemview/tandem/internal/manifest"
	"github.com/tandemview/tandem/internal/preloader"
)

// StateElementID is the id of the script element carrying bootstrap state.
const StateElementID = "tandem-state"

// liveReloadSnippet reconnects-and-reloads when the development server
// broadcasts a rebuild.
const liveReloadSnippet = `<script>
(function () {
	var ws = new WebSocket("ws://" + window.location.host + "/ws");
	ws.onmessage = function (event) {
		var message = JSON.parse(event.data);
		if (message.type === "reload") {
			window.location.reload();
		}
	};
})();
</script>`

// Builder assembles documents for one configured application.
type Builder struct {
	serverAssets *manifest.Resolver
	clientAssets *manifest.Resolver
	title        string
	stylesheet   string
	scripts      []string
	liveReload   bool
}

// Option configures a Builder.
type Option func(*Builder)

// WithTitle sets the document title.
func WithTitle(title string) Option {
	return func(b *Builder) {
		b.title = title
	}
}

// WithStylesheet names the logical stylesheet key, resolved through the
// server-asset manifest. Empty disables the link element.
func WithStylesheet(key string) Option {
	return func(b *Builder) {
		b.stylesheet = key
	}
}

// WithScripts names the logical script keys, resolved through the
// client-asset manifest, in load order.
func WithScripts(keys ...string) Option {
	return func(b *Builder) {
		b.scripts = keys
	}
}

// WithLiveReload injects the development live-reload client.
func WithLiveReload(enabled bool) Option {
	return func(b *Builder) {
		b.liveReload = enabled
	}
}

// New creates a document builder over the two asset-domain resolvers.
func New(serverAssets, clientAssets *manifest.Resolver, opts ...Option) *Builder {
	b := &Builder{
		serverAssets: serverAssets,
		clientAssets: clientAssets,
		title:        "tandem",
		stylesheet:   "app.css",
		scripts:      []string{"main.js"},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build wraps markup in the full document, embedding the split points and
// request headers for the preloader.
func (b *Builder) Build(markup string, splitPoints []string, headers http.Header) (string, error) {
	state, err := preloader.EncodeBootstrap(splitPoints, headers)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	fmt.Fprintf(&sb, "<meta charset=\"utf-8\">\n<title>%s</title>\n", templ.EscapeString(b.title))

	if b.stylesheet != "" {
		fmt.Fprintf(&sb, "<link rel=\"stylesheet\" href=%q>\n", b.serverAssets.Resolve(b.stylesheet))
	}

	sb.WriteString("</head>\n<body>\n<div id=\"app\">")
	sb.WriteString(markup)
	sb.WriteString("</div>\n")

	fmt.Fprintf(&sb, "<script type=\"application/json\" id=%q>%s</script>\n", StateElementID, state)

	for _, key := range b.scripts {
		fmt.Fprintf(&sb, "<script src=%q defer></script>\n", b.clientAssets.Resolve(key))
	}

	if b.liveReload {
		sb.WriteString(liveReloadSnippet)
		sb.WriteString("\n")
	}

	sb.WriteString("</body>\n</html>\n")
	return sb.String(), nil
}
