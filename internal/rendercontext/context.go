// Package rendercontext provides the per-request render context that
// accumulates split points during one eager render pass.
//
// A Context is created fresh for every incoming request, threaded through
// rendering as a context.Context value, and discarded once the orchestrator
// returns. It is never shared across requests and never reused across two
// render passes, which is why it needs no locking: exactly one synchronous
// render pass reads and writes it.
package rendercontext

import "context"

// Context is the per-request holder of the ordered split-point log and an
// optional redirect target.
type Context struct {
	splitPoints []string
	redirect    string
	hasRedirect bool
}

// New creates a fresh render context for a single render pass.
func New() *Context {
	return &Context{}
}

// Record appends a view-unit name to the split-point log. Duplicates are
// kept; deduplication is a consumer concern.
func (c *Context) Record(name string) {
	c.splitPoints = append(c.splitPoints, name)
}

// Drain returns the accumulated split points in first-encounter order.
func (c *Context) Drain() []string {
	return c.splitPoints
}

// SetRedirect marks the render pass as resolving to a redirect instead of
// markup. The last writer wins.
func (c *Context) SetRedirect(target string) {
	c.redirect = target
	c.hasRedirect = true
}

// Redirect returns the redirect target if one was set during the pass.
func (c *Context) Redirect() (string, bool) {
	return c.redirect, c.hasRedirect
}

type contextKey struct{}

// With attaches a render context to ctx so that view units rendered beneath
// it can record themselves.
func With(ctx context.Context, rc *Context) context.Context {
	return context.WithValue(ctx, contextKey{}, rc)
}

// From returns the render context attached to ctx, or nil when rendering
// happens outside a server render pass (client-side mounting).
func From(ctx context.Context) *Context {
	rc, _ := ctx.Value(contextKey{}).(*Context)
	return rc
}
