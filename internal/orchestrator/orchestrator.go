// Package orchestrator drives one complete eager render pass per request:
// it matches the request path against the route tree, renders the matched
// chain of eager view units while they record themselves as split points,
// and packages markup, the recorded split-point list, and redirect
// signaling into a single result.
//
// The pass is fully synchronous with no suspension points, which is what
// makes the drained split-point list complete and deterministic the moment
// rendering returns. Each call owns a freshly created render context and
// touches no state outside it, so any number of requests may render in
// parallel.
package orchestrator

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/a-h/templ"

	"github.com/tandemview/tandem/internal/errors"
	"github.com/tandemview/tandem/internal/logging"
	"github.com/tandemview/tandem/internal/registry"
	"github.com/tandemview/tandem/internal/rendercontext"
	"github.com/tandemview/tandem/internal/routes"
)

// Result carries everything one server render pass produced. When Redirect
// is non-empty the caller must issue an HTTP redirect and ignore Markup.
type Result struct {
	Markup      string
	SplitPoints []string
	Redirect    string
}

// Orchestrator renders the route tree with the eager binding flavor.
type Orchestrator struct {
	registry       *registry.UnitRegistry
	tree           *routes.Tree
	logger         logging.Logger
	redirectTarget string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRedirectTarget overrides where catch-all matches redirect to. The
// default is the application root.
func WithRedirectTarget(target string) Option {
	return func(o *Orchestrator) {
		o.redirectTarget = target
	}
}

// New creates an orchestrator over a validated route tree. Validate the tree
// against the registry before constructing one; unmatched paths and missing
// bindings are startup defects, not per-request conditions.
func New(reg *registry.UnitRegistry, tree *routes.Tree, logger logging.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry:       reg,
		tree:           tree,
		logger:         logger.WithComponent("orchestrator"),
		redirectTarget: "/",
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RenderForRequest performs one eager render pass for the request path and
// returns markup plus the split points it touched, or a redirect.
func (o *Orchestrator) RenderForRequest(ctx context.Context, requestPath string, headers http.Header) (*Result, error) {
	rc := rendercontext.New()
	ctx = rendercontext.With(ctx, rc)

	chain, redirect := o.tree.Match(requestPath)
	if redirect {
		rc.SetRedirect(o.redirectTarget)
		target, _ := rc.Redirect()
		o.logger.Debug(ctx, "catch-all matched", "request_path", requestPath, "redirect", target)
		return &Result{Redirect: target}, nil
	}
	if chain == nil {
		return nil, errors.ConfigDefect("no route matches %q and no catch-all is configured", requestPath)
	}

	page, err := routes.Compose(chain, func(unit string) (templ.Component, error) {
		c, ok := o.registry.Eager(unit)
		if !ok {
			return nil, errors.BuildDefect("unit %q bound at %q has no eager binding", unit, requestPath)
		}
		return c, nil
	})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := page.Render(ctx, &buf); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", requestPath, err)
	}

	// A unit may resolve the request to a redirect mid-render; the redirect
	// wins over whatever markup was produced.
	if target, ok := rc.Redirect(); ok {
		return &Result{Redirect: target}, nil
	}

	splitPoints := rc.Drain()
	o.logger.Debug(ctx, "render pass complete",
		"request_path", requestPath,
		"split_points", len(splitPoints))

	return &Result{
		Markup:      buf.String(),
		SplitPoints: splitPoints,
	}, nil
}
