// Package preloader gates client-side mounting on view-unit readiness. The
// server render pass records which units produced the markup; the preloader
// consumes that list, forces every listed unit to its fully loaded state in
// parallel, and only then mounts the lazy-bound route tree against the
// current location. Because every unit the server touched is realized before
// mount, the first client-rendered frame matches the server markup.
package preloader

import (
	"context"
	"time"

	"github.com/a-h/templ"
	"golang.org/x/sync/errgroup"

	"github.com/tandemview/tandem/internal/errors"
	"github.com/tandemview/tandem/internal/logging"
	"github.com/tandemview/tandem/internal/registry"
	"github.com/tandemview/tandem/internal/routes"
)

// Mounter attaches a fully composed page to the host environment.
type Mounter interface {
	Mount(ctx context.Context, page templ.Component) error
}

// Preloader loads split-point units and drives the mount.
type Preloader struct {
	registry  *registry.UnitRegistry
	tree      *routes.Tree
	mounter   Mounter
	logger    logging.Logger
	timeout   time.Duration
	errorUnit string
}

// Option configures a Preloader.
type Option func(*Preloader)

// WithTimeout bounds how long one hydration pass may spend loading units. A
// zero timeout means no bound, which reproduces the original hang-forever
// behavior and is not recommended.
func WithTimeout(d time.Duration) Option {
	return func(p *Preloader) {
		p.timeout = d
	}
}

// WithErrorUnit names an eager-registered unit to mount when loading fails,
// instead of leaving hydration stuck.
func WithErrorUnit(name string) Option {
	return func(p *Preloader) {
		p.errorUnit = name
	}
}

// New creates a preloader over the lazy binding flavor of reg and the shared
// route tree.
func New(reg *registry.UnitRegistry, tree *routes.Tree, mounter Mounter, logger logging.Logger, opts ...Option) *Preloader {
	p := &Preloader{
		registry: reg,
		tree:     tree,
		mounter:  mounter,
		logger:   logger.WithComponent("preloader"),
		timeout:  10 * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Hydrate forces every unit named in splitPoints to its loaded state, then
// mounts the lazy route tree against location. Loading is fan-out/join: all
// units load concurrently and the mount waits for the join. A split point
// with no lazy binding is a programming defect, reported before any loading
// starts. Loader failures do not block forever: every failure is collected,
// the configured error unit (if any) is mounted in place of the page, and
// the joined error is returned.
func (p *Preloader) Hydrate(ctx context.Context, location string, splitPoints []string) error {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	unique := dedupe(splitPoints)
	for _, name := range unique {
		if !p.registry.HasLazy(name) {
			return errors.UnknownUnit(name)
		}
	}

	collector := errors.NewCollector()
	group, groupCtx := errgroup.WithContext(ctx)
	for _, name := range unique {
		group.Go(func() error {
			if _, err := p.registry.LoadComponent(groupCtx, name); err != nil {
				collector.Add(err)
			}
			// Errors are collected rather than returned so one failed
			// unit does not cancel its siblings' loads.
			return nil
		})
	}
	_ = group.Wait()

	if err := ctx.Err(); err != nil {
		collector.Add(err)
	}
	if collector.HasErrors() {
		err := collector.Err()
		p.logger.Error(ctx, err, "hydration loading failed",
			"location", location,
			"units", len(unique))
		p.mountErrorBoundary(ctx)
		return err
	}

	return p.mount(ctx, location)
}

func (p *Preloader) mount(ctx context.Context, location string) error {
	chain, redirect := p.tree.Match(location)
	if redirect || chain == nil {
		// The server pass already resolved this location to markup; a
		// disagreement here means the two passes saw different trees.
		return errors.BuildDefect("location %q does not resolve in the lazy route tree", location)
	}

	page, err := routes.Compose(chain, func(unit string) (templ.Component, error) {
		return p.registry.RenderLazy(unit), nil
	})
	if err != nil {
		return err
	}

	p.logger.Debug(ctx, "mounting", "location", location)
	return p.mounter.Mount(ctx, page)
}

func (p *Preloader) mountErrorBoundary(ctx context.Context) {
	if p.errorUnit == "" {
		return
	}
	boundary, ok := p.registry.Eager(p.errorUnit)
	if !ok {
		p.logger.Error(ctx, nil, "error unit has no eager binding", "unit", p.errorUnit)
		return
	}
	if err := p.mounter.Mount(context.WithoutCancel(ctx), boundary); err != nil {
		p.logger.Error(ctx, err, "mounting error boundary failed", "unit", p.errorUnit)
	}
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	unique := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		unique = append(unique, name)
	}
	return unique
}
