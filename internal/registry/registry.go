// Package registry manages view units: named pieces of renderable content
// that carry two interchangeable bindings. The eager binding is an
// already-realized templ.Component used by the server render pass; the lazy
// binding is a loader that realizes the component on demand, memoized for
// the lifetime of the process once ready.
//
// The registry is process-wide and safe for concurrent use. Loads for the
// same unit are single-flight: concurrent LoadComponent calls share one
// in-flight loader invocation.
package registry

import (
	"context"
	"io"
	"sync"

	"github.com/a-h/templ"
	"golang.org/x/sync/singleflight"

	tandemerrors "github.com/tandemview/tandem/internal/errors"
	"github.com/tandemview/tandem/internal/rendercontext"
)

// LoaderFunc realizes a lazy view unit. It is invoked at most once per unit
// per successful load; failures are not memoized so a later call may retry.
type LoaderFunc func(ctx context.Context) (templ.Component, error)

// CellState describes the realized state of a lazy binding.
type CellState int

const (
	StateUnresolved CellState = iota
	StateLoading
	StateReady
)

// String returns the string representation of the cell state.
func (s CellState) String() string {
	switch s {
	case StateUnresolved:
		return "unresolved"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

type lazyCell struct {
	loader LoaderFunc

	mu    sync.RWMutex
	state CellState
	value templ.Component
}

func (c *lazyCell) ready() (templ.Component, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value, c.state == StateReady
}

func (c *lazyCell) currentState() CellState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *lazyCell) setLoading() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateLoading
}

func (c *lazyCell) setReady(value templ.Component) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateReady
	c.value = value
}

func (c *lazyCell) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateUnresolved
	c.value = nil
}

// UnitRegistry holds the eager and lazy bindings for all view units.
type UnitRegistry struct {
	mu       sync.RWMutex
	eager    map[string]templ.Component
	lazy     map[string]*lazyCell
	watchers []chan UnitEvent

	flight singleflight.Group
}

// NewUnitRegistry creates an empty unit registry.
func NewUnitRegistry() *UnitRegistry {
	return &UnitRegistry{
		eager: make(map[string]templ.Component),
		lazy:  make(map[string]*lazyCell),
	}
}

// RegisterEager binds an already-realized component to a unit name.
func (r *UnitRegistry) RegisterEager(name string, component templ.Component) {
	r.mu.Lock()
	r.eager[name] = component
	r.mu.Unlock()

	r.notify(UnitEvent{Type: EventTypeRegistered, Unit: name})
}

// RegisterLazy binds a loader to a unit name. The realized-state cell starts
// unresolved.
func (r *UnitRegistry) RegisterLazy(name string, loader LoaderFunc) {
	r.mu.Lock()
	r.lazy[name] = &lazyCell{loader: loader}
	r.mu.Unlock()

	r.notify(UnitEvent{Type: EventTypeRegistered, Unit: name})
}

// HasEager reports whether name has an eager binding.
func (r *UnitRegistry) HasEager(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.eager[name]
	return ok
}

// HasLazy reports whether name has a lazy binding.
func (r *UnitRegistry) HasLazy(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.lazy[name]
	return ok
}

// State returns the realized state of a unit's lazy binding.
func (r *UnitRegistry) State(name string) CellState {
	if cell := r.cell(name); cell != nil {
		return cell.currentState()
	}
	return StateUnresolved
}

// Count returns the number of unit names known to the registry, counting a
// name once even when both bindings exist.
func (r *UnitRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make(map[string]struct{}, len(r.eager))
	for name := range r.eager {
		names[name] = struct{}{}
	}
	for name := range r.lazy {
		names[name] = struct{}{}
	}
	return len(names)
}

// Eager returns the eager binding for name, wrapped so that rendering it
// records the unit in the active render context.
func (r *UnitRegistry) Eager(name string) (templ.Component, bool) {
	r.mu.RLock()
	component, ok := r.eager[name]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}

	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if rc := rendercontext.From(ctx); rc != nil {
			rc.Record(name)
		}
		return component.Render(ctx, w)
	}), true
}

// RenderLazy returns a component for the lazy binding of name. If the unit
// is ready it renders the realized value; otherwise it renders nothing and
// starts a background load. Readiness is announced through watcher events so
// a mounted view can re-render, or drop the event by unsubscribing.
func (r *UnitRegistry) RenderLazy(name string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		cell := r.cell(name)
		if cell == nil {
			return tandemerrors.UnknownUnit(name)
		}
		if value, ok := cell.ready(); ok {
			return value.Render(ctx, w)
		}

		// The load must outlive this render call.
		go func() {
			_, _ = r.LoadComponent(context.WithoutCancel(ctx), name)
		}()
		return nil
	})
}

// LoadComponent forces the loader-and-memoize sequence for name and returns
// the realized component. Concurrent calls for the same not-yet-ready unit
// share a single loader invocation. A load failure is returned to every
// waiting caller and leaves the cell unresolved so a retry is possible.
func (r *UnitRegistry) LoadComponent(ctx context.Context, name string) (templ.Component, error) {
	cell := r.cell(name)
	if cell == nil {
		return nil, tandemerrors.UnknownUnit(name)
	}

	if value, ok := cell.ready(); ok {
		return value, nil
	}

	value, err, _ := r.flight.Do(name, func() (interface{}, error) {
		// A previous flight may have completed between the fast path
		// and acquiring this flight.
		if value, ok := cell.ready(); ok {
			return value, nil
		}

		cell.setLoading()
		r.notify(UnitEvent{Type: EventTypeLoading, Unit: name})

		component, err := cell.loader(ctx)
		if err != nil {
			cell.reset()
			r.notify(UnitEvent{Type: EventTypeLoadFailed, Unit: name})
			return nil, &tandemerrors.LoadError{Unit: name, Err: err}
		}

		cell.setReady(component)
		r.notify(UnitEvent{Type: EventTypeReady, Unit: name})
		return component, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(templ.Component), nil
}

func (r *UnitRegistry) cell(name string) *lazyCell {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lazy[name]
}
