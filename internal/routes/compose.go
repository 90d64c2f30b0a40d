package routes

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Resolver maps a unit name to a renderable component in one binding flavor.
// The orchestrator supplies the eager flavor, the preloader the lazy one;
// which flavor a pass uses is decided by injection, never by rewriting the
// tree.
type Resolver func(unit string) (templ.Component, error)

// Compose turns a matched chain into a single component, outermost unit
// wrapping the next via templ children. A one-node chain is the unit itself.
func Compose(chain []*Node, resolve Resolver) (templ.Component, error) {
	var page templ.Component
	for i := len(chain) - 1; i >= 0; i-- {
		unit, err := resolve(chain[i].Unit)
		if err != nil {
			return nil, err
		}
		if page == nil {
			page = unit
			continue
		}
		inner := page
		outer := unit
		page = templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			return outer.Render(templ.WithChildren(ctx, inner), w)
		})
	}
	return page, nil
}
