// Package routes models the route descriptor tree: an ordered tree of path
// patterns, each binding a view unit by name. The tree is authored once;
// both the eager-bound (server) and lazy-bound (client) renderings are
// derived mechanically from it, so the two flavors cannot diverge in shape.
package routes

import (
	"strings"

	"github.com/tandemview/tandem/internal/errors"
	"github.com/tandemview/tandem/internal/registry"
)

// Node is one route in the built tree. A node with CatchAll set has no
// pattern and no unit: reaching it during matching resolves the request to a
// redirect instead of markup.
type Node struct {
	Pattern  string
	Exact    bool
	Unit     string
	CatchAll bool
	Children []*Node
}

// Tree is a validated route descriptor tree.
type Tree struct {
	roots []*Node
}

// Build converts a declarative source into a tree, enforcing structural
// invariants: every non-catch-all node names a unit and carries an absolute
// pattern, and a catch-all is a leaf, unique among its siblings, and last.
func Build(src *Source) (*Tree, error) {
	if src == nil || len(src.Routes) == 0 {
		return nil, errors.ConfigDefect("route source is empty")
	}

	roots, err := buildList(src.Routes)
	if err != nil {
		return nil, err
	}
	return &Tree{roots: roots}, nil
}

func buildList(descriptors []Descriptor) ([]*Node, error) {
	nodes := make([]*Node, 0, len(descriptors))
	for i, d := range descriptors {
		node, err := buildNode(d)
		if err != nil {
			return nil, err
		}
		if node.CatchAll && i != len(descriptors)-1 {
			return nil, errors.ConfigDefect("catch-all must be last among its siblings")
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func buildNode(d Descriptor) (*Node, error) {
	if d.Pattern == "" {
		if d.Unit != "" {
			return nil, errors.ConfigDefect("catch-all must not bind a unit, got %q", d.Unit)
		}
		if len(d.Children) > 0 {
			return nil, errors.ConfigDefect("catch-all must be a leaf")
		}
		return &Node{CatchAll: true}, nil
	}

	if !strings.HasPrefix(d.Pattern, "/") {
		return nil, errors.ConfigDefect("pattern %q must be absolute", d.Pattern)
	}
	if d.Unit == "" {
		return nil, errors.ConfigDefect("route %q must bind a unit", d.Pattern)
	}

	children, err := buildList(d.Children)
	if err != nil {
		return nil, err
	}

	return &Node{
		Pattern:  normalizePath(d.Pattern),
		Exact:    d.Exact,
		Unit:     d.Unit,
		Children: children,
	}, nil
}

// Validate checks the tree against a registry at startup: every bound unit
// must carry BOTH the eager and the lazy binding (the cross-pass name
// equality the recorder and preloader depend on), and a catch-all must be
// reachable for paths no other route matches. Violations are defects, not
// per-request conditions.
func (t *Tree) Validate(reg *registry.UnitRegistry) error {
	var err error
	t.Walk(func(n *Node) {
		if err != nil || n.CatchAll {
			return
		}
		if !reg.HasEager(n.Unit) {
			err = errors.BuildDefect("unit %q bound at %q has no eager binding", n.Unit, n.Pattern)
			return
		}
		if !reg.HasLazy(n.Unit) {
			err = errors.BuildDefect("unit %q bound at %q has no lazy binding", n.Unit, n.Pattern)
		}
	})
	if err != nil {
		return err
	}

	if !hasUniversalCatchAll(t.roots) {
		return errors.ConfigDefect("no catch-all reachable for unmatched request paths")
	}
	return nil
}

// hasUniversalCatchAll reports whether some catch-all is reachable whatever
// the request path: it must sit at the top level or beneath ancestors that
// match every path (non-exact root pattern).
func hasUniversalCatchAll(nodes []*Node) bool {
	for _, n := range nodes {
		if n.CatchAll {
			return true
		}
		if !n.Exact && n.Pattern == "/" && hasUniversalCatchAll(n.Children) {
			return true
		}
	}
	return false
}

// Match resolves a request path to the chain of nodes that renders it,
// outermost first. First match wins in sibling order; exact nodes require
// full equality; non-exact nodes match on segment-boundary prefixes. An
// interior node whose children all miss falls through to its later siblings.
// Reaching a catch-all reports redirect instead of a chain.
func (t *Tree) Match(path string) (chain []*Node, redirect bool) {
	chain, redirect, _ = matchList(t.roots, normalizePath(path))
	return chain, redirect
}

func matchList(nodes []*Node, path string) (chain []*Node, redirect, found bool) {
	for _, n := range nodes {
		if n.CatchAll {
			return nil, true, true
		}
		if !patternMatches(n.Pattern, path, n.Exact) {
			continue
		}
		if len(n.Children) == 0 {
			return []*Node{n}, false, true
		}
		childChain, redirect, found := matchList(n.Children, path)
		if !found {
			continue
		}
		if redirect {
			return nil, true, true
		}
		return append([]*Node{n}, childChain...), false, true
	}
	return nil, false, false
}

func patternMatches(pattern, path string, exact bool) bool {
	if exact {
		return path == pattern
	}
	if pattern == "/" {
		return true
	}
	if !strings.HasPrefix(path, pattern) {
		return false
	}
	return len(path) == len(pattern) || path[len(pattern)] == '/'
}

func normalizePath(path string) string {
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}

// Walk visits every node depth-first in authoring order.
func (t *Tree) Walk(fn func(*Node)) {
	t.WalkDepth(func(n *Node, _ int) { fn(n) })
}

// WalkDepth visits every node depth-first in authoring order, passing its
// nesting depth.
func (t *Tree) WalkDepth(fn func(n *Node, depth int)) {
	walkList(t.roots, 0, fn)
}

func walkList(nodes []*Node, depth int, fn func(*Node, int)) {
	for _, n := range nodes {
		fn(n, depth)
		walkList(n.Children, depth+1, fn)
	}
}

// UnitNames enumerates the bound unit names in first-encounter order,
// deduplicated. Both binding flavors enumerate identically because there is
// only one tree.
func (t *Tree) UnitNames() []string {
	var names []string
	seen := make(map[string]struct{})
	t.Walk(func(n *Node) {
		if n.CatchAll {
			return
		}
		if _, ok := seen[n.Unit]; ok {
			return
		}
		seen[n.Unit] = struct{}{}
		names = append(names, n.Unit)
	})
	return names
}
