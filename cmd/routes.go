package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tandemview/tandem/examples/basic"
	"github.com/tandemview/tandem/internal/config"
	"github.com/tandemview/tandem/internal/registry"
	"github.com/tandemview/tandem/internal/routes"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Print the route table with unit binding status",
	Long: `Print the route tree the server would use, one line per route, with
the bound unit name and whether the registry carries both its eager and lazy
bindings.`,
	RunE: runRoutes,
}

func init() {
	rootCmd.AddCommand(routesCmd)

	routesCmd.Flags().String("routes", "", "Route source file (YAML)")
	bindFlags(routesCmd.Flags(), map[string]string{"routes.file": "routes"})
}

func runRoutes(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	reg := registry.NewUnitRegistry()
	basic.Register(reg)

	tree, err := buildTree(cfg)
	if err != nil {
		return err
	}

	tree.WalkDepth(func(n *routes.Node, depth int) {
		indent := strings.Repeat("  ", depth)
		if n.CatchAll {
			fmt.Printf("%s* (catch-all, redirects to /)\n", indent)
			return
		}

		match := "prefix"
		if n.Exact {
			match = "exact"
		}
		fmt.Printf("%s%s [%s] -> %s (%s)\n",
			indent, n.Pattern, match, n.Unit, bindingStatus(reg, n.Unit))
	})

	if err := tree.Validate(reg); err != nil {
		fmt.Printf("\nvalidation: %v\n", err)
		return err
	}
	fmt.Println("\nvalidation: ok")
	return nil
}

func bindingStatus(reg *registry.UnitRegistry, unit string) string {
	switch {
	case reg.HasEager(unit) && reg.HasLazy(unit):
		return "eager+lazy"
	case reg.HasEager(unit):
		return "eager only"
	case reg.HasLazy(unit):
		return "lazy only"
	default:
		return "unbound"
	}
}
