package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tandemview/tandem/examples/basic"
	"github.com/tandemview/tandem/internal/config"
	"github.com/tandemview/tandem/internal/logging"
	"github.com/tandemview/tandem/internal/manifest"
	"github.com/tandemview/tandem/internal/orchestrator"
	"github.com/tandemview/tandem/internal/registry"
	"github.com/tandemview/tandem/internal/routes"
	"github.com/tandemview/tandem/internal/server"
	"github.com/tandemview/tandem/internal/shell"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the rendering server",
	Long: `Start the rendering server. Routes come from the configured routes
file, or from the built-in demo app when none is configured. In development
mode the server watches the asset manifests and pushes live reloads.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "Port to serve on")
	serveCmd.Flags().String("host", "localhost", "Host to bind to")
	serveCmd.Flags().String("routes", "", "Route source file (YAML)")
	serveCmd.Flags().String("environment", "", "Environment (development, production)")

	bindFlags(serveCmd.Flags(), map[string]string{
		"server.port":        "port",
		"server.host":        "host",
		"routes.file":        "routes",
		"server.environment": "environment",
	})
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger(cfg)

	reg := registry.NewUnitRegistry()
	basic.Register(reg)

	tree, err := buildTree(cfg)
	if err != nil {
		return err
	}
	if err := tree.Validate(reg); err != nil {
		return fmt.Errorf("route validation: %w", err)
	}

	serverStore, err := manifest.NewStore(manifest.DomainServer, cfg.Assets.ServerManifest)
	if err != nil {
		return fmt.Errorf("loading server asset manifest: %w", err)
	}
	clientStore, err := manifest.NewStore(manifest.DomainClient, cfg.Assets.ClientManifest)
	if err != nil {
		return fmt.Errorf("loading client asset manifest: %w", err)
	}

	production := cfg.IsProduction()
	serverAssets := manifest.NewResolver(serverStore, cfg.Assets.FallbackPrefix, production, logger)
	clientAssets := manifest.NewResolver(clientStore, cfg.Assets.FallbackPrefix, production, logger)

	orch := orchestrator.New(reg, tree, logger)
	shellBuilder := shell.New(serverAssets, clientAssets,
		shell.WithStylesheet(cfg.Assets.Stylesheet),
		shell.WithScripts(cfg.Assets.Scripts...),
		shell.WithLiveReload(cfg.Development.LiveReload))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var opts []server.Option
	if cfg.Development.LiveReload {
		hub := server.NewReloadHub(logger)
		opts = append(opts, server.WithReloadHub(hub))

		watcher, err := manifest.NewWatcher(
			[]*manifest.Store{serverStore, clientStore},
			func(manifest.Domain) { hub.Broadcast(ctx) },
			logger)
		if err != nil {
			logger.Warn(ctx, err, "manifest watching unavailable, live reload will not fire")
		} else {
			watcher.Start(ctx)
		}
	}

	srv := server.New(cfg, orch, shellBuilder, logger, opts...)

	fmt.Printf("Starting tandem at http://%s\n", cfg.Addr())
	return srv.Start(ctx)
}

func newLogger(cfg *config.Config) logging.Logger {
	format := "text"
	if cfg.IsProduction() {
		format = "json"
	}
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Format: format,
		Output: os.Stdout,
	})
}

// buildTree loads the configured route source, falling back to the demo app.
func buildTree(cfg *config.Config) (*routes.Tree, error) {
	src := basic.Source()
	if cfg.Routes.File != "" {
		loaded, err := routes.LoadFile(cfg.Routes.File)
		if err != nil {
			return nil, err
		}
		src = loaded
	}
	return routes.Build(src)
}
