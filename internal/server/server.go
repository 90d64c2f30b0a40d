// Package server is the request-handling layer around the render
// orchestrator: it serves the shell-wrapped markup, issues redirects the
// orchestrator signals, exposes static assets and a health endpoint, and in
// development hosts the live-reload hub.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/tandemview/tandem/internal/config"
	"github.com/tandemview/tandem/internal/logging"
	"github.com/tandemview/tandem/internal/orchestrator"
	"github.com/tandemview/tandem/internal/shell"
	"github.com/tandemview/tandem/internal/version"
)

// AppServer serves one configured tandem application.
type AppServer struct {
	cfg          *config.Config
	orchestrator *orchestrator.Orchestrator
	shell        *shell.Builder
	logger       logging.Logger
	hub          *ReloadHub
	httpServer   *http.Server
}

// Option configures an AppServer.
type Option func(*AppServer)

// WithReloadHub attaches a development live-reload hub served at /ws.
func WithReloadHub(hub *ReloadHub) Option {
	return func(s *AppServer) {
		s.hub = hub
	}
}

// New creates a server over an orchestrator and a shell builder.
func New(cfg *config.Config, orch *orchestrator.Orchestrator, shellBuilder *shell.Builder, logger logging.Logger, opts ...Option) *AppServer {
	s := &AppServer{
		cfg:          cfg,
		orchestrator: orch,
		shell:        shellBuilder,
		logger:       logger.WithComponent("server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the HTTP handler: route table plus middleware.
func (s *AppServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(s.cfg.Assets.StaticDir))))
	if s.hub != nil {
		mux.HandleFunc("/ws", s.hub.Handle)
	}
	mux.HandleFunc("/", s.handleRender)

	return s.requestLogging(mux)
}

// Start runs the server until ctx is cancelled, then shuts down gracefully.
func (s *AppServer) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()

	s.logger.Info(ctx, "listening",
		"addr", s.cfg.Addr(),
		"environment", s.cfg.Server.Environment)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// handleRender runs one eager render pass and writes the document, or
// issues the redirect the pass resolved to. On a redirect the markup is
// never used.
func (s *AppServer) handleRender(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result, err := s.orchestrator.RenderForRequest(r.Context(), r.URL.Path, r.Header)
	if err != nil {
		s.logger.Error(r.Context(), err, "render pass failed", "request_path", r.URL.Path)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if result.Redirect != "" {
		http.Redirect(w, r, result.Redirect, http.StatusFound)
		return
	}

	doc, err := s.shell.Build(result.Markup, result.SplitPoints, r.Header)
	if err != nil {
		s.logger.Error(r.Context(), err, "shell build failed", "request_path", r.URL.Path)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(doc))
}

func (s *AppServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"version": version.Get(),
	})
}
