// Package server implements the read-only preview API in front of the
// generation pipeline: corner and cell inventory plus rendered Liberty
// documents for one library tree.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pdkit/libmerge/pkg/cache"
	"github.com/pdkit/libmerge/pkg/corners"
	"github.com/pdkit/libmerge/pkg/httputil"
	"github.com/pdkit/libmerge/pkg/manifest"
	"github.com/pdkit/libmerge/pkg/pipeline"
)

// DefaultAddr is the listen address when none is configured.
const DefaultAddr = ":8080"

// Config configures a preview server.
type Config struct {
	LibraryDir string
	Addr       string
	Logger     *log.Logger
}

// Server answers inventory and document requests for one library.
// Documents render through the same pipeline Runner the CLI uses, so a
// shared cache backend serves both.
type Server struct {
	runner *pipeline.Runner
	lib    *corners.Library
	man    *manifest.Manifest
	dir    string
	logger *log.Logger
	srv    *http.Server
}

// New discovers the library and prepares the server. Cache keys are
// scoped by library name, so one cache backend can sit behind servers
// for several libraries.
func New(ctx context.Context, base *pipeline.Runner, cfg Config) (*Server, error) {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}

	lib, err := base.Discover(ctx, cfg.LibraryDir)
	if err != nil {
		return nil, err
	}
	man, err := manifest.Load(cfg.LibraryDir)
	if err != nil {
		return nil, err
	}
	for _, name := range man.UnknownCorners(lib.SortedCorners()) {
		cfg.Logger.Warn("manifest names a corner with no fragments", "corner", name)
	}

	s := &Server{
		runner: &pipeline.Runner{
			Cache:  base.Cache,
			Keyer:  cache.NewScopedKeyer(base.Keyer, lib.Name+":"),
			Logger: cfg.Logger,
		},
		lib:    lib,
		man:    man,
		dir:    cfg.LibraryDir,
		logger: cfg.Logger,
	}
	s.srv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(httputil.RequestLogger(s.logger))

	r.Get("/healthz", s.handleHealthz)
	r.Get("/api/corners", s.handleCorners)
	r.Get("/api/cells", s.handleCells)
	r.Get("/lib/{corner}", s.handleDocument)
	return r
}

// Start serves until ctx is cancelled or the listener fails. A
// cancelled context drains in-flight requests before returning.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.ListenAndServe() }()

	s.logger.Info("preview server listening",
		"addr", s.srv.Addr,
		"library", s.lib.Name,
		"corners", len(s.lib.Corners),
		"cells", len(s.lib.Cells))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	}
}
