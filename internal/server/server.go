// Package server exposes generation over HTTP.
//
// Routes:
//
//	GET  /healthz               liveness probe
//	GET  /version               build information
//	POST /v1/generate           generate a project, return a layout or artifact
//	GET  /v1/tiles              the server's tile set
//	GET  /v1/tiles/match?mask=N match an adjacency mask
//	GET  /v1/stream?seed=N      WebSocket stream of a run's lifecycle events
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/wrldbldr/pkg/buildinfo"
	"github.com/matzehuels/wrldbldr/pkg/config"
	"github.com/matzehuels/wrldbldr/pkg/httputil"
	"github.com/matzehuels/wrldbldr/pkg/pipeline"
	"github.com/matzehuels/wrldbldr/pkg/tiles"
)

// Defaults for Config.
const (
	DefaultAddr         = ":8080"
	DefaultMaxBodyBytes = 1 << 20
	DefaultWriteTimeout = 5 * time.Second
	shutdownTimeout     = 10 * time.Second
)

// Config configures a Server.
type Config struct {
	Addr string

	// Project is used by /v1/stream and as the tile set for /v1/tiles.
	// Nil uses config.Default().
	Project *config.Project

	// MaxBodyBytes limits /v1/generate request bodies.
	MaxBodyBytes int64

	// WriteTimeout bounds each WebSocket message write.
	WriteTimeout time.Duration
}

// Server is the HTTP API.
type Server struct {
	cfg     Config
	runner  *pipeline.Runner
	tiles   *tiles.TileSet
	logger  *log.Logger
	handler http.Handler
}

// New creates a server. The project's tile set is validated up front.
func New(runner *pipeline.Runner, cfg Config, logger *log.Logger) (*Server, error) {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Project == nil {
		cfg.Project = config.Default()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if logger == nil {
		logger = log.Default()
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}

	ts := cfg.Project.TileSet
	if ts == nil {
		ts = tiles.Default()
	}
	if err := ts.Validate(); err != nil {
		return nil, err
	}

	s := &Server{cfg: cfg, runner: runner, tiles: ts, logger: logger}
	s.handler = s.routes()
	return s, nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(httputil.Instrument(s.logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Get("/version", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, buildinfo.Get())
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/generate", s.handleGenerate)
		r.Get("/tiles", s.handleTiles)
		r.Get("/tiles/match", s.handleMatch)
		r.Get("/stream", s.handleStream)
	})
	return r
}

// Handler returns the server's root handler.
func (s *Server) Handler() http.Handler { return s.handler }

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Info("listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}
