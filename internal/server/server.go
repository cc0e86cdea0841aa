package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"git.home.luguber.info/inful/blogsmith/internal/config"
	derrors "git.home.luguber.info/inful/blogsmith/internal/errors"
)

// Server is the HTTP front for the pipeline. The listener is bound at
// construction time so an occupied port fails fast instead of at first
// request.
type Server struct {
	httpServer *http.Server
	listener   net.Listener
	logger     *slog.Logger
}

// New binds the configured address and sets up the route table.
// metricsHandler is mounted at /metrics when non-nil.
func New(cfg *config.ServerConfig, handlers *Handlers, metricsHandler http.Handler) (*Server, error) {
	logger := slog.Default()
	adapter := derrors.NewHTTPErrorAdapter(logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/", handlers.HandleRoot)
	mux.HandleFunc("/run-agent", handlers.HandleRunAgent)
	mux.HandleFunc("/api/cron", handlers.HandleCron)
	mux.HandleFunc("/healthz", handlers.HandleHealth)
	mux.HandleFunc("/api/runs", handlers.HandleRuns)
	if metricsHandler != nil {
		mux.Handle("/metrics", metricsHandler)
	}

	listener, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w", cfg.Addr, err)
	}

	return &Server{
		httpServer: &http.Server{
			Handler:           chain(logger, adapter)(mux),
			ReadHeaderTimeout: 10 * time.Second,
		},
		listener: listener,
		logger:   logger,
	}, nil
}

// Addr returns the bound address, useful when the port was chosen by the OS.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Serve blocks serving requests until Shutdown is called.
func (s *Server) Serve() error {
	s.logger.Info("HTTP server listening", "addr", s.Addr())
	if err := s.httpServer.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
