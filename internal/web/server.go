// Package web serves the browse views as a JSON API.
package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vadimtrunov/cinescope/internal/config"
)

// Server wraps the HTTP server of the JSON API.
type Server struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration
	listener        net.Listener
	mu              sync.RWMutex
	ready           chan struct{}
	started         atomic.Bool
	logger          *slog.Logger
}

// NewServer creates a server for cfg.Addr ("host:port", port 0 picks one).
// Zero timeouts fall back to the config defaults.
func NewServer(cfg config.ServerConfig, handler http.Handler, logger *slog.Logger) *Server {
	if handler == nil {
		panic("web.NewServer: handler must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadHeaderTimeout: orDefault(cfg.ReadHeaderTimeout, config.DefaultReadHeaderTimeout),
			ReadTimeout:       orDefault(cfg.ReadHeaderTimeout, config.DefaultReadHeaderTimeout),
			WriteTimeout:      orDefault(cfg.WriteTimeout, config.DefaultWriteTimeout),
			IdleTimeout:       2 * orDefault(cfg.WriteTimeout, config.DefaultWriteTimeout),
			ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
		},
		shutdownTimeout: orDefault(cfg.ShutdownTimeout, config.DefaultShutdownTimeout),
		ready:           make(chan struct{}),
		logger:          logger,
	}
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// Ready returns a channel that is closed once the server is listening.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the listener address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

// Start listens and serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return fmt.Errorf("api server already started")
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.httpServer.Addr)
	if err != nil {
		s.started.Store(false)
		return fmt.Errorf("api server listen: %w", err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	close(s.ready)

	s.logger.Info("api server started",
		slog.String("addr", ln.Addr().String()),
		slog.Duration("write_timeout", s.httpServer.WriteTimeout),
	)

	serveDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
		case <-serveDone:
			return
		}
		s.logger.Info("api server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		//nolint:contextcheck // parent ctx is canceled; shutdown needs its own deadline
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("api server shutdown error", slog.String("error", err.Error()))
		}
	}()

	err = s.httpServer.Serve(ln)
	close(serveDone)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api server: %w", err)
	}
	return nil
}
