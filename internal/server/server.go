// Package server runs the HTTP server lifecycle: startup, signal handling,
// and graceful shutdown.
package server

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/mkarev/tzkeeper/internal/config"
	"github.com/mkarev/tzkeeper/internal/logger"
)

// Server wraps the application's http.Server with signal-driven graceful
// shutdown.
type Server struct {
	httpServer *http.Server
	logger     *logger.Logger
}

// NewServer builds the server over the assembled router. Request timeouts
// come from the server configuration; a zero timeout leaves the defaults of
// net/http in place.
func NewServer(router http.Handler, cfg config.Server, logger *logger.Logger) *Server {
	logger.Info().Str("address", cfg.HTTPAddress).Msg("creating http server")

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.HTTPAddress,
			Handler:      router,
			ReadTimeout:  cfg.RequestTimeout,
			WriteTimeout: cfg.RequestTimeout,
		},
		logger: logger,
	}
}

// Run starts serving and blocks until SIGINT, SIGTERM, or SIGQUIT arrives,
// then drains in-flight requests before returning.
func (s *Server) Run() error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info().Msg("launching http server")
		if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down http server")
	if err := s.httpServer.Shutdown(context.Background()); err != nil {
		return err
	}

	s.logger.Info().Msg("server shut down gracefully")
	return nil
}
