// Package server runs the explorer HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Server wraps http.Server with the explorer's timeouts
type Server struct {
	httpServer *http.Server
	config     *Config
	listener   net.Listener
	log        *zap.Logger
}

// Config holds server configuration
type Config struct {
	// Address is the listen address, e.g. ":8080"
	Address string
	Handler http.Handler
	Logger  *zap.Logger

	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	MaxHeaderBytes    int

	// ShutdownTimeout bounds the drain of in-flight requests
	ShutdownTimeout time.Duration
}

// DefaultConfig returns the production server configuration
func DefaultConfig(handler http.Handler) *Config {
	return &Config{
		Address:           ":8080",
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MB
		ShutdownTimeout:   30 * time.Second,
	}
}

// New creates a server. Nothing listens until Start or Run.
func New(config *Config) (*Server, error) {
	if config == nil {
		return nil, fmt.Errorf("server config cannot be nil")
	}
	if config.Handler == nil {
		return nil, fmt.Errorf("handler cannot be nil")
	}

	log := config.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              config.Address,
			Handler:           config.Handler,
			ReadTimeout:       config.ReadTimeout,
			WriteTimeout:      config.WriteTimeout,
			IdleTimeout:       config.IdleTimeout,
			ReadHeaderTimeout: config.ReadHeaderTimeout,
			MaxHeaderBytes:    config.MaxHeaderBytes,
			ErrorLog:          zap.NewStdLog(log),
		},
		config: config,
		log:    log,
	}, nil
}

// Listen binds the configured address. Addr reports the bound address
// afterwards, which matters for ":0".
func (s *Server) Listen() error {
	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	s.listener = listener
	return nil
}

// Start serves until the server is shut down. It listens first if Listen
// was not called.
func (s *Server) Start() error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}
	s.log.Info("server listening", zap.String("addr", s.Addr()))
	return s.httpServer.Serve(s.listener)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server failed: %w", err)
		}
		close(errChan)
	}()

	select {
	case err, ok := <-errChan:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	s.log.Info("shutting down", zap.Duration("timeout", timeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	s.log.Info("server stopped")
	return <-errChan
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the server's network address
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.Address
}
