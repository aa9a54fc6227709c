package serve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/playbooklab/sdk/registry"
)

// Config holds server configuration.
type Config struct {
	// Port is the TCP port the server listens on. Port 0 picks a free
	// port; use Server.Port to read it back.
	// Default: 8080
	Port int

	// GracefulTimeout is the maximum duration to wait for active requests
	// to complete during graceful shutdown.
	// Default: 30 seconds
	GracefulTimeout time.Duration

	// ReadHeaderTimeout bounds how long the server waits for request
	// headers.
	// Default: 10 seconds
	ReadHeaderTimeout time.Duration

	// TLSCertFile is the path to the TLS certificate file.
	// If empty, TLS is disabled.
	TLSCertFile string

	// TLSKeyFile is the path to the TLS private key file.
	// If empty, TLS is disabled.
	TLSKeyFile string

	// Logger is the server's structured logger.
	// Default: slog.Default()
	Logger *slog.Logger

	// Registry enables service discovery. When set, the server registers
	// Instance after it starts listening and deregisters it during
	// shutdown. Registration failures are logged, not fatal.
	Registry registry.Registry

	// Instance describes this server in the registry. An empty Endpoint is
	// filled in from the listener address.
	Instance registry.Instance
}

// DefaultConfig returns defaults suitable for local development.
func DefaultConfig() *Config {
	return &Config{
		Port:              8080,
		GracefulTimeout:   30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Server wraps an http.Server with lifecycle management: startup, signal
// handling, and graceful shutdown.
type Server struct {
	httpServer *http.Server
	listener   net.Listener
	config     *Config
	logger     *slog.Logger
}

// NewServer creates a server for the given handler. A nil config uses
// DefaultConfig.
func NewServer(cfg *Config, handler http.Handler) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.GracefulTimeout == 0 {
		cfg.GracefulTimeout = 30 * time.Second
	}
	if cfg.ReadHeaderTimeout == 0 {
		cfg.ReadHeaderTimeout = 10 * time.Second
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen on port %d: %w", cfg.Port, err)
	}

	return &Server{
		httpServer: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		},
		listener: listener,
		config:   cfg,
		logger:   logger,
	}, nil
}

// Serve starts the server and blocks until shutdown. Shutdown is triggered
// by context cancellation or SIGINT/SIGTERM, after which active requests
// get GracefulTimeout to finish.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		var err error
		if s.config.TLSCertFile != "" && s.config.TLSKeyFile != "" {
			err = s.httpServer.ServeTLS(s.listener, s.config.TLSCertFile, s.config.TLSKeyFile)
		} else {
			err = s.httpServer.Serve(s.listener)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	if deregister := s.register(); deregister != nil {
		defer deregister()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-ctx.Done():
		s.shutdown()
		return ctx.Err()
	case sig := <-sigCh:
		s.logger.Info("shutting down", "signal", sig.String())
		s.shutdown()
		return nil
	case err := <-errCh:
		return err
	}
}

// register adds this server to the configured registry and returns the
// matching deregister func, nil when no registry is configured or
// registration failed.
func (s *Server) register() func() {
	if s.config.Registry == nil {
		return nil
	}

	inst := s.config.Instance
	if inst.Endpoint == "" {
		inst.Endpoint = s.listener.Addr().String()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.config.Registry.Register(ctx, inst); err != nil {
		s.logger.Warn("service registration failed", "error", err)
		return nil
	}
	s.logger.Info("instance registered",
		"instance", inst.InstanceID,
		"endpoint", inst.Endpoint)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.config.Registry.Deregister(ctx, inst); err != nil {
			s.logger.Warn("service deregistration failed", "error", err)
		}
	}
}

// Stop immediately closes the server. Active requests are terminated.
func (s *Server) Stop() {
	s.httpServer.Close()
}

func (s *Server) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.GracefulTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Warn("graceful shutdown timed out, forcing stop", "error", err)
		s.httpServer.Close()
		return
	}
	s.logger.Info("server stopped")
}

// Port returns the port the server is listening on. Useful with Port 0.
func (s *Server) Port() int {
	if s.listener != nil {
		if addr, ok := s.listener.Addr().(*net.TCPAddr); ok {
			return addr.Port
		}
	}
	return s.config.Port
}
