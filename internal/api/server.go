package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/radio-control/rigcore/internal/auth"
)

// Server is the HTTP front end over one rig handle.
type Server struct {
	httpServer *http.Server
	currentRig RigPort
	registry   RegistryPort
	prober     ProbePort
	telemetry  TelemetryPort
	authMW     *auth.Middleware
	startTime  time.Time

	readTimeout  time.Duration
	writeTimeout time.Duration
	idleTimeout  time.Duration
}

// Options carries the server's collaborators and timeouts. Prober and
// AuthMiddleware may be nil; the matching endpoints then refuse or pass
// through respectively.
type Options struct {
	Rig       RigPort
	Registry  RegistryPort
	Prober    ProbePort
	Telemetry TelemetryPort
	AuthMW    *auth.Middleware

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// NewServer creates the API server.
func NewServer(opts Options) *Server {
	mw := opts.AuthMW
	if mw == nil {
		mw = auth.NewMiddleware(nil)
	}
	return &Server{
		currentRig:   opts.Rig,
		registry:     opts.Registry,
		prober:       opts.Prober,
		telemetry:    opts.Telemetry,
		authMW:       mw,
		startTime:    time.Now(),
		readTimeout:  opts.ReadTimeout,
		writeTimeout: opts.WriteTimeout,
		idleTimeout:  opts.IdleTimeout,
	}
}

// Start blocks serving HTTP on addr until Stop is called.
func (s *Server) Start(addr string) error {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
		IdleTimeout:  s.idleTimeout,
	}

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}
	return nil
}
