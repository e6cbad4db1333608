// Package main implements rigd, the radio control daemon. It attaches one
// rig handle from the model registry and serves control and telemetry
// over HTTP.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/radio-control/rigcore/internal/api"
	"github.com/radio-control/rigcore/internal/audit"
	"github.com/radio-control/rigcore/internal/auth"
	"github.com/radio-control/rigcore/internal/config"
	"github.com/radio-control/rigcore/internal/rig"
	"github.com/radio-control/rigcore/internal/riglist"
	"github.com/radio-control/rigcore/internal/telemetry"
)

const version = "1.0.0"

func main() {
	log.Printf("Starting rigd v%s", version)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	registry, err := riglist.Registry()
	if err != nil {
		log.Fatalf("Failed to build model registry: %v", err)
	}

	auditLogger, err := audit.NewLogger(cfg.Audit.Dir, audit.Options{
		MaxSizeMB:  cfg.Audit.MaxSizeMB,
		MaxBackups: cfg.Audit.MaxBackups,
	})
	if err != nil {
		log.Fatalf("Failed to initialize audit logger: %v", err)
	}
	log.Println("Audit logger initialized")

	hub := telemetry.NewHub(telemetry.Options{})
	log.Println("Telemetry hub initialized")

	handle, err := attachRig(registry, cfg, auditLogger)
	if err != nil {
		log.Fatalf("Failed to attach rig: %v", err)
	}
	log.Printf("Attached rig: %s", handle.Caps().Summary())

	var authMW *auth.Middleware
	if cfg.Auth.Enabled {
		verifier, err := auth.NewVerifier(cfg.Auth.Secret)
		if err != nil {
			log.Fatalf("Failed to initialize auth: %v", err)
		}
		authMW = auth.NewMiddleware(verifier)
		log.Println("Bearer-token auth enabled")
	}

	server := api.NewServer(api.Options{
		Rig:          handle,
		Registry:     registry,
		Prober:       &registryProber{registry: registry, audit: auditLogger},
		Telemetry:    hub,
		AuthMW:       authMW,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	})

	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(cfg.Server.Addr); err != nil {
			serverErr <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()
	log.Printf("Serving on %s", cfg.Server.Addr)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		log.Printf("Received signal %v, shutting down", sig)
	case err := <-serverErr:
		log.Printf("Server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		log.Printf("Error stopping HTTP server: %v", err)
	}

	hub.Stop()
	log.Println("Telemetry hub stopped")

	if err := handle.Close(); err != nil {
		log.Printf("Error closing rig: %v", err)
	}
	if err := handle.Release(); err != nil {
		log.Printf("Error releasing rig: %v", err)
	}
	log.Println("Rig released")

	if err := auditLogger.Close(); err != nil {
		log.Printf("Error closing audit logger: %v", err)
	}

	log.Println("Shutdown complete")
}

// attachRig creates and opens the configured rig. Model 0 probes the
// configured port and attaches whichever registered model answers.
func attachRig(registry *rig.Registry, cfg *config.Config, sink *audit.Logger) (*rig.Rig, error) {
	opts := []rig.Option{rig.WithAudit(sink)}
	if cfg.Rig.PortPath != "" {
		opts = append(opts, rig.WithPortPath(cfg.Rig.PortPath))
	}

	if cfg.Rig.Model == 0 {
		handle, err := registry.Probe(cfg.Rig.PortPath, opts...)
		if err != nil {
			return nil, err
		}
		// The probe returns an open handle; only post-open state such as
		// the calibration factor can still be adjusted.
		handle.State.Calibration = cfg.Rig.Calibration
		return handle, nil
	}

	handle, err := registry.NewRig(cfg.Rig.ModelID(), opts...)
	if err != nil {
		return nil, err
	}
	applyOverrides(handle, cfg)
	if err := handle.Open(); err != nil {
		handle.Release()
		return nil, err
	}
	return handle, nil
}

func applyOverrides(handle *rig.Rig, cfg *config.Config) {
	if cfg.Rig.BaudRate != 0 {
		handle.State.BaudRate = cfg.Rig.BaudRate
	}
	handle.State.Calibration = cfg.Rig.Calibration
}

// registryProber adapts registry probing to the API's probe port. The
// detected handle is torn down immediately; only its descriptor travels
// back to the caller.
type registryProber struct {
	registry *rig.Registry
	audit    *audit.Logger
}

func (p *registryProber) Detect(portPath string) (*rig.Caps, error) {
	handle, err := p.registry.Probe(portPath, rig.WithAudit(p.audit))
	if err != nil {
		return nil, err
	}
	caps := handle.Caps()
	if err := handle.Close(); err != nil {
		handle.Release()
		return caps, nil
	}
	handle.Release()
	return caps, nil
}
