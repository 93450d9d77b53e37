package main

import (
	"context"
	"fmt"
	"time"

	"github.com/JaimeStill/estate/internal/config"
	"github.com/JaimeStill/estate/internal/infrastructure"
)

// Server owns the infrastructure, the mounted modules, and the HTTP listener
// for one process.
type Server struct {
	infra           *infrastructure.Infrastructure
	http            *httpServer
	shutdownTimeout time.Duration
}

func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(ctx, cfg)
	if err != nil {
		return nil, err
	}

	modules, err := NewModules(infra, cfg)
	if err != nil {
		return nil, fmt.Errorf("modules init failed: %w", err)
	}

	router := buildRouter(infra)
	modules.Mount(router)

	return &Server{
		infra:           infra,
		http:            newHTTPServer(&cfg.Server, router, infra.Logger),
		shutdownTimeout: cfg.ShutdownTimeoutDuration(),
	}, nil
}

// Run starts every subsystem, serves until ctx is canceled, then shuts down
// within the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	if err := s.infra.Start(); err != nil {
		return err
	}

	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		s.infra.Lifecycle.Shutdown(s.shutdownTimeout)
		return err
	}

	go func() {
		s.infra.Lifecycle.WaitForStartup()
		s.infra.Logger.Info("all subsystems ready")
	}()

	<-ctx.Done()

	s.infra.Logger.Info("initiating shutdown")
	return s.infra.Lifecycle.Shutdown(s.shutdownTimeout)
}
