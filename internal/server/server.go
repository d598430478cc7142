package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/evenoddpro/walletadmin/internal/routes"
)

// Deps mirrors the route dependencies; main fills it and server passes it on.
type Deps = routes.Deps

// Server wraps the Fiber application and shared dependencies.
type Server struct {
	app  *fiber.App
	deps Deps
}

// New instantiates the HTTP server and delegates route wiring to routes.Setup.
func New(deps Deps) (*Server, error) {
	app := fiber.New(fiber.Config{
		AppName:      deps.Cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	if err := routes.Setup(app, deps); err != nil {
		return nil, err
	}

	return &Server{app: app, deps: deps}, nil
}

// Listen starts the HTTP server.
func (s *Server) Listen() error {
	return s.app.Listen(s.deps.Cfg.Address())
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
