package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/gram-seva/gram_seva/internal/config"
	"github.com/gram-seva/gram_seva/internal/routes"
)

// Server wraps the Fiber application and shared dependencies.
type Server struct {
	app     *fiber.App
	cfg     config.Config
	runtime *routes.Runtime
}

// New instantiates the HTTP server and delegates route wiring to routes.Setup.
func New(cfg config.Config, db *pgxpool.Pool, cache *redis.Client, logger *slog.Logger) (*Server, error) {
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	runtime, err := routes.Setup(app, routes.Deps{Cfg: cfg, DB: db, Cache: cache, Logger: logger})
	if err != nil {
		return nil, err
	}

	return &Server{app: app, cfg: cfg, runtime: runtime}, nil
}

// Listen starts the HTTP server.
func (s *Server) Listen() error {
	return s.app.Listen(s.cfg.Address())
}

// RunMaintenance drives periodic background work until ctx is cancelled.
func (s *Server) RunMaintenance(ctx context.Context, interval time.Duration) {
	s.runtime.RunMaintenance(ctx, interval)
}

// Shutdown gracefully stops the HTTP server and any live simulations.
func (s *Server) Shutdown(ctx context.Context) error {
	s.runtime.Shutdown()
	return s.app.ShutdownWithContext(ctx)
}
