package server

import (
	"context"
	"log/slog"

	"erp/internal/config"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

type Server struct {
	echo *echo.Echo
	cfg  config.Config
	log  *slog.Logger
}

func New(cfg config.Config, log *slog.Logger, h Handlers) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())

	s := &Server{echo: e, cfg: cfg, log: log}
	s.registerRoutes(h)
	return s
}

func (s *Server) Start() error {
	s.log.Info("http server starting", "port", s.cfg.Port)
	return s.echo.Start(":" + s.cfg.Port)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
