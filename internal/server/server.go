package server

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Oisind123/FYP-Live-Stream-Moderation-Tool/internal/config"
	"github.com/Oisind123/FYP-Live-Stream-Moderation-Tool/internal/hub"
	"github.com/Oisind123/FYP-Live-Stream-Moderation-Tool/internal/platform/correlation"
	"github.com/Oisind123/FYP-Live-Stream-Moderation-Tool/internal/session"
)

type Server struct {
	echo      *echo.Echo
	config    *config.Config
	sessions  *session.Controller
	hub       *hub.Hub
	clock     clockwork.Clock
	startTime time.Time
}

func NewServer(cfg *config.Config, sessions *session.Controller, h *hub.Hub, clock clockwork.Clock) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(correlationMiddleware)

	srv := &Server{
		echo:      e,
		config:    cfg,
		sessions:  sessions,
		hub:       h,
		clock:     clock,
		startTime: clock.Now(),
	}

	srv.registerRoutes()
	return srv
}

// correlationMiddleware assigns every request a correlation ID, carried in
// the request context for log enrichment.
func correlationMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := correlation.WithID(c.Request().Context(), correlation.NewID())
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
