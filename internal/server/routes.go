package server

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

const controlPlaneRateLimit = rate.Limit(10) // per-IP requests per second

func (s *Server) registerRoutes() {
	// Observability endpoints
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/version", s.handleVersion)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Control plane
	api := s.echo.Group("/api", middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(controlPlaneRateLimit)))
	api.POST("/start", s.handleStart)
	api.POST("/stop", s.handleStop)
	api.GET("/status", s.handleStatus)

	// Push channel (one long-lived connection per viewer)
	s.echo.GET("/ws", s.handleWebSocket)
}
