package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Oisind123/FYP-Live-Stream-Moderation-Tool/internal/version"
)

func (s *Server) handleLiveness(c echo.Context) error {
	uptime := s.clock.Since(s.startTime).Seconds()
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": uptime,
	})
}

// handleReadiness reports ready as long as the process is serving. The
// pipeline has no mandatory backing stores; scorer and chat source outages
// surface as in-band SYSTEM events, not readiness failures.
func (s *Server) handleReadiness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":      "ready",
		"subscribers": s.hub.SubscriberCount(),
	})
}

func (s *Server) handleVersion(c echo.Context) error {
	return c.JSON(http.StatusOK, version.Get())
}
