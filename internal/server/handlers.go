package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Oisind123/FYP-Live-Stream-Moderation-Tool/internal/domain"
)

type startRequest struct {
	Stream string `json:"stream"`
}

type startResponse struct {
	OK      bool   `json:"ok"`
	VideoID string `json:"video_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

type statusResponse struct {
	OK         bool       `json:"ok"`
	Running    bool       `json:"running"`
	VideoID    *string    `json:"video_id"`
	Thresholds thresholds `json:"thresholds"`
}

type thresholds struct {
	Elements float64 `json:"elements"`
	Likely   float64 `json:"likely"`
}

func (s *Server) handleStart(c echo.Context) error {
	var req startRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, startResponse{OK: false, Error: "invalid request body"})
	}

	videoID, err := s.sessions.Start(req.Stream)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidReference) {
			return c.JSON(http.StatusBadRequest, startResponse{OK: false, Error: err.Error()})
		}
		slog.ErrorContext(c.Request().Context(), "Failed to start session", "error", err)
		return c.JSON(http.StatusInternalServerError, startResponse{OK: false, Error: "failed to start session"})
	}

	return c.JSON(http.StatusOK, startResponse{OK: true, VideoID: videoID})
}

func (s *Server) handleStop(c echo.Context) error {
	s.sessions.Stop()
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleStatus(c echo.Context) error {
	st := s.sessions.Status()

	resp := statusResponse{
		OK:      true,
		Running: st.Running,
		Thresholds: thresholds{
			Elements: st.ThresholdElements,
			Likely:   st.ThresholdLikely,
		},
	}
	if st.VideoID != "" {
		resp.VideoID = &st.VideoID
	}

	return c.JSON(http.StatusOK, resp)
}
