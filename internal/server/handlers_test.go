package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Oisind123/FYP-Live-Stream-Moderation-Tool/internal/classify"
	"github.com/Oisind123/FYP-Live-Stream-Moderation-Tool/internal/config"
	"github.com/Oisind123/FYP-Live-Stream-Moderation-Tool/internal/domain"
	"github.com/Oisind123/FYP-Live-Stream-Moderation-Tool/internal/hub"
	"github.com/Oisind123/FYP-Live-Stream-Moderation-Tool/internal/session"
)

// idleSource blocks on poll until cancelled, so sessions stay alive without
// network access.
type idleSource struct{}

func (idleSource) IsAlive() bool { return true }
func (idleSource) Poll(ctx context.Context) ([]domain.ChatEvent, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
func (idleSource) Close() error { return nil }

type idleFactory struct{}

func (idleFactory) Open(_ context.Context, _ string) (domain.ChatSource, error) {
	return idleSource{}, nil
}

type nopScorer struct{}

func (nopScorer) Score(_ context.Context, _ string) ([]domain.LabeledScore, error) {
	return nil, nil
}

func testServer(t *testing.T) (*Server, *hub.Hub) {
	t.Helper()

	cfg := &config.Config{
		AppEnv:            "test",
		Port:              "0",
		ThresholdElements: 0.20,
		ThresholdLikely:   0.60,
	}
	classifier := classify.New(nopScorer{}, cfg.ThresholdElements, cfg.ThresholdLikely)
	h := hub.New(16, 4)
	controller := session.New(idleFactory{}, classifier, h, clockwork.NewRealClock(), time.Millisecond, time.Second)
	t.Cleanup(controller.Stop)

	return NewServer(cfg, controller, h, clockwork.NewRealClock()), h
}

func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func TestHandleStart_Valid(t *testing.T) {
	s, _ := testServer(t)

	rec := doRequest(s, http.MethodPost, "/api/start", `{"stream":"https://www.youtube.com/watch?v=dQw4w9WgXcQ"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp startResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, "dQw4w9WgXcQ", resp.VideoID)
	assert.Empty(t, resp.Error)
}

func TestHandleStart_InvalidReference(t *testing.T) {
	s, _ := testServer(t)

	rec := doRequest(s, http.MethodPost, "/api/start", `{"stream":"not a url"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp startResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.OK)
	assert.NotEmpty(t, resp.Error)
	assert.Empty(t, resp.VideoID)
}

func TestHandleStop_AlwaysSucceeds(t *testing.T) {
	s, _ := testServer(t)

	// No active session: still ok.
	rec := doRequest(s, http.MethodPost, "/api/stop", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	doRequest(s, http.MethodPost, "/api/start", `{"stream":"dQw4w9WgXcQ"}`)
	rec = doRequest(s, http.MethodPost, "/api/stop", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestHandleStatus_Idle(t *testing.T) {
	s, _ := testServer(t)

	rec := doRequest(s, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["ok"])
	assert.Equal(t, false, resp["running"])
	assert.Nil(t, resp["video_id"])

	th := resp["thresholds"].(map[string]any)
	assert.Equal(t, 0.20, th["elements"])
	assert.Equal(t, 0.60, th["likely"])
}

func TestHandleStatus_Running(t *testing.T) {
	s, _ := testServer(t)

	doRequest(s, http.MethodPost, "/api/start", `{"stream":"dQw4w9WgXcQ"}`)

	rec := doRequest(s, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Running)
	require.NotNil(t, resp.VideoID)
	assert.Equal(t, "dQw4w9WgXcQ", *resp.VideoID)
}

func TestHandleLiveness(t *testing.T) {
	s, _ := testServer(t)

	rec := doRequest(s, http.MethodGet, "/health/live", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestHandleReadiness(t *testing.T) {
	s, _ := testServer(t)

	rec := doRequest(s, http.MethodGet, "/health/ready", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ready"`)
}

func TestHandleVersion(t *testing.T) {
	s, _ := testServer(t)

	rec := doRequest(s, http.MethodGet, "/version", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"go_version"`)
}
