package scorer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Oisind123/FYP-Live-Stream-Moderation-Tool/internal/domain"
)

func newTestClient(url string) *Client {
	c := New(url, 2*time.Second, 1000)
	// Tighten retry backoff so failure tests stay fast.
	c.policy.InitialBackoff = time.Millisecond
	c.policy.RateLimitBackoff = time.Millisecond
	return c
}

func TestScore_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/score", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"scores":[{"label":"toxic","score":0.87},{"label":"insult","score":0.12}]}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	scores, err := client.Score(context.Background(), "you are terrible")
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Equal(t, domain.LabeledScore{Label: "toxic", Score: 0.87}, scores[0])
}

func TestScore_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"scores":[{"label":"toxic","score":0.5}]}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	scores, err := client.Score(context.Background(), "hello")
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestScore_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.Score(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestScore_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest) // permanent, no retries
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	for n := 0; n < breakerFailureThreshold; n++ {
		_, err := client.Score(context.Background(), "hello")
		require.Error(t, err)
	}

	// Breaker is now open; requests fail fast without reaching the server.
	_, err := client.Score(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scoring service unavailable")
}

func TestScore_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.Score(context.Background(), "hello")
	require.Error(t, err)
}
