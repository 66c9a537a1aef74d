// Package scorer implements the HTTP client for the external toxicity
// scoring service.
package scorer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/Oisind123/FYP-Live-Stream-Moderation-Tool/internal/domain"
	"github.com/Oisind123/FYP-Live-Stream-Moderation-Tool/internal/metrics"
	"github.com/Oisind123/FYP-Live-Stream-Moderation-Tool/internal/platform/retry"
)

const (
	breakerFailureThreshold = 5
	breakerOpenDuration     = 30 * time.Second
	maxAttempts             = 3
	initialBackoff          = 100 * time.Millisecond
	rateLimitBackoff        = time.Second
	maxErrorBodyBytes       = 512
)

// Client calls a toxic-bert style scoring service over HTTP. The worker polls
// sequentially, so the rate limiter and circuit breaker mostly guard against
// restart storms and a misbehaving scoring backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	limiter    *rate.Limiter
	policy     retry.Policy
}

// New creates a scoring client for the service at baseURL.
func New(baseURL string, timeout time.Duration, requestsPerSecond float64) *Client {
	settings := gobreaker.Settings{
		Name: "scorer",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailureThreshold
		},
		Timeout: breakerOpenDuration,
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Scorer circuit breaker state changed", "from", from.String(), "to", to.String())
			metrics.ScorerBreakerState.Set(breakerStateValue(to))
		},
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		breaker:    gobreaker.NewCircuitBreaker(settings),
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		policy: retry.Policy{
			MaxAttempts:      maxAttempts,
			InitialBackoff:   initialBackoff,
			RateLimitBackoff: rateLimitBackoff,
			OnRetry: func(attempt int, err error, backoff time.Duration) {
				slog.Debug("Retrying scorer request", "attempt", attempt, "backoff", backoff, "error", err)
			},
		},
	}
}

type scoreRequest struct {
	Text string `json:"text"`
}

type scoreResponse struct {
	Scores []domain.LabeledScore `json:"scores"`
}

// Score implements domain.Scorer.
func (c *Client) Score(ctx context.Context, text string) ([]domain.LabeledScore, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("scorer rate limiter: %w", err)
	}

	start := time.Now()
	result, err := c.breaker.Execute(func() (any, error) {
		return retry.Do(ctx, c.policy, classifyHTTPError, func() ([]domain.LabeledScore, error) {
			return c.score(ctx, text)
		})
	})
	metrics.ScorerRequestDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			metrics.ScorerRequestsTotal.WithLabelValues("rejected").Inc()
			return nil, fmt.Errorf("scoring service unavailable: %w", err)
		}
		metrics.ScorerRequestsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.ScorerRequestsTotal.WithLabelValues("ok").Inc()
	return result.([]domain.LabeledScore), nil
}

func (c *Client) score(ctx context.Context, text string) ([]domain.LabeledScore, error) {
	body, err := json.Marshal(scoreRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("marshal score request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/score", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build score request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scorer request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, &statusError{code: resp.StatusCode, body: string(msg)}
	}

	var parsed scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode score response: %w", err)
	}
	return parsed.Scores, nil
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("scorer returned status %d: %s", e.code, e.body)
}

func classifyHTTPError(err error) retry.Action {
	if se, ok := err.(*statusError); ok {
		switch {
		case se.code == http.StatusTooManyRequests:
			return retry.After
		case se.code >= 500:
			return retry.Retry
		default:
			return retry.Stop
		}
	}
	// Network-level failures are transient.
	return retry.Retry
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}
