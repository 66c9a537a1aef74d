package session

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Oisind123/FYP-Live-Stream-Moderation-Tool/internal/classify"
	"github.com/Oisind123/FYP-Live-Stream-Moderation-Tool/internal/domain"
	"github.com/Oisind123/FYP-Live-Stream-Moderation-Tool/internal/hub"
	"github.com/Oisind123/FYP-Live-Stream-Moderation-Tool/internal/ingest"
	"github.com/Oisind123/FYP-Live-Stream-Moderation-Tool/internal/source"
)

// Status is a non-blocking snapshot of the controller state.
type Status struct {
	Running           bool
	VideoID           string
	ThresholdElements float64
	ThresholdLikely   float64
}

// Controller enforces the single-active-session invariant. Start and Stop are
// serialized on a control-plane mutex; Status reads an atomic snapshot and
// never waits on that mutex.
type Controller struct {
	mu          sync.Mutex
	factory     domain.SourceFactory
	classifier  *classify.Classifier
	hub         *hub.Hub
	clock       clockwork.Clock
	backoff     time.Duration
	stopTimeout time.Duration

	current atomic.Pointer[ingest.Worker]
}

// New creates a controller. backoff is the worker's transient-failure pause;
// stopTimeout bounds how long Stop waits for a worker to terminate.
func New(factory domain.SourceFactory, classifier *classify.Classifier, h *hub.Hub, clock clockwork.Clock, backoff, stopTimeout time.Duration) *Controller {
	return &Controller{
		factory:     factory,
		classifier:  classifier,
		hub:         h,
		clock:       clock,
		backoff:     backoff,
		stopTimeout: stopTimeout,
	}
}

// Start resolves rawRef to a video ID, stops any running session, and starts
// a new ingestion worker bound to that ID. Returns the resolved ID, or
// domain.ErrInvalidReference with session state unchanged.
func (c *Controller) Start(rawRef string) (string, error) {
	videoID, err := source.ExtractVideoID(rawRef)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()

	w := ingest.New(videoID, c.factory, c.classifier, c.hub, c.clock, c.backoff)
	w.Start()
	c.current.Store(w)

	slog.Info("Session started", "video_id", videoID)
	return videoID, nil
}

// Stop terminates the active session, if any. Idempotent; always succeeds
// from the caller's perspective.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

// stopLocked signals the current worker and waits up to stopTimeout for it to
// terminate. The session state is cleared regardless: an abandoned worker's
// stop signal stays set, so it exits on its next loop check.
func (c *Controller) stopLocked() {
	w := c.current.Load()
	if w == nil {
		return
	}

	w.Stop()

	timer := c.clock.NewTimer(c.stopTimeout)
	defer timer.Stop()
	select {
	case <-w.Done():
		slog.Info("Session stopped", "video_id", w.VideoID())
	case <-timer.Chan():
		slog.Warn("Worker did not terminate within timeout, abandoning",
			"video_id", w.VideoID(),
			"timeout", c.stopTimeout,
		)
	}

	c.current.Store(nil)
}

// Status returns the current session state. Never blocks on the
// control-plane mutex.
func (c *Controller) Status() Status {
	elements, likely := c.classifier.Thresholds()
	st := Status{ThresholdElements: elements, ThresholdLikely: likely}

	if w := c.current.Load(); w != nil && w.Running() {
		st.Running = true
		st.VideoID = w.VideoID()
	}
	return st
}
