package ingest

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Oisind123/FYP-Live-Stream-Moderation-Tool/internal/classify"
	"github.com/Oisind123/FYP-Live-Stream-Moderation-Tool/internal/domain"
	"github.com/Oisind123/FYP-Live-Stream-Moderation-Tool/internal/hub"
	"github.com/Oisind123/FYP-Live-Stream-Moderation-Tool/internal/metrics"
)

// Worker drives one polling loop bound to one video ID. It opens its own
// chat source, survives transient failures with a fixed backoff, and stops
// cooperatively when its context is cancelled.
//
// Lifecycle: created, Start once, Stop once; Done closes when the loop exits.
type Worker struct {
	videoID    string
	factory    domain.SourceFactory
	classifier *classify.Classifier
	hub        *hub.Hub
	clock      clockwork.Clock
	backoff    time.Duration

	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
}

// New creates a worker bound to videoID. backoff is the fixed pause after a
// transient failure.
func New(videoID string, factory domain.SourceFactory, classifier *classify.Classifier, h *hub.Hub, clock clockwork.Clock, backoff time.Duration) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		videoID:    videoID,
		factory:    factory,
		classifier: classifier,
		hub:        h,
		clock:      clock,
		backoff:    backoff,
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
}

// VideoID returns the stream identifier this worker is bound to.
func (w *Worker) VideoID() string { return w.videoID }

// Start launches the polling loop. Subsequent calls are no-ops.
func (w *Worker) Start() {
	w.startOnce.Do(func() { go w.run() })
}

// Stop signals the loop to exit. It does not wait; use Done.
func (w *Worker) Stop() {
	w.stopOnce.Do(w.cancel)
}

// Done is closed once the loop has exited and the source is released.
func (w *Worker) Done() <-chan struct{} { return w.done }

// Running reports whether the loop is still active. Never blocks.
func (w *Worker) Running() bool {
	select {
	case <-w.done:
		return false
	default:
		return true
	}
}

func (w *Worker) run() {
	defer close(w.done)
	defer metrics.IngestWorkerRunning.Set(0)
	metrics.IngestWorkerRunning.Set(1)

	slog.Info("Ingestion worker started", "video_id", w.videoID)
	defer slog.Info("Ingestion worker stopped", "video_id", w.videoID)

	var source domain.ChatSource
	defer func() {
		if source != nil {
			_ = source.Close()
		}
	}()

	for {
		if w.stopped() {
			return
		}

		if source == nil {
			s, err := w.factory.Open(w.ctx, w.videoID)
			if err != nil {
				if !w.recover(err) {
					return
				}
				continue
			}
			source = s
		}

		if !source.IsAlive() {
			slog.Info("Chat source no longer alive", "video_id", w.videoID)
			return
		}

		events, err := source.Poll(w.ctx)
		if err != nil {
			if w.stopped() {
				return
			}
			if !w.recover(err) {
				return
			}
			continue
		}

		for _, ev := range events {
			if w.stopped() {
				return
			}

			p, tier, err := w.classifier.Classify(w.ctx, ev.Text)
			if err != nil {
				if w.stopped() {
					return
				}
				// Skip this message after the usual backoff; the rest of the
				// batch is still processed in order.
				if !w.recover(err) {
					return
				}
				continue
			}

			w.hub.Publish(domain.NewClassifiedEvent(w.videoID, ev, p, tier))
			metrics.IngestMessagesTotal.WithLabelValues(string(tier)).Inc()
		}
	}
}

func (w *Worker) stopped() bool {
	select {
	case <-w.ctx.Done():
		return true
	default:
		return false
	}
}

// recover surfaces a transient failure to subscribers as a SYSTEM event and
// pauses for the fixed backoff. Returns false when the worker was stopped
// during the pause.
func (w *Worker) recover(err error) bool {
	slog.Warn("Ingestion error, continuing after backoff", "video_id", w.videoID, "error", err)
	metrics.IngestErrorsTotal.Inc()
	w.hub.Publish(domain.NewSystemEvent(w.videoID, "[backend error] "+err.Error()))

	timer := w.clock.NewTimer(w.backoff)
	defer timer.Stop()
	select {
	case <-timer.Chan():
		return true
	case <-w.ctx.Done():
		return false
	}
}
