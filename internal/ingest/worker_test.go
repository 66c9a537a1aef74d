package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Oisind123/FYP-Live-Stream-Moderation-Tool/internal/classify"
	"github.com/Oisind123/FYP-Live-Stream-Moderation-Tool/internal/domain"
	"github.com/Oisind123/FYP-Live-Stream-Moderation-Tool/internal/hub"
)

// scriptedSource replays poll results in sequence, then blocks until the
// poll context is cancelled.
type scriptedSource struct {
	mu               sync.Mutex
	polls            []pollResult
	alive            bool
	closed           bool
	dieWhenExhausted bool
	polled           chan struct{}
}

type pollResult struct {
	events []domain.ChatEvent
	err    error
}

func newScriptedSource(polls ...pollResult) *scriptedSource {
	return &scriptedSource{polls: polls, alive: true, polled: make(chan struct{}, 64)}
}

func (s *scriptedSource) IsAlive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alive
}

func (s *scriptedSource) Poll(ctx context.Context) ([]domain.ChatEvent, error) {
	select {
	case s.polled <- struct{}{}:
	default:
	}

	s.mu.Lock()
	if len(s.polls) == 0 {
		if s.dieWhenExhausted {
			s.alive = false
			s.mu.Unlock()
			return nil, nil
		}
		s.mu.Unlock()
		<-ctx.Done()
		return nil, ctx.Err()
	}
	next := s.polls[0]
	s.polls = s.polls[1:]
	s.mu.Unlock()

	return next.events, next.err
}

func (s *scriptedSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

type sourceFactory struct {
	mu     sync.Mutex
	source domain.ChatSource
	errs   []error // errors returned before the source, one per Open call
}

func (f *sourceFactory) Open(_ context.Context, _ string) (domain.ChatSource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return nil, err
	}
	return f.source, nil
}

type fixedScorer struct{ score float64 }

func (s fixedScorer) Score(_ context.Context, _ string) ([]domain.LabeledScore, error) {
	return []domain.LabeledScore{{Label: "toxic", Score: s.score}}, nil
}

type failingScorer struct{ err error }

func (s failingScorer) Score(_ context.Context, _ string) ([]domain.LabeledScore, error) {
	return nil, s.err
}

func chatEvent(author, text string) domain.ChatEvent {
	return domain.ChatEvent{Timestamp: time.Unix(1700000000, 0).UTC(), Author: author, Text: text}
}

func startWorker(t *testing.T, factory domain.SourceFactory, scorer domain.Scorer) (*Worker, *hub.Subscriber) {
	t.Helper()

	h := hub.New(500, 0)
	sub, err := h.Register()
	require.NoError(t, err)

	classifier := classify.New(scorer, 0.20, 0.60)
	w := New("dQw4w9WgXcQ", factory, classifier, h, clockwork.NewRealClock(), time.Millisecond)
	w.Start()
	t.Cleanup(func() {
		w.Stop()
		<-w.Done()
	})
	return w, sub
}

func receiveEvent(t *testing.T, sub *hub.Subscriber) domain.ClassifiedEvent {
	t.Helper()
	select {
	case data := <-sub.Events():
		var ev domain.ClassifiedEvent
		require.NoError(t, json.Unmarshal(data, &ev))
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return domain.ClassifiedEvent{}
	}
}

func TestWorker_ClassifiesAndBroadcastsInOrder(t *testing.T) {
	src := newScriptedSource(
		pollResult{events: []domain.ChatEvent{chatEvent("alice", "first"), chatEvent("bob", "second")}},
		pollResult{events: []domain.ChatEvent{chatEvent("carol", "third")}},
	)
	_, sub := startWorker(t, &sourceFactory{source: src}, fixedScorer{score: 0.75})

	for _, want := range []string{"first", "second", "third"} {
		ev := receiveEvent(t, sub)
		assert.Equal(t, want, ev.Text)
		assert.Equal(t, domain.TierLikelyToxic, ev.Tier)
		assert.Equal(t, 0.75, ev.PToxic)
		assert.Equal(t, "dQw4w9WgXcQ", ev.VideoID)
		assert.Contains(t, ev.Links.OpenWatch, "dQw4w9WgXcQ")
	}
}

func TestWorker_PollErrorEmitsSystemEventAndContinues(t *testing.T) {
	src := newScriptedSource(
		pollResult{err: errors.New("connection reset")},
		pollResult{events: []domain.ChatEvent{chatEvent("alice", "after recovery")}},
	)
	_, sub := startWorker(t, &sourceFactory{source: src}, fixedScorer{score: 0.1})

	system := receiveEvent(t, sub)
	assert.Equal(t, domain.TierSystem, system.Tier)
	assert.Zero(t, system.PToxic)
	assert.Contains(t, system.Text, "connection reset")
	assert.Empty(t, system.Links.OpenWatch)

	normal := receiveEvent(t, sub)
	assert.Equal(t, "after recovery", normal.Text)
	assert.Equal(t, domain.TierNormal, normal.Tier)
}

func TestWorker_OpenFailureRetries(t *testing.T) {
	src := newScriptedSource(
		pollResult{events: []domain.ChatEvent{chatEvent("alice", "finally open")}},
	)
	factory := &sourceFactory{source: src, errs: []error{errors.New("watch page 503")}}
	_, sub := startWorker(t, factory, fixedScorer{score: 0.1})

	system := receiveEvent(t, sub)
	assert.Equal(t, domain.TierSystem, system.Tier)
	assert.Contains(t, system.Text, "watch page 503")

	normal := receiveEvent(t, sub)
	assert.Equal(t, "finally open", normal.Text)
}

func TestWorker_ClassifyErrorSkipsMessage(t *testing.T) {
	src := newScriptedSource(
		pollResult{events: []domain.ChatEvent{chatEvent("alice", "unscorable")}},
		pollResult{events: nil},
	)
	_, sub := startWorker(t, &sourceFactory{source: src}, failingScorer{err: errors.New("model timeout")})

	system := receiveEvent(t, sub)
	assert.Equal(t, domain.TierSystem, system.Tier)
	assert.Contains(t, system.Text, "model timeout")
}

func TestWorker_ExitsWhenSourceDies(t *testing.T) {
	src := newScriptedSource(pollResult{events: nil})
	src.dieWhenExhausted = true
	w, _ := startWorker(t, &sourceFactory{source: src}, fixedScorer{score: 0.1})

	select {
	case <-w.Done():
	case <-time.After(time.Second):
		t.Fatal("worker did not exit after source died")
	}
	assert.False(t, w.Running())
}

func TestWorker_StopInterruptsBlockedPoll(t *testing.T) {
	src := newScriptedSource() // first poll blocks on ctx
	w, _ := startWorker(t, &sourceFactory{source: src}, fixedScorer{score: 0.1})

	<-src.polled

	w.Stop()
	select {
	case <-w.Done():
	case <-time.After(time.Second):
		t.Fatal("worker did not stop while poll was blocked")
	}

	src.mu.Lock()
	defer src.mu.Unlock()
	assert.True(t, src.closed)
}

func TestWorker_StopIsIdempotent(t *testing.T) {
	src := newScriptedSource()
	w, _ := startWorker(t, &sourceFactory{source: src}, fixedScorer{score: 0.1})

	w.Stop()
	w.Stop()
	<-w.Done()
	assert.False(t, w.Running())
}
