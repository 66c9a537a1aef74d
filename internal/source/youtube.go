package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Oisind123/FYP-Live-Stream-Moderation-Tool/internal/domain"
)

const (
	defaultBaseURL = "https://www.youtube.com"
	clientName     = "WEB"
	clientVersion  = "2.20240101.00.00"

	// Fallback delay between polls when the response does not suggest one.
	defaultPollDelay = time.Second
	maxPageBytes     = 4 << 20
)

var (
	apiKeyPattern       = regexp.MustCompile(`"INNERTUBE_API_KEY":"([^"]+)"`)
	continuationPattern = regexp.MustCompile(`"continuation":"([^"]+)"`)
)

// Factory opens live-chat sessions against the YouTube Innertube API.
type Factory struct {
	baseURL    string
	httpClient *http.Client
	clock      clockwork.Clock
}

// NewFactory creates a session factory. httpClient may be nil to use a
// default client with a sensible timeout.
func NewFactory(httpClient *http.Client, clock clockwork.Clock) *Factory {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Factory{baseURL: defaultBaseURL, httpClient: httpClient, clock: clock}
}

// Open fetches the watch page for videoID and extracts the Innertube API key
// and the initial live-chat continuation token. Fails when the video has no
// active live chat.
func (f *Factory) Open(ctx context.Context, videoID string) (domain.ChatSource, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/watch?v="+videoID, nil)
	if err != nil {
		return nil, fmt.Errorf("build watch page request: %w", err)
	}
	req.Header.Set("Accept-Language", "en-US")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch watch page: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("watch page returned status %d", resp.StatusCode)
	}

	page, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("read watch page: %w", err)
	}

	apiKey := firstSubmatch(apiKeyPattern, page)
	if apiKey == "" {
		return nil, fmt.Errorf("video %s: no Innertube API key on watch page", videoID)
	}
	continuation := firstSubmatch(continuationPattern, page)
	if continuation == "" {
		return nil, fmt.Errorf("video %s: no live chat continuation (stream not live?)", videoID)
	}

	return &Session{
		videoID:      videoID,
		baseURL:      f.baseURL,
		apiKey:       apiKey,
		continuation: continuation,
		httpClient:   f.httpClient,
		clock:        f.clock,
		alive:        true,
	}, nil
}

func firstSubmatch(p *regexp.Regexp, page []byte) string {
	if m := p.FindSubmatch(page); m != nil {
		return string(m[1])
	}
	return ""
}

// Session is one live-chat polling session. Owned by a single ingestion
// worker; not safe for concurrent use.
type Session struct {
	videoID      string
	baseURL      string
	apiKey       string
	continuation string
	httpClient   *http.Client
	clock        clockwork.Clock
	alive        bool
	pollDelay    time.Duration
}

// IsAlive reports whether the chat is still open. It turns false once a poll
// response carries no further continuation.
func (s *Session) IsAlive() bool {
	return s.alive
}

// Close marks the session dead. The underlying HTTP client is shared and
// stays open.
func (s *Session) Close() error {
	s.alive = false
	return nil
}

// Poll fetches the next batch of chat messages. It honors the server's
// suggested delay between polls, sleeping via the injected clock so a
// cancelled context interrupts the wait.
func (s *Session) Poll(ctx context.Context) ([]domain.ChatEvent, error) {
	if !s.alive {
		return nil, nil
	}

	if s.pollDelay > 0 {
		timer := s.clock.NewTimer(s.pollDelay)
		select {
		case <-timer.Chan():
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		}
	}

	body, err := json.Marshal(liveChatRequest{
		Context:      requestContext{Client: clientInfo{ClientName: clientName, ClientVersion: clientVersion}},
		Continuation: s.continuation,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal live chat request: %w", err)
	}

	url := s.baseURL + "/youtubei/v1/live_chat/get_live_chat?key=" + s.apiKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build live chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("live chat request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("live chat endpoint returned status %d", resp.StatusCode)
	}

	var parsed liveChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode live chat response: %w", err)
	}

	events := parseActions(parsed.ContinuationContents.LiveChatContinuation.Actions)

	next, delay := nextContinuation(parsed.ContinuationContents.LiveChatContinuation.Continuations)
	if next == "" {
		// Stream ended; no further chat to fetch.
		s.alive = false
	} else {
		s.continuation = next
		s.pollDelay = delay
	}

	return events, nil
}

// --- Innertube wire types (the subset we consume) ---

type liveChatRequest struct {
	Context      requestContext `json:"context"`
	Continuation string         `json:"continuation"`
}

type requestContext struct {
	Client clientInfo `json:"client"`
}

type clientInfo struct {
	ClientName    string `json:"clientName"`
	ClientVersion string `json:"clientVersion"`
}

type liveChatResponse struct {
	ContinuationContents struct {
		LiveChatContinuation struct {
			Continuations []continuationWrapper `json:"continuations"`
			Actions       []chatAction          `json:"actions"`
		} `json:"liveChatContinuation"`
	} `json:"continuationContents"`
}

type continuationWrapper struct {
	TimedContinuationData        *continuationData `json:"timedContinuationData"`
	InvalidationContinuationData *continuationData `json:"invalidationContinuationData"`
	ReloadContinuationData       *continuationData `json:"reloadContinuationData"`
}

type continuationData struct {
	Continuation string `json:"continuation"`
	TimeoutMs    int    `json:"timeoutMs"`
}

type chatAction struct {
	AddChatItemAction *struct {
		Item struct {
			LiveChatTextMessageRenderer *textMessageRenderer `json:"liveChatTextMessageRenderer"`
		} `json:"item"`
	} `json:"addChatItemAction"`
}

type textMessageRenderer struct {
	Message struct {
		Runs []messageRun `json:"runs"`
	} `json:"message"`
	AuthorName struct {
		SimpleText string `json:"simpleText"`
	} `json:"authorName"`
	TimestampUsec string `json:"timestampUsec"`
}

type messageRun struct {
	Text  string `json:"text"`
	Emoji *struct {
		Shortcuts []string `json:"shortcuts"`
	} `json:"emoji"`
}

func parseActions(actions []chatAction) []domain.ChatEvent {
	var events []domain.ChatEvent
	for _, a := range actions {
		if a.AddChatItemAction == nil {
			continue
		}
		r := a.AddChatItemAction.Item.LiveChatTextMessageRenderer
		if r == nil {
			// Membership notices, stickers etc. are not chat text.
			continue
		}
		events = append(events, domain.ChatEvent{
			Timestamp: parseTimestampUsec(r.TimestampUsec),
			Author:    r.AuthorName.SimpleText,
			Text:      renderRuns(r.Message.Runs),
		})
	}
	return events
}

func renderRuns(runs []messageRun) string {
	var b strings.Builder
	for _, run := range runs {
		if run.Text != "" {
			b.WriteString(run.Text)
		} else if run.Emoji != nil && len(run.Emoji.Shortcuts) > 0 {
			b.WriteString(run.Emoji.Shortcuts[0])
		}
	}
	return b.String()
}

func parseTimestampUsec(s string) time.Time {
	usec, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMicro(usec).UTC()
}

func nextContinuation(wrappers []continuationWrapper) (string, time.Duration) {
	for _, w := range wrappers {
		for _, d := range []*continuationData{w.TimedContinuationData, w.InvalidationContinuationData, w.ReloadContinuationData} {
			if d != nil && d.Continuation != "" {
				delay := defaultPollDelay
				if d.TimeoutMs > 0 {
					delay = time.Duration(d.TimeoutMs) * time.Millisecond
				}
				return d.Continuation, delay
			}
		}
	}
	return "", 0
}
