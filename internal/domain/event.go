package domain

import (
	"net/url"
	"strings"
	"time"
	"unicode"
)

// Tier is the toxicity bucket assigned to a classified message.
type Tier string

const (
	TierNormal        Tier = "NORMAL"
	TierToxicElements Tier = "TOXIC_ELEMENTS"
	TierLikelyToxic   Tier = "LIKELY_TOXIC"
	// TierSystem marks in-band status notices (pipeline errors) rather than
	// chat messages. System events carry probability 0.0 and empty links.
	TierSystem Tier = "SYSTEM"
)

// ChatEvent is a single raw message polled from the live chat source.
// Immutable once produced.
type ChatEvent struct {
	Timestamp time.Time
	Author    string
	Text      string
}

// Links are the navigation URLs derived from a video ID and author name.
type Links struct {
	OpenChat   string `json:"open_chat"`
	OpenWatch  string `json:"open_watch"`
	SearchUser string `json:"search_user"`
}

// NewLinks builds the deterministic navigation links for a message.
func NewLinks(videoID, author string) Links {
	return Links{
		OpenChat:   "https://www.youtube.com/live_chat?v=" + videoID,
		OpenWatch:  "https://www.youtube.com/watch?v=" + videoID,
		SearchUser: "https://www.youtube.com/results?search_query=" + url.QueryEscape(strings.TrimSpace(author)),
	}
}

// ClassifiedEvent is the annotated message pushed to viewers. The JSON tags
// define the websocket wire format; every event, including system notices,
// goes through this single serialization path.
type ClassifiedEvent struct {
	Timestamp string  `json:"ts"`
	VideoID   string  `json:"video_id"`
	Author    string  `json:"author"`
	Text      string  `json:"text"`
	PToxic    float64 `json:"p_toxic"`
	Tier      Tier    `json:"tier"`
	Links     Links   `json:"links"`
}

// NewClassifiedEvent annotates a chat event with its toxicity score and tier.
func NewClassifiedEvent(videoID string, ev ChatEvent, pToxic float64, tier Tier) ClassifiedEvent {
	author := strings.TrimSpace(ev.Author)
	return ClassifiedEvent{
		Timestamp: ev.Timestamp.Format(time.RFC3339),
		VideoID:   videoID,
		Author:    author,
		Text:      ev.Text,
		PToxic:    pToxic,
		Tier:      tier,
		Links:     NewLinks(videoID, author),
	}
}

// NewSystemEvent builds an in-band status notice for subscribers. The message
// is stripped of control characters; quoting is handled by JSON serialization.
func NewSystemEvent(videoID, message string) ClassifiedEvent {
	return ClassifiedEvent{
		VideoID: videoID,
		Text:    sanitizeMessage(message),
		PToxic:  0.0,
		Tier:    TierSystem,
	}
}

func sanitizeMessage(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
}
