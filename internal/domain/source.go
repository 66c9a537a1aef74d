package domain

import "context"

// ChatSource is a live-chat session bound to one video ID. It is polled
// repeatedly by the ingestion worker and owned by exactly one worker at a time.
type ChatSource interface {
	// IsAlive reports whether the stream still has an active chat.
	IsAlive() bool
	// Poll fetches the next batch of chat events. An empty batch is normal
	// and not an error.
	Poll(ctx context.Context) ([]ChatEvent, error)
	Close() error
}

// SourceFactory opens a chat source for a video ID.
type SourceFactory interface {
	Open(ctx context.Context, videoID string) (ChatSource, error)
}
