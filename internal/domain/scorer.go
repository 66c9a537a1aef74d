package domain

import "context"

// LabeledScore is one labeled probability returned by the scoring model.
type LabeledScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Scorer scores a text for toxicity. Implementations may return zero, one or
// multiple labeled scores; the classifier extracts the toxicity label.
// Calls are synchronous and may block on network I/O.
type Scorer interface {
	Score(ctx context.Context, text string) ([]LabeledScore, error)
}
