package classify

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/Oisind123/FYP-Live-Stream-Moderation-Tool/internal/domain"
)

// toxic-bert style models label the toxicity score either "toxic" or,
// for unnamed binary heads, "LABEL_1".
const (
	toxicLabel    = "TOXIC"
	fallbackLabel = "LABEL_1"
)

// Classifier assigns a toxicity tier to message text. Pure given a fixed
// scorer and thresholds.
type Classifier struct {
	scorer   domain.Scorer
	elements float64
	likely   float64
}

// New creates a classifier. elements and likely are the lower bounds of the
// TOXIC_ELEMENTS and LIKELY_TOXIC tiers.
func New(scorer domain.Scorer, elements, likely float64) *Classifier {
	return &Classifier{scorer: scorer, elements: elements, likely: likely}
}

// Classify scores text and returns its toxicity probability and tier.
// Scorer errors are propagated; a scorer response without a toxicity label
// yields probability 0.0 and tier NORMAL.
func (c *Classifier) Classify(ctx context.Context, text string) (float64, domain.Tier, error) {
	scores, err := c.scorer.Score(ctx, text)
	if err != nil {
		return 0, domain.TierNormal, fmt.Errorf("score text: %w", err)
	}

	p := toxicProbability(scores)
	return p, c.TierFor(p), nil
}

// TierFor maps a probability to its tier.
func (c *Classifier) TierFor(p float64) domain.Tier {
	switch {
	case p >= c.likely:
		return domain.TierLikelyToxic
	case p >= c.elements:
		return domain.TierToxicElements
	default:
		return domain.TierNormal
	}
}

// Thresholds returns the configured tier bounds.
func (c *Classifier) Thresholds() (elements, likely float64) {
	return c.elements, c.likely
}

func toxicProbability(scores []domain.LabeledScore) float64 {
	p, ok := findScore(scores, toxicLabel)
	if !ok {
		p, ok = findScore(scores, fallbackLabel)
	}
	if !ok || math.IsNaN(p) || p < 0 || p > 1 {
		return 0
	}
	return p
}

func findScore(scores []domain.LabeledScore, label string) (float64, bool) {
	for _, s := range scores {
		if strings.EqualFold(s.Label, label) {
			return s.Score, true
		}
	}
	return 0, false
}
