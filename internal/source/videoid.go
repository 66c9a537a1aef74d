package source

import (
	"regexp"
	"strings"

	"github.com/Oisind123/FYP-Live-Stream-Moderation-Tool/internal/domain"
)

var (
	exactVideoID = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)

	// Embedded forms: watch URLs, short links and live URLs.
	embeddedVideoID = []*regexp.Regexp{
		regexp.MustCompile(`v=([a-zA-Z0-9_-]{11})`),
		regexp.MustCompile(`youtu\.be/([a-zA-Z0-9_-]{11})`),
		regexp.MustCompile(`live/([a-zA-Z0-9_-]{11})`),
	}
)

// ExtractVideoID resolves a free-form stream reference (a bare 11-character
// video ID or a URL embedding one) to a video ID. Returns
// domain.ErrInvalidReference when no ID can be extracted.
func ExtractVideoID(raw string) (string, error) {
	s := strings.TrimSpace(raw)

	if exactVideoID.MatchString(s) {
		return s, nil
	}

	for _, p := range embeddedVideoID {
		if m := p.FindStringSubmatch(s); m != nil {
			return m[1], nil
		}
	}

	return "", domain.ErrInvalidReference
}
