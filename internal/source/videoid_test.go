package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Oisind123/FYP-Live-Stream-Moderation-Tool/internal/domain"
)

func TestExtractVideoID_ValidForms(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"bare ID", "dQw4w9WgXcQ"},
		{"bare ID with whitespace", "  dQw4w9WgXcQ\n"},
		{"short link", "https://youtu.be/dQw4w9WgXcQ"},
		{"watch URL", "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		{"watch URL with extra params", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s"},
		{"live URL", "https://www.youtube.com/live/dQw4w9WgXcQ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ExtractVideoID(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, "dQw4w9WgXcQ", id)
		})
	}
}

func TestExtractVideoID_InvalidForms(t *testing.T) {
	for _, raw := range []string{"", "not a url", "https://example.com/video", "tooshort", "https://youtu.be/short"} {
		_, err := ExtractVideoID(raw)
		assert.ErrorIs(t, err, domain.ErrInvalidReference, "input %q", raw)
	}
}
