package slug

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "Duck Blind", "duck-blind"},
		{"collapse whitespace", "Big   Marsh\tNorth", "big-marsh-north"},
		{"strip punctuation", "Elk! Ridge? (Unit 4)", "elk-ridge-unit-4"},
		{"repeated hyphens", "a -- b", "a-b"},
		{"trim hyphens", "  -Lake Shore-  ", "lake-shore"},
		{"underscore kept", "snake_case title", "snake_case-title"},
		{"non ascii dropped", "사냥터 spot", "spot"},
		{"no-break space", "a\u00a0b", "a-b"},
		{"ideographic space", "Pine\u3000Flats", "pine-flats"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.input))
		})
	}
}

func TestNew_HasFourCharSuffix(t *testing.T) {
	s := New("Opening Day Tips")
	assert.True(t, strings.HasPrefix(s, "opening-day-tips-"))
	assert.Regexp(t, regexp.MustCompile(`^opening-day-tips-[0-9a-f]{4}$`), s)
}

func TestNew_EmptyBase(t *testing.T) {
	s := New("!!!")
	assert.Len(t, s, 12)
	assert.NotContains(t, s, "-")
}

func TestNew_Unique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		seen[New("same title")] = true
	}
	assert.Greater(t, len(seen), 1)
}
