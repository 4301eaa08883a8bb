package util

import (
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
		{"simple", "The Little Cloud", "the-little-cloud"},
		{"punctuation", "The Fox & the Kite!", "the-fox-the-kite"},
		{"accents folded", "Élan à la Crème", "elan-a-la-creme"},
		{"numbers kept", "Counting 10 Stars", "counting-10-stars"},
		{"leading and trailing junk", "  --Hello--  ", "hello"},
		{"emoji dropped", "🐉 Dragons", "dragons"},
		{"empty", "", "book"},
		{"only symbols", "!!!", "book"},
		{"non latin", "夜空", "book"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.input))
		})
	}
}

func TestSlugify_Truncates(t *testing.T) {
	long := strings.Repeat("word ", 30)

	s := Slugify(long)
	assert.LessOrEqual(t, len(s), MaxSlugLength)
	assert.False(t, strings.HasSuffix(s, "-"))
	assert.True(t, strings.HasPrefix(s, "word-word"))
}

func TestNormalizeTitle(t *testing.T) {
	decomposed := "Cafe\u0301"

	assert.Equal(t, "Caf\u00e9", NormalizeTitle(decomposed))
	assert.Equal(t, "A Long Title", NormalizeTitle("  A \t Long\n\nTitle "))
	assert.Empty(t, NormalizeTitle("   "))
}
