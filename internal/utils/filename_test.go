package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "removes invalid characters",
			input:    `file<>:"/\|?*name`,
			expected: "filename",
		},
		{
			name:     "replaces newlines and tabs with spaces",
			input:    "file\nname\twith\rspaces",
			expected: "file name with spaces",
		},
		{
			name:     "collapses multiple spaces",
			input:    "file   name  with    spaces",
			expected: "file name with spaces",
		},
		{
			name:     "keeps cyrillic",
			input:    "Война и мир. Том 1",
			expected: "Война и мир. Том 1",
		},
		{
			name:     "strips trailing dots",
			input:    "notes...",
			expected: "notes",
		},
		{
			name:     "parent directory reference",
			input:    "..",
			expected: "Untitled",
		},
		{
			name:     "returns Untitled for empty",
			input:    "",
			expected: "Untitled",
		},
		{
			name:     "returns Untitled for only invalid chars",
			input:    `<>:"/\|?*`,
			expected: "Untitled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFilename(tt.input))
		})
	}
}

func TestSanitizeFilename_LengthLimit(t *testing.T) {
	ascii := SanitizeFilename(strings.Repeat("a", 300))
	assert.Len(t, ascii, 200)

	// Two-byte runes: the cut must land on a rune boundary.
	cyrillic := SanitizeFilename(strings.Repeat("я", 150) + "x")
	assert.LessOrEqual(t, len(cyrillic), 200)
	assert.True(t, utf8.ValidString(cyrillic))
}

func TestBaseName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"/library/book.pdf", "book"},
		{"/library/Book.Name.djvu", "Book.Name"},
		{"novel.fb2.zip", "novel"},
		{"NOVEL.FB2.ZIP", "NOVEL"},
		{"/library/noext", "noext"},
		{".fb2.zip", ".fb2"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, BaseName(tt.input))
		})
	}
}
