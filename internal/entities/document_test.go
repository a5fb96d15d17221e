package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		ext    string
		want   Format
		wantOK bool
	}{
		{"pdf", FormatPDF, true},
		{".PDF", FormatPDF, true},
		{"Fb2", FormatFB2, true},
		{".djvu", FormatDjVu, true},
		{"zip", "", false},
		{"", "", false},
		{"unknown", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			got, ok := ParseFormat(tt.ext)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeExtension(t *testing.T) {
	assert.Equal(t, "pdf", NormalizeExtension(".PDF"))
	assert.Equal(t, "zip", NormalizeExtension(" zip "))
	assert.Equal(t, "", NormalizeExtension("."))
}
