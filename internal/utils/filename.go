package utils

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// Whitespace characters to normalize
	whitespaceChars = regexp.MustCompile(`[\r\n\t]`)
	// Characters invalid in filenames on most filesystems, control characters included
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	// Multiple spaces to collapse
	multipleSpaces = regexp.MustCompile(`\s+`)
)

const maxFilenameLength = 200

// SanitizeFilename makes name safe to use as a single path component.
// Invalid characters are removed, whitespace is collapsed and the result is
// capped at 200 bytes without splitting a UTF-8 sequence.
func SanitizeFilename(name string) string {
	name = whitespaceChars.ReplaceAllString(name, " ")
	name = invalidFilenameChars.ReplaceAllString(name, "")
	name = multipleSpaces.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)

	// Trailing dots are dropped by Windows, and "." or ".." would escape the parent.
	name = strings.TrimRight(name, ". ")

	if len(name) > maxFilenameLength {
		cut := maxFilenameLength
		for cut > 0 && !utf8.RuneStart(name[cut]) {
			cut--
		}
		name = strings.TrimSpace(name[:cut])
	}

	if name == "" {
		name = "Untitled"
	}
	return name
}

// MultiPartExtensions are compound document extensions stripped as a whole.
var MultiPartExtensions = []string{
	".fb2.zip",
	".tar.gz",
}

// BaseName returns the file name of path without its extension.
func BaseName(path string) string {
	base := filepath.Base(path)
	lower := strings.ToLower(base)
	for _, ext := range MultiPartExtensions {
		if strings.HasSuffix(lower, ext) && len(base) > len(ext) {
			return base[:len(base)-len(ext)]
		}
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
