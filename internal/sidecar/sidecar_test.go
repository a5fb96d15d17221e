package sidecar

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	m := New("Война и мир <полное издание>", "2024-01-31", "/out/book/abc123.png")

	path, err := Write(dir, m)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "metadata.json"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(raw)

	assert.Contains(t, text, `"title": "Война и мир <полное издание>"`)
	assert.Contains(t, text, `"language": "ru"`)
	assert.Contains(t, text, `"thumbnail": "abc123.png"`)
	assert.Contains(t, text, "\n    \"date\": \"2024-01-31\"")
	assert.False(t, strings.Contains(text, `\u`), "non-ASCII must not be escaped")

	read, err := Read(dir)
	require.NoError(t, err)
	assert.Equal(t, m, *read)
	_, err = uuid.Parse(read.Identifier)
	assert.NoError(t, err)
}

func TestWrite_NoThumbnail(t *testing.T) {
	dir := t.TempDir()
	_, err := Write(dir, New("Title", "2024-01-31", ""))
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"thumbnail": null`)
}

func TestNew_UniqueIdentifiers(t *testing.T) {
	a := New("a", "2024-01-01", "")
	b := New("a", "2024-01-01", "")
	assert.NotEqual(t, a.Identifier, b.Identifier)
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, Exists(dir))
	_, err := Write(dir, New("t", "2024-01-01", ""))
	require.NoError(t, err)
	assert.True(t, Exists(dir))
}

func TestWrite_MissingDirectory(t *testing.T) {
	_, err := Write(filepath.Join(t.TempDir(), "nope"), New("t", "2024-01-01", ""))
	assert.Error(t, err)
}
