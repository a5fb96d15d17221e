package sidecar

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const (
	// FileName is the sidecar written next to every materialized document.
	FileName = "metadata.json"
	// Language is the fixed locale tag of the library.
	Language = "ru"
)

type Metadata struct {
	Identifier string  `json:"identifier"`
	Title      string  `json:"title"`
	Date       string  `json:"date"`
	Language   string  `json:"language"`
	Thumbnail  *string `json:"thumbnail"`
}

// New builds sidecar metadata with a fresh identifier. thumbnailPath may be
// empty; only its base name is recorded.
func New(title, date, thumbnailPath string) Metadata {
	m := Metadata{
		Identifier: uuid.New().String(),
		Title:      title,
		Date:       date,
		Language:   Language,
	}
	if thumbnailPath != "" {
		base := filepath.Base(thumbnailPath)
		m.Thumbnail = &base
	}
	return m
}

// Write stores m as pretty-printed JSON in dir/metadata.json and returns the path.
// Non-ASCII text is written as-is.
func Write(dir string, m Metadata) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(m); err != nil {
		return "", fmt.Errorf("failed to marshal metadata: %w", err)
	}

	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write metadata file: %w", err)
	}
	return path, nil
}

// Exists reports whether dir already holds a sidecar.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, FileName))
	return err == nil
}

// Read loads the sidecar in dir.
func Read(dir string) (*Metadata, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		return nil, err
	}
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse metadata file: %w", err)
	}
	return &m, nil
}
