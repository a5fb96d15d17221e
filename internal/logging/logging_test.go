package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWriter_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(&buf, "warn")

	logger.Info().Msg("hidden")
	logger.Warn().Str("ext", "unknown").Msg("no extractor")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"ext":"unknown"`)
}

func TestNew_FileWriter(t *testing.T) {
	logger := New(Options{Level: "debug", File: t.TempDir() + "/logs/docshelf.log"})
	assert.NotNil(t, logger)
	logger.Debug().Msg("written to file")
}
