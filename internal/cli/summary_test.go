package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mrlokans/docshelf/internal/entities"
	"github.com/mrlokans/docshelf/internal/ingest"
)

func strPtr(s string) *string { return &s }

func TestPrintSummary(t *testing.T) {
	t.Run("no documents", func(t *testing.T) {
		var buf bytes.Buffer
		PrintSummary(&buf, &ingest.Report{Stats: entities.RunCounts{Scanned: 3, Duplicates: 3}})

		out := buf.String()
		assert.True(t, strings.HasPrefix(out, "No documents found."))
		assert.Contains(t, out, "=== Ingest Summary ===")
		assert.Contains(t, out, "Duplicates skipped: 3")
		assert.NotContains(t, out, "Archives expanded")
	})

	t.Run("documents with and without thumbnails", func(t *testing.T) {
		var buf bytes.Buffer
		PrintSummary(&buf, &ingest.Report{
			Results: []ingest.Result{
				{
					SourcePath:    "/lib/a/a.pdf",
					OriginalPath:  "/src/a.pdf",
					Title:         "A",
					CreationDate:  "2024-01-02",
					Hash:          "abc",
					ThumbnailPath: strPtr("/lib/a/abc.png"),
				},
				{
					SourcePath:   "/lib/b/b.djvu",
					OriginalPath: "/src/b.zip!b.djvu",
					Title:        "B",
					CreationDate: "2024-02-03",
					Hash:         "def",
				},
			},
			Stats:    entities.RunCounts{Scanned: 2, Matched: 2, Archives: 1, Succeeded: 2},
			Duration: 1500 * time.Millisecond,
		})

		out := buf.String()
		assert.Contains(t, out, "Path: /lib/a/a.pdf")
		assert.Contains(t, out, "Source: /src/b.zip!b.djvu")
		assert.Contains(t, out, "Title: A")
		assert.Contains(t, out, "Creation date: 2024-02-03")
		assert.Contains(t, out, "Thumbnail: /lib/a/abc.png")
		assert.Contains(t, out, "Thumbnail: not created")
		assert.Contains(t, out, "Archives expanded: 1")
		assert.Contains(t, out, "Ingested: 2")
		assert.Contains(t, out, "Duration: 1.5s")
		assert.Equal(t, 2, strings.Count(out, strings.Repeat("-", separatorWidth)))
	})
}

func TestPrintDocuments(t *testing.T) {
	var buf bytes.Buffer
	PrintDocuments(&buf, nil, 0)
	assert.Equal(t, "No documents found.\n", buf.String())

	buf.Reset()
	PrintDocuments(&buf, []entities.Document{
		{Title: "Мастер и Маргарита", Format: entities.FormatFB2, CreationDate: "1967-01-01", Path: "/lib/m/m.fb2", Hash: "h1"},
	}, 7)
	out := buf.String()
	assert.Contains(t, out, `1. "Мастер и Маргарита" (fb2, 1967-01-01)`)
	assert.Contains(t, out, "Thumbnail: not created")
	assert.Contains(t, out, "Showing 1 of 7 documents")
}

func TestPrintRuns(t *testing.T) {
	var buf bytes.Buffer
	PrintRuns(&buf, nil)
	assert.Equal(t, "No ingest runs recorded.\n", buf.String())

	buf.Reset()
	PrintRuns(&buf, []entities.IngestRun{{
		ID:        3,
		Status:    entities.RunStatusFailed,
		Counts:    entities.RunCounts{Scanned: 4, Succeeded: 1},
		ErrorMsg:  "context canceled",
		StartedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}})
	out := buf.String()
	assert.Contains(t, out, "#3 2024-01-02 03:04:05 failed  scanned=4 ingested=1")
	assert.Contains(t, out, "[ERROR] context canceled")
}
