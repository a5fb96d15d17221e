package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mrlokans/docshelf/internal/entities"
	"github.com/mrlokans/docshelf/internal/ingest"
)

const separatorWidth = 40

// PrintSummary writes the documents added by a batch followed by its counters.
func PrintSummary(w io.Writer, report *ingest.Report) {
	if len(report.Results) == 0 {
		fmt.Fprintln(w, "No documents found.")
	} else {
		fmt.Fprintln(w, "\nIngested documents:")
		for _, r := range report.Results {
			fmt.Fprintf(w, "Path: %s\n", r.SourcePath)
			if r.OriginalPath != r.SourcePath {
				fmt.Fprintf(w, "Source: %s\n", r.OriginalPath)
			}
			fmt.Fprintf(w, "Title: %s\n", r.Title)
			fmt.Fprintf(w, "Creation date: %s\n", r.CreationDate)
			fmt.Fprintf(w, "Hash: %s\n", r.Hash)
			fmt.Fprintf(w, "Thumbnail: %s\n", thumbnailLabel(r.ThumbnailPath))
			fmt.Fprintln(w, strings.Repeat("-", separatorWidth))
		}
	}

	s := report.Stats
	fmt.Fprintln(w, "\n=== Ingest Summary ===")
	fmt.Fprintf(w, "Files scanned: %d\n", s.Scanned)
	fmt.Fprintf(w, "Candidates: %d\n", s.Matched)
	if s.Archives > 0 {
		fmt.Fprintf(w, "Archives expanded: %d\n", s.Archives)
	}
	fmt.Fprintf(w, "Ingested: %d\n", s.Succeeded)
	fmt.Fprintf(w, "Duplicates skipped: %d\n", s.Duplicates)
	if s.Skipped > 0 {
		fmt.Fprintf(w, "Unsupported: %d\n", s.Skipped)
	}
	fmt.Fprintf(w, "Failed: %d\n", s.Failed)
	fmt.Fprintf(w, "Duration: %s\n", report.Duration.Round(time.Millisecond))
}

// PrintDocuments writes stored records, newest first, as returned by the repository.
func PrintDocuments(w io.Writer, docs []entities.Document, total int64) {
	if len(docs) == 0 {
		fmt.Fprintln(w, "No documents found.")
		return
	}
	for i, d := range docs {
		fmt.Fprintf(w, "%d. \"%s\" (%s, %s)\n", i+1, d.Title, d.Format, d.CreationDate)
		fmt.Fprintf(w, "   Path: %s\n", d.Path)
		fmt.Fprintf(w, "   Hash: %s\n", d.Hash)
		fmt.Fprintf(w, "   Thumbnail: %s\n", thumbnailLabel(d.ThumbnailPath))
	}
	fmt.Fprintf(w, "\nShowing %d of %d documents\n", len(docs), total)
}

// PrintRuns writes the ingest history.
func PrintRuns(w io.Writer, history []entities.IngestRun) {
	if len(history) == 0 {
		fmt.Fprintln(w, "No ingest runs recorded.")
		return
	}
	fmt.Fprintln(w, "=== Recent Runs ===")
	for _, r := range history {
		fmt.Fprintf(w, "#%d %s %s  scanned=%d ingested=%d duplicates=%d failed=%d\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.Status,
			r.Counts.Scanned, r.Counts.Succeeded, r.Counts.Duplicates, r.Counts.Failed)
		if r.ErrorMsg != "" {
			fmt.Fprintf(w, "   [ERROR] %s\n", r.ErrorMsg)
		}
	}
}

func thumbnailLabel(path *string) string {
	if path == nil {
		return "not created"
	}
	return *path
}
