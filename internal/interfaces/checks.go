package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/docshelf/internal/archive"
	"github.com/mrlokans/docshelf/internal/database/documents"
	"github.com/mrlokans/docshelf/internal/database/runs"
	"github.com/mrlokans/docshelf/internal/dates"
	"github.com/mrlokans/docshelf/internal/extractors"
	"github.com/mrlokans/docshelf/internal/hashing"
	"github.com/mrlokans/docshelf/internal/ingest"
	"github.com/mrlokans/docshelf/internal/runner"
	"github.com/mrlokans/docshelf/internal/runner/runnertest"
	"github.com/mrlokans/docshelf/internal/thumbnails"
	"github.com/mrlokans/docshelf/internal/tools"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// RecordSink / RecordLookup implementations
var _ ingest.RecordSink = (*documents.Repository)(nil)
var _ hashing.RecordLookup = (*documents.Repository)(nil)

// RunRecorder implementations
var _ ingest.RunRecorder = (*runs.Repository)(nil)

// =============================================================================
// External Tools
// =============================================================================

// Runner implementations
var _ runner.Runner = (*runner.ExecRunner)(nil)
var _ runner.Runner = (*runnertest.Fake)(nil)

// Locator implementations
var _ tools.Locator = (*runner.ExecRunner)(nil)

// =============================================================================
// Ingest Pipeline
// =============================================================================

var _ ingest.Hasher = (*hashing.Hasher)(nil)
var _ thumbnails.Hasher = (*hashing.Hasher)(nil)
var _ ingest.ExtractorLookup = (*extractors.Registry)(nil)
var _ ingest.Thumbnailer = (*thumbnails.Deriver)(nil)
var _ ingest.Expander = (*archive.Expander)(nil)
var _ ingest.Normalizer = (*dates.Normalizer)(nil)

// Extractor implementations
var _ extractors.Extractor = (*extractors.PDFExtractor)(nil)
var _ extractors.Extractor = (*extractors.FB2Extractor)(nil)
var _ extractors.Extractor = (*extractors.DjVuExtractor)(nil)
