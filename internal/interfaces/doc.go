// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - ingest.RecordSink: Persist document records (internal/ingest/pipeline.go)
//   - ingest.RunRecorder: Ingest run history (internal/ingest/pipeline.go)
//   - hashing.RecordLookup: Hash existence check backing dedup (internal/hashing/hasher.go)
//
// ## External Tool Interfaces
//
//   - runner.Runner: Run a program and capture exit code and output (internal/runner/runner.go)
//   - tools.Locator: Resolve executables on PATH (internal/tools/tools.go)
//
// ## Pipeline Stage Interfaces
//
//   - extractors.Extractor: Title and raw date for one format (internal/extractors/registry.go)
//   - ingest.Thumbnailer, ingest.Expander, ingest.Normalizer, ingest.Hasher
//
// # Adding a New Document Format
//
//  1. Add the format to internal/entities/document.go and ParseFormat.
//
//  2. Implement Extractor in internal/extractors/:
//
//     type EPUBExtractor struct {
//         logger *log.Logger
//     }
//
//     func (e *EPUBExtractor) Format() entities.Format { return entities.FormatEPUB }
//     func (e *EPUBExtractor) ExtractInfo(ctx context.Context, path string) Info
//
//     var _ Extractor = (*EPUBExtractor)(nil)
//
//  3. Register it in extractors.Default and add a renderer to thumbnails.Deriver.
//
//  4. List the external tools it needs in tools.Binaries.Required.
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces
