// Package ingest walks a source tree and turns every new document into a
// materialized copy, a thumbnail, a metadata.json sidecar and a stored record.
//
// Each file is driven through: extension filter, archive expansion (one level),
// extractor lookup, hashing, dedup claim, metadata extraction, date
// normalization, output materialization, thumbnail, sidecar and record save.
// Failures are logged per file and never abort the batch.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/phuslu/log"
	"golang.org/x/sync/errgroup"

	"github.com/mrlokans/docshelf/internal/archive"
	"github.com/mrlokans/docshelf/internal/entities"
	"github.com/mrlokans/docshelf/internal/extractors"
	"github.com/mrlokans/docshelf/internal/hashing"
)

// ErrSourceNotFound is returned by Run when the source root is missing or not a directory.
var ErrSourceNotFound = errors.New("source directory not found")

// ErrOutputIsSource is returned by Run when the output root is the source root itself.
var ErrOutputIsSource = errors.New("output directory must differ from source directory")

const archiveExtension = "zip"

// Hasher computes digests and answers whether one is already persisted.
type Hasher interface {
	Hash(path string) (hashing.Digest, error)
	Exists(ctx context.Context, digest hashing.Digest) (bool, error)
}

// RecordSink persists finalized document records.
type RecordSink interface {
	Save(ctx context.Context, doc *entities.Document) error
}

// RunRecorder stores the history of batches. Optional.
type RunRecorder interface {
	StartRun(ctx context.Context, root string) (uint, error)
	FinishRun(ctx context.Context, id uint, counts entities.RunCounts, runErr error) error
}

type ExtractorLookup interface {
	ExtractorFor(ext string) (extractors.Extractor, bool)
}

type Thumbnailer interface {
	DeriveWithHash(ctx context.Context, docPath, outputDir string, format entities.Format, digest hashing.Digest) (string, bool)
}

type Expander interface {
	Expand(ctx context.Context, zipPath string, allowed []string, visit archive.VisitFunc) ([]string, error)
}

type Normalizer interface {
	Normalize(raw string) string
}

// Deps are the collaborators a pipeline drives. Runs may be nil.
type Deps struct {
	Hasher      Hasher
	Sink        RecordSink
	Runs        RunRecorder
	Extractors  ExtractorLookup
	Thumbnails  Thumbnailer
	Archives    Expander
	Dates       Normalizer
	Logger      *log.Logger
	DuplicateOf func(err error) bool // Reports a sink error caused by an already stored hash
}

type Options struct {
	Root              string
	OutputRoot        string
	AllowedExtensions []string
	ExpandArchives    bool
	Workers           int
}

// Result describes one ingested document.
type Result struct {
	SourcePath    string // Path of the copy under the output root
	OriginalPath  string // Discovered path; archive members are shown as archive!member
	Title         string
	CreationDate  string
	ThumbnailPath *string
	Hash          string
	Format        entities.Format
}

type Report struct {
	Results  []Result
	Stats    entities.RunCounts
	Duration time.Duration
}

type Pipeline struct {
	deps    Deps
	opts    Options
	allowed map[string]bool
}

func NewPipeline(deps Deps, opts Options) *Pipeline {
	allowed := make(map[string]bool, len(opts.AllowedExtensions))
	for _, ext := range opts.AllowedExtensions {
		if ext = entities.NormalizeExtension(ext); ext != "" {
			allowed[ext] = true
		}
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if deps.DuplicateOf == nil {
		deps.DuplicateOf = func(error) bool { return false }
	}
	return &Pipeline{deps: deps, opts: opts, allowed: allowed}
}

// memberExtensions is the allow-list applied inside archives; nested archives are not expanded.
func (p *Pipeline) memberExtensions() []string {
	exts := make([]string, 0, len(p.allowed))
	for ext := range p.allowed {
		if ext != archiveExtension {
			exts = append(exts, ext)
		}
	}
	sort.Strings(exts)
	return exts
}

// Run processes the source tree once. It fails only when the source root or
// output root are unusable, or when ctx is cancelled; in the latter case the
// partial report is returned alongside ctx's error.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	start := time.Now()

	root, err := filepath.Abs(p.opts.Root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceNotFound, p.opts.Root, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceNotFound, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrSourceNotFound, root)
	}

	outputRoot, err := filepath.Abs(p.opts.OutputRoot)
	if err != nil {
		return nil, fmt.Errorf("invalid output directory: %w", err)
	}
	if outputRoot == root {
		return nil, fmt.Errorf("%w: %s", ErrOutputIsSource, root)
	}
	if err := os.MkdirAll(outputRoot, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var runID uint
	if p.deps.Runs != nil {
		if runID, err = p.deps.Runs.StartRun(ctx, root); err != nil {
			p.deps.Logger.Warn().Err(err).Msg("failed to record run start")
		}
	}

	state := newRunState(p, outputRoot)
	p.deps.Logger.Info().
		Str("root", root).
		Str("output", outputRoot).
		Int("workers", p.opts.Workers).
		Msg("ingest started")

	walkErr := state.walk(ctx, root)

	report := state.report()
	report.Duration = time.Since(start)

	if p.deps.Runs != nil && runID != 0 {
		if err := p.deps.Runs.FinishRun(ctx, runID, report.Stats, walkErr); err != nil {
			p.deps.Logger.Warn().Err(err).Msg("failed to record run result")
		}
	}

	p.deps.Logger.Info().
		Int("scanned", report.Stats.Scanned).
		Int("matched", report.Stats.Matched).
		Int("succeeded", report.Stats.Succeeded).
		Int("duplicates", report.Stats.Duplicates).
		Int("failed", report.Stats.Failed).
		Int("skipped", report.Stats.Skipped).
		Dur("duration", report.Duration).
		Msg("ingest finished")

	return report, walkErr
}

// runState is the mutable state of one Run.
type runState struct {
	p          *Pipeline
	outputRoot string
	claims     *claimSet
	dirs       *dirReservations

	mu      sync.Mutex
	stats   entities.RunCounts
	results []Result
}

func newRunState(p *Pipeline, outputRoot string) *runState {
	return &runState{
		p:          p,
		outputRoot: outputRoot,
		claims:     newClaimSet(),
		dirs:       newDirReservations(),
	}
}

func (s *runState) walk(ctx context.Context, root string) error {
	var group *errgroup.Group
	if s.p.opts.Workers > 1 {
		group = new(errgroup.Group)
		group.SetLimit(s.p.opts.Workers)
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			s.p.deps.Logger.Warn().Str("path", path).Err(walkErr).Msg("cannot read entry")
			s.count(func(c *entities.RunCounts) { c.Failed++ })
			return nil
		}
		if d.IsDir() {
			if path == s.outputRoot {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		s.count(func(c *entities.RunCounts) { c.Scanned++ })

		if group == nil {
			s.handleTopLevel(ctx, path)
			return nil
		}
		group.Go(func() error {
			s.handleTopLevel(ctx, path)
			return nil
		})
		return nil
	})

	if group != nil {
		_ = group.Wait()
	}
	if err != nil {
		return err
	}
	return ctx.Err()
}

func (s *runState) handleTopLevel(ctx context.Context, path string) {
	ext := entities.NormalizeExtension(filepath.Ext(path))
	if ext == archiveExtension {
		if s.p.opts.ExpandArchives {
			s.expandArchive(ctx, path)
		}
		return
	}
	s.handleCandidate(ctx, path, path)
}

func (s *runState) expandArchive(ctx context.Context, zipPath string) {
	s.count(func(c *entities.RunCounts) { c.Archives++ })

	_, err := s.p.deps.Archives.Expand(ctx, zipPath, s.p.memberExtensions(), func(member, name string) error {
		if entities.NormalizeExtension(filepath.Ext(member)) == archiveExtension {
			s.p.deps.Logger.Debug().Str("archive", zipPath).Str("member", name).Msg("nested archive not expanded")
			return nil
		}
		s.handleCandidate(ctx, member, zipPath+"!"+name)
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		s.count(func(c *entities.RunCounts) { c.Failed++ })
	}
}

func (s *runState) handleCandidate(ctx context.Context, path, originalPath string) {
	ext := entities.NormalizeExtension(filepath.Ext(path))
	if !s.p.allowed[ext] {
		return
	}
	s.count(func(c *entities.RunCounts) { c.Matched++ })

	result, outcome := s.process(ctx, path, originalPath)
	switch outcome {
	case outcomeSucceeded:
		s.mu.Lock()
		s.stats.Succeeded++
		s.results = append(s.results, *result)
		s.mu.Unlock()
	case outcomeDuplicate:
		s.count(func(c *entities.RunCounts) { c.Duplicates++ })
	case outcomeSkipped:
		s.count(func(c *entities.RunCounts) { c.Skipped++ })
	case outcomeFailed:
		s.count(func(c *entities.RunCounts) { c.Failed++ })
	}
}

func (s *runState) count(update func(c *entities.RunCounts)) {
	s.mu.Lock()
	update(&s.stats)
	s.mu.Unlock()
}

func (s *runState) report() *Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := append([]Result{}, s.results...)
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].OriginalPath < results[j].OriginalPath
	})
	return &Report{Results: results, Stats: s.stats}
}
