// Package thumbnails renders a PNG preview for each document, named after the
// document's content hash so that the same content is only rendered once.
package thumbnails

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/phuslu/log"

	"github.com/mrlokans/docshelf/internal/entities"
	"github.com/mrlokans/docshelf/internal/hashing"
	"github.com/mrlokans/docshelf/internal/runner"
	"github.com/mrlokans/docshelf/internal/tools"
)

// Size is the bounding box every thumbnail is fitted into.
type Size struct {
	Width  int
	Height int
}

func (s Size) Geometry() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

type Hasher interface {
	Hash(path string) (hashing.Digest, error)
}

type Options struct {
	Size     Size
	Binaries tools.Binaries
	// NativeResize scales FB2 covers in-process instead of calling convert.
	NativeResize bool
	// TempDir is the parent for intermediate files; empty means the system default.
	TempDir string
}

type Deriver struct {
	runner runner.Runner
	hasher Hasher
	opts   Options
	logger *log.Logger
}

func NewDeriver(run runner.Runner, hasher Hasher, opts Options, logger *log.Logger) *Deriver {
	opts.Binaries = opts.Binaries.WithDefaults()
	return &Deriver{runner: run, hasher: hasher, opts: opts, logger: logger}
}

// TargetPath is where the thumbnail for digest lives inside outputDir.
func TargetPath(outputDir string, digest hashing.Digest) string {
	return filepath.Join(outputDir, digest.String()+".png")
}

// Derive hashes docPath and delegates to DeriveWithHash.
func (d *Deriver) Derive(ctx context.Context, docPath, outputDir string, format entities.Format) (string, bool) {
	digest, err := d.hasher.Hash(docPath)
	if err != nil {
		d.logger.Warn().Str("path", docPath).Err(err).Msg("cannot hash document for thumbnail")
		return "", false
	}
	return d.DeriveWithHash(ctx, docPath, outputDir, format, digest)
}

// DeriveWithHash returns the thumbnail path for the document, rendering it only
// when outputDir does not already hold one for digest. Failures are logged and
// reported as ("", false).
func (d *Deriver) DeriveWithHash(ctx context.Context, docPath, outputDir string, format entities.Format, digest hashing.Digest) (string, bool) {
	target := TargetPath(outputDir, digest)
	if exists(target) {
		return target, true
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		d.logger.Warn().Str("dir", outputDir).Err(err).Msg("cannot create thumbnail directory")
		return "", false
	}

	var err error
	switch format {
	case entities.FormatPDF:
		err = d.renderPDF(ctx, docPath, target)
	case entities.FormatDjVu:
		err = d.renderDjVu(ctx, docPath, target)
	case entities.FormatFB2:
		err = d.renderFB2(ctx, docPath, target)
	default:
		err = fmt.Errorf("no renderer for format %q", format)
	}

	if exists(target) {
		return target, true
	}

	d.logger.Warn().
		Str("path", docPath).
		Str("format", format.String()).
		Err(err).
		Msg("thumbnail was not created")
	return "", false
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
