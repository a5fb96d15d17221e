package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mrlokans/docshelf/internal/entities"
	"github.com/mrlokans/docshelf/internal/extractors"
	"github.com/mrlokans/docshelf/internal/hashing"
	"github.com/mrlokans/docshelf/internal/sidecar"
	"github.com/mrlokans/docshelf/internal/thumbnails"
	"github.com/mrlokans/docshelf/internal/utils"
)

type outcome int

const (
	outcomeFailed outcome = iota
	outcomeSucceeded
	outcomeDuplicate
	outcomeSkipped
)

const dirSuffixLength = 8

// artifacts tracks what processing created on disk so a failed file leaves nothing behind.
type artifacts struct {
	dir        string
	createdDir bool
	copied     string
	thumbnail  string
	sidecar    string
}

func (a *artifacts) rollback() error {
	if a.createdDir && a.dir != "" {
		return os.RemoveAll(a.dir)
	}
	var errs []error
	for _, path := range []string{a.sidecar, a.thumbnail, a.copied} {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *runState) process(ctx context.Context, path, originalPath string) (*Result, outcome) {
	logger := s.p.deps.Logger
	ext := filepath.Ext(path)

	extractor, ok := s.p.deps.Extractors.ExtractorFor(ext)
	if !ok {
		logger.Warn().Str("path", originalPath).Msg("skipping file without extractor")
		return nil, outcomeSkipped
	}
	digest, err := s.p.deps.Hasher.Hash(path)
	if err != nil {
		logger.Warn().Str("path", originalPath).Err(err).Msg("failed to hash file")
		return nil, outcomeFailed
	}

	claimed, err := s.claims.Claim(ctx, digest, s.p.deps.Hasher.Exists)
	if err != nil {
		logger.Error().Str("path", originalPath).Str("hash", digest.String()).Err(err).Msg("failed to check for duplicates")
		return nil, outcomeFailed
	}
	if !claimed {
		logger.Info().Str("path", originalPath).Str("hash", digest.String()).Msg("skipping duplicate")
		return nil, outcomeDuplicate
	}

	result, err := s.materialize(ctx, path, originalPath, extractor, digest)
	if err != nil {
		s.claims.Release(digest)
		if errors.Is(err, errDuplicateRecord) {
			logger.Info().Str("path", originalPath).Str("hash", digest.String()).Msg("skipping duplicate already stored")
			return nil, outcomeDuplicate
		}
		logger.Error().Str("path", originalPath).Str("hash", digest.String()).Err(err).Msg("failed to ingest document")
		return nil, outcomeFailed
	}

	logger.Info().
		Str("path", originalPath).
		Str("title", result.Title).
		Str("date", result.CreationDate).
		Str("hash", result.Hash).
		Bool("thumbnail", result.ThumbnailPath != nil).
		Msg("document ingested")
	return result, outcomeSucceeded
}

var errDuplicateRecord = errors.New("record already stored")

// materialize runs every stage after a successful claim. Any error rolls back
// the artifacts created for this file.
func (s *runState) materialize(ctx context.Context, path, originalPath string, extractor extractors.Extractor, digest hashing.Digest) (result *Result, err error) {
	deps := s.p.deps
	format := extractor.Format()
	created := &artifacts{}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := created.rollback(); rbErr != nil {
			deps.Logger.Warn().Str("path", originalPath).Err(rbErr).Msg("failed to roll back artifacts")
		}
	}()

	info := extractor.ExtractInfo(ctx, path)
	if info.Malformed() {
		return nil, info.Err
	}
	date := deps.Dates.Normalize(info.RawDate)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir, err := s.reserveDir(path, digest)
	if err != nil {
		return nil, err
	}
	defer s.dirs.Release(dir)
	created.dir = dir

	if _, statErr := os.Stat(dir); os.IsNotExist(statErr) {
		created.createdDir = true
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create document directory: %w", err)
	}

	copied := filepath.Join(dir, filepath.Base(path))
	if err := copyFile(path, copied); err != nil {
		return nil, fmt.Errorf("failed to copy document: %w", err)
	}
	created.copied = copied

	// A thumbnail left over in a reused directory is kept on rollback.
	_, statErr := os.Stat(thumbnails.TargetPath(dir, digest))
	hadThumbnail := statErr == nil

	var thumbPtr *string
	thumbPath, ok := deps.Thumbnails.DeriveWithHash(ctx, copied, dir, format, digest)
	if ok {
		if !hadThumbnail {
			created.thumbnail = thumbPath
		}
		thumbPtr = &thumbPath
	}

	sidecarPath, err := sidecar.Write(dir, sidecar.New(info.Title, date, thumbPath))
	if err != nil {
		return nil, err
	}
	created.sidecar = sidecarPath

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := &entities.Document{
		Path:          copied,
		OriginalPath:  originalPath,
		Title:         info.Title,
		CreationDate:  date,
		ThumbnailPath: thumbPtr,
		Hash:          digest.String(),
		Format:        format,
	}
	if err := deps.Sink.Save(ctx, doc); err != nil {
		if deps.DuplicateOf(err) {
			return nil, fmt.Errorf("%w: %w", errDuplicateRecord, err)
		}
		return nil, fmt.Errorf("failed to save record: %w", err)
	}

	return &Result{
		SourcePath:    copied,
		OriginalPath:  originalPath,
		Title:         info.Title,
		CreationDate:  date,
		ThumbnailPath: thumbPtr,
		Hash:          digest.String(),
		Format:        format,
	}, nil
}

// reserveDir picks <output>/<basename>, falling back to <basename>-<hash prefix>
// when the plain name already holds another document.
func (s *runState) reserveDir(path string, digest hashing.Digest) (string, error) {
	name := utils.SanitizeFilename(utils.BaseName(path))
	candidates := []string{
		filepath.Join(s.outputRoot, name),
		filepath.Join(s.outputRoot, name+"-"+digest.Short(dirSuffixLength)),
	}
	dir := s.dirs.Reserve(candidates, sidecar.Exists)
	if dir == "" {
		return "", fmt.Errorf("output directory for %s is already in use", name)
	}
	return dir, nil
}

// copyFile writes src into a temp file next to dst and renames it into place,
// replacing a partial copy left by an interrupted run.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
