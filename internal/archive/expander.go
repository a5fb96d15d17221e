// Package archive expands ZIP bundles of documents into a scratch area that
// lives only as long as the caller's visit callback.
package archive

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/phuslu/log"

	"github.com/mrlokans/docshelf/internal/entities"
)

// ErrArchive wraps every failure to open or unpack an archive.
var ErrArchive = errors.New("archive error")

// VisitFunc is called for every allowed member while the scratch directory
// exists. path is the extracted file, name its slash-separated path inside the archive.
type VisitFunc func(path, name string) error

type Expander struct {
	logger  *log.Logger
	tempDir string
}

// NewExpander creates an expander using the system temp directory for scratch space.
func NewExpander(logger *log.Logger) *Expander {
	return &Expander{logger: logger}
}

// WithTempDir overrides the parent directory for scratch areas.
func (e *Expander) WithTempDir(dir string) *Expander {
	e.tempDir = dir
	return e
}

// Expand unpacks the whole archive, calls visit for each member whose lowercased
// extension is in allowed, and removes the scratch directory before returning.
// The returned paths are the visited members; they no longer exist on return.
func (e *Expander) Expand(ctx context.Context, zipPath string, allowed []string, visit VisitFunc) ([]string, error) {
	reader, err := zip.OpenReader(zipPath)
	if errors.Is(err, zip.ErrInsecurePath) && reader != nil {
		// Offending entries are skipped during extraction.
		err = nil
	}
	if err != nil {
		e.logger.Error().Str("archive", zipPath).Err(err).Msg("failed to open archive")
		return []string{}, fmt.Errorf("%w: failed to open %s: %w", ErrArchive, zipPath, err)
	}
	defer reader.Close()

	scratch, err := os.MkdirTemp(e.tempDir, "docshelf-zip-*")
	if err != nil {
		return []string{}, fmt.Errorf("%w: failed to create scratch directory: %w", ErrArchive, err)
	}
	if abs, err := filepath.Abs(scratch); err == nil {
		scratch = abs
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			e.logger.Warn().Str("dir", scratch).Err(err).Msg("failed to remove scratch directory")
		}
	}()

	if err := e.extractAll(ctx, &reader.Reader, scratch); err != nil {
		e.logger.Error().Str("archive", zipPath).Err(err).Msg("failed to extract archive")
		return []string{}, err
	}

	members, err := filterMembers(scratch, allowed)
	if err != nil {
		return []string{}, fmt.Errorf("%w: failed to scan %s: %w", ErrArchive, zipPath, err)
	}

	visited := make([]string, 0, len(members))
	for _, member := range members {
		if err := ctx.Err(); err != nil {
			return visited, err
		}
		visited = append(visited, member)
		if visit == nil {
			continue
		}
		name, err := filepath.Rel(scratch, member)
		if err != nil {
			name = filepath.Base(member)
		}
		if err := visit(member, filepath.ToSlash(name)); err != nil {
			e.logger.Warn().
				Str("archive", zipPath).
				Str("member", member).
				Err(err).
				Msg("archive member failed")
		}
	}
	return visited, nil
}

func (e *Expander) extractAll(ctx context.Context, reader *zip.Reader, dest string) error {
	root := filepath.Clean(dest) + string(os.PathSeparator)

	for _, file := range reader.File {
		if err := ctx.Err(); err != nil {
			return err
		}

		destPath := filepath.Join(dest, file.Name)
		if !strings.HasPrefix(destPath, root) {
			e.logger.Warn().Str("entry", file.Name).Msg("skipping archive entry outside of extraction directory")
			continue
		}

		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(destPath, 0755); err != nil {
				return fmt.Errorf("%w: failed to create directory: %w", ErrArchive, err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
			return fmt.Errorf("%w: failed to create directory: %w", ErrArchive, err)
		}
		if err := extractZipFile(file, destPath); err != nil {
			return fmt.Errorf("%w: failed to extract file %s: %w", ErrArchive, file.Name, err)
		}
	}
	return nil
}

func extractZipFile(file *zip.File, destPath string) error {
	rc, err := file.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	outFile, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(outFile, rc); err != nil {
		outFile.Close()
		return err
	}
	return outFile.Close()
}

func filterMembers(root string, allowed []string) ([]string, error) {
	allow := make(map[string]bool, len(allowed))
	for _, ext := range allowed {
		allow[entities.NormalizeExtension(ext)] = true
	}

	var members []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if allow[entities.NormalizeExtension(filepath.Ext(path))] {
			members = append(members, path)
		}
		return nil
	})
	return members, err
}
