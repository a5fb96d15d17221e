package thumbnails

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mrlokans/docshelf/internal/fb2"
)

const pdfDensity = "300"

// renderPDF rasterizes the first page: convert -density 300 doc[0] -resize WxH target.
func (d *Deriver) renderPDF(ctx context.Context, docPath, target string) error {
	_, err := d.runner.Run(ctx, d.opts.Binaries.Convert,
		"-density", pdfDensity,
		docPath+"[0]",
		"-resize", d.opts.Size.Geometry(),
		target,
	)
	return err
}

// renderDjVu renders page one to PNM in a scratch directory and converts it to PNG.
func (d *Deriver) renderDjVu(ctx context.Context, docPath, target string) error {
	scratch, err := os.MkdirTemp(d.opts.TempDir, "docshelf-djvu-*")
	if err != nil {
		return fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	pnm := filepath.Join(scratch, "page.pnm")
	_, err = d.runner.Run(ctx, d.opts.Binaries.DDjVu,
		"-page=1",
		"-format=pnm",
		"-size="+d.opts.Size.Geometry(),
		docPath,
		pnm,
	)
	if err != nil {
		return err
	}
	if !exists(pnm) {
		return errors.New("ddjvu produced no page image")
	}

	res, err := d.runner.Run(ctx, d.opts.Binaries.PNMToPNG, pnm)
	if err != nil {
		return err
	}
	if len(res.Stdout) == 0 {
		return errors.New("pnmtopng produced no output")
	}
	return writeAtomic(target, res.Stdout)
}

// renderFB2 extracts the embedded cover and fits it into the thumbnail size.
// A document without a cover yields no thumbnail and no error.
func (d *Deriver) renderFB2(ctx context.Context, docPath, target string) error {
	scratch, err := os.MkdirTemp(d.opts.TempDir, "docshelf-cover-*")
	if err != nil {
		return fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	cover, err := fb2.ExtractCover(docPath, scratch)
	if errors.Is(err, fb2.ErrNoCover) {
		d.logger.Debug().Str("path", docPath).Msg("fb2 has no cover")
		return nil
	}
	if err != nil {
		return err
	}
	defer os.Remove(cover)

	if !d.opts.NativeResize {
		_, err = d.runner.Run(ctx, d.opts.Binaries.Convert, cover, "-resize", d.opts.Size.Geometry(), target)
		if err == nil && exists(target) {
			return nil
		}
		d.logger.Debug().Str("path", docPath).Err(err).Msg("convert failed, resizing cover natively")
	}

	return resizeToPNG(cover, target, d.opts.Size)
}

// writeAtomic writes data next to target and renames it into place.
func writeAtomic(target string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(target), ".thumb-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, target)
}
