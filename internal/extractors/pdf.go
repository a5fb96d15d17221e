package extractors

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/phuslu/log"

	"github.com/mrlokans/docshelf/internal/entities"
	"github.com/mrlokans/docshelf/internal/runner"
)

// InfoReader reads title and creation date without external tools.
type InfoReader func(path string) (title, date string, err error)

type PDFExtractor struct {
	runner   runner.Runner
	binary   string
	fallback InfoReader
	logger   *log.Logger
}

func NewPDFExtractor(run runner.Runner, binary string, logger *log.Logger) *PDFExtractor {
	return &PDFExtractor{runner: run, binary: binary, logger: logger}
}

// WithFallback sets the reader used when pdfinfo fails or reports no title.
func (e *PDFExtractor) WithFallback(reader InfoReader) *PDFExtractor {
	e.fallback = reader
	return e
}

func (e *PDFExtractor) Format() entities.Format {
	return entities.FormatPDF
}

func (e *PDFExtractor) ExtractInfo(ctx context.Context, path string) Info {
	var title, date string

	res, err := e.runner.Run(ctx, e.binary, path)
	if err == nil && !res.OK() {
		err = fmt.Errorf("%w: %s exited with %d", runner.ErrToolFailure, e.binary, res.ExitCode)
	}
	if err != nil {
		e.logger.Warn().Str("path", path).Err(err).Msg("pdfinfo produced no usable output")
	} else {
		title, date = parsePDFInfo(res.Stdout)
	}

	if strings.TrimSpace(title) == "" && e.fallback != nil && ctx.Err() == nil {
		fbTitle, fbDate, fbErr := e.fallback(path)
		if fbErr != nil {
			e.logger.Debug().Str("path", path).Err(fbErr).Msg("native pdf info read failed")
		} else {
			title = fbTitle
			if strings.TrimSpace(date) == "" {
				date = fbDate
			}
			err = nil
		}
	}

	info := newInfo(title, date)
	info.Err = err
	return info
}

// parsePDFInfo picks the Title and CreationDate values from pdfinfo's
// "Key:   value" lines.
func parsePDFInfo(out []byte) (title, date string) {
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "Title":
			title = value
		case "CreationDate":
			date = value
		}
	}
	return title, date
}

// ReadPDFInfo reads the document information dictionary with pdfcpu.
func ReadPDFInfo(path string) (string, string, error) {
	pdfCtx, err := api.ReadContextFile(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read PDF context: %w", err)
	}
	return strings.TrimSpace(pdfCtx.XRefTable.Title), pdfDate(pdfCtx.XRefTable.CreationDate), nil
}

// pdfDate converts a PDF date string (D:YYYYMMDDHHmmSS...) to YYYY-MM-DD.
func pdfDate(s string) string {
	s = strings.TrimPrefix(strings.TrimSpace(s), "D:")
	if len(s) < 8 {
		return ""
	}
	for _, c := range s[:8] {
		if c < '0' || c > '9' {
			return ""
		}
	}
	return s[0:4] + "-" + s[4:6] + "-" + s[6:8]
}
