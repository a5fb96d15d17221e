// Package extractors reads title and raw creation date from documents, one
// extractor per supported format.
//
// Extraction never fails: a missing tool, unreadable file or absent field
// degrades to NoTitle and an empty date so the batch can carry on.
package extractors

import (
	"context"
	"errors"
	"strings"

	"github.com/phuslu/log"

	"github.com/mrlokans/docshelf/internal/entities"
	"github.com/mrlokans/docshelf/internal/runner"
	"github.com/mrlokans/docshelf/internal/tools"
)

// NoTitle is the placeholder used when a document's title cannot be determined.
const NoTitle = "Нет заголовка"

// ErrMalformed marks a document whose structure could not be parsed at all.
var ErrMalformed = errors.New("malformed document")

// Info is the raw pair returned by an extractor before date normalization.
// Err explains why placeholders were used; Title and RawDate are always usable.
type Info struct {
	Title   string
	RawDate string
	Err     error
}

// Placeholder returns the info reported when nothing could be extracted.
func Placeholder(err error) Info {
	return Info{Title: NoTitle, Err: err}
}

// Malformed reports whether the document itself is unreadable, as opposed to
// a tool failing or a field being absent.
func (i Info) Malformed() bool {
	return errors.Is(i.Err, ErrMalformed)
}

func newInfo(title, rawDate string) Info {
	title = strings.TrimSpace(title)
	if title == "" {
		title = NoTitle
	}
	return Info{Title: title, RawDate: strings.TrimSpace(rawDate)}
}

type Extractor interface {
	Format() entities.Format
	ExtractInfo(ctx context.Context, path string) Info
}

// Registry maps each format to its extractor. Registration happens once at construction.
type Registry struct {
	extractors map[entities.Format]Extractor
	order      []entities.Format
	logger     *log.Logger
}

// NewRegistry registers extractors in order; a later extractor for the same format replaces an earlier one.
func NewRegistry(logger *log.Logger, extractors ...Extractor) *Registry {
	r := &Registry{
		extractors: make(map[entities.Format]Extractor, len(extractors)),
		logger:     logger,
	}
	for _, e := range extractors {
		if _, exists := r.extractors[e.Format()]; !exists {
			r.order = append(r.order, e.Format())
		}
		r.extractors[e.Format()] = e
	}
	return r
}

type Options struct {
	Binaries tools.Binaries
	// NativePDFFallback reads the PDF info dictionary in-process when pdfinfo yields nothing.
	NativePDFFallback bool
}

// Default registers the PDF, FB2 and DjVu extractors.
func Default(run runner.Runner, opts Options, logger *log.Logger) *Registry {
	bins := opts.Binaries.WithDefaults()

	pdf := NewPDFExtractor(run, bins.PDFInfo, logger)
	if opts.NativePDFFallback {
		pdf = pdf.WithFallback(ReadPDFInfo)
	}

	return NewRegistry(logger,
		pdf,
		NewFB2Extractor(logger),
		NewDjVuExtractor(run, bins.DjVuTxt, logger),
	)
}

// ExtractorFor returns the extractor for an extension (any case, dot optional).
// Unsupported extensions are logged at warning level.
func (r *Registry) ExtractorFor(ext string) (Extractor, bool) {
	format, ok := entities.ParseFormat(ext)
	if ok {
		if e, found := r.extractors[format]; found {
			return e, true
		}
	}
	r.logger.Warn().Str("extension", ext).Msg("no extractor registered for extension")
	return nil, false
}

// Formats lists registered formats in registration order.
func (r *Registry) Formats() []entities.Format {
	return append([]entities.Format(nil), r.order...)
}
