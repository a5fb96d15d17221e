package extractors

import (
	"context"
	"errors"
	"fmt"

	"github.com/phuslu/log"

	"github.com/mrlokans/docshelf/internal/entities"
	"github.com/mrlokans/docshelf/internal/fb2"
)

// FB2Extractor reads book-title and publish-info/year from the XML description.
type FB2Extractor struct {
	logger *log.Logger
}

func NewFB2Extractor(logger *log.Logger) *FB2Extractor {
	return &FB2Extractor{logger: logger}
}

func (e *FB2Extractor) Format() entities.Format {
	return entities.FormatFB2
}

func (e *FB2Extractor) ExtractInfo(_ context.Context, path string) Info {
	book, err := fb2.ParseFile(path)
	if err != nil {
		e.logger.Warn().Str("path", path).Err(err).Msg("failed to parse fb2")
		if errors.Is(err, fb2.ErrMalformed) {
			err = fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		return Placeholder(err)
	}
	return newInfo(book.Title(), book.Year())
}
