package extractors

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/phuslu/log"

	"github.com/mrlokans/docshelf/internal/entities"
	"github.com/mrlokans/docshelf/internal/runner"
)

// DjVuExtractor takes the first non-blank line of the text layer as the title.
// DjVu carries no reliable creation date, so RawDate is always empty.
type DjVuExtractor struct {
	runner runner.Runner
	binary string
	logger *log.Logger
}

func NewDjVuExtractor(run runner.Runner, binary string, logger *log.Logger) *DjVuExtractor {
	return &DjVuExtractor{runner: run, binary: binary, logger: logger}
}

func (e *DjVuExtractor) Format() entities.Format {
	return entities.FormatDjVu
}

func (e *DjVuExtractor) ExtractInfo(ctx context.Context, path string) Info {
	res, err := e.runner.Run(ctx, e.binary, path)
	if err != nil || !res.OK() {
		e.logger.Warn().Str("path", path).Err(err).Msg("djvutxt produced no usable output")
		if err == nil {
			err = fmt.Errorf("%w: %s exited with %d", runner.ErrToolFailure, e.binary, res.ExitCode)
		}
		return Placeholder(err)
	}
	return newInfo(firstNonBlankLine(res.Stdout), "")
}

func firstNonBlankLine(out []byte) string {
	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			return line
		}
	}
	return ""
}
