// Package dates turns free-form creation dates reported by documents into
// canonical YYYY-MM-DD strings.
package dates

import (
	"fmt"
	"strings"
	"time"
)

// Canonical is the layout every normalized date is rendered in.
const Canonical = "2006-01-02"

// Format is a named layout a raw date may be written in.
type Format struct {
	Name   string
	Layout string
}

var (
	YMD     = Format{Name: "ymd", Layout: "2006-01-02"}
	DMY     = Format{Name: "dmy", Layout: "02.01.2006"}
	MDY     = Format{Name: "mdy", Layout: "01/02/2006"}
	Year    = Format{Name: "year", Layout: "2006"}
	PDFInfo = Format{Name: "pdfinfo", Layout: "Mon Jan _2 15:04:05 2006 MST"}
)

// DefaultFormats is the order used when nothing else is configured.
var DefaultFormats = []Format{YMD, DMY, MDY}

var known = map[string]Format{
	YMD.Name:     YMD,
	DMY.Name:     DMY,
	MDY.Name:     MDY,
	Year.Name:    Year,
	PDFInfo.Name: PDFInfo,
}

// ParseFormats resolves configuration tags (ymd, dmy, mdy, year, pdfinfo) in order.
func ParseFormats(names []string) ([]Format, error) {
	formats := make([]Format, 0, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		f, ok := known[name]
		if !ok {
			return nil, fmt.Errorf("unknown date format %q", name)
		}
		formats = append(formats, f)
	}
	return formats, nil
}

type Normalizer struct {
	formats []Format
	now     func() time.Time
}

// NewNormalizer creates a normalizer trying formats in order. A nil clock means time.Now.
func NewNormalizer(formats []Format, now func() time.Time) *Normalizer {
	if len(formats) == 0 {
		formats = DefaultFormats
	}
	if now == nil {
		now = time.Now
	}
	return &Normalizer{formats: formats, now: now}
}

// Normalize returns raw rendered as YYYY-MM-DD. A format only matches when
// rendering the parsed value reproduces raw exactly; anything else, including
// empty input, yields today's date.
func (n *Normalizer) Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw != "" {
		for _, f := range n.formats {
			t, err := time.Parse(f.Layout, raw)
			if err != nil {
				continue
			}
			if t.Format(f.Layout) != raw {
				continue
			}
			return t.Format(Canonical)
		}
	}
	return n.now().Format(Canonical)
}
