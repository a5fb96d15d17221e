// Package tools names the external programs the pipeline shells out to and
// checks that the ones needed for the configured formats are installed.
package tools

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mrlokans/docshelf/internal/entities"
)

// Binaries holds the executable name (or path) for every external tool.
type Binaries struct {
	PDFInfo  string
	Convert  string
	DjVuTxt  string
	DDjVu    string
	PNMToPNG string
}

func DefaultBinaries() Binaries {
	return Binaries{
		PDFInfo:  "pdfinfo",
		Convert:  "convert",
		DjVuTxt:  "djvutxt",
		DDjVu:    "ddjvu",
		PNMToPNG: "pnmtopng",
	}
}

// WithDefaults fills empty names from DefaultBinaries.
func (b Binaries) WithDefaults() Binaries {
	d := DefaultBinaries()
	if b.PDFInfo == "" {
		b.PDFInfo = d.PDFInfo
	}
	if b.Convert == "" {
		b.Convert = d.Convert
	}
	if b.DjVuTxt == "" {
		b.DjVuTxt = d.DjVuTxt
	}
	if b.DDjVu == "" {
		b.DDjVu = d.DDjVu
	}
	if b.PNMToPNG == "" {
		b.PNMToPNG = d.PNMToPNG
	}
	return b
}

// Required returns the tools needed to process the given formats, deduplicated and sorted.
func (b Binaries) Required(formats []entities.Format) []string {
	set := map[string]bool{}
	for _, f := range formats {
		switch f {
		case entities.FormatPDF:
			set[b.PDFInfo] = true
			set[b.Convert] = true
		case entities.FormatFB2:
			set[b.Convert] = true
		case entities.FormatDjVu:
			set[b.DjVuTxt] = true
			set[b.DDjVu] = true
			set[b.PNMToPNG] = true
		}
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Locator resolves an executable, as exec.LookPath does.
type Locator interface {
	LookPath(name string) (string, error)
}

// Status is the outcome of resolving one tool.
type Status struct {
	Name string
	Path string
	Err  error
}

// MissingToolsError lists every tool that could not be resolved.
type MissingToolsError struct {
	Missing []string
}

func (e *MissingToolsError) Error() string {
	return fmt.Sprintf("required external tools not found: %s", strings.Join(e.Missing, ", "))
}

// Check resolves every required tool. The returned error is a *MissingToolsError
// when at least one is absent.
func Check(locator Locator, names []string) ([]Status, error) {
	statuses := make([]Status, 0, len(names))
	var missing []string
	for _, name := range names {
		path, err := locator.LookPath(name)
		statuses = append(statuses, Status{Name: name, Path: path, Err: err})
		if err != nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return statuses, &MissingToolsError{Missing: missing}
	}
	return statuses, nil
}
