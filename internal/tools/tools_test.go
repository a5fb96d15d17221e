package tools

import (
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/docshelf/internal/entities"
)

type mockLocator struct {
	installed map[string]bool
}

func (m mockLocator) LookPath(name string) (string, error) {
	if m.installed[name] {
		return "/usr/bin/" + name, nil
	}
	return "", exec.ErrNotFound
}

func TestBinaries_Required(t *testing.T) {
	b := DefaultBinaries()

	assert.Equal(t, []string{"convert", "pdfinfo"}, b.Required([]entities.Format{entities.FormatPDF}))
	assert.Equal(t, []string{"convert"}, b.Required([]entities.Format{entities.FormatFB2}))
	assert.Equal(t,
		[]string{"convert", "ddjvu", "djvutxt", "pdfinfo", "pnmtopng"},
		b.Required([]entities.Format{entities.FormatPDF, entities.FormatFB2, entities.FormatDjVu}),
	)
	assert.Empty(t, b.Required(nil))
}

func TestBinaries_WithDefaults(t *testing.T) {
	b := Binaries{Convert: "magick"}.WithDefaults()
	assert.Equal(t, "magick", b.Convert)
	assert.Equal(t, "pdfinfo", b.PDFInfo)
	assert.Equal(t, "pnmtopng", b.PNMToPNG)
}

func TestCheck(t *testing.T) {
	locator := mockLocator{installed: map[string]bool{"pdfinfo": true}}

	statuses, err := Check(locator, []string{"convert", "pdfinfo"})
	require.Error(t, err)

	var missing *MissingToolsError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"convert"}, missing.Missing)
	assert.Contains(t, err.Error(), "convert")

	require.Len(t, statuses, 2)
	assert.Equal(t, "/usr/bin/pdfinfo", statuses[1].Path)
	assert.NoError(t, statuses[1].Err)

	_, err = Check(locator, []string{"pdfinfo"})
	assert.NoError(t, err)
}
