package extractors

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/docshelf/internal/entities"
	"github.com/mrlokans/docshelf/internal/logging"
	"github.com/mrlokans/docshelf/internal/runner"
	"github.com/mrlokans/docshelf/internal/runner/runnertest"
)

const pdfinfoOutput = `Title:          Мастер и Маргарита
Author:         М. Булгаков
Creator:        LaTeX
CreationDate:   2024-01-31
Pages:          480
`

func assertPlaceholder(t *testing.T, info Info) {
	t.Helper()
	assert.Equal(t, NoTitle, info.Title)
	assert.Empty(t, info.RawDate)
}

func TestRegistry_ExtractorFor(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWriter(&buf, "warn")
	registry := Default(runnertest.NewFake(), Options{}, logger)

	pdf, ok := registry.ExtractorFor("pdf")
	require.True(t, ok)
	assert.Equal(t, entities.FormatPDF, pdf.Format())
	assert.IsType(t, &PDFExtractor{}, pdf)

	fb, ok := registry.ExtractorFor(".FB2")
	require.True(t, ok)
	assert.Equal(t, entities.FormatFB2, fb.Format())

	dj, ok := registry.ExtractorFor("djvu")
	require.True(t, ok)
	assert.Equal(t, entities.FormatDjVu, dj.Format())
	assert.Empty(t, buf.String())

	none, ok := registry.ExtractorFor("unknown")
	assert.False(t, ok)
	assert.Nil(t, none)
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "unknown")

	assert.Equal(t, []entities.Format{entities.FormatPDF, entities.FormatFB2, entities.FormatDjVu}, registry.Formats())
}

func TestRegistry_OnlyRegisteredFormats(t *testing.T) {
	registry := NewRegistry(logging.Discard(), NewFB2Extractor(logging.Discard()))

	_, ok := registry.ExtractorFor("pdf")
	assert.False(t, ok)
	_, ok = registry.ExtractorFor("fb2")
	assert.True(t, ok)
}

func TestPDFExtractor(t *testing.T) {
	ctx := context.Background()

	t.Run("parses pdfinfo output", func(t *testing.T) {
		fake := runnertest.NewFake().Stdout("pdfinfo", pdfinfoOutput)
		e := NewPDFExtractor(fake, "pdfinfo", logging.Discard())

		info := e.ExtractInfo(ctx, "/docs/book.pdf")
		assert.Equal(t, "Мастер и Маргарита", info.Title)
		assert.Equal(t, "2024-01-31", info.RawDate)

		calls := fake.Calls()
		require.Len(t, calls, 1)
		assert.Equal(t, []string{"/docs/book.pdf"}, calls[0].Args)
	})

	t.Run("missing keys give placeholders", func(t *testing.T) {
		fake := runnertest.NewFake().Stdout("pdfinfo", "Pages: 3\nTitle:   \n")
		info := NewPDFExtractor(fake, "pdfinfo", logging.Discard()).ExtractInfo(ctx, "x.pdf")
		assertPlaceholder(t, info)
	})

	t.Run("tool failure gives placeholders", func(t *testing.T) {
		fake := runnertest.NewFake().Fail("pdfinfo")
		info := NewPDFExtractor(fake, "pdfinfo", logging.Discard()).ExtractInfo(ctx, "x.pdf")
		assert.Equal(t, NoTitle, info.Title)
		assert.Empty(t, info.RawDate)
	})

	t.Run("missing tool gives placeholders", func(t *testing.T) {
		info := NewPDFExtractor(runnertest.NewFake(), "pdfinfo", logging.Discard()).ExtractInfo(ctx, "x.pdf")
		assertPlaceholder(t, info)
	})

	t.Run("fallback used when pdfinfo has no title", func(t *testing.T) {
		fake := runnertest.NewFake().Stdout("pdfinfo", "CreationDate: 2020-05-01\n")
		e := NewPDFExtractor(fake, "pdfinfo", logging.Discard()).
			WithFallback(func(string) (string, string, error) {
				return "Native Title", "2019-01-01", nil
			})

		info := e.ExtractInfo(ctx, "x.pdf")
		assert.Equal(t, "Native Title", info.Title)
		assert.Equal(t, "2020-05-01", info.RawDate)
	})

	t.Run("fallback error keeps placeholders", func(t *testing.T) {
		e := NewPDFExtractor(runnertest.NewFake().Fail("pdfinfo"), "pdfinfo", logging.Discard()).
			WithFallback(func(string) (string, string, error) {
				return "", "", errors.New("not a pdf")
			})
		assertPlaceholder(t, e.ExtractInfo(ctx, "x.pdf"))
	})
}

func TestReadPDFInfo_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("definitely not a pdf"), 0644))

	_, _, err := ReadPDFInfo(path)
	assert.Error(t, err)
}

func TestPDFDate(t *testing.T) {
	assert.Equal(t, "2024-01-31", pdfDate("D:20240131120000+03'00'"))
	assert.Equal(t, "2024-01-31", pdfDate("20240131"))
	assert.Equal(t, "", pdfDate("D:2024"))
	assert.Equal(t, "", pdfDate("D:2024AB31"))
	assert.Equal(t, "", pdfDate(""))
}

func TestFB2Extractor(t *testing.T) {
	dir := t.TempDir()
	e := NewFB2Extractor(logging.Discard())
	ctx := context.Background()

	valid := filepath.Join(dir, "valid.fb2")
	require.NoError(t, os.WriteFile(valid, []byte(`<?xml version="1.0" encoding="UTF-8"?>
<FictionBook xmlns="http://www.gribuser.ru/xml/fictionbook/2.0">
  <description>
    <title-info><book-title>Идиот</book-title></title-info>
    <publish-info><year>1869</year></publish-info>
  </description>
</FictionBook>`), 0644))

	info := e.ExtractInfo(ctx, valid)
	assert.Equal(t, "Идиот", info.Title)
	assert.Equal(t, "1869", info.RawDate)

	malformed := filepath.Join(dir, "malformed.fb2")
	require.NoError(t, os.WriteFile(malformed, []byte("<FictionBook><description>"), 0644))
	bad := e.ExtractInfo(ctx, malformed)
	assertPlaceholder(t, bad)
	assert.True(t, bad.Malformed())

	empty := filepath.Join(dir, "empty.fb2")
	require.NoError(t, os.WriteFile(empty, []byte("<FictionBook/>"), 0644))
	emptyInfo := e.ExtractInfo(ctx, empty)
	assertPlaceholder(t, emptyInfo)
	assert.NoError(t, emptyInfo.Err)

	missing := e.ExtractInfo(ctx, filepath.Join(dir, "missing.fb2"))
	assertPlaceholder(t, missing)
	assert.Error(t, missing.Err)
	assert.False(t, missing.Malformed())
}

func TestDjVuExtractor(t *testing.T) {
	ctx := context.Background()

	fake := runnertest.NewFake().Stdout("djvutxt", "\n   \n  Преступление и наказание  \nЧасть первая\n")
	info := NewDjVuExtractor(fake, "djvutxt", logging.Discard()).ExtractInfo(ctx, "book.djvu")
	assert.Equal(t, "Преступление и наказание", info.Title)
	assert.Empty(t, info.RawDate)

	blank := runnertest.NewFake().Stdout("djvutxt", "\n\n")
	assertPlaceholder(t, NewDjVuExtractor(blank, "djvutxt", logging.Discard()).ExtractInfo(ctx, "b.djvu"))

	failing := runnertest.NewFake().On("djvutxt", func([]string) (*runner.Result, error) {
		return &runner.Result{ExitCode: 10, Stdout: []byte("partial")}, nil
	})
	failed := NewDjVuExtractor(failing, "djvutxt", logging.Discard()).ExtractInfo(ctx, "c.djvu")
	assertPlaceholder(t, failed)
	assert.ErrorIs(t, failed.Err, runner.ErrToolFailure)
	assert.False(t, failed.Malformed())
}
