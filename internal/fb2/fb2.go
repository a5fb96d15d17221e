// Package fb2 reads the parts of a FictionBook 2 document the pipeline cares
// about: title, publication year and the embedded cover image.
package fb2

import (
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/net/html/charset"
)

var (
	// ErrMalformed wraps XML decoding failures.
	ErrMalformed = errors.New("malformed fb2 document")
	// ErrNoCover means the document has no usable embedded cover.
	ErrNoCover = errors.New("no cover image")
)

type Book struct {
	XMLName     xml.Name    `xml:"FictionBook"`
	Description description `xml:"description"`
	Binaries    []Binary    `xml:"binary"`
}

type description struct {
	TitleInfo   titleInfo   `xml:"title-info"`
	PublishInfo publishInfo `xml:"publish-info"`
}

type titleInfo struct {
	BookTitle string    `xml:"book-title"`
	Coverpage coverpage `xml:"coverpage"`
}

type coverpage struct {
	Images []imageRef `xml:"image"`
}

type imageRef struct {
	Attrs []xml.Attr `xml:",any,attr"`
}

type publishInfo struct {
	Year string `xml:"year"`
}

// Binary is an embedded base64 payload, typically an image.
type Binary struct {
	ID          string `xml:"id,attr"`
	ContentType string `xml:"content-type,attr"`
	Data        string `xml:",chardata"`
}

// Parse decodes an FB2 document. Non-UTF-8 encodings declared in the XML
// prolog (windows-1251, koi8-r) are transcoded.
func Parse(r io.Reader) (*Book, error) {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = charset.NewReaderLabel

	var book Book
	if err := decoder.Decode(&book); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return &book, nil
}

// ParseFile opens and decodes the FB2 document at path.
func ParseFile(path string) (*Book, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

func (b *Book) Title() string {
	return strings.TrimSpace(b.Description.TitleInfo.BookTitle)
}

func (b *Book) Year() string {
	return strings.TrimSpace(b.Description.PublishInfo.Year)
}

// CoverRef returns the binary id referenced by the first coverpage image,
// without the leading '#'. Any namespace prefix on href is accepted.
func (b *Book) CoverRef() string {
	for _, img := range b.Description.TitleInfo.Coverpage.Images {
		for _, attr := range img.Attrs {
			if attr.Name.Local == "href" {
				return strings.TrimPrefix(strings.TrimSpace(attr.Value), "#")
			}
		}
	}
	return ""
}

// Binary returns the embedded payload with the given id.
func (b *Book) Binary(id string) (*Binary, bool) {
	for i := range b.Binaries {
		if b.Binaries[i].ID == id {
			return &b.Binaries[i], true
		}
	}
	return nil, false
}

// Cover decodes the cover image. Missing nodes, an empty reference, an empty
// payload or a non-image content type all yield ErrNoCover.
func (b *Book) Cover() ([]byte, string, error) {
	ref := b.CoverRef()
	if ref == "" {
		return nil, "", ErrNoCover
	}
	bin, ok := b.Binary(ref)
	if !ok {
		return nil, "", ErrNoCover
	}
	contentType := strings.ToLower(strings.TrimSpace(bin.ContentType))
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", ErrNoCover
	}

	payload := strings.Join(strings.Fields(bin.Data), "")
	if payload == "" {
		return nil, "", ErrNoCover
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return nil, "", fmt.Errorf("%w: cover payload is not base64: %w", ErrNoCover, err)
		}
	}
	if len(data) == 0 {
		return nil, "", ErrNoCover
	}
	return data, contentType, nil
}

// ExtractCover writes the cover of the FB2 file at path to a new temporary file
// in dir (the system temp dir when empty) and returns its path. The caller
// removes the file.
func ExtractCover(path, dir string) (string, error) {
	book, err := ParseFile(path)
	if err != nil {
		return "", err
	}
	data, _, err := book.Cover()
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(dir, "cover-*"+mimetype.Detect(data).Extension())
	if err != nil {
		return "", fmt.Errorf("failed to create cover file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write cover file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write cover file: %w", err)
	}
	return tmp.Name(), nil
}
