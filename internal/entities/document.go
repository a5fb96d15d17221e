package entities

import (
	"strings"
	"time"
)

type Format string

const (
	FormatPDF  Format = "pdf"
	FormatFB2  Format = "fb2"
	FormatDjVu Format = "djvu"
)

// ParseFormat maps a file extension (with or without the leading dot, any case)
// to a supported format.
func ParseFormat(ext string) (Format, bool) {
	switch Format(NormalizeExtension(ext)) {
	case FormatPDF:
		return FormatPDF, true
	case FormatFB2:
		return FormatFB2, true
	case FormatDjVu:
		return FormatDjVu, true
	}
	return "", false
}

// NormalizeExtension lowercases an extension and strips the leading dot.
func NormalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

func (f Format) String() string {
	return string(f)
}

// Document is created once per unique content hash and never updated.
type Document struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Path          string    `gorm:"size:2048" json:"source_path"` // Path of the copy under the output root
	OriginalPath  string    `gorm:"size:2048" json:"original_path"`
	Title         string    `gorm:"size:1024" json:"title"`
	CreationDate  string    `gorm:"size:10" json:"creation_date"` // YYYY-MM-DD
	ThumbnailPath *string   `gorm:"size:2048" json:"thumbnail_path"`
	Hash          string    `gorm:"uniqueIndex;size:64;not null" json:"content_hash"`
	Format        Format    `gorm:"size:10" json:"format"`
	CreatedAt     time.Time `json:"created_at"`
}

func (Document) TableName() string {
	return "documents"
}
