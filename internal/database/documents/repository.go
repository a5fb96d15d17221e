// Package documents provides database operations for ingested document records.
//
// Records are keyed by content hash. The unique index on the hash column is the
// last line of defence against two identical files being persisted twice.
//
// # Usage
//
//	repo := documents.NewRepository(db)
//	exists, err := repo.Exists(ctx, hash)
//	err = repo.Save(ctx, &entities.Document{...})
package documents

import (
	"context"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	"github.com/mrlokans/docshelf/internal/entities"
)

// ErrDuplicate is returned by Save when a record with the same hash already exists.
var ErrDuplicate = errors.New("document with this content hash already exists")

// Repository handles document database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new documents repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Exists reports whether a document with the given content hash is stored.
func (r *Repository) Exists(ctx context.Context, hash string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.Document{}).
		Where("hash = ?", hash).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check document %s: %w", hash, err)
	}
	return count > 0, nil
}

// Save inserts a new document record.
func (r *Repository) Save(ctx context.Context, doc *entities.Document) error {
	if doc.Hash == "" {
		return fmt.Errorf("document hash is required")
	}
	if err := r.db.WithContext(ctx).Create(doc).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrDuplicate, doc.Hash)
		}
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

// GetByHash retrieves a document by content hash.
func (r *Repository) GetByHash(ctx context.Context, hash string) (*entities.Document, error) {
	var doc entities.Document
	if err := r.db.WithContext(ctx).Where("hash = ?", hash).First(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// List returns stored documents ordered by creation time, newest first.
// A non-positive limit returns everything.
func (r *Repository) List(ctx context.Context, limit int) ([]entities.Document, error) {
	var docs []entities.Document
	query := r.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

// Count returns the number of stored documents.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Document{}).Count(&count).Error
	return count, err
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
