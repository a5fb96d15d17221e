package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/docshelf/internal/entities"
)

// setupTestDB creates a fresh test database
func setupTestDB(t *testing.T) (*Database, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")
	db, err := NewDatabase(dbPath, false)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, dbPath
}

func TestNewDatabase(t *testing.T) {
	db, dbPath := setupTestDB(t)

	t.Run("creates the parent directory and file", func(t *testing.T) {
		assert.FileExists(t, dbPath)
	})

	t.Run("migrates every table", func(t *testing.T) {
		assert.True(t, db.DB.Migrator().HasTable(&entities.Document{}))
		assert.True(t, db.DB.Migrator().HasTable(&entities.IngestRun{}))
		assert.True(t, db.DB.Migrator().HasIndex(&entities.Document{}, "Hash"))
	})

	t.Run("migrate is idempotent", func(t *testing.T) {
		assert.NoError(t, Migrate(db.DB))
	})
}

func TestNewDatabase_Reopen(t *testing.T) {
	db, dbPath := setupTestDB(t)
	require.NoError(t, db.DB.Create(&entities.Document{Path: "/lib/a.pdf", Hash: "h1", Format: entities.FormatPDF}).Error)
	require.NoError(t, db.Close())

	reopened, err := NewDatabase(dbPath, true)
	require.NoError(t, err)
	defer reopened.Close()

	var count int64
	require.NoError(t, reopened.DB.Model(&entities.Document{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
