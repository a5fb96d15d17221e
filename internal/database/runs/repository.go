// Package runs records the history of ingest batches.
//
// # Usage
//
//	repo := runs.NewRepository(db)
//	id, err := repo.StartRun(ctx, "/library")
//	err = repo.FinishRun(ctx, id, counts, nil)
package runs

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/docshelf/internal/entities"
)

const maxErrorLength = 500

// Repository handles ingest run database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new runs repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// StartRun creates a run record in the running state and returns its ID.
func (r *Repository) StartRun(ctx context.Context, root string) (uint, error) {
	run := entities.IngestRun{
		Root:      root,
		Status:    entities.RunStatusRunning,
		StartedAt: time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(&run).Error; err != nil {
		return 0, fmt.Errorf("failed to start run: %w", err)
	}
	return run.ID, nil
}

// FinishRun stores the final counters. A non-nil runErr marks the run failed.
func (r *Repository) FinishRun(ctx context.Context, id uint, counts entities.RunCounts, runErr error) error {
	now := time.Now()
	status := entities.RunStatusCompleted
	errMsg := ""
	if runErr != nil {
		status = entities.RunStatusFailed
		errMsg = runErr.Error()
		if len(errMsg) > maxErrorLength {
			errMsg = errMsg[:maxErrorLength]
		}
	}

	// The batch context may already be cancelled; the final write must still land.
	err := r.db.WithContext(context.WithoutCancel(ctx)).
		Model(&entities.IngestRun{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":      status,
			"error_msg":   errMsg,
			"finished_at": now,
			"scanned":     counts.Scanned,
			"matched":     counts.Matched,
			"archives":    counts.Archives,
			"succeeded":   counts.Succeeded,
			"duplicates":  counts.Duplicates,
			"failed":      counts.Failed,
			"skipped":     counts.Skipped,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to finish run %d: %w", id, err)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (r *Repository) GetRun(ctx context.Context, id uint) (*entities.IngestRun, error) {
	var run entities.IngestRun
	if err := r.db.WithContext(ctx).First(&run, id).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

// Recent returns the latest runs, newest first.
func (r *Repository) Recent(ctx context.Context, limit int) ([]entities.IngestRun, error) {
	var result []entities.IngestRun
	err := r.db.WithContext(ctx).Order("started_at DESC, id DESC").Limit(limit).Find(&result).Error
	return result, err
}
