package entities

import "time"

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// RunCounts are the per-batch counters reported by the ingest pipeline.
type RunCounts struct {
	Scanned    int `json:"scanned"`    // Regular files seen by the walk
	Matched    int `json:"matched"`    // Candidates with an allowed extension, archive members included
	Archives   int `json:"archives"`   // ZIP archives expanded
	Succeeded  int `json:"succeeded"`  // Records saved
	Duplicates int `json:"duplicates"` // Skipped because the hash was already known
	Failed     int `json:"failed"`
	Skipped    int `json:"skipped"` // No extractor registered for the format
}

// IngestRun tracks a single batch over a source directory.
type IngestRun struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Root       string     `gorm:"size:2048" json:"root"`
	Status     RunStatus  `gorm:"size:20;index" json:"status"`
	Counts     RunCounts  `gorm:"embedded" json:"counts"`
	ErrorMsg   string     `gorm:"size:500" json:"error_msg,omitempty"`
	StartedAt  time.Time  `gorm:"index" json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

func (IngestRun) TableName() string {
	return "ingest_runs"
}
