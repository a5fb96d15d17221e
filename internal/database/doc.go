// Package database provides the persistence layer (the record sink) for ingested documents.
//
// # Architecture
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── documents/       # Document records, lookup by content hash
//	└── runs/            # Ingest run history
//
// # Usage
//
//	db, err := database.NewDatabase("./docshelf.db", false)
//
//	docsRepo := documents.NewRepository(db.DB)
//	runsRepo := runs.NewRepository(db.DB)
//
//	exists, err := docsRepo.Exists(ctx, hash)
//
// # Interface Implementations
//
//   - documents.Repository: implements ingest.RecordSink and hashing.RecordLookup
//   - runs.Repository: implements ingest.RunRecorder
package database
