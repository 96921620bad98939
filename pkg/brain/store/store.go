// Package store persists run output: extracted process records, the
// external-process register, and the deck ingestion manifest.
package store

import (
	"context"
	"time"
)

// Store is the interface for persisting process-map data.
type Store interface {
	Close() error

	// Process records (Log10)
	UpsertProcess(ctx context.Context, p Process) error
	ListProcesses(ctx context.Context) ([]Process, error)

	// External-process register
	UpsertExternal(ctx context.Context, e External) error
	ListExternal(ctx context.Context) ([]External, error)

	// Deck ingestion manifest
	RecordIngest(ctx context.Context, in Ingest) error
	ListIngests(ctx context.Context) ([]Ingest, error)
}

// Process is a stored Log10 process record, keyed by process name.
type Process struct {
	ID          string
	ProcessName string
	Platform    string
	StartTab    string
	URLModule   string
	Steps       []string
	VideoLink   string
	NeedsReview bool
}

// External is a stored non-Log10 process.
type External struct {
	ID          string
	ProcessName string
	Platform    string
	VideoLink   string
	UseCase     string
}

// Ingest is one deck registration in the manifest.
type Ingest struct {
	Title      string
	Path       string
	VideoLink  string
	SlideCount int
	IngestedAt time.Time
}
