// Package sqlite implements store.Store on a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/loadshare/brain/pkg/brain/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// Open opens a SQLite database with WAL mode enabled and initializes
// the schema.
func Open(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS processes (
	id TEXT NOT NULL,
	process_name TEXT PRIMARY KEY,
	platform TEXT NOT NULL,
	start_tab TEXT,
	url_module TEXT,
	steps TEXT,
	video_link TEXT,
	needs_review INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS externals (
	id TEXT NOT NULL,
	process_name TEXT PRIMARY KEY,
	platform TEXT NOT NULL,
	video_link TEXT,
	use_case TEXT
);

CREATE TABLE IF NOT EXISTS ingests (
	path TEXT NOT NULL,
	title TEXT,
	video_link TEXT,
	slide_count INTEGER,
	ingested_at TEXT NOT NULL
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// UpsertProcess inserts or replaces a process record, keyed by name.
func (s *sqliteStore) UpsertProcess(ctx context.Context, p store.Process) error {
	stepsJSON, err := json.Marshal(p.Steps)
	if err != nil {
		return fmt.Errorf("marshal steps: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO processes (id, process_name, platform, start_tab, url_module, steps, video_link, needs_review)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(process_name) DO UPDATE SET
	id = excluded.id,
	platform = excluded.platform,
	start_tab = excluded.start_tab,
	url_module = excluded.url_module,
	steps = excluded.steps,
	video_link = excluded.video_link,
	needs_review = excluded.needs_review`,
		p.ID, p.ProcessName, p.Platform, p.StartTab, p.URLModule,
		string(stepsJSON), p.VideoLink, boolToInt(p.NeedsReview))
	return err
}

// ListProcesses returns all process records in name order.
func (s *sqliteStore) ListProcesses(ctx context.Context) ([]store.Process, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, process_name, platform, start_tab, url_module, steps, video_link, needs_review
FROM processes ORDER BY process_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []store.Process
	for rows.Next() {
		var p store.Process
		var stepsJSON string
		var needsReview int
		if err := rows.Scan(&p.ID, &p.ProcessName, &p.Platform, &p.StartTab,
			&p.URLModule, &stepsJSON, &p.VideoLink, &needsReview); err != nil {
			return nil, err
		}
		if stepsJSON != "" {
			if err := json.Unmarshal([]byte(stepsJSON), &p.Steps); err != nil {
				return nil, fmt.Errorf("unmarshal steps for %q: %w", p.ProcessName, err)
			}
		}
		p.NeedsReview = needsReview != 0
		result = append(result, p)
	}
	return result, rows.Err()
}

// UpsertExternal inserts or replaces an external process register entry.
func (s *sqliteStore) UpsertExternal(ctx context.Context, e store.External) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO externals (id, process_name, platform, video_link, use_case)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(process_name) DO UPDATE SET
	id = excluded.id,
	platform = excluded.platform,
	video_link = excluded.video_link,
	use_case = excluded.use_case`,
		e.ID, e.ProcessName, e.Platform, e.VideoLink, e.UseCase)
	return err
}

// ListExternal returns all external register entries in name order.
func (s *sqliteStore) ListExternal(ctx context.Context) ([]store.External, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, process_name, platform, video_link, use_case
FROM externals ORDER BY process_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []store.External
	for rows.Next() {
		var e store.External
		if err := rows.Scan(&e.ID, &e.ProcessName, &e.Platform, &e.VideoLink, &e.UseCase); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// RecordIngest appends a manifest entry.
func (s *sqliteStore) RecordIngest(ctx context.Context, in store.Ingest) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO ingests (path, title, video_link, slide_count, ingested_at)
VALUES (?, ?, ?, ?, ?)`,
		in.Path, in.Title, in.VideoLink, in.SlideCount,
		in.IngestedAt.UTC().Format(time.RFC3339))
	return err
}

// ListIngests returns manifest entries in insertion order.
func (s *sqliteStore) ListIngests(ctx context.Context) ([]store.Ingest, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT path, title, video_link, slide_count, ingested_at
FROM ingests ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []store.Ingest
	for rows.Next() {
		var in store.Ingest
		var ts string
		if err := rows.Scan(&in.Path, &in.Title, &in.VideoLink, &in.SlideCount, &ts); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, fmt.Errorf("parse ingested_at %q: %w", ts, err)
		}
		in.IngestedAt = parsed
		result = append(result, in)
	}
	return result, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
