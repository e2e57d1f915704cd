package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 2

// SQLite is the local index and run log. Embeddings are stored as JSON arrays and
// similarity is computed in process.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies migrations.
func OpenSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Pragmas in the DSN apply to every pooled connection.
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	version, err := userVersion(db)
	if err != nil {
		return err
	}

	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS snippets (
		  source     TEXT NOT NULL,
		  ordinal    INTEGER NOT NULL,
		  text       TEXT NOT NULL,
		  embedding  TEXT NOT NULL,
		  created_at INTEGER NOT NULL,
		  PRIMARY KEY (source, ordinal)
		);`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := setUserVersion(db, 1); err != nil {
			return err
		}
	}

	if version < 2 {
		schema := `
		CREATE TABLE IF NOT EXISTS runs (
		  id          TEXT PRIMARY KEY,
		  video_id    TEXT NOT NULL,
		  started_at  INTEGER NOT NULL,
		  finished_at INTEGER NOT NULL,
		  slides      INTEGER NOT NULL,
		  failed      INTEGER NOT NULL,
		  status      TEXT NOT NULL,
		  error       TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_runs_video
		ON runs(video_id, started_at DESC);`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 2 failed: %w", err)
		}
		if err := setUserVersion(db, 2); err != nil {
			return err
		}
	}

	return nil
}

func userVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

func setUserVersion(db *sql.DB, version int) error {
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version)); err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}

func (s *SQLite) Upsert(ctx context.Context, snippets []Snippet) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO snippets (source, ordinal, text, embedding, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(source, ordinal) DO UPDATE SET
		  text = excluded.text,
		  embedding = excluded.embedding`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, sn := range snippets {
		emb, err := json.Marshal(sn.Embedding)
		if err != nil {
			return fmt.Errorf("encode embedding: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, sn.Source, sn.Ordinal, sn.Text, string(emb), now); err != nil {
			return fmt.Errorf("upsert %s#%d: %w", sn.Source, sn.Ordinal, err)
		}
	}

	return tx.Commit()
}

func (s *SQLite) Search(ctx context.Context, query []float32, k int) ([]Hit, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT source, ordinal, text, embedding FROM snippets`)
	if err != nil {
		return nil, fmt.Errorf("query snippets: %w", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var (
			h   Hit
			raw string
		)
		if err := rows.Scan(&h.Source, &h.Ordinal, &h.Text, &raw); err != nil {
			return nil, fmt.Errorf("scan snippet: %w", err)
		}
		var emb []float32
		if err := json.Unmarshal([]byte(raw), &emb); err != nil {
			continue
		}
		h.Score = Cosine(query, emb)
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return topK(hits, k), nil
}

func (s *SQLite) HasSource(ctx context.Context, source string) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM snippets WHERE source = ?`, source).Scan(&n); err != nil {
		return false, fmt.Errorf("count snippets: %w", err)
	}
	return n > 0, nil
}

func (s *SQLite) RecordRun(ctx context.Context, r RunRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, video_id, started_at, finished_at, slides, failed, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.VideoID, r.StartedAt.UnixMilli(), r.FinishedAt.UnixMilli(), r.Slides, r.Failed, r.Status, r.Error)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Runs lists the most recent runs, newest first. An empty videoID lists all videos.
func (s *SQLite) Runs(ctx context.Context, videoID string, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, video_id, started_at, finished_at, slides, failed, status, COALESCE(error, '')
		FROM runs
		WHERE ? = '' OR video_id = ?
		ORDER BY started_at DESC, id DESC
		LIMIT ?`, videoID, videoID, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var (
			r                 RunRecord
			started, finished int64
		)
		if err := rows.Scan(&r.ID, &r.VideoID, &started, &finished, &r.Slides, &r.Failed, &r.Status, &r.Error); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.StartedAt = time.UnixMilli(started)
		r.FinishedAt = time.UnixMilli(finished)
		out = append(out, r)
	}
	return out, rows.Err()
}
