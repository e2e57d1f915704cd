package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// Postgres is the pgvector-backed index for shared deployments.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects, verifies the connection, and creates the schema if needed.
func OpenPostgres(ctx context.Context, connString string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	p := &Postgres{pool: pool}
	if err := p.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func (p *Postgres) initSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	_, err := p.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS transcript_snippets (
			source     TEXT NOT NULL,
			ordinal    INTEGER NOT NULL,
			text       TEXT NOT NULL,
			embedding  vector NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (source, ordinal)
		)`)
	if err != nil {
		return fmt.Errorf("failed to create snippets table: %w", err)
	}
	return nil
}

func (p *Postgres) Upsert(ctx context.Context, snippets []Snippet) error {
	batch := &pgx.Batch{}
	for _, sn := range snippets {
		batch.Queue(`
			INSERT INTO transcript_snippets (source, ordinal, text, embedding)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (source, ordinal) DO UPDATE SET
			  text = EXCLUDED.text,
			  embedding = EXCLUDED.embedding`,
			sn.Source, sn.Ordinal, sn.Text, pgvector.NewVector(sn.Embedding))
	}

	br := p.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range snippets {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert snippet: %w", err)
		}
	}
	return nil
}

func (p *Postgres) Search(ctx context.Context, query []float32, k int) ([]Hit, error) {
	if k <= 0 {
		k = 5
	}
	rows, err := p.pool.Query(ctx, `
		SELECT source, ordinal, text, 1 - (embedding <=> $1) AS similarity
		FROM transcript_snippets
		ORDER BY embedding <=> $1, source, ordinal
		LIMIT $2`,
		pgvector.NewVector(query), k)
	if err != nil {
		return nil, fmt.Errorf("failed to search snippets: %w", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		if err := rows.Scan(&h.Source, &h.Ordinal, &h.Text, &h.Score); err != nil {
			return nil, fmt.Errorf("failed to scan search results: %w", err)
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

func (p *Postgres) HasSource(ctx context.Context, source string) (bool, error) {
	var one int
	err := p.pool.QueryRow(ctx, `SELECT 1 FROM transcript_snippets WHERE source = $1 LIMIT 1`, source).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check source: %w", err)
	}
	return true, nil
}
