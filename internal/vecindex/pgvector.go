package vecindex

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
	pgvectorpgx "github.com/pgvector/pgvector-go/pgx"
)

// PGIndex is a pgvector-backed Index on a shared Postgres database. The
// extension and table are created if missing, but the index never drops
// anything beyond per-record deletes.
type PGIndex struct {
	pool *pgxpool.Pool
}

func NewPGIndex(ctx context.Context, databaseURL string, dimensions int) (*PGIndex, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgvectorpgx.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	idx := &PGIndex{pool: pool}
	if err := idx.ensureSchema(ctx, dimensions); err != nil {
		pool.Close()
		return nil, err
	}
	return idx, nil
}

func (i *PGIndex) ensureSchema(ctx context.Context, dimensions int) error {
	if _, err := i.pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("create vector extension: %w", err)
	}
	stmt := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS call_vectors (
			call_id   text PRIMARY KEY,
			embedding vector(%d) NOT NULL,
			metadata  jsonb NOT NULL DEFAULT '{}'::jsonb
		)`, dimensions)
	if _, err := i.pool.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("create call_vectors table: %w", err)
	}
	return nil
}

func (i *PGIndex) Close() {
	i.pool.Close()
}

func (i *PGIndex) Upsert(ctx context.Context, id string, vector []float32, metadata map[string]string) error {
	meta, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	query := `
		INSERT INTO call_vectors (call_id, embedding, metadata)
		VALUES ($1, $2, $3)
		ON CONFLICT (call_id) DO UPDATE SET embedding = $2, metadata = $3`
	if _, err := i.pool.Exec(ctx, query, id, pgvector.NewVector(vector), meta); err != nil {
		return fmt.Errorf("upsert vector %s: %w", id, err)
	}
	return nil
}

func (i *PGIndex) Query(ctx context.Context, vector []float32, topK int, excludeID string) ([]Match, error) {
	query := `
		SELECT call_id, metadata, 1 - (embedding <=> $1) AS score
		FROM call_vectors
		WHERE call_id <> $2
		ORDER BY embedding <=> $1
		LIMIT $3`

	rows, err := i.pool.Query(ctx, query, pgvector.NewVector(vector), excludeID, topK)
	if err != nil {
		return nil, fmt.Errorf("query vectors: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var (
			id    string
			meta  map[string]string
			score float64
		)
		if err := rows.Scan(&id, &meta, &score); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, Match{
			CallID:      id,
			FileName:    meta["fileName"],
			Score:       score,
			Title:       meta["title"],
			Summary:     meta["summary"],
			Description: meta["description"],
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return matches, nil
}

func (i *PGIndex) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := i.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM call_vectors WHERE call_id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check vector %s: %w", id, err)
	}
	return exists, nil
}

func (i *PGIndex) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := i.pool.Exec(ctx, `DELETE FROM call_vectors WHERE call_id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete vector %s: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}
