package vector

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PgIndex is an Index backed by PostgreSQL with the pgvector extension. It
// is the alternative backend for deployments that outgrow the JSON snapshot.
type PgIndex struct {
	db        *sql.DB
	dimension int
}

// NewPgIndex opens a pgvector-backed index. dimension is the embedding
// width (1536 for text-embedding-3-small).
func NewPgIndex(dsn string, dimension int) (*PgIndex, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	idx := &PgIndex{db: db, dimension: dimension}
	if err := idx.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return idx, nil
}

func (s *PgIndex) migrate() error {
	migrations := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS rag_documents (
			id TEXT PRIMARY KEY,
			text TEXT NOT NULL,
			embedding vector(%d),
			meta JSONB DEFAULT '{}',
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`, s.dimension),
		`CREATE INDEX IF NOT EXISTS idx_rag_documents_embedding ON rag_documents USING hnsw (embedding vector_cosine_ops)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("execute migration: %w", err)
		}
	}
	return nil
}

func (s *PgIndex) Add(ctx context.Context, docs []Document) error {
	for _, doc := range docs {
		meta, err := json.Marshal(doc.Meta)
		if err != nil {
			return fmt.Errorf("marshal meta: %w", err)
		}

		var embedding any
		if len(doc.Embedding) > 0 {
			embedding = formatEmbedding(doc.Embedding)
		}

		_, err = s.db.ExecContext(ctx, `
			INSERT INTO rag_documents (id, text, embedding, meta)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET
				text = EXCLUDED.text,
				embedding = EXCLUDED.embedding,
				meta = EXCLUDED.meta
		`, doc.ID, doc.Text, embedding, meta)
		if err != nil {
			return fmt.Errorf("insert document: %w", err)
		}
	}
	return nil
}

func (s *PgIndex) Search(ctx context.Context, embedding []float64, topK int) ([]SearchResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, text, meta, 1 - (embedding <=> $1) AS score
		FROM rag_documents
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT $2
	`, formatEmbedding(embedding), topK)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var doc Document
		var metaBytes []byte
		var score float64

		if err := rows.Scan(&doc.ID, &doc.Text, &metaBytes, &score); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if len(metaBytes) > 0 {
			json.Unmarshal(metaBytes, &doc.Meta)
		}

		results = append(results, SearchResult{Document: doc, Score: score})
	}

	return results, rows.Err()
}

func (s *PgIndex) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rag_documents`).Scan(&n)
	return n, err
}

func (s *PgIndex) Close() error {
	return s.db.Close()
}

// formatEmbedding renders a vector in pgvector text format: "[0.1,0.2]".
func formatEmbedding(embedding []float64) string {
	parts := make([]string, len(embedding))
	for i, v := range embedding {
		parts[i] = fmt.Sprintf("%g", v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
