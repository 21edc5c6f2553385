package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteExchangeStore implements ExchangeStore using a local SQLite file.
type SQLiteExchangeStore struct {
	db *sql.DB
}

// NewSQLiteExchangeStore opens (creating if needed) the exchange log
// database at dsn.
func NewSQLiteExchangeStore(dsn string) (*SQLiteExchangeStore, error) {
	if dsn == "" {
		dsn = "data/relayd.db"
	}

	dir := filepath.Dir(dsn)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteExchangeStore{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS exchanges (
			id TEXT PRIMARY KEY,
			endpoint TEXT NOT NULL,
			session_id TEXT,
			input TEXT,
			output TEXT,
			input_tokens INTEGER DEFAULT 0,
			output_tokens INTEGER DEFAULT 0,
			elapsed_ms INTEGER DEFAULT 0,
			status TEXT NOT NULL,
			timestamp INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_exchanges_timestamp ON exchanges(timestamp DESC);
	`)
	return err
}

func (s *SQLiteExchangeStore) Add(ctx context.Context, e ExchangeInfo) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO exchanges (id, endpoint, session_id, input, output, input_tokens, output_tokens, elapsed_ms, status, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Endpoint, e.SessionID, e.Input, e.Output, e.InputTokens, e.OutputTokens, e.ElapsedMs, e.Status, e.Timestamp)
	if err != nil {
		return fmt.Errorf("insert exchange: %w", err)
	}
	return nil
}

func (s *SQLiteExchangeStore) List(ctx context.Context, limit int) ([]ExchangeInfo, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, endpoint, session_id, input, output, input_tokens, output_tokens, elapsed_ms, status, timestamp
		FROM exchanges
		ORDER BY timestamp DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query exchanges: %w", err)
	}
	defer rows.Close()

	var result []ExchangeInfo
	for rows.Next() {
		var e ExchangeInfo
		if err := rows.Scan(&e.ID, &e.Endpoint, &e.SessionID, &e.Input, &e.Output,
			&e.InputTokens, &e.OutputTokens, &e.ElapsedMs, &e.Status, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan exchange: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (s *SQLiteExchangeStore) Summary(ctx context.Context) (Summary, error) {
	var sum Summary
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(input_tokens), 0),
		       COALESCE(SUM(output_tokens), 0),
		       COALESCE(AVG(elapsed_ms), 0)
		FROM exchanges
	`).Scan(&sum.TotalExchanges, &sum.TotalInputTokens, &sum.TotalOutputTokens, &sum.AvgLatencyMs)
	if err != nil {
		return Summary{}, fmt.Errorf("query summary: %w", err)
	}
	return sum, nil
}

func (s *SQLiteExchangeStore) Close() error {
	return s.db.Close()
}
