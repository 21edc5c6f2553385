// Package store persists the exchange log: one record per completed
// request through the bridge or query surfaces.
package store

import "context"

// ExchangeInfo records one completed request.
type ExchangeInfo struct {
	ID           string `json:"id"`
	Endpoint     string `json:"endpoint"`
	SessionID    string `json:"session_id,omitempty"`
	Input        string `json:"input"`
	Output       string `json:"output"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
	ElapsedMs    int64  `json:"elapsed_ms"`
	Status       string `json:"status"`
	Timestamp    int64  `json:"timestamp"`
}

// Summary aggregates the exchange log.
type Summary struct {
	TotalExchanges    int     `json:"total_exchanges"`
	TotalInputTokens  int     `json:"total_input_tokens"`
	TotalOutputTokens int     `json:"total_output_tokens"`
	AvgLatencyMs      float64 `json:"avg_latency_ms"`
}

// ExchangeStore is the persistence interface for the exchange log.
type ExchangeStore interface {
	Add(ctx context.Context, e ExchangeInfo) error
	List(ctx context.Context, limit int) ([]ExchangeInfo, error)
	Summary(ctx context.Context) (Summary, error)
	Close() error
}
