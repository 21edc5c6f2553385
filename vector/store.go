// Package vector provides document storage and similarity search.
package vector

import "context"

// Document is one stored text with optional metadata and embedding. A
// document without an embedding stays in the store but is excluded from
// retrieval scoring.
type Document struct {
	ID        string         `json:"id"`
	Text      string         `json:"text"`
	Meta      map[string]any `json:"meta,omitempty"`
	Embedding []float64      `json:"embedding,omitempty"`
}

// SearchResult pairs a document with its similarity score.
type SearchResult struct {
	Document Document `json:"document"`
	Score    float64  `json:"score"`
}

// Index provides document storage and similarity search operations.
type Index interface {
	// Add appends documents to the index.
	Add(ctx context.Context, docs []Document) error

	// Search ranks embedded documents by cosine similarity against the
	// query embedding and returns at most topK results, best first.
	Search(ctx context.Context, embedding []float64, topK int) ([]SearchResult, error)

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}
