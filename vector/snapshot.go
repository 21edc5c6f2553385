package vector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"sort"
	"sync"
	"time"
)

// SnapshotStore is an Index backed by a single JSON file. The file is read
// whole at load time and rewritten whole after every mutation; there is no
// partial persistence. Load-modify-save runs under a mutex so concurrent
// ingests cannot lose updates.
type SnapshotStore struct {
	mu   sync.RWMutex
	path string
	docs []Document
}

type snapshot struct {
	Docs []Document `json:"docs"`
}

// LoadSnapshotStore reads the snapshot at path. A missing file yields an
// empty store, not an error.
func LoadSnapshotStore(path string) (*SnapshotStore, error) {
	s := &SnapshotStore{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	s.docs = snap.Docs
	return s, nil
}

// Add appends documents and persists the full snapshot.
func (s *SnapshotStore) Add(ctx context.Context, docs []Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs = append(s.docs, docs...)
	return s.save()
}

// save rewrites the whole snapshot. Caller holds the write lock.
func (s *SnapshotStore) save() error {
	data, err := json.MarshalIndent(snapshot{Docs: s.docs}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Search scans all embedded documents and returns the topK best matches by
// cosine similarity, best first. Documents without embeddings never appear.
func (s *SnapshotStore) Search(ctx context.Context, embedding []float64, topK int) ([]SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]SearchResult, 0, len(s.docs))
	for _, doc := range s.docs {
		if len(doc.Embedding) == 0 {
			continue
		}
		results = append(results, SearchResult{Document: doc, Score: CosineSimilarity(embedding, doc.Embedding)})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (s *SnapshotStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs), nil
}

// Docs returns a copy of the stored documents.
func (s *SnapshotStore) Docs() []Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Document, len(s.docs))
	copy(out, s.docs)
	return out
}

func (s *SnapshotStore) Close() error {
	return nil
}

// NewDocID generates a store-unique document id: time plus random suffix.
func NewDocID() string {
	return fmt.Sprintf("doc_%d_%06d", time.Now().UnixNano(), rand.Intn(1000000))
}
