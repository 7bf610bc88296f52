package vectorstore

import (
	"context"
	"sort"
	"sync"

	"github.com/cloudnative-ops/runbook-synthesizer/pkg/models"
)

// memoryEntry tracks insertion order so equal-score results sort stably.
type memoryEntry struct {
	chunk models.RunbookChunk
	seq   uint64
}

// MemoryStore is the linear-scan in-memory repository. A single RWMutex
// makes batch stores strictly atomic with respect to searches.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	dim     int
	nextSeq uint64
}

var _ Repository = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store. The embedding dimension
// is fixed by the first stored chunk.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

// Store implements Repository.
func (s *MemoryStore) Store(ctx context.Context, chunk models.RunbookChunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storeLocked(chunk)
}

// StoreBatch implements Repository. The whole batch is validated before any
// chunk becomes visible, so a dimension mismatch rejects the batch intact.
func (s *MemoryStore) StoreBatch(ctx context.Context, chunks []models.RunbookChunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	dim := s.dim
	for _, c := range chunks {
		if err := checkDimension(dim, c); err != nil {
			return err
		}
		if dim == 0 {
			dim = c.EmbeddingDim()
		}
	}
	for _, c := range chunks {
		if err := s.storeLocked(c); err != nil {
			return err
		}
	}
	return nil
}

func (s *MemoryStore) storeLocked(chunk models.RunbookChunk) error {
	if err := checkDimension(s.dim, chunk); err != nil {
		return err
	}
	if s.dim == 0 {
		s.dim = chunk.EmbeddingDim()
	}
	seq := s.nextSeq
	if prev, ok := s.entries[chunk.ID]; ok {
		// Replacement keeps the original insertion position.
		seq = prev.seq
	} else {
		s.nextSeq++
	}
	s.entries[chunk.ID] = memoryEntry{chunk: chunk, seq: seq}
	return nil
}

// Search implements Repository.
func (s *MemoryStore) Search(ctx context.Context, queryEmbedding []float32, topK int) ([]models.ScoredChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if topK <= 0 {
		return []models.ScoredChunk{}, nil
	}

	s.mu.RLock()
	scored := make([]struct {
		models.ScoredChunk
		seq uint64
	}, 0, len(s.entries))
	for _, e := range s.entries {
		scored = append(scored, struct {
			models.ScoredChunk
			seq uint64
		}{
			ScoredChunk: models.ScoredChunk{
				Chunk:           e.chunk,
				SimilarityScore: CosineSimilarity(queryEmbedding, e.chunk.Embedding()),
			},
			seq: e.seq,
		})
	}
	s.mu.RUnlock()

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].SimilarityScore != scored[j].SimilarityScore {
			return scored[i].SimilarityScore > scored[j].SimilarityScore
		}
		return scored[i].seq < scored[j].seq
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}
	out := make([]models.ScoredChunk, len(scored))
	for i, sc := range scored {
		out[i] = sc.ScoredChunk
	}
	return out, nil
}

// Delete implements Repository.
func (s *MemoryStore) Delete(ctx context.Context, runbookPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.entries {
		if e.chunk.RunbookPath == runbookPath {
			delete(s.entries, id)
		}
	}
	return nil
}

// Count implements Repository.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
