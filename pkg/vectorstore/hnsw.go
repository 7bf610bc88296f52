package vectorstore

import (
	"context"
	"sort"
	"sync"

	"github.com/coder/hnsw"

	"github.com/cloudnative-ops/runbook-synthesizer/pkg/models"
)

// HNSWStore delegates nearest-neighbor search to a coder/hnsw graph and
// keeps chunk metadata in a side map so search results can be rehydrated
// into full chunks. String chunk ids are mapped to the graph's uint64 keys.
//
// Deletion is lazy: removing a chunk drops its id mappings and metadata but
// leaves the node in the graph, where it can no longer surface in results.
// The write lock is held across StoreBatch, so batches are atomic with
// respect to searches.
type HNSWStore struct {
	mu    sync.RWMutex
	graph *hnsw.Graph[uint64]

	chunks  map[string]hnswEntry
	idMap   map[string]uint64
	keyMap  map[uint64]string
	byPath  map[string]map[string]struct{}
	nextKey uint64
	nextSeq uint64
	dim     int
}

type hnswEntry struct {
	chunk models.RunbookChunk
	seq   uint64
}

var _ Repository = (*HNSWStore)(nil)

// NewHNSWStore creates an empty HNSW-backed store tuned for cosine search.
func NewHNSWStore() *HNSWStore {
	graph := hnsw.NewGraph[uint64]()
	graph.Distance = hnsw.CosineDistance
	graph.M = 16
	graph.EfSearch = 32
	return &HNSWStore{
		graph:  graph,
		chunks: make(map[string]hnswEntry),
		idMap:  make(map[string]uint64),
		keyMap: make(map[uint64]string),
		byPath: make(map[string]map[string]struct{}),
	}
}

// Store implements Repository.
func (s *HNSWStore) Store(ctx context.Context, chunk models.RunbookChunk) error {
	return s.StoreBatch(ctx, []models.RunbookChunk{chunk})
}

// StoreBatch implements Repository.
func (s *HNSWStore) StoreBatch(ctx context.Context, chunks []models.RunbookChunk) error {
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
	s.dim = dim

	for _, c := range chunks {
		s.insertLocked(c)
	}
	return nil
}

func (s *HNSWStore) insertLocked(chunk models.RunbookChunk) {
	if oldKey, exists := s.idMap[chunk.ID]; exists {
		// Lazy replacement: orphan the old graph node.
		delete(s.keyMap, oldKey)
		if old, ok := s.chunks[chunk.ID]; ok {
			s.removePathIndexLocked(old.chunk.RunbookPath, chunk.ID)
		}
	}

	key := s.nextKey
	s.nextKey++
	s.graph.Add(hnsw.MakeNode(key, chunk.Embedding()))

	seq := s.nextSeq
	s.nextSeq++

	s.idMap[chunk.ID] = key
	s.keyMap[key] = chunk.ID
	s.chunks[chunk.ID] = hnswEntry{chunk: chunk, seq: seq}

	if s.byPath[chunk.RunbookPath] == nil {
		s.byPath[chunk.RunbookPath] = make(map[string]struct{})
	}
	s.byPath[chunk.RunbookPath][chunk.ID] = struct{}{}
}

// Search implements Repository. The graph is over-queried to compensate for
// lazily deleted nodes, then results are re-scored with exact cosine
// similarity and sorted stably.
func (s *HNSWStore) Search(ctx context.Context, queryEmbedding []float32, topK int) ([]models.ScoredChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if topK <= 0 {
		return []models.ScoredChunk{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.chunks) == 0 {
		return []models.ScoredChunk{}, nil
	}

	fetch := topK * 2
	if orphans := s.graph.Len() - len(s.chunks); orphans > 0 {
		fetch += orphans
	}

	nodes := s.graph.Search(queryEmbedding, fetch)

	type scoredEntry struct {
		models.ScoredChunk
		seq uint64
	}
	scored := make([]scoredEntry, 0, len(nodes))
	for _, node := range nodes {
		id, live := s.keyMap[node.Key]
		if !live {
			continue
		}
		entry := s.chunks[id]
		scored = append(scored, scoredEntry{
			ScoredChunk: models.ScoredChunk{
				Chunk:           entry.chunk,
				SimilarityScore: CosineSimilarity(queryEmbedding, entry.chunk.Embedding()),
			},
			seq: entry.seq,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
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
func (s *HNSWStore) Delete(ctx context.Context, runbookPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range s.byPath[runbookPath] {
		if key, ok := s.idMap[id]; ok {
			delete(s.keyMap, key)
			delete(s.idMap, id)
		}
		delete(s.chunks, id)
	}
	delete(s.byPath, runbookPath)
	return nil
}

// Count implements Repository.
func (s *HNSWStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

func (s *HNSWStore) removePathIndexLocked(path, id string) {
	if ids, ok := s.byPath[path]; ok {
		delete(ids, id)
		if len(ids) == 0 {
			delete(s.byPath, path)
		}
	}
}
