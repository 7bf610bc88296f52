// Package vectorstore is the authoritative home of runbook chunks. It offers
// two repository implementations with identical caller-visible behavior: a
// linear-scan in-memory store and an HNSW-engine store. Both rank by cosine
// similarity, break ties by insertion order, and enforce a single embedding
// dimension per store.
package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/cloudnative-ops/runbook-synthesizer/pkg/models"
)

// ErrDimensionMismatch is returned when a chunk's embedding length disagrees
// with the dimension established by the first stored chunk. The store rejects
// such chunks deterministically rather than storing unsearchable vectors.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Repository stores and searches runbook chunks.
//
// Store and Delete are linearizable per key; StoreBatch is atomic with
// respect to concurrent Search calls (a search observes all of a batch or
// none of it).
type Repository interface {
	// Store inserts or replaces a single chunk.
	Store(ctx context.Context, chunk models.RunbookChunk) error
	// StoreBatch inserts chunks atomically w.r.t. search visibility.
	StoreBatch(ctx context.Context, chunks []models.RunbookChunk) error
	// Search returns up to topK chunks ranked by cosine similarity
	// descending, stable on ties.
	Search(ctx context.Context, queryEmbedding []float32, topK int) ([]models.ScoredChunk, error)
	// Delete removes all chunks whose RunbookPath equals runbookPath.
	Delete(ctx context.Context, runbookPath string) error
	// Count reports how many chunks the store currently holds.
	Count() int
}

// CosineSimilarity computes <a,b> / (|a|*|b|) in float64. A zero norm on
// either side yields 0, never NaN.
func CosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		av, bv := float64(a[i]), float64(b[i])
		dot += av * bv
		normA += av * av
		normB += bv * bv
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func checkDimension(expected int, chunk models.RunbookChunk) error {
	if expected > 0 && chunk.EmbeddingDim() != expected {
		return fmt.Errorf("%w: store holds %d-dimensional embeddings, chunk %s has %d",
			ErrDimensionMismatch, expected, chunk.ID, chunk.EmbeddingDim())
	}
	return nil
}
