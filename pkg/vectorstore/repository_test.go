package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudnative-ops/runbook-synthesizer/pkg/models"
)

// Both repository implementations must be behaviorally indistinguishable to
// callers, so every scenario runs against both.
func repositories() map[string]func() Repository {
	return map[string]func() Repository{
		"memory": func() Repository { return NewMemoryStore() },
		"hnsw":   func() Repository { return NewHNSWStore() },
	}
}

func chunk(id, path string, embedding []float32) models.RunbookChunk {
	return models.NewRunbookChunk(id, path, "Section", "content of "+id, nil, nil, embedding)
}

func TestRepository_SearchRanksByCosineDescending(t *testing.T) {
	for name, newStore := range repositories() {
		t.Run(name, func(t *testing.T) {
			store := newStore()
			ctx := context.Background()

			require.NoError(t, store.Store(ctx, chunk("far", "a.md", []float32{0, 1, 0})))
			require.NoError(t, store.Store(ctx, chunk("near", "a.md", []float32{1, 0.1, 0})))
			require.NoError(t, store.Store(ctx, chunk("exact", "b.md", []float32{1, 0, 0})))

			results, err := store.Search(ctx, []float32{1, 0, 0}, 3)
			require.NoError(t, err)
			require.Len(t, results, 3)

			assert.Equal(t, "exact", results[0].Chunk.ID)
			assert.Equal(t, "near", results[1].Chunk.ID)
			assert.Equal(t, "far", results[2].Chunk.ID)
			assert.InDelta(t, 1.0, results[0].SimilarityScore, 1e-6)
			assert.GreaterOrEqual(t, results[1].SimilarityScore, results[2].SimilarityScore)
		})
	}
}

func TestRepository_TiesBreakByInsertionOrder(t *testing.T) {
	for name, newStore := range repositories() {
		t.Run(name, func(t *testing.T) {
			store := newStore()
			ctx := context.Background()

			// Same embedding, so identical scores; insertion order decides.
			for i := 0; i < 5; i++ {
				id := fmt.Sprintf("c%d", i)
				require.NoError(t, store.Store(ctx, chunk(id, "a.md", []float32{1, 1, 0})))
			}

			results, err := store.Search(ctx, []float32{1, 1, 0}, 5)
			require.NoError(t, err)
			require.Len(t, results, 5)
			for i, res := range results {
				assert.Equal(t, fmt.Sprintf("c%d", i), res.Chunk.ID)
			}
		})
	}
}

func TestRepository_TopKTruncates(t *testing.T) {
	for name, newStore := range repositories() {
		t.Run(name, func(t *testing.T) {
			store := newStore()
			ctx := context.Background()

			for i := 0; i < 10; i++ {
				require.NoError(t, store.Store(ctx, chunk(fmt.Sprintf("c%d", i), "a.md", []float32{1, float32(i), 0})))
			}

			results, err := store.Search(ctx, []float32{1, 0, 0}, 3)
			require.NoError(t, err)
			assert.Len(t, results, 3)
		})
	}
}

func TestRepository_EmptyStoreSearch(t *testing.T) {
	for name, newStore := range repositories() {
		t.Run(name, func(t *testing.T) {
			results, err := newStore().Search(context.Background(), []float32{1, 0, 0}, 5)
			require.NoError(t, err)
			assert.Empty(t, results)
		})
	}
}

func TestRepository_DimensionMismatchRejected(t *testing.T) {
	for name, newStore := range repositories() {
		t.Run(name, func(t *testing.T) {
			store := newStore()
			ctx := context.Background()

			require.NoError(t, store.Store(ctx, chunk("first", "a.md", []float32{1, 0, 0})))

			err := store.Store(ctx, chunk("wrong", "a.md", []float32{1, 0}))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrDimensionMismatch))
			assert.Equal(t, 1, store.Count())
		})
	}
}

func TestRepository_BatchWithMismatchStoresNothing(t *testing.T) {
	for name, newStore := range repositories() {
		t.Run(name, func(t *testing.T) {
			store := newStore()
			ctx := context.Background()

			batch := []models.RunbookChunk{
				chunk("ok1", "a.md", []float32{1, 0, 0}),
				chunk("ok2", "a.md", []float32{0, 1, 0}),
				chunk("bad", "a.md", []float32{1, 0}),
			}
			err := store.StoreBatch(ctx, batch)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrDimensionMismatch))
			assert.Equal(t, 0, store.Count())
		})
	}
}

func TestRepository_ReplaceByID(t *testing.T) {
	for name, newStore := range repositories() {
		t.Run(name, func(t *testing.T) {
			store := newStore()
			ctx := context.Background()

			require.NoError(t, store.Store(ctx, chunk("c1", "a.md", []float32{1, 0, 0})))
			require.NoError(t, store.Store(ctx, chunk("c1", "a.md", []float32{0, 1, 0})))

			assert.Equal(t, 1, store.Count())

			results, err := store.Search(ctx, []float32{0, 1, 0}, 1)
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.InDelta(t, 1.0, results[0].SimilarityScore, 1e-6)
		})
	}
}

func TestRepository_DeleteScopedToRunbookPath(t *testing.T) {
	for name, newStore := range repositories() {
		t.Run(name, func(t *testing.T) {
			store := newStore()
			ctx := context.Background()

			require.NoError(t, store.Store(ctx, chunk("a1", "a.md", []float32{1, 0, 0})))
			require.NoError(t, store.Store(ctx, chunk("a2", "a.md", []float32{0, 1, 0})))
			require.NoError(t, store.Store(ctx, chunk("b1", "b.md", []float32{0, 0, 1})))

			require.NoError(t, store.Delete(ctx, "a.md"))

			assert.Equal(t, 1, store.Count())
			results, err := store.Search(ctx, []float32{1, 0, 0}, 5)
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.Equal(t, "b1", results[0].Chunk.ID)
		})
	}
}

func TestRepository_DeleteUnknownPathIsNoop(t *testing.T) {
	for name, newStore := range repositories() {
		t.Run(name, func(t *testing.T) {
			store := newStore()
			ctx := context.Background()

			require.NoError(t, store.Store(ctx, chunk("a1", "a.md", []float32{1, 0, 0})))
			require.NoError(t, store.Delete(ctx, "missing.md"))
			assert.Equal(t, 1, store.Count())
		})
	}
}

func TestNewRepository_ProviderSelection(t *testing.T) {
	local, err := NewRepository("local")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, local)

	oci, err := NewRepository("oci")
	require.NoError(t, err)
	assert.IsType(t, &HNSWStore{}, oci)

	aws, err := NewRepository("aws")
	require.NoError(t, err)
	assert.IsType(t, &HNSWStore{}, aws)

	_, err = NewRepository("bogus")
	assert.Error(t, err)
}
