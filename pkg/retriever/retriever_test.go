package retriever

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudnative-ops/runbook-synthesizer/pkg/embedding"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/llm"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/models"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/vectorstore"
)

func testAlert(title string, dims, labels map[string]string) models.Alert {
	return models.NewAlert("a-1", title, "", models.SeverityCritical, "test", dims, labels, time.Now(), nil)
}

func TestTagBoost_CapsAtThreeMatches(t *testing.T) {
	alert := testAlert("High CPU on worker", map[string]string{"cpu": "x", "disk": "y"}, map[string]string{"memory": "z"})

	// Four matching tags, boost must cap at 0.3.
	boost := tagBoost([]string{"cpu", "disk", "memory", "worker"}, alert)
	assert.InDelta(t, 0.3, boost, 1e-9)
}

func TestTagBoost_PerMatchIncrement(t *testing.T) {
	alert := testAlert("High CPU on worker", map[string]string{"cpu": "x"}, nil)

	assert.InDelta(t, 0.0, tagBoost(nil, alert), 1e-9)
	assert.InDelta(t, 0.1, tagBoost([]string{"cpu"}, alert), 1e-9)
	assert.InDelta(t, 0.2, tagBoost([]string{"cpu", "worker"}, alert), 1e-9)
}

func TestTagBoost_TitleMatchIsCaseInsensitive(t *testing.T) {
	alert := testAlert("Memory Pressure Detected", nil, nil)
	assert.InDelta(t, 0.1, tagBoost([]string{"MEMORY"}, alert), 1e-9)
}

func TestShapeMatches_Globs(t *testing.T) {
	tests := []struct {
		pattern string
		shape   string
		want    bool
	}{
		{"*", "VM.Standard.E4.Flex", true},
		{"all", "t3.medium", true},
		{"*", "", true},
		{"all", "", true},
		{"VM.Standard.*", "VM.Standard.E4.Flex", true},
		{"vm.standard.*", "VM.Standard.E4.Flex", true},
		{"t3.*", "t3.medium", true},
		{"t3.*", "m5.large", false},
		{"VM.Standard.*", "", false},
		{"", "", true},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, shapeMatches(tc.pattern, tc.shape),
			"pattern %q vs shape %q", tc.pattern, tc.shape)
	}
}

func TestShapeBoostFor_UniversalPatternWithoutResource(t *testing.T) {
	// No resource metadata means shape is empty; only the literal universal
	// patterns still match.
	assert.InDelta(t, 0.2, shapeBoostFor([]string{"*"}, ""), 1e-9)
	assert.InDelta(t, 0.2, shapeBoostFor([]string{"all"}, ""), 1e-9)
	assert.InDelta(t, 0.0, shapeBoostFor([]string{"VM.Standard.*"}, ""), 1e-9)
	assert.InDelta(t, 0.0, shapeBoostFor(nil, "t3.medium"), 1e-9)
}

func TestRetriever_BoostPromotesChunkIntoTopK(t *testing.T) {
	provider := llm.NewStubProvider(8)
	embedder := embedding.NewService(provider)
	store := vectorstore.NewMemoryStore()
	ctx := context.Background()

	alert := testAlert("disk latency spike", map[string]string{"disk": "vol-1"}, nil)
	ec := models.NewEnrichedContext(alert, nil, nil, nil, nil)

	query, err := embedder.EmbedContext(ctx, ec)
	require.NoError(t, err)

	// "similar" shares the query's embedding; "boosted" is dissimilar but
	// carries a matching tag plus a universal shape pattern (0.1 + 0.2).
	similar := models.NewRunbookChunk("similar", "a.md", "S", "text", nil, nil, query)
	other, err := embedder.Embed(ctx, "completely unrelated content")
	require.NoError(t, err)
	boosted := models.NewRunbookChunk("boosted", "b.md", "S", "text", []string{"disk"}, []string{"*"}, other)
	require.NoError(t, store.StoreBatch(ctx, []models.RunbookChunk{similar, boosted}))

	results, err := New(embedder, store).Retrieve(ctx, ec, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	for _, res := range results {
		if res.Chunk.ID == "boosted" {
			assert.InDelta(t, 0.3, res.MetadataBoost, 1e-9)
			assert.InDelta(t, res.SimilarityScore+0.3, res.FinalScore, 1e-9)
		} else {
			assert.InDelta(t, 0.0, res.MetadataBoost, 1e-9)
		}
	}
}

func TestRetriever_TopKTruncatesAfterBoosting(t *testing.T) {
	provider := llm.NewStubProvider(8)
	embedder := embedding.NewService(provider)
	store := vectorstore.NewMemoryStore()
	ctx := context.Background()

	for _, id := range []string{"c1", "c2", "c3", "c4"} {
		vec, err := embedder.Embed(ctx, "chunk "+id)
		require.NoError(t, err)
		require.NoError(t, store.Store(ctx, models.NewRunbookChunk(id, id+".md", "S", "text", nil, nil, vec)))
	}

	ec := models.NewEnrichedContext(testAlert("anything", nil, nil), nil, nil, nil, nil)
	results, err := New(embedder, store).Retrieve(ctx, ec, 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestRetriever_EmptyStoreYieldsEmptyResult(t *testing.T) {
	provider := llm.NewStubProvider(8)
	embedder := embedding.NewService(provider)
	store := vectorstore.NewMemoryStore()

	ec := models.NewEnrichedContext(testAlert("anything", nil, nil), nil, nil, nil, nil)
	results, err := New(embedder, store).Retrieve(context.Background(), ec, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRetriever_NonPositiveTopK(t *testing.T) {
	provider := llm.NewStubProvider(8)
	embedder := embedding.NewService(provider)
	store := vectorstore.NewMemoryStore()

	ec := models.NewEnrichedContext(testAlert("anything", nil, nil), nil, nil, nil, nil)
	results, err := New(embedder, store).Retrieve(context.Background(), ec, 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}
