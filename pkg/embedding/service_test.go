package embedding

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudnative-ops/runbook-synthesizer/pkg/llm"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/models"
)

func contextFor(title, message string, resource *models.ResourceMetadata) models.EnrichedContext {
	alert := models.NewAlert("a-1", title, message, models.SeverityWarning, "test", nil, nil, time.Now(), nil)
	return models.NewEnrichedContext(alert, resource, nil, nil, nil)
}

func TestQueryText_TitleOnly(t *testing.T) {
	assert.Equal(t, "High CPU", QueryText(contextFor("High CPU", "", nil)))
}

func TestQueryText_TitleAndMessage(t *testing.T) {
	assert.Equal(t, "High CPU\nCPU above 95%", QueryText(contextFor("High CPU", "CPU above 95%", nil)))
}

func TestQueryText_WithResource(t *testing.T) {
	resource := &models.ResourceMetadata{DisplayName: "worker-3", Shape: "t3.medium"}
	got := QueryText(contextFor("High CPU", "msg", resource))
	assert.Equal(t, "High CPU\nmsg\nresource: worker-3\nshape: t3.medium", got)
}

func TestQueryText_ResourceFieldsOptional(t *testing.T) {
	resource := &models.ResourceMetadata{Shape: "t3.medium"}
	got := QueryText(contextFor("High CPU", "", resource))
	assert.Equal(t, "High CPU\nshape: t3.medium", got)
}

func TestQueryText_Deterministic(t *testing.T) {
	ec := contextFor("High CPU", "msg", &models.ResourceMetadata{DisplayName: "w", Shape: "s"})
	assert.Equal(t, QueryText(ec), QueryText(ec))
}

func TestEmbedContext_MatchesQueryTextEmbedding(t *testing.T) {
	provider := llm.NewStubProvider(8)
	service := NewService(provider)
	ec := contextFor("High CPU", "msg", nil)

	fromContext, err := service.EmbedContext(context.Background(), ec)
	require.NoError(t, err)
	fromText, err := service.Embed(context.Background(), QueryText(ec))
	require.NoError(t, err)

	assert.Equal(t, fromText, fromContext)
}

func TestEmbedBatch_PreservesOrder(t *testing.T) {
	provider := llm.NewStubProvider(8)
	service := NewService(provider)

	texts := []string{"alpha", "beta", "gamma"}
	batch, err := service.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, batch, 3)

	for i, text := range texts {
		single, err := service.Embed(context.Background(), text)
		require.NoError(t, err)
		assert.Equal(t, single, batch[i], "vector %d mismatch", i)
	}
}

func TestDimension_ReportsProvider(t *testing.T) {
	assert.Equal(t, 8, NewService(llm.NewStubProvider(8)).Dimension())
}
