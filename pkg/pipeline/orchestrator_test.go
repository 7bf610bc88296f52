package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudnative-ops/runbook-synthesizer/pkg/cloud"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/embedding"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/enrichment"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/generator"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/llm"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/models"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/retriever"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/vectorstore"
)

type nullCompute struct{}

func (nullCompute) ProviderType() cloud.ProviderType { return cloud.ProviderLocal }
func (nullCompute) GetInstance(context.Context, string) (*models.ResourceMetadata, error) {
	return nil, nil
}

type nullMetrics struct{}

func (nullMetrics) ProviderType() cloud.ProviderType { return cloud.ProviderLocal }
func (nullMetrics) FetchMetrics(context.Context, string, time.Duration) ([]models.MetricSnapshot, error) {
	return nil, nil
}

type nullLogs struct{}

func (nullLogs) ProviderType() cloud.ProviderType { return cloud.ProviderLocal }
func (nullLogs) FetchLogs(context.Context, string, time.Duration, string) ([]models.LogEntry, error) {
	return nil, nil
}

// failingStore errors on Search so the retrieve stage fails.
type failingStore struct {
	vectorstore.Repository
}

func (failingStore) Search(context.Context, []float32, int) ([]models.ScoredChunk, error) {
	return nil, errors.New("index unavailable")
}

func newOrchestrator(store vectorstore.Repository) *Orchestrator {
	provider := llm.NewStubProvider(8)
	embedder := embedding.NewService(provider)
	enricher := enrichment.NewService(nullCompute{}, nullMetrics{}, nullLogs{}, 0, 0)
	ret := retriever.New(embedder, store)
	gen := generator.New(provider, llm.GenerationConfig{})
	return New(enricher, ret, gen)
}

func testAlert() models.Alert {
	return models.NewAlert("a-1", "High CPU", "", models.SeverityCritical, "test", nil, nil, time.Now(), nil)
}

func TestProcessAlert_NilAlert(t *testing.T) {
	orch := newOrchestrator(vectorstore.NewMemoryStore())
	_, err := orch.ProcessAlert(context.Background(), nil, 5)
	assert.ErrorIs(t, err, ErrNilAlert)
}

func TestProcessAlert_EndToEndWithStub(t *testing.T) {
	store := vectorstore.NewMemoryStore()
	orch := newOrchestrator(store)

	alert := testAlert()
	checklist, err := orch.ProcessAlert(context.Background(), &alert, 5)
	require.NoError(t, err)

	assert.Equal(t, "a-1", checklist.AlertID)
	assert.Equal(t, "stub", checklist.LLMProviderID)
	assert.NotEmpty(t, checklist.Steps)
	assert.Empty(t, checklist.SourceRunbooks)
}

func TestProcessAlert_RetrieveFailureWrappedWithStage(t *testing.T) {
	orch := newOrchestrator(failingStore{})

	alert := testAlert()
	_, err := orch.ProcessAlert(context.Background(), &alert, 5)
	require.Error(t, err)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageRetrieve, stageErr.Stage)
	assert.Contains(t, err.Error(), "index unavailable")
}

func TestProcessAlert_CancelledContext(t *testing.T) {
	orch := newOrchestrator(vectorstore.NewMemoryStore())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	alert := testAlert()
	_, err := orch.ProcessAlert(ctx, &alert, 5)
	require.Error(t, err)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.ErrorIs(t, err, context.Canceled)
}
