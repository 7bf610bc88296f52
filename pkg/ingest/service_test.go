package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudnative-ops/runbook-synthesizer/pkg/chunker"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/cloud"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/embedding"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/llm"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/vectorstore"
)

// fakeStorage serves runbooks from a map; keys listed in sorted-map order is
// irrelevant since ingestion treats documents independently.
type fakeStorage struct {
	objects  map[string]string
	listErr  error
	fetchErr map[string]error
}

func (f *fakeStorage) ProviderType() cloud.ProviderType { return cloud.ProviderLocal }

func (f *fakeStorage) ListRunbooks(context.Context, string) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	keys := make([]string, 0, len(f.objects))
	for k := range f.objects {
		keys = append(keys, k)
	}
	return keys, nil
}

func (f *fakeStorage) GetRunbookContent(_ context.Context, _ string, key string) (string, error) {
	if err := f.fetchErr[key]; err != nil {
		return "", err
	}
	return f.objects[key], nil
}

const cpuRunbook = `---
tags: [cpu]
---
## Diagnose

Check the process table and recent deploys for anything that correlates with the alert window.

## Mitigate

Scale out the pool or restart the offending worker and confirm the alert clears.
`

func newTestService(storage cloud.StorageAdapter) (*Service, vectorstore.Repository) {
	store := vectorstore.NewMemoryStore()
	embedder := embedding.NewService(llm.NewStubProvider(8))
	return NewService(storage, chunker.New(50, 2000), embedder, store), store
}

func TestIngestAll_StoresChunks(t *testing.T) {
	storage := &fakeStorage{objects: map[string]string{
		"cpu.md":  cpuRunbook,
		"disk.md": "## Disk\n\nInvestigate IO saturation and queue depth before resizing the volume.\n",
	}}
	svc, store := newTestService(storage)

	report, err := svc.IngestAll(context.Background(), "bucket")
	require.NoError(t, err)

	assert.Equal(t, 2, report.Documents)
	assert.Empty(t, report.Errors)
	assert.Greater(t, report.ChunksStored, 0)
	assert.Equal(t, report.ChunksStored, store.Count())
}

func TestIngestAll_ReingestReplacesChunks(t *testing.T) {
	storage := &fakeStorage{objects: map[string]string{"cpu.md": cpuRunbook}}
	svc, store := newTestService(storage)
	ctx := context.Background()

	first, err := svc.IngestAll(ctx, "bucket")
	require.NoError(t, err)
	second, err := svc.IngestAll(ctx, "bucket")
	require.NoError(t, err)

	// Same document, same chunk count; the store holds one generation.
	assert.Equal(t, first.ChunksStored, second.ChunksStored)
	assert.Equal(t, second.ChunksStored, store.Count())
}

func TestIngestAll_PerDocumentErrorsCollected(t *testing.T) {
	storage := &fakeStorage{
		objects:  map[string]string{"ok.md": cpuRunbook, "broken.md": "irrelevant"},
		fetchErr: map[string]error{"broken.md": errors.New("storage 500")},
	}
	svc, store := newTestService(storage)

	report, err := svc.IngestAll(context.Background(), "bucket")
	require.NoError(t, err)

	require.Len(t, report.Errors, 1)
	assert.Equal(t, "broken.md", report.Errors[0].RunbookPath)
	assert.Contains(t, report.Errors[0].Message, "storage 500")
	assert.Greater(t, store.Count(), 0)
}

func TestIngestAll_ListFailureIsFatal(t *testing.T) {
	storage := &fakeStorage{listErr: errors.New("bucket not found")}
	svc, _ := newTestService(storage)

	_, err := svc.IngestAll(context.Background(), "bucket")
	assert.Error(t, err)
}

func TestIngestOne_MissingObjectStoresNothing(t *testing.T) {
	storage := &fakeStorage{objects: map[string]string{}}
	svc, store := newTestService(storage)

	stored, err := svc.IngestOne(context.Background(), "bucket", "ghost.md")
	require.NoError(t, err)
	assert.Equal(t, 0, stored)
	assert.Equal(t, 0, store.Count())
}

func TestIngestOne_DeletesStaleChunksForPathOnly(t *testing.T) {
	storage := &fakeStorage{objects: map[string]string{"cpu.md": cpuRunbook, "disk.md": cpuRunbook}}
	svc, store := newTestService(storage)
	ctx := context.Background()

	_, err := svc.IngestAll(ctx, "bucket")
	require.NoError(t, err)
	total := store.Count()

	// Re-ingest one document; the other's chunks must survive.
	stored, err := svc.IngestOne(ctx, "bucket", "cpu.md")
	require.NoError(t, err)
	assert.Greater(t, stored, 0)
	assert.Equal(t, total, store.Count())
}

func TestIngestPrefix_FiltersKeys(t *testing.T) {
	storage := &fakeStorage{objects: map[string]string{
		"compute/cpu.md": cpuRunbook,
		"storage/io.md":  cpuRunbook,
	}}
	svc, store := newTestService(storage)

	report, err := svc.IngestPrefix(context.Background(), "bucket", "compute/")
	require.NoError(t, err)

	assert.Equal(t, 1, report.Documents)
	assert.Greater(t, store.Count(), 0)

	results, err := store.Search(context.Background(), []float32{1, 0, 0, 0, 0, 0, 0, 0}, 10)
	require.NoError(t, err)
	for _, res := range results {
		assert.Equal(t, "compute/cpu.md", res.Chunk.RunbookPath)
	}
}
