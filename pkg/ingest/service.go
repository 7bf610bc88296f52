// Package ingest populates the vector store from runbooks held in object
// storage. Re-ingesting a document replaces all of its previous chunks
// (last writer wins per runbook path).
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/cloudnative-ops/runbook-synthesizer/pkg/chunker"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/cloud"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/embedding"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/models"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/vectorstore"
)

// Concurrent runbook workers per ingestion run.
const ingestConcurrency = 4

// DocumentError records a single runbook that failed to ingest.
type DocumentError struct {
	RunbookPath string `json:"runbookPath"`
	Message     string `json:"message"`
}

// Report summarizes one ingestion run. Individual document failures never
// abort the run; they are collected here.
type Report struct {
	ChunksStored int             `json:"chunksStored"`
	Documents    int             `json:"documents"`
	Errors       []DocumentError `json:"errors"`
}

// Service ingests runbooks: list, delete stale chunks, chunk, embed, store.
type Service struct {
	storage  cloud.StorageAdapter
	chunker  *chunker.Chunker
	embedder *embedding.Service
	store    vectorstore.Repository
	logger   *slog.Logger
}

// NewService wires an ingestion service.
func NewService(storage cloud.StorageAdapter, ck *chunker.Chunker,
	embedder *embedding.Service, store vectorstore.Repository) *Service {
	return &Service{
		storage:  storage,
		chunker:  ck,
		embedder: embedder,
		store:    store,
		logger:   slog.Default().With("component", "ingest-service"),
	}
}

// IngestAll re-indexes every runbook in the container. Distinct runbooks are
// processed concurrently; per-runbook the order is strict: delete stale
// chunks, fetch, chunk, batch-embed, store batch.
func (s *Service) IngestAll(ctx context.Context, container string) (*Report, error) {
	return s.IngestPrefix(ctx, container, "")
}

// IngestPrefix re-indexes the runbooks whose key starts with prefix. An
// empty prefix selects everything.
func (s *Service) IngestPrefix(ctx context.Context, container, prefix string) (*Report, error) {
	keys, err := s.storage.ListRunbooks(ctx, container)
	if err != nil {
		return nil, fmt.Errorf("list runbooks in %s: %w", container, err)
	}
	if prefix != "" {
		filtered := keys[:0]
		for _, key := range keys {
			if strings.HasPrefix(key, prefix) {
				filtered = append(filtered, key)
			}
		}
		keys = filtered
	}

	s.logger.Info("Starting runbook ingestion", "container", container, "runbooks", len(keys))

	var mu sync.Mutex
	report := &Report{Documents: len(keys), Errors: []DocumentError{}}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ingestConcurrency)
	for _, key := range keys {
		g.Go(func() error {
			stored, err := s.IngestOne(gctx, container, key)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Warn("Runbook ingestion failed", "container", container, "key", key, "error", err)
				report.Errors = append(report.Errors, DocumentError{RunbookPath: key, Message: err.Error()})
				return nil
			}
			report.ChunksStored += stored
			return nil
		})
	}
	// Workers swallow per-document errors; Wait only propagates context
	// cancellation.
	if err := g.Wait(); err != nil {
		return report, err
	}

	s.logger.Info("Runbook ingestion complete",
		"container", container,
		"chunks_stored", report.ChunksStored,
		"failed_documents", len(report.Errors))

	return report, nil
}

// IngestOne re-indexes a single runbook and returns the number of chunks
// stored. A missing object stores nothing and is not an error.
func (s *Service) IngestOne(ctx context.Context, container, key string) (int, error) {
	if err := s.store.Delete(ctx, key); err != nil {
		return 0, fmt.Errorf("delete stale chunks for %s: %w", key, err)
	}

	content, err := s.storage.GetRunbookContent(ctx, container, key)
	if err != nil {
		return 0, fmt.Errorf("fetch %s: %w", key, err)
	}
	if content == "" {
		return 0, nil
	}

	parsed := s.chunker.Chunk(content)
	if len(parsed) == 0 {
		return 0, nil
	}

	texts := make([]string, len(parsed))
	for i, p := range parsed {
		texts[i] = p.Content
	}
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed %s: %w", key, err)
	}
	if len(vectors) != len(parsed) {
		return 0, fmt.Errorf("embed %s: got %d vectors for %d chunks", key, len(vectors), len(parsed))
	}

	chunks := make([]models.RunbookChunk, len(parsed))
	for i, p := range parsed {
		chunks[i] = models.NewRunbookChunk(
			uuid.NewString(), key, p.SectionTitle, p.Content,
			p.Tags, p.ApplicableShapes, vectors[i])
	}

	if err := s.store.StoreBatch(ctx, chunks); err != nil {
		return 0, fmt.Errorf("store chunks for %s: %w", key, err)
	}
	return len(chunks), nil
}
