// Package retriever finds the runbook chunks most relevant to an enriched
// alert context by fusing vector similarity with metadata-derived boosts.
package retriever

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/cloudnative-ops/runbook-synthesizer/pkg/embedding"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/models"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/vectorstore"
)

const (
	// tagBoostPerMatch is added per matching chunk tag, capped at tagBoostCap.
	tagBoostPerMatch = 0.1
	tagBoostCap      = 0.3
	// shapeBoost is added when any applicable-shape pattern matches.
	shapeBoost = 0.2
	// overFetchFactor widens the candidate search before boosting so a
	// boost can promote a chunk into the top-K.
	overFetchFactor = 2
)

// Retriever ranks runbook chunks for an enriched context.
type Retriever struct {
	embedder *embedding.Service
	store    vectorstore.Repository
	logger   *slog.Logger
}

// New creates a Retriever.
func New(embedder *embedding.Service, store vectorstore.Repository) *Retriever {
	return &Retriever{
		embedder: embedder,
		store:    store,
		logger:   slog.Default().With("component", "retriever"),
	}
}

// Retrieve returns up to topK chunks ranked by finalScore descending,
// stable on ties. An empty store yields an empty result, not an error.
func (r *Retriever) Retrieve(ctx context.Context, ec models.EnrichedContext, topK int) ([]models.RetrievedChunk, error) {
	if topK <= 0 {
		return []models.RetrievedChunk{}, nil
	}

	query, err := r.embedder.EmbedContext(ctx, ec)
	if err != nil {
		return nil, fmt.Errorf("embed context query: %w", err)
	}

	candidates, err := r.store.Search(ctx, query, topK*overFetchFactor)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	shape := ""
	if ec.Resource != nil {
		shape = ec.Resource.Shape
	}

	retrieved := make([]models.RetrievedChunk, len(candidates))
	for i, cand := range candidates {
		boost := tagBoost(cand.Chunk.Tags, ec.Alert) + shapeBoostFor(cand.Chunk.ApplicableShapes, shape)
		retrieved[i] = models.RetrievedChunk{
			Chunk:           cand.Chunk,
			SimilarityScore: cand.SimilarityScore,
			MetadataBoost:   boost,
			FinalScore:      cand.SimilarityScore + boost,
		}
	}

	sort.SliceStable(retrieved, func(i, j int) bool {
		return retrieved[i].FinalScore > retrieved[j].FinalScore
	})
	if len(retrieved) > topK {
		retrieved = retrieved[:topK]
	}

	r.logger.Debug("Retrieved chunks",
		"alert_id", ec.Alert.ID,
		"candidates", len(candidates),
		"returned", len(retrieved))

	return retrieved, nil
}

// tagBoost counts chunk tags that appear as a dimension key, a label key,
// or a case-insensitive substring of the alert title, at 0.1 per match
// capped at 0.3.
func tagBoost(tags []string, alert models.Alert) float64 {
	titleLower := strings.ToLower(alert.Title)
	matches := 0
	for _, tag := range tags {
		if _, ok := alert.Dimensions[tag]; ok {
			matches++
			continue
		}
		if _, ok := alert.Labels[tag]; ok {
			matches++
			continue
		}
		if tag != "" && strings.Contains(titleLower, strings.ToLower(tag)) {
			matches++
		}
	}
	boost := float64(matches) * tagBoostPerMatch
	if boost > tagBoostCap {
		boost = tagBoostCap
	}
	return boost
}

// shapeBoostFor returns 0.2 when any pattern matches the shape. With no
// resource metadata the shape is empty, so only the universal patterns
// ("*", "all") can match. An empty pattern list never boosts.
func shapeBoostFor(patterns []string, shape string) float64 {
	for _, p := range patterns {
		if shapeMatches(p, shape) {
			return shapeBoost
		}
	}
	return 0
}
