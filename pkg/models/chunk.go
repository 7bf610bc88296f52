package models

// RunbookChunk is the unit stored in the vector index: a bounded span of
// runbook text, its origin, and the metadata used for retrieval boosts.
type RunbookChunk struct {
	ID               string   `json:"id"`
	RunbookPath      string   `json:"runbookPath"`
	SectionTitle     string   `json:"sectionTitle"`
	Content          string   `json:"content"`
	Tags             []string `json:"tags"`
	ApplicableShapes []string `json:"applicableShapes"`

	embedding []float32
}

// NewRunbookChunk constructs a chunk, defensively copying tags, shapes,
// and the embedding vector.
func NewRunbookChunk(id, runbookPath, sectionTitle, content string,
	tags, applicableShapes []string, embedding []float32) RunbookChunk {
	return RunbookChunk{
		ID:               id,
		RunbookPath:      runbookPath,
		SectionTitle:     sectionTitle,
		Content:          content,
		Tags:             copyStrings(tags),
		ApplicableShapes: copyStrings(applicableShapes),
		embedding:        copyFloats(embedding),
	}
}

// Embedding returns a copy of the chunk's embedding vector.
func (c RunbookChunk) Embedding() []float32 {
	return copyFloats(c.embedding)
}

// EmbeddingDim returns the embedding length without copying the vector.
func (c RunbookChunk) EmbeddingDim() int {
	return len(c.embedding)
}

// ScoredChunk pairs a chunk with its cosine similarity to a query.
type ScoredChunk struct {
	Chunk           RunbookChunk `json:"chunk"`
	SimilarityScore float64      `json:"similarityScore"`
}

// RetrievedChunk is a scored chunk after metadata boosting.
// FinalScore = SimilarityScore + MetadataBoost.
type RetrievedChunk struct {
	Chunk           RunbookChunk `json:"chunk"`
	SimilarityScore float64      `json:"similarityScore"`
	MetadataBoost   float64      `json:"metadataBoost"`
	FinalScore      float64      `json:"finalScore"`
}

func copyStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func copyFloats(f []float32) []float32 {
	out := make([]float32, len(f))
	copy(out, f)
	return out
}
