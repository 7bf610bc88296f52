// Package config loads and validates the synthesizer's YAML configuration.
// One file (synthesizer.yaml) in a config directory, with {{.VAR}} environment
// expansion and built-in defaults merged underneath user values.
package config

import (
	"time"

	"github.com/cloudnative-ops/runbook-synthesizer/pkg/models"
)

// Config is the fully resolved, validated process configuration.
// It is immutable after Initialize returns.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Cloud       CloudConfig       `yaml:"cloud"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	LLM         LLMConfig         `yaml:"llm"`
	Runbooks    RunbooksConfig    `yaml:"runbooks"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	Generation  GenerationConfig  `yaml:"generation"`
	Enrichment  EnrichmentConfig  `yaml:"enrichment"`
	Output      OutputConfig      `yaml:"output"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// CloudConfig selects the adapter family and carries per-provider settings.
type CloudConfig struct {
	Provider string        `yaml:"provider"`
	AWS      AWSSettings   `yaml:"aws"`
	OCI      OCISettings   `yaml:"oci"`
	Local    LocalSettings `yaml:"local"`
}

// AWSSettings configures the AWS adapter family. Credentials come from the
// standard SDK chain (env, shared config, instance role).
type AWSSettings struct {
	Region          string `yaml:"region"`
	MetricNamespace string `yaml:"metric_namespace"`
	LogGroup        string `yaml:"log_group"`
}

// OCISettings configures the OCI adapter family. Credentials come from the
// default OCI config file / instance principal chain.
type OCISettings struct {
	Namespace       string `yaml:"namespace"`
	CompartmentID   string `yaml:"compartment_id"`
	MetricNamespace string `yaml:"metric_namespace"`
	LogGroupID      string `yaml:"log_group_id"`
}

// LocalSettings configures the filesystem-backed provider used for
// development and tests.
type LocalSettings struct {
	RunbookDir string `yaml:"runbook_dir"`
}

// VectorStoreConfig selects the vector backend, independent of the cloud
// provider axis.
type VectorStoreConfig struct {
	Provider string `yaml:"provider"`
}

// LLMConfig selects the model backend, independent of the other two axes.
type LLMConfig struct {
	Provider string         `yaml:"provider"`
	Ollama   OllamaSettings `yaml:"ollama"`
	Stub     StubSettings   `yaml:"stub"`
}

// OllamaSettings are the connection parameters for a local Ollama server.
type OllamaSettings struct {
	BaseURL        string `yaml:"base_url"`
	TextModel      string `yaml:"text_model"`
	EmbeddingModel string `yaml:"embedding_model"`
	EmbeddingDim   int    `yaml:"embedding_dim"`
}

// StubSettings configure the deterministic stub provider.
type StubSettings struct {
	EmbeddingDim int `yaml:"embedding_dim"`
}

// RunbooksConfig controls ingestion.
type RunbooksConfig struct {
	Bucket          string `yaml:"bucket"`
	IngestOnStartup *bool  `yaml:"ingest_on_startup"`
	MinChunkSize    int    `yaml:"min_chunk_size"`
	MaxChunkSize    int    `yaml:"max_chunk_size"`
}

// StartupIngestion reports whether startup ingestion is enabled
// (default true).
func (r RunbooksConfig) StartupIngestion() bool {
	return r.IngestOnStartup == nil || *r.IngestOnStartup
}

// RetrievalConfig controls the retriever.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// GenerationConfig bounds LLM text generation.
type GenerationConfig struct {
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// EnrichmentConfig controls context enrichment.
type EnrichmentConfig struct {
	Lookback       time.Duration `yaml:"lookback"`
	AdapterTimeout time.Duration `yaml:"adapter_timeout"`
}

// OutputConfig declares dispatch destinations.
type OutputConfig struct {
	Webhooks []models.WebhookConfig `yaml:"webhooks"`
	File     FileOutputConfig       `yaml:"file"`
}

// FileOutputConfig declares the local file sink.
type FileOutputConfig struct {
	Enabled         bool   `yaml:"enabled"`
	OutputDirectory string `yaml:"output_directory"`
	Name            string `yaml:"name"`
}

// DefaultConfig returns the built-in defaults. User YAML is merged on top.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Cloud: CloudConfig{Provider: "local"},
		VectorStore: VectorStoreConfig{Provider: "local"},
		LLM: LLMConfig{
			Provider: "ollama",
			Stub:     StubSettings{EmbeddingDim: 8},
		},
		Runbooks: RunbooksConfig{
			Bucket:       "runbook-synthesizer-runbooks",
			MinChunkSize: 100,
			MaxChunkSize: 2000,
		},
		Retrieval:  RetrievalConfig{TopK: 5},
		Generation: GenerationConfig{Temperature: 0.7, MaxTokens: 1000},
		Enrichment: EnrichmentConfig{
			Lookback:       1 * time.Hour,
			AdapterTimeout: 10 * time.Second,
		},
		Output: OutputConfig{
			File: FileOutputConfig{Name: "file-sink", OutputDirectory: "./checklists"},
		},
	}
}
