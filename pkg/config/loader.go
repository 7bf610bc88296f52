package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	"github.com/cloudnative-ops/runbook-synthesizer/pkg/models"
)

const configFileName = "synthesizer.yaml"

// Initialize loads, merges, and validates configuration from configDir.
// This is the primary entry point for configuration loading.
//
// Steps performed:
//  1. Read synthesizer.yaml (missing file falls back to pure defaults)
//  2. Expand environment variables ({{.VAR}} syntax)
//  3. Parse YAML
//  4. Merge user values over built-in defaults
//  5. Validate everything; unknown providers fail here, before any adapter
//     is constructed
func Initialize(_ context.Context, configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)
	log.Info("Initializing configuration")

	cfg, err := load(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	log.Info("Configuration initialized successfully",
		"cloud_provider", cfg.Cloud.Provider,
		"vector_store_provider", cfg.VectorStore.Provider,
		"llm_provider", cfg.LLM.Provider,
		"webhooks", len(cfg.Output.Webhooks))

	return cfg, nil
}

func load(configDir string) (*Config, error) {
	cfg := DefaultConfig()

	path := filepath.Join(configDir, configFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("Config file not found, using built-in defaults", "path", path)
			return cfg, nil
		}
		return nil, NewLoadError(configFileName, err)
	}

	data = ExpandEnv(data)

	var user Config
	if err := yaml.Unmarshal(data, &user); err != nil {
		return nil, NewLoadError(configFileName, fmt.Errorf("%w: %v", ErrInvalidYAML, err))
	}

	// User values override defaults; unset user fields keep the defaults.
	if err := mergo.Merge(cfg, &user, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("failed to merge configuration: %w", err)
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	switch cfg.Cloud.Provider {
	case "oci", "aws", "local":
	default:
		return NewValidationError("cloud.provider",
			fmt.Sprintf("unknown provider %q (expected oci, aws, or local)", cfg.Cloud.Provider))
	}

	switch cfg.VectorStore.Provider {
	case "local", "oci", "aws":
	default:
		return NewValidationError("vector_store.provider",
			fmt.Sprintf("unknown provider %q (expected local, oci, or aws)", cfg.VectorStore.Provider))
	}

	switch cfg.LLM.Provider {
	case "ollama", "stub":
	default:
		return NewValidationError("llm.provider",
			fmt.Sprintf("unknown provider %q (expected ollama or stub)", cfg.LLM.Provider))
	}

	if cfg.Generation.Temperature < 0 || cfg.Generation.Temperature > 1 {
		return NewValidationError("generation.temperature", "must be within [0,1]")
	}
	if cfg.Generation.MaxTokens <= 0 {
		return NewValidationError("generation.max_tokens", "must be positive")
	}

	if cfg.Runbooks.MinChunkSize <= 0 {
		return NewValidationError("runbooks.min_chunk_size", "must be positive")
	}
	if cfg.Runbooks.MaxChunkSize < cfg.Runbooks.MinChunkSize {
		return NewValidationError("runbooks.max_chunk_size", "must be >= min_chunk_size")
	}

	if cfg.Retrieval.TopK <= 0 {
		return NewValidationError("retrieval.top_k", "must be positive")
	}

	seen := make(map[string]bool, len(cfg.Output.Webhooks))
	for i, wh := range cfg.Output.Webhooks {
		field := fmt.Sprintf("output.webhooks[%d]", i)
		if wh.Name == "" {
			return NewValidationError(field+".name", "must not be empty")
		}
		if seen[wh.Name] {
			return NewValidationError(field+".name", fmt.Sprintf("duplicate webhook name %q", wh.Name))
		}
		seen[wh.Name] = true
		switch wh.Type {
		case models.WebhookSlack, models.WebhookPagerDuty, models.WebhookGeneric, models.WebhookFile:
		default:
			return NewValidationError(field+".type", fmt.Sprintf("unknown webhook type %q", wh.Type))
		}
		for _, sev := range wh.Filter {
			if !models.ValidSeverity(sev) {
				return NewValidationError(field+".filter", fmt.Sprintf("unknown severity %q", sev))
			}
		}
	}

	return nil
}
