// Runbook synthesizer server — ingests monitoring alerts, retrieves relevant
// runbook guidance from a vector index, and generates actionable checklists.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/cloudnative-ops/runbook-synthesizer/pkg/alerts"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/api"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/chunker"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/cloud/factory"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/config"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/dispatch"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/embedding"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/enrichment"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/generator"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/ingest"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/llm"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/models"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/pipeline"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/retriever"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/vectorstore"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/version"
)

// startupIngestTimeout bounds the initial index build.
const startupIngestTimeout = 10 * time.Minute

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	// Parse command-line flags
	configDir := flag.String("config-dir",
		getEnv("CONFIG_DIR", "./deploy/config"),
		"Path to configuration directory")
	flag.Parse()

	// Load .env file from config directory
	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		slog.Warn("Could not load .env file, continuing with existing environment",
			"path", envPath, "error", err)
	} else {
		slog.Info("Loaded environment", "path", envPath)
	}

	slog.Info("Starting runbook synthesizer",
		"version", version.Full(),
		"config_dir", *configDir)

	ctx := context.Background()

	// 1. Initialize configuration
	cfg, err := config.Initialize(ctx, *configDir)
	if err != nil {
		slog.Error("Failed to initialize configuration", "error", err)
		os.Exit(1)
	}

	// 2. Build the cloud adapter family
	adapters, err := factory.NewAdapterSet(ctx, cfg.Cloud)
	if err != nil {
		slog.Error("Failed to initialize cloud adapters", "error", err)
		os.Exit(1)
	}
	slog.Info("Cloud adapters initialized", "provider", cfg.Cloud.Provider)

	// 3. LLM provider and vector store
	provider, err := llm.NewProvider(cfg.LLM)
	if err != nil {
		slog.Error("Failed to initialize LLM provider", "error", err)
		os.Exit(1)
	}
	store, err := vectorstore.NewRepository(cfg.VectorStore.Provider)
	if err != nil {
		slog.Error("Failed to initialize vector store", "error", err)
		os.Exit(1)
	}
	slog.Info("Model backend initialized",
		"llm_provider", provider.ProviderID(),
		"vector_store", cfg.VectorStore.Provider,
		"embedding_dim", provider.EmbeddingDimension())

	// 4. Domain services
	embedder := embedding.NewService(provider)
	ck := chunker.New(cfg.Runbooks.MinChunkSize, cfg.Runbooks.MaxChunkSize)
	ingestor := ingest.NewService(adapters.Storage, ck, embedder, store)

	enricher := enrichment.NewService(adapters.Compute, adapters.Metrics, adapters.Logs,
		cfg.Enrichment.Lookback, cfg.Enrichment.AdapterTimeout)
	ret := retriever.New(embedder, store)
	gen := generator.New(provider, llm.GenerationConfig{
		Temperature: cfg.Generation.Temperature,
		MaxTokens:   cfg.Generation.MaxTokens,
	})
	orchestrator := pipeline.New(enricher, ret, gen)

	// 5. Dispatcher: configured webhooks plus the optional file sink
	dispatcher := dispatch.NewDispatcher(0)
	webhooks := cfg.Output.Webhooks
	if cfg.Output.File.Enabled {
		webhooks = append(webhooks, models.WebhookConfig{
			Name:    cfg.Output.File.Name,
			Type:    models.WebhookFile,
			URL:     cfg.Output.File.OutputDirectory,
			Enabled: true,
		})
	}
	for _, wh := range webhooks {
		dest, err := dispatch.NewDestination(wh)
		if err != nil {
			slog.Error("Failed to build dispatch destination", "name", wh.Name, "error", err)
			os.Exit(1)
		}
		if err := dispatcher.Add(dest); err != nil {
			slog.Error("Failed to register dispatch destination", "name", wh.Name, "error", err)
			os.Exit(1)
		}
	}
	slog.Info("Dispatcher initialized", "destinations", len(webhooks))

	// 6. Alert normalizers and HTTP server
	registry := alerts.NewRegistry(alerts.NewOCIAdapter(), alerts.NewAWSAdapter())
	httpServer := api.NewServer(cfg, registry, orchestrator, dispatcher, ingestor, store)

	// 7. Startup ingestion (non-blocking; health reports DEGRADED until done)
	if cfg.Runbooks.StartupIngestion() {
		go func() {
			ingestCtx, cancel := context.WithTimeout(ctx, startupIngestTimeout)
			defer cancel()
			report, err := ingestor.IngestAll(ingestCtx, cfg.Runbooks.Bucket)
			if err != nil {
				slog.Warn("Startup ingestion failed, continuing without an index",
					"error", err)
				return
			}
			httpServer.RecordIngestReport(report)
		}()
	}

	// 8. Start HTTP server (non-blocking)
	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
			errCh <- err
		}
	}()

	slog.Info("Runbook synthesizer started", "port", cfg.Server.Port)

	// 9. Wait for shutdown signal or server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		slog.Info("Shutdown signal received", "signal", sig)
	case err := <-errCh:
		slog.Error("Server error triggered shutdown", "error", err)
	}

	// 10. Graceful shutdown: drain HTTP under its own budget
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}
