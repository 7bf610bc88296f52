// Package cloud defines the capability interfaces the pipeline uses to talk
// to a cloud provider, and the factory that selects a provider family from
// configuration. Each capability is a small interface; implementations live
// in per-provider subpackages.
package cloud

import (
	"context"
	"time"

	"github.com/cloudnative-ops/runbook-synthesizer/pkg/models"
)

// ProviderType discriminates adapter families.
type ProviderType string

const (
	ProviderOCI   ProviderType = "oci"
	ProviderAWS   ProviderType = "aws"
	ProviderLocal ProviderType = "local"
)

// StorageAdapter reads runbook documents from object storage.
// A missing object is a value (empty content, nil error), not an error.
type StorageAdapter interface {
	ProviderType() ProviderType
	// ListRunbooks returns the keys of all .md objects in the container,
	// in the storage service's listing order.
	ListRunbooks(ctx context.Context, container string) ([]string, error)
	// GetRunbookContent returns the object's content, or "" when the
	// object does not exist.
	GetRunbookContent(ctx context.Context, container, key string) (string, error)
}

// ComputeMetadataAdapter resolves compute instance metadata.
// An unknown resource yields (nil, nil).
type ComputeMetadataAdapter interface {
	ProviderType() ProviderType
	GetInstance(ctx context.Context, resourceID string) (*models.ResourceMetadata, error)
}

// MetricsSourceAdapter fetches recent metric datapoints for a resource.
type MetricsSourceAdapter interface {
	ProviderType() ProviderType
	FetchMetrics(ctx context.Context, resourceID string, lookback time.Duration) ([]models.MetricSnapshot, error)
}

// LogSourceAdapter fetches recent log entries for a resource.
// query may be empty, meaning no additional filtering.
type LogSourceAdapter interface {
	ProviderType() ProviderType
	FetchLogs(ctx context.Context, resourceID string, lookback time.Duration, query string) ([]models.LogEntry, error)
}

// AdapterSet bundles one provider family's adapters.
type AdapterSet struct {
	Storage StorageAdapter
	Compute ComputeMetadataAdapter
	Metrics MetricsSourceAdapter
	Logs    LogSourceAdapter
}
