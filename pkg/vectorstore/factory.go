package vectorstore

import (
	"fmt"
)

// NewRepository selects a repository implementation by provider name.
//
// "local" uses the exact linear-scan store. "oci" and "aws" use the embedded
// HNSW engine, which stands in for the cloud k-NN services (OCI OpenSearch,
// AWS OpenSearch) the provider families front in production deployments.
func NewRepository(provider string) (Repository, error) {
	switch provider {
	case "local":
		return NewMemoryStore(), nil
	case "oci", "aws":
		return NewHNSWStore(), nil
	default:
		return nil, fmt.Errorf("unknown vector store provider %q", provider)
	}
}
