// Package localcloud is the filesystem-backed provider family used for
// development and tests. Storage reads markdown files from a directory;
// the compute, metrics, and log adapters resolve nothing.
package localcloud

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cloudnative-ops/runbook-synthesizer/pkg/cloud"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/models"
)

// Storage serves runbooks from a local directory tree. The configured
// directory stands in for the bucket; the container argument is ignored.
type Storage struct {
	root string
}

func NewStorage(runbookDir string) *Storage {
	return &Storage{root: runbookDir}
}

func (s *Storage) ProviderType() cloud.ProviderType { return cloud.ProviderLocal }

// ListRunbooks walks the directory and returns relative paths of all .md
// files, sorted for a stable ingestion order.
func (s *Storage) ListRunbooks(ctx context.Context, _ string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		keys = append(keys, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("walk runbook directory %s: %w", s.root, err)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Storage) GetRunbookContent(_ context.Context, _ string, key string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(key)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read runbook %s: %w", key, err)
	}
	return string(data), nil
}

// Compute never resolves a resource; local mode has no compute inventory.
type Compute struct{}

func NewCompute() *Compute { return &Compute{} }

func (c *Compute) ProviderType() cloud.ProviderType { return cloud.ProviderLocal }

func (c *Compute) GetInstance(context.Context, string) (*models.ResourceMetadata, error) {
	return nil, nil
}

// Metrics returns no datapoints.
type Metrics struct{}

func NewMetrics() *Metrics { return &Metrics{} }

func (m *Metrics) ProviderType() cloud.ProviderType { return cloud.ProviderLocal }

func (m *Metrics) FetchMetrics(context.Context, string, time.Duration) ([]models.MetricSnapshot, error) {
	return nil, nil
}

// Logs returns no entries.
type Logs struct{}

func NewLogs() *Logs { return &Logs{} }

func (l *Logs) ProviderType() cloud.ProviderType { return cloud.ProviderLocal }

func (l *Logs) FetchLogs(context.Context, string, time.Duration, string) ([]models.LogEntry, error) {
	return nil, nil
}
