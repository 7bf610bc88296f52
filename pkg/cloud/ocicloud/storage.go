// Package ocicloud implements the provider adapters on the OCI SDK:
// Object Storage for runbooks, Core compute for resource metadata,
// Monitoring for metrics, and Logging search for log entries.
package ocicloud

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/oracle/oci-go-sdk/v65/common"
	"github.com/oracle/oci-go-sdk/v65/objectstorage"

	"github.com/cloudnative-ops/runbook-synthesizer/pkg/cloud"
)

// Storage reads runbook objects from an Object Storage bucket.
type Storage struct {
	client    objectstorage.ObjectStorageClient
	namespace string
}

func NewStorage(client objectstorage.ObjectStorageClient, namespace string) *Storage {
	return &Storage{client: client, namespace: namespace}
}

func (s *Storage) ProviderType() cloud.ProviderType { return cloud.ProviderOCI }

func (s *Storage) ListRunbooks(ctx context.Context, bucket string) ([]string, error) {
	var keys []string
	var start *string
	for {
		resp, err := s.client.ListObjects(ctx, objectstorage.ListObjectsRequest{
			NamespaceName: common.String(s.namespace),
			BucketName:    common.String(bucket),
			Start:         start,
		})
		if err != nil {
			return nil, fmt.Errorf("list objects in %s: %w", bucket, err)
		}
		for _, obj := range resp.Objects {
			name := deref(obj.Name)
			if strings.HasSuffix(name, ".md") {
				keys = append(keys, name)
			}
		}
		if resp.NextStartWith == nil {
			break
		}
		start = resp.NextStartWith
	}
	return keys, nil
}

func (s *Storage) GetRunbookContent(ctx context.Context, bucket, key string) (string, error) {
	resp, err := s.client.GetObject(ctx, objectstorage.GetObjectRequest{
		NamespaceName: common.String(s.namespace),
		BucketName:    common.String(bucket),
		ObjectName:    common.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return "", nil
		}
		return "", fmt.Errorf("get object %s/%s: %w", bucket, key, err)
	}
	defer resp.Content.Close()

	data, err := io.ReadAll(resp.Content)
	if err != nil {
		return "", fmt.Errorf("read object %s/%s: %w", bucket, key, err)
	}
	return string(data), nil
}

func isNotFound(err error) bool {
	serviceErr, ok := common.IsServiceError(err)
	return ok && serviceErr.GetHTTPStatusCode() == http.StatusNotFound
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
