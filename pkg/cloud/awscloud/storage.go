// Package awscloud implements the provider adapters on the AWS SDK:
// S3 for runbook storage, EC2 for resource metadata, CloudWatch for
// metrics, and CloudWatch Logs for log entries.
package awscloud

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/cloudnative-ops/runbook-synthesizer/pkg/cloud"
)

// Storage reads runbook objects from an S3 bucket.
type Storage struct {
	client *s3.Client
}

func NewStorage(client *s3.Client) *Storage {
	return &Storage{client: client}
}

func (s *Storage) ProviderType() cloud.ProviderType { return cloud.ProviderAWS }

func (s *Storage) ListRunbooks(ctx context.Context, bucket string) ([]string, error) {
	var keys []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list objects in %s: %w", bucket, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if strings.HasSuffix(key, ".md") {
				keys = append(keys, key)
			}
		}
	}
	return keys, nil
}

func (s *Storage) GetRunbookContent(ctx context.Context, bucket, key string) (string, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *s3types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return "", nil
		}
		return "", fmt.Errorf("get object %s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return "", fmt.Errorf("read object %s/%s: %w", bucket, key, err)
	}
	return string(data), nil
}
