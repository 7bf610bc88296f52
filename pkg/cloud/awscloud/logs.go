package awscloud

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"

	"github.com/cloudnative-ops/runbook-synthesizer/pkg/cloud"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/models"
)

// maxLogEvents bounds a single enrichment fetch.
const maxLogEvents = 50

// Logs fetches recent entries from a CloudWatch Logs group.
type Logs struct {
	client   *cloudwatchlogs.Client
	logGroup string
}

func NewLogs(client *cloudwatchlogs.Client, logGroup string) *Logs {
	return &Logs{client: client, logGroup: logGroup}
}

func (l *Logs) ProviderType() cloud.ProviderType { return cloud.ProviderAWS }

func (l *Logs) FetchLogs(ctx context.Context, resourceID string, lookback time.Duration, query string) ([]models.LogEntry, error) {
	if l.logGroup == "" {
		return nil, nil
	}

	input := &cloudwatchlogs.FilterLogEventsInput{
		LogGroupName: aws.String(l.logGroup),
		StartTime:    aws.Int64(time.Now().Add(-lookback).UnixMilli()),
		Limit:        aws.Int32(maxLogEvents),
	}
	// A pattern restricts matching to the instance's stream plus any
	// caller-provided term.
	pattern := quoteTerm(resourceID)
	if query != "" {
		pattern += " " + quoteTerm(query)
	}
	input.FilterPattern = aws.String(pattern)

	out, err := l.client.FilterLogEvents(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("filter log events in %s: %w", l.logGroup, err)
	}

	entries := make([]models.LogEntry, 0, len(out.Events))
	for _, event := range out.Events {
		entries = append(entries, models.LogEntry{
			ID:        aws.ToString(event.EventId),
			Timestamp: time.UnixMilli(aws.ToInt64(event.Timestamp)).UTC(),
			Message:   aws.ToString(event.Message),
			Metadata: map[string]string{
				"logStream": aws.ToString(event.LogStreamName),
			},
		})
	}
	return entries, nil
}

// quoteTerm wraps a term for the CloudWatch filter pattern syntax.
func quoteTerm(term string) string {
	return `"` + term + `"`
}
