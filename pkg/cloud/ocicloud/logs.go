package ocicloud

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/oracle/oci-go-sdk/v65/common"
	"github.com/oracle/oci-go-sdk/v65/loggingsearch"

	"github.com/cloudnative-ops/runbook-synthesizer/pkg/cloud"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/models"
)

// maxLogResults bounds a single enrichment fetch.
const maxLogResults = 50

// Logs fetches recent entries via the Logging search service.
type Logs struct {
	client        loggingsearch.LogSearchClient
	compartmentID string
	logGroupID    string
}

func NewLogs(client loggingsearch.LogSearchClient, compartmentID, logGroupID string) *Logs {
	return &Logs{client: client, compartmentID: compartmentID, logGroupID: logGroupID}
}

func (l *Logs) ProviderType() cloud.ProviderType { return cloud.ProviderOCI }

func (l *Logs) FetchLogs(ctx context.Context, resourceID string, lookback time.Duration, query string) ([]models.LogEntry, error) {
	if l.logGroupID == "" {
		return nil, nil
	}

	end := time.Now().UTC()
	start := end.Add(-lookback)

	searchQuery := l.buildQuery(resourceID, query)
	resp, err := l.client.SearchLogs(ctx, loggingsearch.SearchLogsRequest{
		SearchLogsDetails: loggingsearch.SearchLogsDetails{
			TimeStart:         &common.SDKTime{Time: start},
			TimeEnd:           &common.SDKTime{Time: end},
			SearchQuery:       common.String(searchQuery),
			IsReturnFieldInfo: common.Bool(false),
		},
		Limit: common.Int(maxLogResults),
	})
	if err != nil {
		return nil, fmt.Errorf("search logs: %w", err)
	}

	entries := make([]models.LogEntry, 0, len(resp.Results))
	for _, result := range resp.Results {
		if entry, ok := parseSearchResult(result); ok {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func (l *Logs) buildQuery(resourceID, extra string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "search %q", l.compartmentID+"/"+l.logGroupID)
	if resourceID != "" {
		fmt.Fprintf(&b, " | where logContent = '*%s*'", resourceID)
	}
	if extra != "" {
		fmt.Fprintf(&b, " | where logContent = '*%s*'", extra)
	}
	b.WriteString(" | sort by datetime desc")
	return b.String()
}

// parseSearchResult digs the fields this service cares about out of the
// untyped search result document.
func parseSearchResult(result loggingsearch.SearchResult) (models.LogEntry, bool) {
	if result.Data == nil {
		return models.LogEntry{}, false
	}
	data, ok := (*result.Data).(map[string]interface{})
	if !ok {
		return models.LogEntry{}, false
	}

	entry := models.LogEntry{Metadata: map[string]string{}}
	if ms, ok := data["datetime"].(float64); ok {
		entry.Timestamp = time.UnixMilli(int64(ms)).UTC()
	}
	content, _ := data["logContent"].(map[string]interface{})
	if content != nil {
		if id, ok := content["id"].(string); ok {
			entry.ID = id
		}
		if source, ok := content["source"].(string); ok {
			entry.Metadata["source"] = source
		}
		switch payload := content["data"].(type) {
		case string:
			entry.Message = payload
		case map[string]interface{}:
			if msg, ok := payload["message"].(string); ok {
				entry.Message = msg
			}
			if level, ok := payload["level"].(string); ok {
				entry.Level = level
			}
		}
	}
	if entry.Message == "" {
		return models.LogEntry{}, false
	}
	return entry, true
}
