package ocicloud

import (
	"context"
	"fmt"
	"time"

	"github.com/oracle/oci-go-sdk/v65/common"
	"github.com/oracle/oci-go-sdk/v65/monitoring"

	"github.com/cloudnative-ops/runbook-synthesizer/pkg/cloud"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/models"
)

// metricQueries are the per-resource series sampled during enrichment.
var metricQueries = []string{
	"CpuUtilization[1m]{resourceId = %q}.mean()",
	"MemoryUtilization[1m]{resourceId = %q}.mean()",
	"DiskBytesRead[1m]{resourceId = %q}.mean()",
}

// Metrics samples recent datapoints from the Monitoring service.
type Metrics struct {
	client        monitoring.MonitoringClient
	compartmentID string
	namespace     string
}

// NewMetrics builds the adapter. namespace defaults to oci_computeagent.
func NewMetrics(client monitoring.MonitoringClient, compartmentID, namespace string) *Metrics {
	if namespace == "" {
		namespace = "oci_computeagent"
	}
	return &Metrics{client: client, compartmentID: compartmentID, namespace: namespace}
}

func (m *Metrics) ProviderType() cloud.ProviderType { return cloud.ProviderOCI }

func (m *Metrics) FetchMetrics(ctx context.Context, resourceID string, lookback time.Duration) ([]models.MetricSnapshot, error) {
	end := time.Now().UTC()
	start := end.Add(-lookback)

	var snapshots []models.MetricSnapshot
	for _, queryTemplate := range metricQueries {
		query := fmt.Sprintf(queryTemplate, resourceID)
		resp, err := m.client.SummarizeMetricsData(ctx, monitoring.SummarizeMetricsDataRequest{
			CompartmentId: common.String(m.compartmentID),
			SummarizeMetricsDataDetails: monitoring.SummarizeMetricsDataDetails{
				Namespace: common.String(m.namespace),
				Query:     common.String(query),
				StartTime: &common.SDKTime{Time: start},
				EndTime:   &common.SDKTime{Time: end},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("summarize metrics %q: %w", query, err)
		}
		for _, item := range resp.Items {
			for _, dp := range item.AggregatedDatapoints {
				if dp.Value == nil || dp.Timestamp == nil {
					continue
				}
				snapshots = append(snapshots, models.MetricSnapshot{
					Name:      deref(item.Name),
					Namespace: deref(item.Namespace),
					Value:     *dp.Value,
					Unit:      item.Metadata["unit"],
					Timestamp: dp.Timestamp.Time,
				})
			}
		}
	}
	return snapshots, nil
}
